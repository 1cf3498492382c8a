package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/animalitos/internal/result"
)

// Header is the column layout of a results CSV file
var Header = []string{"animal", "hour", "date"}

// Sink persists a result store
type Sink interface {
	Save(ctx context.Context, store *result.Store) error
}

// ExpandPath expands a leading ~/ to the user's home directory
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// CSVFile writes results to a CSV file, replacing any previous content
type CSVFile struct {
	Path string
}

// Save creates the file and its parent directories and writes every result in date order
func (f *CSVFile) Save(ctx context.Context, store *result.Store) error {
	path, err := ExpandPath(f.Path)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}

	if err := WriteCSV(file, store); err != nil {
		file.Close()
		return err
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}

	return nil
}

// WriteCSV writes the header and one animal,hour,date row per stored result
func WriteCSV(w io.Writer, store *result.Store) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, r := range store.Results() {
		if err := writer.Write([]string{r.Animal, r.Hour, r.DateString()}); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing rows: %w", err)
	}

	return nil
}

// ReadCSV reads a results file written by WriteCSV
func ReadCSV(r io.Reader) ([]result.LotteryResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(Header)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading header: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i, column := range Header {
		if strings.TrimSpace(header[i]) != column {
			return nil, fmt.Errorf("unexpected header %v, want %v", header, Header)
		}
	}

	var results []result.LotteryResult
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}

		day, err := result.ParseDay(record[2])
		if err != nil {
			line, _ := reader.FieldPos(2)
			return nil, fmt.Errorf("line %d: invalid date %q: %w", line, record[2], err)
		}

		results = append(results, result.LotteryResult{
			Date:   day,
			Hour:   record[1],
			Animal: record[0],
		})
	}

	return results, nil
}

// LoadCSV reads a results file from disk
func LoadCSV(path string) ([]result.LotteryResult, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening results file: %w", err)
	}
	defer file.Close()

	return ReadCSV(file)
}
