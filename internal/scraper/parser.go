package scraper

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pfrederiksen/animalitos/internal/result"
)

const (
	// DefaultTableSelector locates the results table on a period page
	DefaultTableSelector = "div.resultados.table-responsive > table"

	// HeaderDateLayout is the day/month/year format of the table header date
	HeaderDateLayout = "2/1/2006"

	// DaysPerRow is the number of value cells that make up one hour row
	DaysPerRow = 7
)

var (
	ErrMissingStartDate  = errors.New("missing start date")
	ErrMissingHourLabels = errors.New("missing hour labels")
	ErrMalformedTable    = errors.New("malformed results table")
)

// ParseError reports a page whose structure did not match the expected table
type ParseError struct {
	Err    error
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Detail)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// WeekPage is the parsed content of one period page
type WeekPage struct {
	StartDate time.Time
	Hours     []string
	// Rows holds the value cells in groups of DaysPerRow; the last group may be shorter.
	Rows [][]string
}

// Results pairs each row with the hour label at the same position and assigns
// its values to consecutive days from StartDate. Pairing stops at the shorter of
// Hours and Rows, and sentinel values are skipped.
func (p *WeekPage) Results() []result.LotteryResult {
	n := min(len(p.Rows), len(p.Hours))

	results := make([]result.LotteryResult, 0, n*DaysPerRow)
	for i := 0; i < n; i++ {
		day := p.StartDate
		for _, animal := range p.Rows[i] {
			if animal != result.Sentinel {
				results = append(results, result.LotteryResult{
					Date:   day,
					Hour:   p.Hours[i],
					Animal: animal,
				})
			}
			day = day.AddDate(0, 0, 1)
		}
	}
	return results
}

// Parser extracts WeekPages from results page HTML
type Parser struct {
	tableSelector string
}

// NewParser creates a Parser for the table matched by tableSelector.
// An empty selector uses DefaultTableSelector.
func NewParser(tableSelector string) *Parser {
	if tableSelector == "" {
		tableSelector = DefaultTableSelector
	}
	return &Parser{tableSelector: tableSelector}
}

// Parse reads one period page
func (p *Parser) Parse(r io.Reader) (*WeekPage, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	table := doc.Find(p.tableSelector).First()
	if table.Length() == 0 {
		return nil, &ParseError{Err: ErrMalformedTable, Detail: fmt.Sprintf("no element matches %q", p.tableSelector)}
	}

	start, err := startDate(table)
	if err != nil {
		return nil, err
	}

	hours := hourLabels(table)
	if len(hours) == 0 {
		return nil, &ParseError{Err: ErrMissingHourLabels, Detail: "table body has no rows"}
	}

	values := valueCells(table)
	if len(values) == 0 {
		return nil, &ParseError{Err: ErrMalformedTable, Detail: "table body has no value cells"}
	}

	return &WeekPage{
		StartDate: start,
		Hours:     hours,
		Rows:      chunk(values, DaysPerRow),
	}, nil
}

// startDate reads the first header date of the table
func startDate(table *goquery.Selection) (time.Time, error) {
	header := table.Find("thead > tr > th time").First()
	if header.Length() == 0 {
		return time.Time{}, &ParseError{Err: ErrMissingStartDate, Detail: "no time element in table header"}
	}

	text, ok := lastText(header)
	if !ok {
		return time.Time{}, &ParseError{Err: ErrMissingStartDate, Detail: "empty time element"}
	}

	t, err := time.Parse(HeaderDateLayout, text)
	if err != nil {
		return time.Time{}, &ParseError{Err: ErrMissingStartDate, Detail: fmt.Sprintf("unparsable date %q", text)}
	}
	return result.Day(t), nil
}

// hourLabels returns the first text of the leading cell of every body row
func hourLabels(table *goquery.Selection) []string {
	var hours []string
	table.Find("tbody > tr").Each(func(i int, row *goquery.Selection) {
		// Keep blank labels so hours stay aligned with their rows.
		label, _ := firstText(row.Children().First())
		hours = append(hours, label)
	})
	return hours
}

// valueCells returns the last text of every body cell.
// Some cells prefix the animal with an icon label, so the trailing text wins.
func valueCells(table *goquery.Selection) []string {
	var values []string
	table.Find("tbody > tr > td").Each(func(i int, cell *goquery.Selection) {
		value, ok := lastText(cell)
		if !ok {
			value = result.Sentinel
		}
		values = append(values, value)
	})
	return values
}

func firstText(sel *goquery.Selection) (string, bool) {
	texts := textNodes(sel)
	if len(texts) == 0 {
		return "", false
	}
	return texts[0], true
}

func lastText(sel *goquery.Selection) (string, bool) {
	texts := textNodes(sel)
	if len(texts) == 0 {
		return "", false
	}
	return texts[len(texts)-1], true
}

// textNodes collects the trimmed, non-blank descendant text nodes of sel in document order
func textNodes(sel *goquery.Selection) []string {
	var texts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				texts = append(texts, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return texts
}

// chunk splits values into consecutive groups of size; the final group may be shorter
func chunk(values []string, size int) [][]string {
	groups := make([][]string, 0, (len(values)+size-1)/size)
	for len(values) > 0 {
		n := min(size, len(values))
		groups = append(groups, values[:n:n])
		values = values[n:]
	}
	return groups
}
