// Package storage writes collected lottery results to their destinations.
//
// The primary sink is a CSV file with the columns animal, hour and date, one row
// per draw in date order. An optional SQLite database keeps results across runs,
// keyed by date and hour. ReadCSV reads a results file back for analysis.
package storage
