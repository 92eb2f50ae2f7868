// Package dataset loads the external tables the simulator depends on
// (centroids, calibration, historical patient data, experiment exports)
// and writes replication results back out.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is a header row plus string cells, as read from CSV or XLSX.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadTable reads a .csv file or the first sheet of a .xlsx file. The first
// row is the header; at least one data row is required.
func ReadTable(path string) (*Table, error) {
	var (
		rows [][]string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx":
		rows, err = readXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported file type %q; valid: .csv, .xlsx", ext)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: need a header row and at least one data row, got %d rows", path, len(rows))
	}
	if len(rows[0]) == 0 {
		return nil, fmt.Errorf("%s: header row is empty", path)
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return &Table{Header: header, Rows: rows[1:]}, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: workbook has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// Cell returns row[col], or "" when the row is short.
func (t *Table) Cell(row, col int) string {
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// normalize folds a header for alias matching.
func normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Index returns the column index of the first header matching any alias,
// or -1.
func (t *Table) Index(aliases ...string) int {
	for _, a := range aliases {
		want := normalize(a)
		for i, h := range t.Header {
			if normalize(h) == want {
				return i
			}
		}
	}
	return -1
}
