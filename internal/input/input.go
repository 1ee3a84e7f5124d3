// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package input loads publication numbers from spreadsheet or CSV files.
package input

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadColumn reads the file at path and returns the non-blank values of the
// named column, in file order. CSV and XLSX inputs are supported, selected
// by file extension. A missing file, an unsupported extension, or an absent
// column is an error; these abort a run before any case is processed.
func LoadColumn(path, column string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadCSV(path, column)
	case ".xlsx", ".xlsm":
		return loadXLSX(path, column)
	default:
		return nil, fmt.Errorf("unsupported input file %s: want .csv or .xlsx", path)
	}
}

func loadCSV(path, column string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("input file %s is empty", path)
	}
	return extractColumn(records, column, path)
}

func loadXLSX(path, column string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening input file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("input file %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("input file %s is empty", path)
	}
	return extractColumn(rows, column, path)
}

// extractColumn finds the column index in the header row and collects its
// trimmed non-blank values from the remaining rows. Short rows are skipped.
func extractColumn(rows [][]string, column, path string) ([]string, error) {
	header := rows[0]
	idx := -1
	for i, h := range header {
		if cleanHeader(h) == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		cleaned := make([]string, len(header))
		for i, h := range header {
			cleaned[i] = cleanHeader(h)
		}
		return nil, fmt.Errorf("input file %s has no column %q (columns: %v)", path, column, cleaned)
	}

	var values []string
	for _, row := range rows[1:] {
		if idx >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[idx]); v != "" {
			values = append(values, v)
		}
	}
	return values, nil
}

// cleanHeader trims whitespace and a UTF-8 BOM, which Excel-produced CSV
// files carry on the first header cell.
func cleanHeader(h string) string {
	return strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
}
