// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runlog accumulates per-case status rows and writes the CSV run log.
package runlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Row status values.
const (
	StatusOK   = "OK"
	StatusFail = "FAIL"
)

// Row is one per-case record of the run log.
type Row struct {
	PublicationNo string
	CaseID        string
	CaseNo        string
	Status        string
	Downloaded    int
	Reason        string
}

// Log is an in-memory ordered list of per-case rows. Rows are appended as
// cases complete and never reordered, so the log mirrors input order.
type Log struct {
	rows []Row
}

// Append adds a row to the log.
func (l *Log) Append(r Row) {
	l.rows = append(l.rows, r)
}

// Rows returns the rows in append order.
func (l *Log) Rows() []Row {
	return l.rows
}

// Len returns the number of rows.
func (l *Log) Len() int {
	return len(l.rows)
}

var header = []string{"publication_no", "case_id", "case_no", "status", "downloaded_files", "reason"}

// WriteCSV writes the log to path as UTF-8 CSV with a BOM, so spreadsheet
// applications detect the encoding. If path cannot be written (commonly
// because the previous log is still open in Excel) the log is written to a
// timestamp-suffixed alternate path instead. Returns the path actually
// written.
func (l *Log) WriteCSV(path string) (string, error) {
	if err := l.writeFile(path); err == nil {
		return path, nil
	}

	alt := alternatePath(path, time.Now())
	if err := l.writeFile(alt); err != nil {
		return "", fmt.Errorf("writing run log: %w", err)
	}
	return alt, nil
}

func (l *Log) writeFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		f.Close()
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	for _, r := range l.rows {
		downloaded := ""
		if r.Status == StatusOK {
			downloaded = strconv.Itoa(r.Downloaded)
		}
		record := []string{r.PublicationNo, r.CaseID, r.CaseNo, r.Status, downloaded, r.Reason}
		if err := w.Write(record); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// alternatePath inserts a timestamp before the extension:
// "download_log.csv" -> "download_log_20260829_153000.csv".
func alternatePath(path string, t time.Time) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s_%s%s", base, t.Format("20060102_150405"), ext)
}
