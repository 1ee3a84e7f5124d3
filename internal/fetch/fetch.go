// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch orchestrates the per-case download workflow: resolve the
// case, list its result files, download each file, and record a run-log row.
// Cases are processed sequentially in input order and failures are isolated
// per case.
package fetch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/opd-fetch/internal/opd"
	"github.com/pdiddy/opd-fetch/internal/runlog"
	"github.com/pdiddy/opd-fetch/pkg/types"
)

// BatchResult holds the outcome of a batch fetch run.
type BatchResult struct {
	OK         int
	Failed     int
	Downloaded int
}

// Total returns the total number of cases processed.
func (r BatchResult) Total() int {
	return r.OK + r.Failed
}

// HasFailures reports whether any cases failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// unsafeChars matches characters not allowed in Windows filenames.
var unsafeChars = regexp.MustCompile(`[<>:"/\\|?*\n\r\t]`)

// SafeFilename replaces filesystem-unsafe characters with underscores and
// trims surrounding whitespace.
func SafeFilename(name string) string {
	return strings.TrimSpace(unsafeChars.ReplaceAllString(name, "_"))
}

// matchesKeywords reports whether name passes the allow-list: empty list
// admits everything, otherwise the name must contain at least one keyword,
// case-insensitively.
func matchesKeywords(name string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, k := range keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// FetchCase processes one publication number end to end and returns its
// run-log row. Errors never escape: every failure path produces a FAIL row
// with the causing message as reason.
func FetchCase(ctx context.Context, client *opd.Client, pubNo string, cfg types.FetchConfig, w io.Writer) runlog.Row {
	caseID := opd.NormalizeCaseID(pubNo)
	row := runlog.Row{PublicationNo: pubNo, CaseID: caseID, Status: runlog.StatusFail}

	caseNo, err := client.ResolveCase(ctx, caseID)
	if err != nil {
		row.Reason = err.Error()
		return row
	}
	if caseNo == "" {
		row.Reason = "no case number"
		return row
	}
	row.CaseNo = caseNo

	items, err := client.ListFiles(ctx, caseNo)
	if err != nil {
		row.Reason = err.Error()
		return row
	}
	if len(items) == 0 {
		row.Reason = "no downloadable files"
		return row
	}

	downloaded := 0
	var files []string
	for _, item := range items {
		if !matchesKeywords(item.Name, cfg.IncludeKeywords) {
			continue
		}

		dest := filepath.Join(cfg.OutputDir, SafeFilename(pubNo+"_"+item.Name))
		skipped, err := client.DownloadFile(ctx, item.Ref, dest)
		if err != nil {
			row.Reason = err.Error()
			return row
		}
		if skipped {
			fmt.Fprintf(w, "  exists: %s\n", filepath.Base(dest))
		}
		downloaded++
		files = append(files, filepath.Base(dest))
	}

	row.Status = runlog.StatusOK
	row.Downloaded = downloaded

	if cfg.MetadataDir != "" {
		record := types.CaseRecord{
			PublicationNo: pubNo,
			CaseID:        caseID,
			CaseNo:        caseNo,
			Files:         files,
			FetchedAt:     time.Now().UTC(),
		}
		if err := writeCaseRecord(record, filepath.Join(cfg.MetadataDir, caseID+".yaml")); err != nil {
			fmt.Fprintf(w, "  warning: writing case record: %v\n", err)
		}
	}

	return row
}

// FetchBatch processes publication numbers sequentially, printing per-case
// status and appending one row per case to the returned log. It continues
// after individual failures and inserts the configured delay between cases.
// The only errors it returns are output-directory creation failures and
// context cancellation, both of which end the run early.
func FetchBatch(ctx context.Context, client *opd.Client, pubNos []string, cfg types.FetchConfig, w io.Writer) (*runlog.Log, BatchResult, error) {
	dirs := []string{cfg.OutputDir}
	if cfg.MetadataDir != "" {
		dirs = append(dirs, cfg.MetadataDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, BatchResult{}, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	log := &runlog.Log{}
	var result BatchResult
	for i, pubNo := range pubNos {
		if err := client.Throttle(ctx); err != nil {
			return log, result, err
		}

		fmt.Fprintf(w, "[%d/%d] %s\n", i+1, len(pubNos), pubNo)
		row := FetchCase(ctx, client, pubNo, cfg, w)
		log.Append(row)

		if row.Status == runlog.StatusOK {
			result.OK++
			result.Downloaded += row.Downloaded
			fmt.Fprintf(w, "  ok: case %s, %d file(s)\n", row.CaseNo, row.Downloaded)
		} else {
			result.Failed++
			fmt.Fprintf(w, "  failed: %s\n", row.Reason)
		}
	}

	fmt.Fprintf(w, "\nBatch summary: %d ok, %d failed, %d file(s) downloaded (total cases: %d)\n",
		result.OK, result.Failed, result.Downloaded, result.Total())
	return log, result, nil
}

// writeCaseRecord writes a CaseRecord to a YAML file.
func writeCaseRecord(record types.CaseRecord, path string) error {
	data, err := yaml.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshaling case record: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
