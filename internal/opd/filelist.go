// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package opd

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/opd-fetch/pkg/types"
)

// getfileIDPattern extracts the file id from a full download URL
// (".../getfile/0900238E" -> "0900238E").
var getfileIDPattern = regexp.MustCompile(`/getfile/([A-Za-z0-9]+)`)

// ListFiles queries the result-file-list endpoint for a case number and
// normalizes the response into (name, reference) pairs. An empty slice with
// nil error is a valid result meaning the case has no downloadable files.
func (c *Client) ListFiles(ctx context.Context, caseNo string) ([]types.FileItem, error) {
	var raw any
	if err := c.getJSON(ctx, c.BaseURL+"/getResultFileList/"+url.PathEscape(caseNo), &raw); err != nil {
		return nil, err
	}
	return parseFileItems(raw), nil
}

// parseFileItems handles the known response shapes in priority order.
//
// Newer deployments return {"resultFileList": [{..., "fileList": [...]}]}
// with per-file keys showName/fileName/name and fileURL/fileId/id. Older
// ones return either a bare array or an object wrapping the array under
// "data" or "files", with keys fileName/filename/name/showName and
// fileId/fileID/id/fileURL. Items missing a name or a reference are dropped.
func parseFileItems(raw any) []types.FileItem {
	if obj, ok := raw.(map[string]any); ok {
		if entries, ok := obj["resultFileList"].([]any); ok && len(entries) > 0 {
			var items []types.FileItem
			for _, e := range entries {
				entry, ok := e.(map[string]any)
				if !ok {
					continue
				}
				files, _ := entry["fileList"].([]any)
				for _, f := range files {
					m, ok := f.(map[string]any)
					if !ok {
						continue
					}
					name := firstString(m, "showName", "fileName", "name")
					ref := reduceFileRef(firstString(m, "fileURL", "fileId", "id"))
					if name != "" && ref != "" {
						items = append(items, types.FileItem{Name: name, Ref: ref})
					}
				}
			}
			return items
		}
	}

	var candidates []any
	switch v := raw.(type) {
	case []any:
		candidates = v
	case map[string]any:
		if l, ok := v["data"].([]any); ok {
			candidates = l
		} else if l, ok := v["files"].([]any); ok {
			candidates = l
		}
	}

	var items []types.FileItem
	for _, x := range candidates {
		m, ok := x.(map[string]any)
		if !ok {
			continue
		}
		name := firstString(m, "fileName", "filename", "name", "showName")
		ref := reduceFileRef(firstString(m, "fileId", "fileID", "id", "fileURL"))
		if name != "" && ref != "" {
			items = append(items, types.FileItem{Name: name, Ref: ref})
		}
	}
	return items
}

// reduceFileRef rewrites a full download URL to its trailing file id when it
// contains a /getfile/ segment. Bare ids and unrecognized URLs pass through.
func reduceFileRef(ref string) string {
	if !strings.HasPrefix(ref, "http") {
		return ref
	}
	if m := getfileIDPattern.FindStringSubmatch(ref); m != nil {
		return m[1]
	}
	return ref
}
