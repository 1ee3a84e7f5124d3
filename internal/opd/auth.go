// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package opd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
)

// Token patterns for non-JSON auth responses: a JSON-looking key-value pair
// embedded in text, then a query-style pair.
var (
	tokenKeyPattern   = regexp.MustCompile(`"(?:access_)?token"\s*:\s*"([^"]+)"`)
	tokenQueryPattern = regexp.MustCompile(`token=([^&\s]+)`)
)

// Authenticate exchanges Basic credentials for a bearer token via the
// getAuth endpoint and stores it on the client for subsequent calls.
// The endpoint has been observed returning JSON objects, bare JSON strings,
// and non-JSON text, so extraction works through an ordered fallback chain.
func (c *Client) Authenticate(ctx context.Context, username, password string) error {
	url := c.BaseURL + "/getAuth"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &AuthError{Reason: err.Error()}
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.SetBasicAuth(username, password)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &AuthError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &AuthError{Reason: fmt.Sprintf("reading getAuth response: %v", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return &AuthError{Reason: fmt.Sprintf("getAuth returned HTTP %d", resp.StatusCode)}
	}

	token := extractToken(body)
	if token == "" {
		preview := string(body)
		if len(preview) > 300 {
			preview = preview[:300]
		}
		return &AuthError{Reason: fmt.Sprintf("no token in getAuth response: %q", preview)}
	}

	c.token = token
	return nil
}

// extractToken applies the ordered fallback chain:
//  1. JSON object: first non-empty of "token", "access_token", "data".
//  2. JSON bare string: the trimmed value.
//  3. Non-JSON text: key-value regex, then query-style regex, then the whole
//     trimmed body.
//
// An empty return means no candidate was found.
func extractToken(body []byte) string {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err == nil {
		switch v := decoded.(type) {
		case map[string]any:
			return firstString(v, "token", "access_token", "data")
		case string:
			return strings.TrimSpace(v)
		default:
			return ""
		}
	}

	if m := tokenKeyPattern.FindSubmatch(body); m != nil {
		return string(m[1])
	}
	if m := tokenQueryPattern.FindSubmatch(body); m != nil {
		return string(m[1])
	}
	return strings.TrimSpace(string(body))
}
