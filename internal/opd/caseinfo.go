// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package opd

import (
	"context"
	"net/url"
	"regexp"
	"strings"
)

// caseIDPattern matches a publication number: country prefix, digit run,
// kind code letter with optional trailing digits (e.g. "TW202528785A").
var caseIDPattern = regexp.MustCompile(`^(?i)[A-Z]+(\d+)[A-Z]\d*$`)

// NormalizeCaseID reduces a publication number to its bare numeric case id
// ("TW202528785A" -> "202528785"). Inputs that do not match the pattern are
// returned unchanged, so an already-normalized id passes through and the API
// gets to judge anything unexpected. Idempotent.
func NormalizeCaseID(pubNo string) string {
	s := strings.TrimSpace(pubNo)
	if m := caseIDPattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// ResolveCase queries the case-info endpoint and returns the canonical case
// number. The response is consumed only for the "caseNo" field ("caseNO" in
// older deployments); an empty return with nil error means the case exists
// but carries no case number.
func (c *Client) ResolveCase(ctx context.Context, caseID string) (string, error) {
	var info map[string]any
	if err := c.getJSON(ctx, c.BaseURL+"/getCaseInfo/"+url.PathEscape(caseID), &info); err != nil {
		return "", err
	}
	return firstString(info, "caseNo", "caseNO"), nil
}
