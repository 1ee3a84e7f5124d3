// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package opd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pdiddy/opd-fetch/internal/httputil"
)

func init() {
	// Keep retry backoff out of test runtime.
	httputil.RetryBaseDelay = 1 * time.Millisecond
}

func TestNormalizeCaseID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"tw publication number", "TW202528785A", "202528785"},
		{"kind code with digits", "TW202528785A1", "202528785"},
		{"lowercase prefix", "tw202528785a", "202528785"},
		{"other country prefix", "US20230012345A1", "20230012345"},
		{"already numeric passes through", "202528785", "202528785"},
		{"idempotent", NormalizeCaseID("TW202528785A"), "202528785"},
		{"no kind code passes through", "TW202528785", "TW202528785"},
		{"whitespace trimmed", "  TW202528785A  ", "202528785"},
		{"empty", "", ""},
		{"garbage passes through", "not-a-pubno", "not-a-pubno"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeCaseID(tt.input); got != tt.want {
				t.Errorf("NormalizeCaseID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveCase(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"caseNo field", `{"caseNo":"113108021","applicant":"ACME"}`, "113108021"},
		{"caseNO fallback", `{"caseNO":"113108021"}`, "113108021"},
		{"numeric caseNo", `{"caseNo":113108021}`, "113108021"},
		{"missing case number", `{"applicant":"ACME"}`, ""},
		{"empty object", `{}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			c := NewClient(WithBaseURL(ts.URL), WithHTTPClient(ts.Client()))
			got, err := c.ResolveCase(context.Background(), "202528785")
			if err != nil {
				t.Fatalf("ResolveCase: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveCase = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveCaseRequestPath(t *testing.T) {
	var gotPath, gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"caseNo":"1"}`)
	}))
	defer ts.Close()

	c := NewClient(WithBaseURL(ts.URL), WithHTTPClient(ts.Client()))
	c.token = "tok-1"
	if _, err := c.ResolveCase(context.Background(), "202528785"); err != nil {
		t.Fatalf("ResolveCase: %v", err)
	}
	if gotPath != "/getCaseInfo/202528785" {
		t.Errorf("path = %q, want /getCaseInfo/202528785", gotPath)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-1")
	}
}

func TestResolveCaseNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	c := NewClient(WithBaseURL(ts.URL), WithHTTPClient(ts.Client()))
	_, err := c.ResolveCase(context.Background(), "999")
	if err == nil {
		t.Fatal("expected error for HTTP 404")
	}
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Errorf("error type = %T, want *RequestError", err)
	}
}

func TestResolveCaseRetriesServerErrors(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"caseNo":"42"}`)
	}))
	defer ts.Close()

	c := NewClient(WithBaseURL(ts.URL), WithHTTPClient(ts.Client()), WithMaxAttempts(3))
	got, err := c.ResolveCase(context.Background(), "1")
	if err != nil {
		t.Fatalf("ResolveCase: %v", err)
	}
	if got != "42" {
		t.Errorf("ResolveCase = %q, want %q", got, "42")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}
