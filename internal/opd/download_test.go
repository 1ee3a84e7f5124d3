// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package opd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

const fakePDFContent = "%PDF-1.4 fake"

func TestDownloadFileBareID(t *testing.T) {
	var gotPath, gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprint(w, fakePDFContent)
	}))
	defer ts.Close()

	c := NewClient(WithBaseURL(ts.URL), WithHTTPClient(ts.Client()))
	c.token = "tok-dl"

	dest := filepath.Join(t.TempDir(), "TW1_case.pdf")
	skipped, err := c.DownloadFile(context.Background(), "0900238E", dest)
	if err != nil {
		t.Fatalf("DownloadFile: %v", err)
	}
	if skipped {
		t.Error("expected download, got skipped")
	}
	if gotPath != "/getfile/0900238E" {
		t.Errorf("path = %q, want /getfile/0900238E", gotPath)
	}
	if gotAuth != "Bearer tok-dl" {
		t.Errorf("Authorization = %q, want Bearer tok-dl", gotAuth)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading download: %v", err)
	}
	if string(data) != fakePDFContent {
		t.Errorf("content = %q, want %q", string(data), fakePDFContent)
	}
}

func TestDownloadFileFullURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/direct/file.pdf" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, fakePDFContent)
	}))
	defer ts.Close()

	// Base URL points elsewhere; the full reference URL must win.
	c := NewClient(WithBaseURL("http://unused.invalid"), WithHTTPClient(ts.Client()))

	dest := filepath.Join(t.TempDir(), "direct.pdf")
	if _, err := c.DownloadFile(context.Background(), ts.URL+"/direct/file.pdf", dest); err != nil {
		t.Fatalf("DownloadFile: %v", err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("file missing: %v", err)
	}
}

func TestDownloadFileSkipsExisting(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, fakePDFContent)
	}))
	defer ts.Close()

	dest := filepath.Join(t.TempDir(), "existing.pdf")
	if err := os.WriteFile(dest, []byte("already here"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewClient(WithBaseURL(ts.URL), WithHTTPClient(ts.Client()))
	skipped, err := c.DownloadFile(context.Background(), "ID1", dest)
	if err != nil {
		t.Fatalf("DownloadFile: %v", err)
	}
	if !skipped {
		t.Error("expected skipped for existing non-empty file")
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Errorf("server calls = %d, want 0", calls)
	}

	data, _ := os.ReadFile(dest)
	if string(data) != "already here" {
		t.Errorf("existing file was overwritten: %q", string(data))
	}
}

func TestDownloadFileEmptyExistingIsRedownloaded(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, fakePDFContent)
	}))
	defer ts.Close()

	dest := filepath.Join(t.TempDir(), "empty.pdf")
	if err := os.WriteFile(dest, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewClient(WithBaseURL(ts.URL), WithHTTPClient(ts.Client()))
	skipped, err := c.DownloadFile(context.Background(), "ID2", dest)
	if err != nil {
		t.Fatalf("DownloadFile: %v", err)
	}
	if skipped {
		t.Error("zero-byte file should not be skipped")
	}
	data, _ := os.ReadFile(dest)
	if string(data) != fakePDFContent {
		t.Errorf("content = %q, want %q", string(data), fakePDFContent)
	}
}

func TestDownloadFileErrorAfterRetries(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := NewClient(WithBaseURL(ts.URL), WithHTTPClient(ts.Client()), WithMaxAttempts(2))
	dest := filepath.Join(t.TempDir(), "fail.pdf")

	_, err := c.DownloadFile(context.Background(), "ID3", dest)
	if err == nil {
		t.Fatal("expected error")
	}
	var dlErr *DownloadError
	if !errors.As(err, &dlErr) {
		t.Fatalf("error type = %T, want *DownloadError", err)
	}
	if !strings.Contains(err.Error(), "fail.pdf") {
		t.Errorf("error should name the destination file: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("no file should be written on failure")
	}
}
