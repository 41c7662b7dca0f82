package utils

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestGetCacheFileName(t *testing.T) {
	tests := []struct {
		url, prefix, expected string
	}{
		{"https://example.com/data/events.bin", "", "events.bin"},
		{"https://example.com/data/events.bin?token=1", "[EVENTS]", "EVENTS_events.bin"},
		{"https://example.com/data/seq 1/", "[MY DATA]", "MY_DATA_seq 1"},
	}
	for _, tt := range tests {
		if got := GetCacheFileName(tt.url, tt.prefix); got != tt.expected {
			t.Errorf("GetCacheFileName(%q, %q): expected %q, got %q", tt.url, tt.prefix, tt.expected, got)
		}
	}
}

func TestIsURL(t *testing.T) {
	if !IsURL("https://example.com/a") || !IsURL("http://example.com/a") {
		t.Errorf("Expected http(s) paths to be URLs")
	}
	if IsURL("data/events.txt") {
		t.Errorf("Expected local path not to be a URL")
	}
}

func TestGetCachedReaderDownloadsOnce(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.bin" {
			http.NotFound(w, r)
			return
		}
		hits++
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	for i := 0; i < 2; i++ {
		rc, err := GetCachedReader(srv.URL+"/events.bin", dir, true, "[EVENTS]")
		if err != nil {
			t.Fatalf("GetCachedReader failed: %v", err)
		}
		b, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != "payload" {
			t.Errorf("Expected payload, got %q", b)
		}
	}
	if hits != 1 {
		t.Errorf("Expected 1 download, got %d", hits)
	}
	if _, err := os.Stat(filepath.Join(dir, "EVENTS_events.bin")); err != nil {
		t.Errorf("Expected cached file: %v", err)
	}

	if _, err := GetCachedReader(srv.URL+"/missing.bin", dir, true, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := GetCachedReader(srv.URL+"/missing.bin", dir, false, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound when streaming, got %v", err)
	}
}
