// Package utils provides cached downloads of remote datasets and a
// badger-backed chunk store for decoded data.
package utils

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

var ErrNotFound = errors.New("file not found on server")

// DefaultCacheDir is used when no cache directory is configured.
const DefaultCacheDir = "data/cache"

type progressWriter struct {
	io.Writer
	total uint64
	last  uint64
	label string
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.total += uint64(n)
	if pw.total-pw.last > 5*1024*1024 { // Log every 5MB
		log.Printf("%s: Downloaded %s", pw.label, humanize.Bytes(pw.total))
		pw.last = pw.total
	}
	return n, err
}

// IsURL reports whether path names a remote http(s) resource.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// DownloadFile downloads a file from a URL to a local path safely.
func DownloadFile(url, path string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Error closing response body: %v", err)
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	// Temp file in the same directory so the rename is atomic
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()
	defer func() {
		if err := os.Remove(tmpName); err != nil && !os.IsNotExist(err) {
			log.Printf("Error removing temp file %s: %v", tmpName, err)
		}
	}()

	pw := &progressWriter{Writer: tmpFile, label: filepath.Base(path)}
	if _, err := io.Copy(pw, resp.Body); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	log.Printf("%s: Download complete (%s)", filepath.Base(path), humanize.Bytes(pw.total))
	return os.Rename(tmpName, path)
}

// GetCacheFileName returns the local file name for a URL. The query string
// is dropped and the log prefix is folded in to keep datasets from
// different sources apart.
func GetCacheFileName(url, logPrefix string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	urlParts := strings.Split(strings.TrimRight(url, "/"), "/")
	fileName := urlParts[len(urlParts)-1]

	sanitizedPrefix := strings.Trim(logPrefix, "[]")
	sanitizedPrefix = strings.ReplaceAll(sanitizedPrefix, " ", "_")
	if sanitizedPrefix != "" {
		fileName = sanitizedPrefix + "_" + fileName
	}
	return fileName
}

// GetCachedReader returns a reader for the given URL. With useCache the
// file is downloaded once into cacheDir and served from disk afterwards.
func GetCachedReader(url, cacheDir string, useCache bool, logPrefix string) (io.ReadCloser, error) {
	if useCache {
		path, err := CachedPath(url, cacheDir, logPrefix)
		if err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache: %w", err)
		}
		return f, nil
	}

	log.Printf("%s Streaming from %s", logPrefix, url)
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Error closing response body: %v", err)
		}
		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}
	return resp.Body, nil
}

// CachedPath downloads url into cacheDir unless it is already there and
// returns the local path.
func CachedPath(url, cacheDir, logPrefix string) (string, error) {
	if cacheDir == "" {
		cacheDir = DefaultCacheDir
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache dir: %w", err)
	}
	localPath := filepath.Join(cacheDir, GetCacheFileName(url, logPrefix))
	if _, err := os.Stat(localPath); os.IsNotExist(err) {
		log.Printf("%s Downloading %s", logPrefix, url)
		if err := DownloadFile(url, localPath); err != nil {
			return "", err
		}
	} else {
		log.Printf("%s Using cached file: %s", logPrefix, localPath)
	}
	return localPath, nil
}
