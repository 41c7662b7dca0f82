// Package sources loads event-camera recordings, their RGB frames and the
// viewer configuration from disk or over HTTP.
package sources

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/sudorandom/event-viewer/pkg/eventview"
	"github.com/sudorandom/event-viewer/pkg/utils"
)

// MissingOffsetWarning is reported when no t_offset was configured and the
// sidecar offset file does not exist. The offset defaults to zero.
type MissingOffsetWarning struct {
	Path string
}

func (w MissingOffsetWarning) Error() string {
	return fmt.Sprintf("no t_offset for %s, using 0", w.Path)
}

// EventOptions controls how an event file is loaded.
type EventOptions struct {
	Path string
	// TOffset overrides the sidecar "<Path>.offset" file when set.
	TOffset *int64
	// Downsample keeps every Nth event. Values below 2 keep all events.
	Downsample int
	// CacheDir receives downloads of remote paths.
	CacheDir string
	// Cache, when set, stores decoded local files for reuse.
	Cache *DatasetCache
}

// EventFile is a loaded recording.
type EventFile struct {
	Events   []eventview.Event
	TOffset  int64
	Warnings []error
}

// LoadEvents reads, decodes and downsamples an event file.
func LoadEvents(opts EventOptions) (*EventFile, error) {
	started := time.Now()
	events, err := readEvents(opts)
	if err != nil {
		return nil, fmt.Errorf("load events %s: %w", opts.Path, err)
	}
	if n := opts.Downsample; n > 1 {
		before := len(events)
		events = Downsample(events, n)
		log.Printf("[EVENTS] Downsampled by %d: %s -> %s events", n, humanize.Comma(int64(before)), humanize.Comma(int64(len(events))))
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("load events %s: %w", opts.Path, eventview.ErrEmptyDataset)
	}

	ef := &EventFile{Events: events}
	if opts.TOffset != nil {
		ef.TOffset = *opts.TOffset
	} else {
		off, found, err := readOffset(opts)
		if err != nil {
			return nil, err
		}
		ef.TOffset = off
		if !found {
			warn := MissingOffsetWarning{Path: opts.Path}
			log.Printf("[EVENTS] Warning: %v", warn)
			ef.Warnings = append(ef.Warnings, warn)
		}
	}
	log.Printf("[EVENTS] Loaded %s events (t_offset %d) in %v", humanize.Comma(int64(len(events))), ef.TOffset, time.Since(started).Round(time.Millisecond))
	return ef, nil
}

// Downsample keeps the events at indices 0, n, 2n and so on.
func Downsample(events []eventview.Event, n int) []eventview.Event {
	if n <= 1 {
		return events
	}
	out := make([]eventview.Event, 0, len(events)/n+1)
	for i := 0; i < len(events); i += n {
		out = append(out, events[i])
	}
	return out
}

func readEvents(opts EventOptions) ([]eventview.Event, error) {
	path := opts.Path
	if utils.IsURL(path) {
		rc, err := utils.GetCachedReader(path, opts.CacheDir, true, "[EVENTS]")
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return decodeEvents(rc, path)
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	var key string
	if opts.Cache != nil {
		key = CacheKey(path, fi)
		events, ok, err := opts.Cache.Load(key)
		if err != nil {
			log.Printf("[CACHE] Ignoring unreadable cache entry: %v", err)
		} else if ok {
			return events, nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	log.Printf("[EVENTS] Reading %s (%s)", path, humanize.Bytes(uint64(fi.Size())))
	events, err := decodeEvents(f, path)
	if err != nil {
		return nil, err
	}
	if opts.Cache != nil {
		if err := opts.Cache.Store(key, events); err != nil {
			log.Printf("[CACHE] %v", err)
		}
	}
	return events, nil
}

// decodeEvents picks the decompressor and record format from the name.
func decodeEvents(r io.Reader, name string) ([]eventview.Event, error) {
	name = strings.ToLower(name)
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	switch filepath.Ext(name) {
	case ".gz":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return decodeEvents(zr, strings.TrimSuffix(name, ".gz"))
	case ".zst":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return decodeEvents(zr, strings.TrimSuffix(name, ".zst"))
	case ".bin", ".evt":
		return ReadBinary(r)
	}
	return ReadText(r)
}

func isSeparator(r rune) bool {
	return r == ',' || unicode.IsSpace(r)
}

// ReadText parses "t x y p" lines. Blank lines and lines starting with '#'
// are skipped. A t containing a decimal point is in seconds, otherwise in
// microseconds. Any positive polarity is ON.
func ReadText(r io.Reader) ([]eventview.Event, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	var events []eventview.Event
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		e, err := parseEventLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", line+1, err)
	}
	return events, nil
}

func parseEventLine(text string) (eventview.Event, error) {
	fields := strings.FieldsFunc(text, isSeparator)
	if len(fields) != 4 {
		return eventview.Event{}, fmt.Errorf("expected 4 fields (t x y p), got %d", len(fields))
	}
	t, err := parseTimestamp(fields[0])
	if err != nil {
		return eventview.Event{}, err
	}
	x, err := strconv.ParseUint(fields[1], 10, 16)
	if err != nil {
		return eventview.Event{}, fmt.Errorf("bad x %q", fields[1])
	}
	y, err := strconv.ParseUint(fields[2], 10, 16)
	if err != nil {
		return eventview.Event{}, fmt.Errorf("bad y %q", fields[2])
	}
	p, err := strconv.ParseInt(fields[3], 10, 8)
	if err != nil {
		return eventview.Event{}, fmt.Errorf("bad polarity %q", fields[3])
	}
	e := eventview.Event{T: t, X: uint16(x), Y: uint16(y)}
	if p > 0 {
		e.Polarity = 1
	}
	return e, nil
}

func parseTimestamp(s string) (uint64, error) {
	if !strings.ContainsAny(s, ".eE") {
		t, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("bad timestamp %q", s)
		}
		return t, nil
	}
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil || sec < 0 || math.IsInf(sec, 0) || math.IsNaN(sec) {
		return 0, fmt.Errorf("bad timestamp %q", s)
	}
	return uint64(math.Round(sec * 1e6)), nil
}

// readOffset reads the sidecar "<path>.offset". found is false when the
// sidecar does not exist.
func readOffset(opts EventOptions) (off int64, found bool, err error) {
	sidecar := offsetPath(opts.Path)
	var rc io.ReadCloser
	if utils.IsURL(sidecar) {
		rc, err = utils.GetCachedReader(sidecar, opts.CacheDir, true, "[EVENTS]")
		if errors.Is(err, utils.ErrNotFound) {
			err = os.ErrNotExist
		}
	} else {
		rc, err = os.Open(sidecar)
	}
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read t_offset: %w", err)
	}
	defer rc.Close()
	b, err := io.ReadAll(io.LimitReader(rc, 64))
	if err != nil {
		return 0, false, fmt.Errorf("read t_offset: %w", err)
	}
	off, err = strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse t_offset in %s: %w", sidecar, err)
	}
	return off, true, nil
}

func offsetPath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 && utils.IsURL(path) {
		return path[:i] + ".offset" + path[i:]
	}
	return path + ".offset"
}
