package sources

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/sudorandom/event-viewer/pkg/eventview"
)

var sampleEvents = []eventview.Event{
	{T: 100, X: 1, Y: 2, Polarity: 1},
	{T: 150, X: 639, Y: 479, Polarity: 0},
	{T: 200, X: 10, Y: 20, Polarity: 1},
}

func TestReadText(t *testing.T) {
	input := `# t x y p
100 1 2 1

150,639,479,0
0.0002 10 20 1
`
	got, err := ReadText(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadText failed: %v", err)
	}
	if diff := cmp.Diff(sampleEvents, got); diff != "" {
		t.Errorf("ReadText mismatch (-want +got):\n%s", diff)
	}
}

func TestReadTextNegativePolarityIsOff(t *testing.T) {
	got, err := ReadText(strings.NewReader("5 1 1 -1\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Polarity != 0 {
		t.Errorf("Expected polarity 0, got %d", got[0].Polarity)
	}
}

func TestReadTextErrors(t *testing.T) {
	tests := []struct {
		name, input, want string
	}{
		{"too few fields", "1 2 3\n", "line 1"},
		{"bad x", "# header\n1 a 3 1\n", "line 2"},
		{"x out of range", "1 70000 3 1\n", "bad x"},
		{"negative seconds", "-0.5 1 1 1\n", "bad timestamp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadText(strings.NewReader(tt.input))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteBinary(&buf, sampleEvents); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != len(sampleEvents)*RecordSize {
		t.Fatalf("Expected %d bytes, got %d", len(sampleEvents)*RecordSize, buf.Len())
	}
	got, err := ReadBinary(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(sampleEvents, got); diff != "" {
		t.Errorf("ReadBinary mismatch (-want +got):\n%s", diff)
	}
}

func TestReadBinaryTruncated(t *testing.T) {
	b := EncodeRecords(sampleEvents)
	if _, err := ReadBinary(bytes.NewReader(b[:len(b)-3])); err == nil {
		t.Errorf("Expected error for truncated record")
	}
	if _, err := DecodeRecords(nil, b[:RecordSize+1]); err == nil {
		t.Errorf("Expected error for truncated chunk")
	}
}

func TestDownsample(t *testing.T) {
	events := make([]eventview.Event, 10)
	for i := range events {
		events[i].T = uint64(i)
	}
	got := Downsample(events, 3)
	var ts []uint64
	for _, e := range got {
		ts = append(ts, e.T)
	}
	if diff := cmp.Diff([]uint64{0, 3, 6, 9}, ts); diff != "" {
		t.Errorf("Downsample mismatch (-want +got):\n%s", diff)
	}
	if len(Downsample(events, 1)) != 10 || len(Downsample(events, 0)) != 10 {
		t.Errorf("Expected factors below 2 to keep every event")
	}
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadEventsFormats(t *testing.T) {
	dir := t.TempDir()
	text := []byte("100 1 2 1\n150 639 479 0\n200 10 20 1\n")
	bin := EncodeRecords(sampleEvents)

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, _ = gw.Write(text)
	_ = gw.Close()

	var zs bytes.Buffer
	zw, err := zstd.NewWriter(&zs)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = zw.Write(bin)
	_ = zw.Close()

	files := map[string][]byte{
		"events.txt":     text,
		"events.bin":     bin,
		"events.txt.gz":  gz.Bytes(),
		"events.bin.zst": zs.Bytes(),
	}
	for name, data := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			writeFile(t, path, data)
			ef, err := LoadEvents(EventOptions{Path: path})
			if err != nil {
				t.Fatalf("LoadEvents failed: %v", err)
			}
			if diff := cmp.Diff(sampleEvents, ef.Events); diff != "" {
				t.Errorf("Events mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadEventsOffset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.txt")
	writeFile(t, path, []byte("100 1 2 1\n"))

	ef, err := LoadEvents(EventOptions{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	if ef.TOffset != 0 {
		t.Errorf("Expected default offset 0, got %d", ef.TOffset)
	}
	var mw MissingOffsetWarning
	if len(ef.Warnings) != 1 || !errors.As(ef.Warnings[0], &mw) {
		t.Fatalf("Expected one MissingOffsetWarning, got %v", ef.Warnings)
	}

	writeFile(t, path+".offset", []byte("1700000000000000\n"))
	ef, err = LoadEvents(EventOptions{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	if ef.TOffset != 1700000000000000 || len(ef.Warnings) != 0 {
		t.Errorf("Expected sidecar offset without warnings, got %d %v", ef.TOffset, ef.Warnings)
	}

	explicit := int64(-5)
	ef, err = LoadEvents(EventOptions{Path: path, TOffset: &explicit})
	if err != nil {
		t.Fatal(err)
	}
	if ef.TOffset != -5 {
		t.Errorf("Expected explicit offset -5, got %d", ef.TOffset)
	}

	writeFile(t, path+".offset", []byte("abc"))
	if _, err := LoadEvents(EventOptions{Path: path}); err == nil {
		t.Errorf("Expected error for unparsable sidecar")
	}
}

func TestLoadEventsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.txt")
	writeFile(t, path, []byte("# nothing\n"))
	if _, err := LoadEvents(EventOptions{Path: path}); !errors.Is(err, eventview.ErrEmptyDataset) {
		t.Errorf("Expected ErrEmptyDataset, got %v", err)
	}
}

func TestLoadEventsUsesCache(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenDatasetCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	path := filepath.Join(dir, "events.txt")
	writeFile(t, path, []byte("100 1 2 1\n150 639 479 0\n200 10 20 1\n"))
	opts := EventOptions{Path: path, Cache: cache, Downsample: 2}
	first, err := LoadEvents(opts)
	if err != nil {
		t.Fatal(err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	cached, ok, err := cache.Load(CacheKey(path, fi))
	if err != nil || !ok {
		t.Fatalf("Expected cache hit, got ok=%v err=%v", ok, err)
	}
	// The cache holds the events before downsampling
	if diff := cmp.Diff(sampleEvents, cached); diff != "" {
		t.Errorf("Cached events mismatch (-want +got):\n%s", diff)
	}

	second, err := LoadEvents(opts)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first.Events, second.Events); diff != "" {
		t.Errorf("Cached load mismatch (-want +got):\n%s", diff)
	}
}

func TestDatasetCacheChunks(t *testing.T) {
	cache, err := OpenDatasetCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	events := make([]eventview.Event, ChunkRecords*2+5)
	for i := range events {
		events[i] = eventview.Event{T: uint64(i), X: uint16(i % 640), Y: uint16(i % 480), Polarity: uint8(i % 2)}
	}
	if err := cache.Store("k", events); err != nil {
		t.Fatal(err)
	}
	got, ok, err := cache.Load("k")
	if err != nil || !ok {
		t.Fatalf("Expected cache hit, got ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(events, got); diff != "" {
		t.Errorf("Chunked round trip mismatch (-want +got):\n%s", diff)
	}
}
