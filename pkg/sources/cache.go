package sources

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/sudorandom/event-viewer/pkg/eventview"
	"github.com/sudorandom/event-viewer/pkg/utils"
)

// ChunkRecords is the number of binary records per cached chunk.
const ChunkRecords = 1 << 16

// DatasetCache stores decoded event files so that text and compressed
// inputs are parsed only once.
type DatasetCache struct {
	store *utils.ChunkStore
}

func OpenDatasetCache(dir string) (*DatasetCache, error) {
	if dir == "" {
		dir = utils.DefaultCacheDir
	}
	store, err := utils.OpenChunkStore(filepath.Join(dir, "events.db"))
	if err != nil {
		return nil, fmt.Errorf("open dataset cache: %w", err)
	}
	return &DatasetCache{store: store}, nil
}

func (c *DatasetCache) Close() error {
	return c.store.Close()
}

// CacheKey identifies one version of a local file.
func CacheKey(path string, fi os.FileInfo) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return fmt.Sprintf("%s|%d|%d", abs, fi.Size(), fi.ModTime().UnixNano())
}

// Load returns the events cached under key. ok is false on a miss.
func (c *DatasetCache) Load(key string) (events []eventview.Event, ok bool, err error) {
	found, err := c.store.ForEachChunk(key, func(_ int, chunk []byte) error {
		events, err = DecodeRecords(events, chunk)
		return err
	})
	if err != nil || !found {
		return nil, false, err
	}
	log.Printf("[CACHE] Loaded %s events from cache", humanize.Comma(int64(len(events))))
	return events, true, nil
}

// Store replaces the events cached under key.
func (c *DatasetCache) Store(key string, events []eventview.Event) error {
	chunks := make([][]byte, 0, len(events)/ChunkRecords+1)
	for start := 0; start < len(events); start += ChunkRecords {
		end := min(start+ChunkRecords, len(events))
		chunks = append(chunks, EncodeRecords(events[start:end]))
	}
	if err := c.store.PutChunks(key, chunks); err != nil {
		return fmt.Errorf("store dataset cache: %w", err)
	}
	log.Printf("[CACHE] Stored %s events in %d chunks", humanize.Comma(int64(len(events))), len(chunks))
	return nil
}
