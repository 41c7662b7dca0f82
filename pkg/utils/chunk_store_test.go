package utils

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestChunkStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "chunks.db")
	store, err := OpenChunkStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to open ChunkStore: %v", err)
	}

	chunks := [][]byte{[]byte("first"), []byte("second"), []byte("third")}
	if err := store.PutChunks("events.bin|10|20", chunks); err != nil {
		t.Fatalf("PutChunks failed: %v", err)
	}

	var got [][]byte
	found, err := store.ForEachChunk("events.bin|10|20", func(i int, c []byte) error {
		got = append(got, bytes.Clone(c))
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachChunk failed: %v", err)
	}
	if !found {
		t.Fatalf("Expected stored list to be found")
	}
	if len(got) != len(chunks) {
		t.Fatalf("Expected %d chunks, got %d", len(chunks), len(got))
	}
	for i := range chunks {
		if !bytes.Equal(got[i], chunks[i]) {
			t.Errorf("Chunk %d: expected %q, got %q", i, chunks[i], got[i])
		}
	}

	found, err = store.ForEachChunk("missing", func(int, []byte) error { return nil })
	if err != nil || found {
		t.Errorf("Expected missing key to report (false, nil), got (%v, %v)", found, err)
	}

	// Shorter replacement must not leave old chunks behind
	if err := store.PutChunks("events.bin|10|20", chunks[:1]); err != nil {
		t.Fatalf("PutChunks replace failed: %v", err)
	}
	n := 0
	if _, err := store.ForEachChunk("events.bin|10|20", func(int, []byte) error { n++; return nil }); err != nil {
		t.Fatalf("ForEachChunk failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 chunk after replace, got %d", n)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("Failed to close store: %v", err)
	}

	reopened, err := OpenChunkStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen ChunkStore: %v", err)
	}
	defer func() {
		if err := reopened.Close(); err != nil {
			t.Logf("Error closing store: %v", err)
		}
	}()
	count, err := reopened.ChunkCount("events.bin|10|20")
	if err != nil {
		t.Fatalf("ChunkCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected persisted count 1, got %d", count)
	}
}

func TestChunkStoreKeysDoNotOverlap(t *testing.T) {
	store, err := OpenChunkStore(filepath.Join(t.TempDir(), "chunks.db"))
	if err != nil {
		t.Fatalf("Failed to open ChunkStore: %v", err)
	}
	defer store.Close()

	if err := store.PutChunks("a", [][]byte{[]byte("a0")}); err != nil {
		t.Fatal(err)
	}
	if err := store.PutChunks("ab", [][]byte{[]byte("ab0"), []byte("ab1")}); err != nil {
		t.Fatal(err)
	}
	n := 0
	found, err := store.ForEachChunk("a", func(int, []byte) error { n++; return nil })
	if err != nil || !found {
		t.Fatalf("Expected key a to be found, got (%v, %v)", found, err)
	}
	if n != 1 {
		t.Errorf("Expected 1 chunk under a, got %d", n)
	}
}
