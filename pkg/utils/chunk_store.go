package utils

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// ChunkStore keeps ordered lists of binary chunks in badger. Each list is
// stored under a manifest key holding the chunk count, followed by one key
// per chunk: "<key>\x00<index as 4 big-endian bytes>".
type ChunkStore struct {
	db *badger.DB
}

func OpenChunkStore(path string) (*ChunkStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &ChunkStore{db: db}, nil
}

func (s *ChunkStore) Close() error {
	return s.db.Close()
}

func manifestKey(key string) []byte {
	return append([]byte("m\x00"), key...)
}

func chunkPrefix(key string) []byte {
	p := append([]byte("c\x00"), key...)
	return append(p, 0)
}

func chunkKey(key string, i int) []byte {
	return binary.BigEndian.AppendUint32(chunkPrefix(key), uint32(i))
}

// PutChunks replaces the list stored under key. The manifest is written
// after every chunk is flushed so a half-written list is never visible.
func (s *ChunkStore) PutChunks(key string, chunks [][]byte) error {
	if err := s.db.DropPrefix(chunkPrefix(key)); err != nil {
		return err
	}
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for i, c := range chunks {
		if err := wb.Set(chunkKey(key, i), c); err != nil {
			return err
		}
	}
	if err := wb.Flush(); err != nil {
		return err
	}
	count := binary.BigEndian.AppendUint32(nil, uint32(len(chunks)))
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(manifestKey(key), count)
	})
}

// ChunkCount returns the number of chunks stored under key, or -1 when the
// key is absent.
func (s *ChunkStore) ChunkCount(key string) (int, error) {
	n := -1
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(manifestKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			if len(v) != 4 {
				return fmt.Errorf("corrupt manifest for %q", key)
			}
			n = int(binary.BigEndian.Uint32(v))
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return -1, nil
	}
	return n, err
}

// ForEachChunk calls fn with every chunk under key in order. The slice
// passed to fn is only valid for the duration of the call. It reports
// false when the key is absent or the stored list is incomplete.
func (s *ChunkStore) ForEachChunk(key string, fn func(i int, chunk []byte) error) (bool, error) {
	want, err := s.ChunkCount(key)
	if err != nil || want < 0 {
		return false, err
	}
	prefix := chunkPrefix(key)
	seen := 0
	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			idx := int(binary.BigEndian.Uint32(bytes.TrimPrefix(item.Key(), prefix)))
			if idx != seen {
				return fmt.Errorf("chunk %d missing for %q", seen, key)
			}
			if err := item.Value(func(v []byte) error { return fn(idx, v) }); err != nil {
				return err
			}
			seen++
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return seen == want, nil
}
