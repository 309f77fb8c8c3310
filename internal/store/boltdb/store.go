package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/MrSnakeDoc/notedocs/internal/domain"
)

// FileName is the database file created inside the data dir.
const FileName = "notedocs.db"

var (
	bucketBookmarks = []byte("bookmarks")    // seq -> bookmark JSON
	bucketIDs       = []byte("bookmark_ids") // id -> seq
	bucketStats     = []byte("stats")

	keySnapshot = []byte("snapshot")
)

// Store keeps bookmarks in an embedded bbolt file. Keys of the bookmarks
// bucket are big-endian sequence numbers, so a cursor walk returns records
// in insertion order.
type Store struct {
	db *bolt.DB
}

// Open creates or opens <dataDir>/notedocs.db.
func Open(dataDir string) (*Store, error) {
	db, err := bolt.Open(filepath.Join(dataDir, FileName), 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketBookmarks, bucketIDs, bucketStats} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func seqKey(n uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, n)
	return k
}

func (s *Store) List(_ context.Context) ([]*domain.Bookmark, error) {
	out := []*domain.Bookmark{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBookmarks).ForEach(func(_, v []byte) error {
			var b domain.Bookmark
			if err := json.Unmarshal(v, &b); err != nil {
				return fmt.Errorf("failed to unmarshal bookmark: %w", err)
			}
			out = append(out, &b)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Get(_ context.Context, id string) (*domain.Bookmark, error) {
	var b domain.Bookmark
	err := s.db.View(func(tx *bolt.Tx) error {
		seq := tx.Bucket(bucketIDs).Get([]byte(id))
		if seq == nil {
			return domain.NotFound("bookmark", id)
		}
		data := tx.Bucket(bucketBookmarks).Get(seq)
		if data == nil {
			return domain.NotFound("bookmark", id)
		}
		return json.Unmarshal(data, &b)
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) Insert(ctx context.Context, b *domain.Bookmark) error {
	return s.InsertMany(ctx, []*domain.Bookmark{b})
}

// InsertMany stores bs in one transaction.
func (s *Store) InsertMany(_ context.Context, bs []*domain.Bookmark) error {
	if len(bs) == 0 {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		ids := tx.Bucket(bucketIDs)
		bookmarks := tx.Bucket(bucketBookmarks)

		for _, b := range bs {
			if ids.Get([]byte(b.ID)) != nil {
				return domain.Conflict("bookmark", b.ID)
			}
			data, err := json.Marshal(b)
			if err != nil {
				return fmt.Errorf("failed to marshal bookmark: %w", err)
			}
			n, err := bookmarks.NextSequence()
			if err != nil {
				return err
			}
			key := seqKey(n)
			if err := ids.Put([]byte(b.ID), key); err != nil {
				return err
			}
			if err := bookmarks.Put(key, data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Modify reads, changes and writes the record inside one write
// transaction; bbolt allows a single writer at a time.
func (s *Store) Modify(_ context.Context, id string, fn func(*domain.Bookmark) error) (*domain.Bookmark, error) {
	var b domain.Bookmark
	err := s.db.Update(func(tx *bolt.Tx) error {
		seq := tx.Bucket(bucketIDs).Get([]byte(id))
		if seq == nil {
			return domain.NotFound("bookmark", id)
		}
		bookmarks := tx.Bucket(bucketBookmarks)
		data := bookmarks.Get(seq)
		if data == nil {
			return domain.NotFound("bookmark", id)
		}
		if err := json.Unmarshal(data, &b); err != nil {
			return fmt.Errorf("failed to unmarshal bookmark: %w", err)
		}
		if err := fn(&b); err != nil {
			return err
		}
		out, err := json.Marshal(&b)
		if err != nil {
			return fmt.Errorf("failed to marshal bookmark: %w", err)
		}
		return bookmarks.Put(append([]byte(nil), seq...), out)
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		ids := tx.Bucket(bucketIDs)
		seq := ids.Get([]byte(id))
		if seq == nil {
			return domain.NotFound("bookmark", id)
		}
		// seq points into the mmap; copy before mutating the bucket.
		key := append([]byte(nil), seq...)
		if err := tx.Bucket(bucketBookmarks).Delete(key); err != nil {
			return err
		}
		return ids.Delete([]byte(id))
	})
}

func (s *Store) SaveStats(_ context.Context, st domain.Stats) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketStats).Put(keySnapshot, data)
	})
}

func (s *Store) LoadStats(_ context.Context) (domain.Stats, bool, error) {
	var (
		st domain.Stats
		ok bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketStats).Get(keySnapshot)
		if data == nil {
			return nil
		}
		ok = true
		return json.Unmarshal(data, &st)
	})
	if err != nil {
		return domain.Stats{}, false, fmt.Errorf("failed to load stats: %w", err)
	}
	return st, ok, nil
}

// Ping runs an empty read transaction.
func (s *Store) Ping(_ context.Context) error {
	return s.db.View(func(*bolt.Tx) error { return nil })
}
