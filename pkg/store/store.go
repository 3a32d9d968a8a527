// Package store persists the vocbase catalog's metadata (collection
// records, the authentication map, and the tick high-water mark) in a
// bbolt database, one bucket per entity.
package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketCollections = []byte("collections")
	bucketAuth        = []byte("auth")
	bucketMeta        = []byte("meta")
)

const tickKey = "tick"

// CollectionRecord is the persisted form of a catalog.Collection,
// independent of the in-memory type so the store package does not
// import catalog (keeping the dependency direction store -> nothing,
// catalog -> store).
type CollectionRecord struct {
	CID         int64  `json:"cid"`
	Name        string `json:"name"`
	Type        int    `json:"type"`
	Path        string `json:"path"`
	Status      int    `json:"status"`
	MaximalSize int64  `json:"maximalSize"`
	WaitForSync bool   `json:"waitForSync"`
	IsSystem    bool   `json:"isSystem"`
}

// Store is a bbolt-backed persistence layer for one vocbase's catalog
// metadata.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the catalog database under
// dataDir.
func Open(dataDir string) (*Store, error) {
	dbPath := filepath.Join(dataDir, "catalog.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketCollections, bucketAuth, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("store: create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the underlying bbolt handle can still start a
// transaction, for use by health checks.
func (s *Store) Ping() error {
	return s.db.View(func(tx *bolt.Tx) error { return nil })
}

// PutCollection upserts a collection's metadata record.
func (s *Store) PutCollection(rec *CollectionRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCollections)
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put(collectionKey(rec.CID), data)
	})
}

// GetCollection reads a single collection record by cid.
func (s *Store) GetCollection(cid int64) (*CollectionRecord, error) {
	var rec CollectionRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCollections)
		data := b.Get(collectionKey(cid))
		if data == nil {
			return fmt.Errorf("store: collection %d not found", cid)
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListCollections returns every persisted collection record.
func (s *Store) ListCollections() ([]*CollectionRecord, error) {
	var out []*CollectionRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCollections)
		return b.ForEach(func(k, v []byte) error {
			var rec CollectionRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			out = append(out, &rec)
			return nil
		})
	})
	return out, err
}

// DeleteCollection removes a collection's persisted metadata.
func (s *Store) DeleteCollection(cid int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCollections).Delete(collectionKey(cid))
	})
}

// PutAuth upserts a user's password hash.
func (s *Store) PutAuth(user, passwordHash string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAuth).Put([]byte(user), []byte(passwordHash))
	})
}

// GetAuth reads a user's stored password hash.
func (s *Store) GetAuth(user string) (string, bool) {
	var hash string
	var found bool
	_ = s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketAuth).Get([]byte(user))
		if data != nil {
			hash, found = string(data), true
		}
		return nil
	})
	return hash, found
}

// SaveTick persists the catalog's tick high-water mark so ids stay
// monotonic across a restart.
func (s *Store) SaveTick(tick int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		buf := make([]byte, 8)
		for i := 0; i < 8; i++ {
			buf[i] = byte(tick >> (8 * i))
		}
		return tx.Bucket(bucketMeta).Put([]byte(tickKey), buf)
	})
}

// LoadTick reads the persisted tick high-water mark, returning 0 if
// none has been saved yet.
func (s *Store) LoadTick() (int64, error) {
	var tick int64
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketMeta).Get([]byte(tickKey))
		if data == nil {
			return nil
		}
		for i := 0; i < 8 && i < len(data); i++ {
			tick |= int64(data[i]) << (8 * i)
		}
		return nil
	})
	return tick, err
}

func collectionKey(cid int64) []byte {
	return []byte(fmt.Sprintf("%020d", cid))
}
