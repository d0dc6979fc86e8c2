package entry

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

const bucketName = "entries"

// ErrNotFound is returned when no entry has the requested ID
var ErrNotFound = errors.New("entry not found")

// DB defines the interface for entry persistence
type DB interface {
	// SaveEntry creates or replaces an entry
	SaveEntry(entry *Entry) error

	// GetEntry retrieves an entry by ID
	GetEntry(id string) (*Entry, error)

	// ListEntries returns the entries of userID, or all entries when userID is
	// empty, newest first
	ListEntries(userID string) ([]*Entry, error)

	// DeleteEntry removes an entry
	DeleteEntry(id string) error

	// Close closes the database connection
	Close() error
}

// BoltDB implements DB using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB opens (or creates) the database at path
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

func (b *BoltDB) SaveEntry(entry *Entry) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshaling entry: %w", err)
		}
		return tx.Bucket([]byte(bucketName)).Put([]byte(entry.ID), data)
	})
}

func (b *BoltDB) GetEntry(id string) (*Entry, error) {
	var entry *Entry
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (b *BoltDB) ListEntries(userID string) ([]*Entry, error) {
	entries := make([]*Entry, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEach(func(k, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("unmarshaling entry %s: %w", k, err)
			}
			if userID == "" || entry.UserID == userID {
				entries = append(entries, &entry)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

func (b *BoltDB) DeleteEntry(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket.Get([]byte(id)) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return bucket.Delete([]byte(id))
	})
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
