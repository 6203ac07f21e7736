package snapshot

import (
	"context"
	"errors"
	"time"

	bolt "go.etcd.io/bbolt"
)

// BoltBucket is the bbolt bucket snapshots are stored in.
const BoltBucket = "snapshots"

// ErrNotFound is returned by BoltStore.Get for an unknown name.
var ErrNotFound = errors.New("snapshot: not found")

// BoltStore keeps snapshots in a local bbolt database, keyed by name.
// Since names sort by capture time, keys are kept in capture order.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens or creates the database at path.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BoltBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

// Put stores data under name, replacing any previous value.
func (s *BoltStore) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BoltBucket)).Put([]byte(name), data)
	})
}

// Get returns the snapshot stored under name.
func (s *BoltStore) Get(name string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(BoltBucket)).Get([]byte(name))
		if v == nil {
			return ErrNotFound
		}
		// v is only valid inside the transaction.
		data = append([]byte(nil), v...)
		return nil
	})
	return data, err
}

// Names returns the stored snapshot names in key order.
func (s *BoltStore) Names() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BoltBucket)).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
