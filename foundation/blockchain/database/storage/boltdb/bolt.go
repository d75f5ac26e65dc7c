// Package boltdb implements durable storage of the blockchain, the pending
// transactions and the wallets on top of a single bolt database file.
package boltdb

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/boltdb/bolt"
)

// Set of buckets used by the stores.
var (
	blocksBucket  = []byte("blocks")
	hashesBucket  = []byte("hashes")
	txIndexBucket = []byte("txindex")
	poolBucket    = []byte("pool")
	poolIDsBucket = []byte("poolids")
	walletsBucket = []byte("wallets")
)

// DB represents an open bolt database holding every bucket the stores need.
type DB struct {
	db *bolt.DB
}

// Open opens the database file at the path, creating the buckets if needed.
func Open(path string) (*DB, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{blocksBucket, hashesBucket, txIndexBucket, poolBucket, poolIDsBucket, walletsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database file.
func (d *DB) Close() error {
	return d.db.Close()
}

// Blocks returns the block store backed by this database.
func (d *DB) Blocks() *Blocks {
	return &Blocks{db: d.db}
}

// Pool returns the pending transaction store backed by this database.
func (d *DB) Pool() *Pool {
	return &Pool{db: d.db}
}

// Wallets returns the wallet store backed by this database.
func (d *DB) Wallets() *Wallets {
	return &Wallets{db: d.db}
}

// =============================================================================

// itob returns an 8-byte big endian representation of v so keys sort in
// numeric order.
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
