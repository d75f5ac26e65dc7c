package boltdb

import (
	"encoding/json"
	"fmt"

	"github.com/ardanlabs/coin/foundation/blockchain/database"
	"github.com/boltdb/bolt"
)

// Pool represents the pending transaction store in a bolt database.
// Transactions are keyed by an arrival sequence so iteration preserves the
// order they were received in. This implements the
// database.TransactionStore interface.
type Pool struct {
	db *bolt.DB
}

// All returns the pending transactions in arrival order.
func (p *Pool) All() ([]database.Transaction, error) {
	var txs []database.Transaction
	err := p.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(poolBucket).ForEach(func(_, v []byte) error {
			var trn database.Transaction
			if err := json.Unmarshal(v, &trn); err != nil {
				return err
			}
			txs = append(txs, trn)
			return nil
		})
	})

	return txs, err
}

// ByID returns the pending transaction with the specified id.
func (p *Pool) ByID(id string) (database.Transaction, error) {
	var trn database.Transaction
	err := p.db.View(func(tx *bolt.Tx) error {
		seq := tx.Bucket(poolIDsBucket).Get([]byte(id))
		if seq == nil {
			return database.ErrNotFound
		}
		return get(tx.Bucket(poolBucket), seq, &trn)
	})

	return trn, err
}

// Add stores the transaction at the end of the pool.
func (p *Pool) Add(trn database.Transaction) error {
	data, err := json.Marshal(trn)
	if err != nil {
		return err
	}

	return p.db.Update(func(tx *bolt.Tx) error {
		ids := tx.Bucket(poolIDsBucket)
		if ids.Get([]byte(trn.ID)) != nil {
			return fmt.Errorf("transaction %s already pending", trn.ID)
		}

		pool := tx.Bucket(poolBucket)
		seq, err := pool.NextSequence()
		if err != nil {
			return err
		}

		key := itob(seq)
		if err := pool.Put(key, data); err != nil {
			return err
		}

		return ids.Put([]byte(trn.ID), key)
	})
}

// Delete removes the transactions with the specified ids.
func (p *Pool) Delete(ids ...string) error {
	return p.db.Update(func(tx *bolt.Tx) error {
		idx := tx.Bucket(poolIDsBucket)
		pool := tx.Bucket(poolBucket)

		for _, id := range ids {
			seq := idx.Get([]byte(id))
			if seq == nil {
				continue
			}
			if err := pool.Delete(seq); err != nil {
				return err
			}
			if err := idx.Delete([]byte(id)); err != nil {
				return err
			}
		}

		return nil
	})
}
