package boltdb

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/ardanlabs/coin/foundation/blockchain/database"
	"github.com/boltdb/bolt"
)

// Blocks represents the storage implementation for the blockchain in a bolt
// database. Blocks are keyed by index with secondary indexes for hashes and
// transaction ids. This implements the database.BlockStore interface.
type Blocks struct {
	db *bolt.DB
}

// Close in this implementation has nothing to do since the database is
// owned by DB.
func (b *Blocks) Close() error {
	return nil
}

// Add appends the block and updates the indexes in one transaction.
func (b *Blocks) Add(block database.Block) error {
	data, err := json.Marshal(block)
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		blocks := tx.Bucket(blocksBucket)

		var length uint64
		if k, _ := blocks.Cursor().Last(); k != nil {
			length = binary.BigEndian.Uint64(k) + 1
		}
		if block.Index != length {
			return fmt.Errorf("block is out of order, got %d, exp %d", block.Index, length)
		}

		key := itob(block.Index)
		if err := blocks.Put(key, data); err != nil {
			return err
		}

		if err := tx.Bucket(hashesBucket).Put([]byte(block.Hash), key); err != nil {
			return err
		}

		txIndex := tx.Bucket(txIndexBucket)
		for _, trn := range block.Transactions {
			if err := txIndex.Put([]byte(trn.ID), key); err != nil {
				return err
			}
		}

		return nil
	})
}

// Length returns the number of blocks in the chain.
func (b *Blocks) Length() (uint64, error) {
	var length uint64
	err := b.db.View(func(tx *bolt.Tx) error {
		if k, _ := tx.Bucket(blocksBucket).Cursor().Last(); k != nil {
			length = binary.BigEndian.Uint64(k) + 1
		}
		return nil
	})

	return length, err
}

// ByIndex returns the block at the specified index.
func (b *Blocks) ByIndex(index uint64) (database.Block, error) {
	var block database.Block
	err := b.db.View(func(tx *bolt.Tx) error {
		return get(tx.Bucket(blocksBucket), itob(index), &block)
	})

	return block, err
}

// ByHash returns the block with the specified hash.
func (b *Blocks) ByHash(hash string) (database.Block, error) {
	var block database.Block
	err := b.db.View(func(tx *bolt.Tx) error {
		key := tx.Bucket(hashesBucket).Get([]byte(hash))
		if key == nil {
			return database.ErrNotFound
		}
		return get(tx.Bucket(blocksBucket), key, &block)
	})

	return block, err
}

// Last returns the latest block in the chain.
func (b *Blocks) Last() (database.Block, error) {
	var block database.Block
	err := b.db.View(func(tx *bolt.Tx) error {
		_, v := tx.Bucket(blocksBucket).Cursor().Last()
		if v == nil {
			return database.ErrNotFound
		}
		return json.Unmarshal(v, &block)
	})

	return block, err
}

// TransactionByID returns the recorded transaction with the specified id.
func (b *Blocks) TransactionByID(id string) (database.Transaction, error) {
	var block database.Block
	err := b.db.View(func(tx *bolt.Tx) error {
		key := tx.Bucket(txIndexBucket).Get([]byte(id))
		if key == nil {
			return database.ErrNotFound
		}
		return get(tx.Bucket(blocksBucket), key, &block)
	})
	if err != nil {
		return database.Transaction{}, err
	}

	for _, trn := range block.Transactions {
		if trn.ID == id {
			return trn, nil
		}
	}

	return database.Transaction{}, database.ErrNotFound
}

// TransactionIDs returns the id of every recorded transaction.
func (b *Blocks) TransactionIDs() ([]string, error) {
	var ids []string
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(txIndexBucket).ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})

	return ids, err
}

// OutputsForAddress returns every output paid to the address.
func (b *Blocks) OutputsForAddress(address []byte) ([]database.TransactionItem, error) {
	blocks, err := b.all()
	if err != nil {
		return nil, err
	}

	return database.AddressOutputs(blocks, address), nil
}

// InputsForAddress returns every input spending from the address.
func (b *Blocks) InputsForAddress(address []byte) ([]database.TransactionItem, error) {
	blocks, err := b.all()
	if err != nil {
		return nil, err
	}

	return database.AddressInputs(blocks, address), nil
}

// ForEach returns an iterator over a snapshot of the chain taken in a
// single read transaction.
func (b *Blocks) ForEach() database.Iterator {
	blocks, err := b.all()
	if err != nil {
		return &errIterator{err: err}
	}

	return database.NewSliceIterator(blocks)
}

// all reads every block in index order.
func (b *Blocks) all() ([]database.Block, error) {
	var blocks []database.Block
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(blocksBucket).ForEach(func(_, v []byte) error {
			var block database.Block
			if err := json.Unmarshal(v, &block); err != nil {
				return err
			}
			blocks = append(blocks, block)
			return nil
		})
	})

	return blocks, err
}

// get decodes the value stored under the key.
func get(bucket *bolt.Bucket, key []byte, v any) error {
	data := bucket.Get(key)
	if data == nil {
		return database.ErrNotFound
	}

	return json.Unmarshal(data, v)
}

// =============================================================================

// errIterator reports a read failure as its only element.
type errIterator struct {
	err  error
	done bool
}

// Next returns the read failure once.
func (ei *errIterator) Next() (database.Block, error) {
	if ei.done {
		return database.Block{}, database.ErrEndOfChain
	}
	err := ei.err
	ei.err = nil
	if err == nil {
		ei.done = true
		return database.Block{}, database.ErrEndOfChain
	}

	return database.Block{}, err
}

// Done returns the end of chain value.
func (ei *errIterator) Done() bool {
	return ei.done
}
