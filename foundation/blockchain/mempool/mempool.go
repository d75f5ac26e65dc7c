// Package mempool maintains the pending transactions for the blockchain.
package mempool

import (
	"fmt"
	"sync"

	"github.com/ardanlabs/coin/foundation/blockchain/database"
)

// Mempool represents a cache of pending transactions keyed by transaction
// id that remembers the order transactions arrived in. This implements the
// database.TransactionStore interface.
type Mempool struct {
	mu    sync.RWMutex
	pool  map[string]database.Transaction
	order []string
}

// New constructs a new mempool.
func New() *Mempool {
	return &Mempool{
		pool: make(map[string]database.Transaction),
	}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Add inserts a transaction into the mempool.
func (mp *Mempool) Add(tx database.Transaction) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if _, exists := mp.pool[tx.ID]; exists {
		return fmt.Errorf("transaction %s already pending", tx.ID)
	}

	mp.pool[tx.ID] = tx
	mp.order = append(mp.order, tx.ID)

	return nil
}

// ByID returns the pending transaction with the specified id.
func (mp *Mempool) ByID(id string) (database.Transaction, error) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	tx, exists := mp.pool[id]
	if !exists {
		return database.Transaction{}, database.ErrNotFound
	}

	return tx, nil
}

// All returns the pending transactions in arrival order.
func (mp *Mempool) All() ([]database.Transaction, error) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	txs := make([]database.Transaction, 0, len(mp.order))
	for _, id := range mp.order {
		txs = append(txs, mp.pool[id])
	}

	return txs, nil
}

// Delete removes the transactions with the specified ids from the mempool.
func (mp *Mempool) Delete(ids ...string) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	for _, id := range ids {
		delete(mp.pool, id)
	}

	order := make([]string, 0, len(mp.pool))
	for _, id := range mp.order {
		if _, exists := mp.pool[id]; exists {
			order = append(order, id)
		}
	}
	mp.order = order

	return nil
}
