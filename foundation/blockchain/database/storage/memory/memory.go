// Package memory implements the ability to read and write blocks to memory
// using a slice.
package memory

import (
	"fmt"
	"sync"

	"github.com/ardanlabs/coin/foundation/blockchain/database"
)

// Blocks represents the storage implementation for reading and storing
// blocks in memory using a slice. This implements the database.BlockStore
// interface.
type Blocks struct {
	mu      sync.RWMutex
	blocks  []database.Block
	byHash  map[string]uint64
	txBlock map[string]uint64
}

// NewBlocks constructs a Blocks value for use.
func NewBlocks() *Blocks {
	return &Blocks{
		byHash:  make(map[string]uint64),
		txBlock: make(map[string]uint64),
	}
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Blocks) Close() error {
	return nil
}

// Add appends the block to the chain.
func (m *Blocks) Add(block database.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if block.Index != uint64(len(m.blocks)) {
		return fmt.Errorf("block is out of order, got %d, exp %d", block.Index, len(m.blocks))
	}

	m.blocks = append(m.blocks, block)
	m.byHash[block.Hash] = block.Index
	for _, tx := range block.Transactions {
		m.txBlock[tx.ID] = block.Index
	}

	return nil
}

// Length returns the number of blocks in the chain.
func (m *Blocks) Length() (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return uint64(len(m.blocks)), nil
}

// ByIndex returns the block at the specified index.
func (m *Blocks) ByIndex(index uint64) (database.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if index >= uint64(len(m.blocks)) {
		return database.Block{}, database.ErrNotFound
	}

	return m.blocks[index], nil
}

// ByHash returns the block with the specified hash.
func (m *Blocks) ByHash(hash string) (database.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	index, exists := m.byHash[hash]
	if !exists {
		return database.Block{}, database.ErrNotFound
	}

	return m.blocks[index], nil
}

// Last returns the latest block in the chain.
func (m *Blocks) Last() (database.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.blocks) == 0 {
		return database.Block{}, database.ErrNotFound
	}

	return m.blocks[len(m.blocks)-1], nil
}

// TransactionByID returns the recorded transaction with the specified id.
func (m *Blocks) TransactionByID(id string) (database.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	index, exists := m.txBlock[id]
	if !exists {
		return database.Transaction{}, database.ErrNotFound
	}

	for _, tx := range m.blocks[index].Transactions {
		if tx.ID == id {
			return tx, nil
		}
	}

	return database.Transaction{}, database.ErrNotFound
}

// TransactionIDs returns the id of every recorded transaction.
func (m *Blocks) TransactionIDs() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.txBlock))
	for _, b := range m.blocks {
		for _, tx := range b.Transactions {
			ids = append(ids, tx.ID)
		}
	}

	return ids, nil
}

// OutputsForAddress returns every output paid to the address.
func (m *Blocks) OutputsForAddress(address []byte) ([]database.TransactionItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return database.AddressOutputs(m.blocks, address), nil
}

// InputsForAddress returns every input spending from the address.
func (m *Blocks) InputsForAddress(address []byte) ([]database.TransactionItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return database.AddressInputs(m.blocks, address), nil
}

// ForEach returns an iterator to walk through all the blocks starting
// with the genesis block.
func (m *Blocks) ForEach() database.Iterator {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blocks := make([]database.Block, len(m.blocks))
	copy(blocks, m.blocks)

	return database.NewSliceIterator(blocks)
}
