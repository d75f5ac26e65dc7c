// Package disk implements the ability to read and write blocks to disk
// with each block stored in its own file.
package disk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strconv"
	"sync"

	"github.com/ardanlabs/coin/foundation/blockchain/database"
)

// Disk represents the storage implementation for reading and storing blocks
// in their own separate files on disk. This implements the
// database.BlockStore interface.
type Disk struct {
	mu     sync.RWMutex
	dbPath string
	length uint64
}

// New constructs a Disk value for use and counts the blocks already
// written to the path.
func New(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	d := Disk{dbPath: dbPath}
	for {
		_, err := os.Stat(d.getPath(d.length))
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		if err != nil {
			return nil, err
		}
		d.length++
	}

	return &d, nil
}

// Close in this implementation has nothing to do since a new file is
// written to disk for each new block and then immediately closed.
func (d *Disk) Close() error {
	return nil
}

// Add takes the specified block and stores it on disk in a file labeled
// with the block index.
func (d *Disk) Add(block database.Block) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if block.Index != d.length {
		return fmt.Errorf("block is out of order, got %d, exp %d", block.Index, d.length)
	}

	// Marshal the block for writing to disk in a more human readable format.
	data, err := json.MarshalIndent(block, "", "  ")
	if err != nil {
		return err
	}

	// Write the block to a temporary file first so a failed write never
	// leaves a partial block behind under the block index.
	f, err := os.CreateTemp(d.dbPath, "block-*.tmp")
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}

	// The rename replaces whatever an earlier interrupted write left behind.
	if err := os.Rename(f.Name(), d.getPath(block.Index)); err != nil {
		os.Remove(f.Name())
		return err
	}

	d.length++

	return nil
}

// Length returns the number of blocks on disk.
func (d *Disk) Length() (uint64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.length, nil
}

// ByIndex searches the blockchain on disk to locate and return the
// contents of the specified block by index.
func (d *Disk) ByIndex(index uint64) (database.Block, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.read(index)
}

// Last returns the latest block on disk.
func (d *Disk) Last() (database.Block, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.length == 0 {
		return database.Block{}, database.ErrNotFound
	}

	return d.read(d.length - 1)
}

// ByHash walks the chain looking for the block with the specified hash.
func (d *Disk) ByHash(hash string) (database.Block, error) {
	blocks, err := d.all()
	if err != nil {
		return database.Block{}, err
	}

	for _, b := range blocks {
		if b.Hash == hash {
			return b, nil
		}
	}

	return database.Block{}, database.ErrNotFound
}

// TransactionByID walks the chain looking for the specified transaction.
func (d *Disk) TransactionByID(id string) (database.Transaction, error) {
	blocks, err := d.all()
	if err != nil {
		return database.Transaction{}, err
	}

	for _, b := range blocks {
		for _, tx := range b.Transactions {
			if tx.ID == id {
				return tx, nil
			}
		}
	}

	return database.Transaction{}, database.ErrNotFound
}

// TransactionIDs returns the id of every recorded transaction.
func (d *Disk) TransactionIDs() ([]string, error) {
	blocks, err := d.all()
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, b := range blocks {
		for _, tx := range b.Transactions {
			ids = append(ids, tx.ID)
		}
	}

	return ids, nil
}

// OutputsForAddress returns every output paid to the address.
func (d *Disk) OutputsForAddress(address []byte) ([]database.TransactionItem, error) {
	blocks, err := d.all()
	if err != nil {
		return nil, err
	}

	return database.AddressOutputs(blocks, address), nil
}

// InputsForAddress returns every input spending from the address.
func (d *Disk) InputsForAddress(address []byte) ([]database.TransactionItem, error) {
	blocks, err := d.all()
	if err != nil {
		return nil, err
	}

	return database.AddressInputs(blocks, address), nil
}

// ForEach returns an iterator to walk through all the blocks
// starting with the genesis block.
func (d *Disk) ForEach() database.Iterator {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return &Iterator{disk: d, length: d.length}
}

// =============================================================================

// all reads every block from disk.
func (d *Disk) all() ([]database.Block, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	blocks := make([]database.Block, 0, d.length)
	for i := uint64(0); i < d.length; i++ {
		b, err := d.read(i)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}

	return blocks, nil
}

// read decodes the block file for the specified index.
func (d *Disk) read(index uint64) (database.Block, error) {

	// Open the block file for the specified index.
	f, err := os.OpenFile(d.getPath(index), os.O_RDONLY, 0600)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return database.Block{}, database.ErrNotFound
		}
		return database.Block{}, err
	}
	defer f.Close()

	// Decode the contents of the block.
	var block database.Block
	if err := json.NewDecoder(f).Decode(&block); err != nil {
		return database.Block{}, err
	}

	return block, nil
}

// getPath forms the path to the specified block.
func (d *Disk) getPath(index uint64) string {
	name := strconv.FormatUint(index, 10)
	return path.Join(d.dbPath, fmt.Sprintf("%s.json", name))
}

// =============================================================================

// Iterator represents the iteration implementation for walking
// through and reading blocks on disk. This implements the database
// Iterator interface.
type Iterator struct {
	disk    *Disk  // Access to the disk storage API.
	length  uint64 // Number of blocks when the iteration started.
	current uint64 // Current block index being iterated over.
	eoc     bool   // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block from disk.
func (it *Iterator) Next() (database.Block, error) {
	if it.eoc || it.current >= it.length {
		it.eoc = true
		return database.Block{}, database.ErrEndOfChain
	}

	block, err := it.disk.ByIndex(it.current)
	it.current++

	return block, err
}

// Done returns the end of chain value.
func (it *Iterator) Done() bool {
	return it.eoc
}
