// Package database defines the blockchain data model, the rule violations
// it can produce and the storage contracts the ledger depends on.
package database

import "errors"

// ErrEndOfChain is returned by an iterator once every block has been read.
var ErrEndOfChain = errors.New("end of chain")

// BlockStore represents the behavior required to be implemented by any
// package providing append only storage of the blockchain.
type BlockStore interface {
	Add(block Block) error
	Length() (uint64, error)
	ByIndex(index uint64) (Block, error)
	ByHash(hash string) (Block, error)
	Last() (Block, error)
	TransactionByID(id string) (Transaction, error)
	TransactionIDs() ([]string, error)
	OutputsForAddress(address []byte) ([]TransactionItem, error)
	InputsForAddress(address []byte) ([]TransactionItem, error)
	ForEach() Iterator
	Close() error
}

// TransactionStore represents the behavior required to be implemented by
// any package providing storage for pending transactions.
type TransactionStore interface {
	All() ([]Transaction, error)
	ByID(id string) (Transaction, error)
	Add(tx Transaction) error
	Delete(ids ...string) error
}

// Iterator represents the behavior required to be implemented by any
// package providing support to iterate over the blocks in index order.
type Iterator interface {
	Next() (Block, error)
	Done() bool
}

// =============================================================================

// SliceIterator walks a slice of blocks. Stores that hold their blocks in
// memory use it for their ForEach.
type SliceIterator struct {
	blocks  []Block
	current int
	eoc     bool
}

// NewSliceIterator constructs an iterator over the specified blocks.
func NewSliceIterator(blocks []Block) *SliceIterator {
	return &SliceIterator{blocks: blocks}
}

// Next returns the next block.
func (si *SliceIterator) Next() (Block, error) {
	if si.current >= len(si.blocks) {
		si.eoc = true
		return Block{}, ErrEndOfChain
	}

	b := si.blocks[si.current]
	si.current++
	return b, nil
}

// Done returns the end of chain value.
func (si *SliceIterator) Done() bool {
	return si.eoc
}

// =============================================================================

// AddressOutputs returns the outputs of the blocks paid to the address with
// the transaction id and output position filled in.
func AddressOutputs(blocks []Block, address []byte) []TransactionItem {
	var items []TransactionItem
	for _, b := range blocks {
		for _, tx := range b.Transactions {
			for i, out := range tx.Data.Outputs {
				if string(out.Address) != string(address) {
					continue
				}
				out.TransactionID = tx.ID
				out.Index = uint64(i)
				items = append(items, out)
			}
		}
	}
	return items
}

// AddressInputs returns the inputs of the blocks spending from the address.
func AddressInputs(blocks []Block, address []byte) []TransactionItem {
	var items []TransactionItem
	for _, b := range blocks {
		for _, tx := range b.Transactions {
			for _, in := range tx.Data.Inputs {
				if string(in.Address) == string(address) {
					items = append(items, in)
				}
			}
		}
	}
	return items
}
