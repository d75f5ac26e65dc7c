package state

import (
	"github.com/ardanlabs/coin/foundation/blockchain/database"
	"github.com/ardanlabs/coin/foundation/blockchain/genesis"
	"github.com/ardanlabs/coin/foundation/blockchain/pow"
	"github.com/ardanlabs/coin/foundation/blockchain/signature"
)

// Genesis returns a copy of the coin settings.
func (s *State) Genesis() genesis.Genesis {
	return s.genesis
}

// Scheme returns the signature scheme transactions are verified with.
func (s *State) Scheme() signature.Scheme {
	return s.scheme
}

// ProofOfWork returns the proof of work blocks are mined and checked with.
func (s *State) ProofOfWork() pow.ProofOfWork {
	return s.pow
}

// LatestBlock returns the current latest block.
func (s *State) LatestBlock() (database.Block, error) {
	return s.blocks.Last()
}

// Blocks returns the full chain starting with the genesis block.
func (s *State) Blocks() ([]database.Block, error) {
	return s.readChain()
}

// BlockByIndex returns the block at the specified index.
func (s *State) BlockByIndex(index uint64) (database.Block, error) {
	return s.blocks.ByIndex(index)
}

// BlockByHash returns the block with the specified hash.
func (s *State) BlockByHash(hash string) (database.Block, error) {
	return s.blocks.ByHash(hash)
}

// TransactionFromBlocks returns the recorded transaction with the
// specified id.
func (s *State) TransactionFromBlocks(id string) (database.Transaction, error) {
	return s.blocks.TransactionByID(id)
}

// PendingTransactions returns the transactions waiting to be mined in the
// order they arrived.
func (s *State) PendingTransactions() ([]database.Transaction, error) {
	return s.pool.All()
}

// PendingTransaction returns the pending transaction with the specified id.
func (s *State) PendingTransaction(id string) (database.Transaction, error) {
	return s.pool.ByID(id)
}

// UnspentOutputsForAddress returns the outputs paid to the address that no
// recorded input has spent.
func (s *State) UnspentOutputsForAddress(address []byte) ([]database.TransactionItem, error) {
	outputs, err := s.blocks.OutputsForAddress(address)
	if err != nil {
		return nil, err
	}

	inputs, err := s.blocks.InputsForAddress(address)
	if err != nil {
		return nil, err
	}

	spent := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		spent[in.Key()] = struct{}{}
	}

	unspent := make([]database.TransactionItem, 0, len(outputs))
	for _, out := range outputs {
		if _, exists := spent[out.Key()]; !exists {
			unspent = append(unspent, out)
		}
	}

	return unspent, nil
}

// BalanceForAddress returns the sum of the unspent outputs of the address.
func (s *State) BalanceForAddress(address []byte) (uint64, error) {
	unspent, err := s.UnspentOutputsForAddress(address)
	if err != nil {
		return 0, err
	}

	var balance uint64
	for _, out := range unspent {
		balance += out.Amount
	}

	return balance, nil
}
