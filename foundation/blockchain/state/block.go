package state

import (
	"encoding/json"
	"fmt"

	"github.com/ardanlabs/coin/foundation/blockchain/database"
	"github.com/ardanlabs/coin/foundation/blockchain/pow"
)

// AddBlock validates the block against the latest block and, if valid,
// appends it to the chain and removes from the pool its transactions and
// the pending transactions it conflicts with.
func (s *State) AddBlock(block database.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addBlock(block)
}

// CheckBlock validates the block as the successor of the previous block
// against the stored chain.
func (s *State) CheckBlock(newBlock database.Block, previousBlock database.Block) error {
	l, err := s.storedLedger()
	if err != nil {
		return err
	}

	return s.checkBlock(newBlock, previousBlock, l)
}

// ReplaceChain replaces the local chain with the candidate when the
// candidate is longer, starts at the same genesis block and every block in
// it is valid. Only the blocks beyond the local length are appended, each
// through the normal add path.
func (s *State) ReplaceChain(candidate []database.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: ReplaceChain: started: blocks[%d]", len(candidate))
	defer s.evHandler("state: ReplaceChain: completed")

	length, err := s.blocks.Length()
	if err != nil {
		return err
	}

	if uint64(len(candidate)) <= length {
		return database.NewChainError("blockchain shorter than the current blockchain, got %d, current %d", len(candidate), length)
	}

	gen := s.genesis.GenesisBlock.Seal()
	if root := candidate[0]; root.ComputeHash() != gen.Hash || root.Hash != gen.Hash {
		return database.NewChainError("genesis block mismatch, got %s, exp %s", root.ComputeHash(), gen.Hash)
	}

	// Each block is checked against the candidate blocks that precede it.
	l := newLedger(candidate[0])
	for i := 1; i < len(candidate); i++ {
		if err := s.checkBlock(candidate[i], candidate[i-1], l); err != nil {
			return &database.ChainError{Reason: fmt.Sprintf("invalid block sequence at %d", i), Err: err}
		}
		l.add(candidate[i])
	}

	for _, block := range candidate[length:] {
		if err := s.addBlock(block); err != nil {
			return &database.ChainError{Reason: fmt.Sprintf("appending block %d", block.Index), Err: err}
		}
	}

	return nil
}

// =============================================================================

// addBlock performs the validation and the writes. The caller must hold
// the state lock.
func (s *State) addBlock(block database.Block) error {
	s.evHandler("state: addBlock: started: blk[%s]", block)

	previous, err := s.blocks.Last()
	if err != nil {
		return err
	}

	l, err := s.storedLedger()
	if err != nil {
		return err
	}

	if err := s.checkBlock(block, previous, l); err != nil {
		s.evHandler("state: addBlock: rejected: blk[%s]: %s", block, err)
		return err
	}

	s.evHandler("state: addBlock: write to storage")

	if err := s.blocks.Add(block); err != nil {
		return err
	}

	// The block's own transactions and any pending transaction spending an
	// output the block spent are now unminable.
	l.add(block)
	if err := s.purgePool(l, "addBlock"); err != nil {
		s.evHandler("state: addBlock: WARNING: %s", err)
	}

	s.blockEvent(block)
	s.Worker.SignalShareBlock(block)

	return nil
}

// checkBlock applies the block rules in order.
func (s *State) checkBlock(newBlock database.Block, previousBlock database.Block, l ledger) error {
	if exp := previousBlock.Index + 1; newBlock.Index != exp {
		return database.NewBlockError(newBlock.Index, "invalid index, expected %d got %d", exp, newBlock.Index)
	}

	if newBlock.PreviousHash != previousBlock.Hash {
		return database.NewBlockError(newBlock.Index, "invalid previousHash, expected %s got %s", previousBlock.Hash, newBlock.PreviousHash)
	}

	if hash := newBlock.ComputeHash(); newBlock.Hash != hash {
		return database.NewBlockError(newBlock.Index, "invalid hash, expected %s got %s", hash, newBlock.Hash)
	}

	if !s.pow.Accept(newBlock) {
		value, _ := pow.BlockDifficultyValue(newBlock)
		return database.NewBlockError(newBlock.Index, "invalid proof-of-work difficulty, expected < %.0f got %d", s.pow.RequiredDifficulty(newBlock.Index), value)
	}

	// Transactions in the block may not spend an output twice between them.
	inBlock := newLedger()
	for _, tx := range newBlock.Transactions {
		if err := s.checkTransaction(tx, l); err != nil {
			return &database.BlockError{Index: newBlock.Index, Reason: "invalid transaction", Err: err}
		}
		if err := checkAgainst(tx, inBlock, "block"); err != nil {
			return &database.BlockError{Index: newBlock.Index, Reason: "invalid transaction", Err: err}
		}
		inBlock.addTx(tx)
	}

	var inputs, outputs uint64
	for _, tx := range newBlock.Transactions {
		inputs += tx.InputsTotal()
		outputs += tx.OutputsTotal()
	}
	if inputs+s.genesis.Mining.MiningReward < outputs {
		return database.NewBlockError(newBlock.Index, "invalid block balance, inputs sum %d, outputs sum %d, reward %d", inputs, outputs, s.genesis.Mining.MiningReward)
	}

	if n := newBlock.CountType(database.TxFee); n > 1 {
		return database.NewBlockError(newBlock.Index, "invalid fee transaction count, expected at most 1 got %d", n)
	}

	if n := newBlock.CountType(database.TxReward); n > 1 {
		return database.NewBlockError(newBlock.Index, "invalid reward transaction count, expected at most 1 got %d", n)
	}

	return nil
}

// blockEvent provides a specific event about a new block in the chain for
// application specific support.
func (s *State) blockEvent(block database.Block) {
	blockJSON, err := json.Marshal(block)
	if err != nil {
		blockJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	s.evHandler("viewer: block: %s", string(blockJSON))
}
