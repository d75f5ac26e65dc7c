package state

import (
	"context"
	"errors"
	"time"

	"github.com/ardanlabs/coin/foundation/blockchain/database"
)

// ErrNoTransactions is returned when a block is requested to be mined and
// there is nothing to put in it.
var ErrNoTransactions = errors.New("no transactions to mine")

// =============================================================================

// NewCandidateBlock assembles the next block from a snapshot of the latest
// block and the pool. Up to the configured number of pending transactions
// that still spend unspent outputs are selected. When a reward address is
// provided a fee transaction for the selected transactions and a reward
// transaction are added for it.
func (s *State) NewCandidateBlock(rewardAddress []byte) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest, err := s.blocks.Last()
	if err != nil {
		return database.Block{}, err
	}

	pending, err := s.pool.All()
	if err != nil {
		return database.Block{}, err
	}

	l, err := s.storedLedger()
	if err != nil {
		return database.Block{}, err
	}

	txs := s.selectTransactions(pending, l)

	if len(rewardAddress) > 0 {
		if len(txs) > 0 {
			fee, err := s.minerTransaction(database.TxFee, s.genesis.FeePerTransaction*uint64(len(txs)), rewardAddress)
			if err != nil {
				return database.Block{}, err
			}
			txs = append(txs, fee)
		}

		reward, err := s.minerTransaction(database.TxReward, s.genesis.Mining.MiningReward, rewardAddress)
		if err != nil {
			return database.Block{}, err
		}
		txs = append(txs, reward)
	}

	candidate := database.Block{
		Index:        latest.Index + 1,
		PreviousHash: latest.Hash,
		Timestamp:    time.Now().UTC().Unix(),
		Nonce:        0,
		Transactions: txs,
	}

	return candidate, nil
}

// MineableTransactions returns the number of pending transactions the next
// candidate block would carry. A pool holding only transactions that can't
// be selected has nothing to mine.
func (s *State) MineableTransactions() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, err := s.pool.All()
	if err != nil {
		return 0, err
	}

	l, err := s.storedLedger()
	if err != nil {
		return 0, err
	}

	return len(s.selectTransactions(pending, l)), nil
}

// selectTransactions picks, in pool order, up to the configured number of
// regular transactions that are valid against the view and don't spend an
// output another selected transaction spends.
func (s *State) selectTransactions(pending []database.Transaction, l ledger) []database.Transaction {
	selected := newLedger()
	var txs []database.Transaction
	for _, tx := range pending {
		if len(txs) >= s.genesis.Mining.TransactionsPerBlock {
			break
		}
		if tx.Type != database.TxRegular {
			continue
		}
		if err := s.checkTransaction(tx, l); err != nil {
			s.evHandler("state: selectTransactions: skip: tx[%s]: %s", tx, err)
			continue
		}
		if err := checkAgainst(tx, selected, "candidate"); err != nil {
			s.evHandler("state: selectTransactions: skip: tx[%s]: %s", tx, err)
			continue
		}
		selected.addTx(tx)
		txs = append(txs, tx)
	}

	return txs
}

// MineNewBlock mines a candidate block paying the reward address and adds
// it to the chain.
func (s *State) MineNewBlock(ctx context.Context, rewardAddress []byte) (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: build candidate")

	candidate, err := s.NewCandidateBlock(rewardAddress)
	if err != nil {
		return database.Block{}, err
	}

	if len(candidate.Transactions) == 0 {
		return database.Block{}, ErrNoTransactions
	}

	s.evHandler("state: MineNewBlock: MINING: perform POW: blk[%d]: txs[%d]", candidate.Index, len(candidate.Transactions))

	block, err := s.pow.Mine(ctx, candidate)
	if err != nil {
		return database.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if err := ctx.Err(); err != nil {
		return database.Block{}, err
	}

	s.evHandler("state: MineNewBlock: MINING: add block: blk[%s]", block)

	if err := s.AddBlock(block); err != nil {
		return database.Block{}, err
	}

	return block, nil
}

// minerTransaction builds a zero input transaction paying the miner.
func (s *State) minerTransaction(txType database.TxType, amount uint64, address []byte) (database.Transaction, error) {
	id, err := database.NewTransactionID()
	if err != nil {
		return database.Transaction{}, err
	}

	tx := database.Transaction{
		ID:   id,
		Type: txType,
		Data: database.TransactionData{
			Outputs: []database.TransactionItem{{Amount: amount, Address: address}},
		},
	}
	tx.Hash = tx.ComputeHash()

	return tx, nil
}
