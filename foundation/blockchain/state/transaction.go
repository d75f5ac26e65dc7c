package state

import (
	"github.com/ardanlabs/coin/foundation/blockchain/database"
)

// AddTransaction validates the transaction against the chain and the pool
// and, if valid, adds it to the pool and shares it with the network.
func (s *State) AddTransaction(tx database.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: AddTransaction: started: tx[%s]", tx)

	// Fee and reward transactions are only created by a miner inside a block.
	if tx.Type != database.TxRegular {
		err := database.NewTxError(tx.ID, "invalid transaction type, expected %s got %s", database.TxRegular, tx.Type)
		s.evHandler("state: AddTransaction: rejected: tx[%s]: %s", tx, err)
		return err
	}

	l, err := s.storedLedger()
	if err != nil {
		return err
	}

	if err := s.checkTransaction(tx, l); err != nil {
		s.evHandler("state: AddTransaction: rejected: tx[%s]: %s", tx, err)
		return err
	}

	pending, err := s.pool.All()
	if err != nil {
		return err
	}

	if err := checkAgainst(tx, newLedger(database.Block{Transactions: pending}), "pool"); err != nil {
		s.evHandler("state: AddTransaction: rejected: tx[%s]: %s", tx, err)
		return err
	}

	if err := s.pool.Add(tx); err != nil {
		return err
	}

	s.evHandler("state: AddTransaction: added to pool: tx[%s]", tx)

	s.Worker.SignalShareTx(tx)

	return nil
}

// CheckTransaction validates the transaction data and confirms it is not
// already recorded and spends no output the stored chain has spent.
func (s *State) CheckTransaction(tx database.Transaction) error {
	l, err := s.storedLedger()
	if err != nil {
		return err
	}

	return s.checkTransaction(tx, l)
}

// =============================================================================

// checkTransaction validates the transaction against the ledger view.
func (s *State) checkTransaction(tx database.Transaction, l ledger) error {
	if err := tx.Check(s.genesis.FeePerTransaction, s.scheme); err != nil {
		return err
	}

	return checkAgainst(tx, l, "blockchain")
}

// checkAgainst reports a transaction whose id or inputs are already used
// in the view. The where value names the view in the reason.
func checkAgainst(tx database.Transaction, l ledger, where string) error {
	if _, exists := l.txIDs[tx.ID]; exists {
		return database.NewTxError(tx.ID, "transaction already in the %s", where)
	}

	seen := make(map[string]struct{}, len(tx.Data.Inputs))
	for _, in := range tx.Data.Inputs {
		if _, exists := l.spent[in.Key()]; exists {
			return database.NewTxError(tx.ID, "double spend, output %s already spent in the %s", in.Key(), where)
		}
		if _, exists := seen[in.Key()]; exists {
			return database.NewTxError(tx.ID, "double spend, output %s spent twice by the transaction", in.Key())
		}
		seen[in.Key()] = struct{}{}
	}

	return nil
}

// purgePool removes the pending transactions that can never be mined
// against the view: the ones it records, the ones spending an output it has
// spent and any that are not regular transactions. The caller must hold the
// state lock.
func (s *State) purgePool(l ledger, caller string) error {
	pending, err := s.pool.All()
	if err != nil {
		return err
	}

	var stale []string
	for _, tx := range pending {
		if tx.Type != database.TxRegular {
			s.evHandler("state: %s: remove from pool: tx[%s]: not a regular transaction", caller, tx)
			stale = append(stale, tx.ID)
			continue
		}
		if err := checkAgainst(tx, l, "blockchain"); err != nil {
			s.evHandler("state: %s: remove from pool: tx[%s]: %s", caller, tx, err)
			stale = append(stale, tx.ID)
		}
	}

	if len(stale) == 0 {
		return nil
	}

	s.evHandler("state: %s: remove transactions from pool: count[%d]", caller, len(stale))

	return s.pool.Delete(stale...)
}

// addTx records the transaction in the view.
func (l ledger) addTx(tx database.Transaction) {
	l.add(database.Block{Transactions: []database.Transaction{tx}})
}
