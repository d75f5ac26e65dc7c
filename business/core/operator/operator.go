// Package operator provides the core business API for wallets hosted by
// the node. Wallets hold key pairs whose public keys are addresses on the
// blockchain and are used to sign the transactions created for them.
package operator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/coin/foundation/blockchain/database"
	"github.com/ardanlabs/coin/foundation/blockchain/state"
	"github.com/ardanlabs/coin/foundation/blockchain/txbuilder"
	"github.com/ardanlabs/coin/foundation/blockchain/wallet"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

// ErrInvalidPassword is returned when the password doesn't match the wallet.
var ErrInvalidPassword = errors.New("invalid password for wallet")

// =============================================================================

// Wallet is the public view of a wallet. Secret material is never part
// of it.
type Wallet struct {
	ID        string          `json:"id"`
	Addresses []hexutil.Bytes `json:"addresses"`
}

func toWallet(w wallet.Wallet) Wallet {
	return Wallet{
		ID:        w.ID,
		Addresses: w.Addresses(),
	}
}

// =============================================================================

// Operator manages the set of APIs for wallet access.
type Operator struct {
	log     *zap.SugaredLogger
	state   *state.State
	wallets wallet.Store
	mu      sync.Mutex
}

// New constructs an operator for api access.
func New(log *zap.SugaredLogger, st *state.State, wallets wallet.Store) *Operator {
	return &Operator{
		log:     log,
		state:   st,
		wallets: wallets,
	}
}

// CreateWallet creates and stores a new wallet protected by the password.
func (o *Operator) CreateWallet(password string) (Wallet, error) {
	w, err := wallet.New(password)
	if err != nil {
		return Wallet{}, err
	}

	if err := o.wallets.Add(w); err != nil {
		return Wallet{}, fmt.Errorf("storing wallet: %w", err)
	}

	o.log.Infow("operator: create wallet", "id", w.ID)

	return toWallet(w), nil
}

// Wallets returns every wallet hosted by the node.
func (o *Operator) Wallets() ([]Wallet, error) {
	all, err := o.wallets.All()
	if err != nil {
		return nil, err
	}

	wallets := make([]Wallet, len(all))
	for i, w := range all {
		wallets[i] = toWallet(w)
	}

	return wallets, nil
}

// Wallet returns the wallet with the specified id.
func (o *Operator) Wallet(walletID string) (Wallet, error) {
	w, err := o.wallets.ByID(walletID)
	if err != nil {
		return Wallet{}, err
	}

	return toWallet(w), nil
}

// GenerateAddress derives the next address for the wallet.
func (o *Operator) GenerateAddress(walletID string, password string) (hexutil.Bytes, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	w, err := o.unlock(walletID, password)
	if err != nil {
		return nil, err
	}

	w, kp, err := w.GenerateAddress(o.state.Scheme())
	if err != nil {
		return nil, fmt.Errorf("generating address: %w", err)
	}

	if err := o.wallets.Update(w); err != nil {
		return nil, fmt.Errorf("storing wallet: %w", err)
	}

	o.log.Infow("operator: generate address", "id", w.ID, "index", kp.Index, "address", kp.PublicKey)

	return kp.PublicKey, nil
}

// Addresses returns the addresses of the wallet in the order they were
// generated.
func (o *Operator) Addresses(walletID string) ([]hexutil.Bytes, error) {
	w, err := o.wallets.ByID(walletID)
	if err != nil {
		return nil, err
	}

	return w.Addresses(), nil
}

// BalanceForAddress returns the sum of the unspent outputs for the address.
func (o *Operator) BalanceForAddress(address []byte) (uint64, error) {
	return o.state.BalanceForAddress(address)
}

// CreateTransaction builds a transaction moving the amount from an address
// of the wallet to the destination, signs it and adds it to the pending
// pool. Outputs already spent by pending transactions are not used.
func (o *Operator) CreateTransaction(walletID string, password string, from []byte, to []byte, amount uint64, change []byte) (database.Transaction, error) {
	w, err := o.unlock(walletID, password)
	if err != nil {
		return database.Transaction{}, err
	}

	secret, err := w.SecretKeyFor(from)
	if err != nil {
		return database.Transaction{}, err
	}

	utxo, err := o.available(from)
	if err != nil {
		return database.Transaction{}, err
	}

	tx, err := txbuilder.New(o.state.Scheme()).
		From(utxo).
		To(to, amount).
		Change(change).
		Fee(o.state.Genesis().FeePerTransaction).
		Sign(secret).
		Build()
	if err != nil {
		return database.Transaction{}, err
	}

	if err := o.state.AddTransaction(tx); err != nil {
		return database.Transaction{}, err
	}

	o.log.Infow("operator: create transaction", "id", w.ID, "tx", tx.ID, "amount", amount)

	return tx, nil
}

// =============================================================================

// unlock returns the wallet when the password matches.
func (o *Operator) unlock(walletID string, password string) (wallet.Wallet, error) {
	w, err := o.wallets.ByID(walletID)
	if err != nil {
		return wallet.Wallet{}, err
	}

	if !w.CheckPassword(password) {
		return wallet.Wallet{}, ErrInvalidPassword
	}

	return w, nil
}

// available returns the unspent outputs for the address that no pending
// transaction is spending yet.
func (o *Operator) available(address []byte) ([]database.TransactionItem, error) {
	utxo, err := o.state.UnspentOutputsForAddress(address)
	if err != nil {
		return nil, err
	}

	pending, err := o.state.PendingTransactions()
	if err != nil {
		return nil, err
	}

	spent := make(map[string]struct{})
	for _, tx := range pending {
		for _, in := range tx.Data.Inputs {
			spent[in.Key()] = struct{}{}
		}
	}

	var free []database.TransactionItem
	for _, u := range utxo {
		if _, exists := spent[u.Key()]; !exists {
			free = append(free, u)
		}
	}

	return free, nil
}
