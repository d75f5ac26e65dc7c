// Package txbuilder builds signed regular transactions from a set of
// unspent outputs.
package txbuilder

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/coin/foundation/blockchain/database"
	"github.com/ardanlabs/coin/foundation/blockchain/signature"
)

// Set of errors returned when a required value was never provided.
var (
	ErrNoUnspentOutputs = errors.New("unspent outputs are required")
	ErrNoDestination    = errors.New("destination address is required")
	ErrNoAmount         = errors.New("amount is required")
	ErrNoChangeAddress  = errors.New("change address is required")
	ErrNoSecretKey      = errors.New("secret key is required")
)

// FundsError is returned when the unspent outputs can't cover the amount
// and the fee.
type FundsError struct {
	Available uint64
	Required  uint64
}

// Error implements the error interface.
func (fe *FundsError) Error() string {
	return fmt.Sprintf("not enough funds, available %d, required %d", fe.Available, fe.Required)
}

// IsFundsError checks if an error of type FundsError exists.
func IsFundsError(err error) bool {
	var fe *FundsError
	return errors.As(err, &fe)
}

// =============================================================================

// Builder accumulates the values of a transaction. Every method returns a
// new Builder so a partially built value can be reused safely.
type Builder struct {
	scheme signature.Scheme
	utxo   []database.TransactionItem
	to     []byte
	amount uint64
	change []byte
	fee    uint64
	secret []byte
}

// New constructs a builder signing with the specified scheme.
func New(scheme signature.Scheme) Builder {
	return Builder{scheme: scheme}
}

// From sets the unspent outputs that fund the transaction. Every output is
// spent in full.
func (b Builder) From(utxo []database.TransactionItem) Builder {
	b.utxo = append([]database.TransactionItem(nil), utxo...)
	return b
}

// To sets the destination address and the amount it receives.
func (b Builder) To(address []byte, amount uint64) Builder {
	b.to = address
	b.amount = amount
	return b
}

// Change sets the address the remainder is returned to.
func (b Builder) Change(address []byte) Builder {
	b.change = address
	return b
}

// Fee sets the fee left for the miner.
func (b Builder) Fee(fee uint64) Builder {
	b.fee = fee
	return b
}

// Sign sets the secret key used to sign every input.
func (b Builder) Sign(secret []byte) Builder {
	b.secret = secret
	return b
}

// Build validates the accumulated values and produces the signed
// transaction with a fresh id.
func (b Builder) Build() (database.Transaction, error) {
	switch {
	case len(b.utxo) == 0:
		return database.Transaction{}, ErrNoUnspentOutputs
	case len(b.to) == 0:
		return database.Transaction{}, ErrNoDestination
	case b.amount == 0:
		return database.Transaction{}, ErrNoAmount
	case len(b.secret) == 0:
		return database.Transaction{}, ErrNoSecretKey
	}

	var total uint64
	for _, u := range b.utxo {
		total += u.Amount
	}

	required := b.amount + b.fee
	if total < required {
		return database.Transaction{}, &FundsError{Available: total, Required: required}
	}

	changeAmount := total - required
	if changeAmount > 0 && len(b.change) == 0 {
		return database.Transaction{}, ErrNoChangeAddress
	}

	id, err := database.NewTransactionID()
	if err != nil {
		return database.Transaction{}, err
	}

	inputs := make([]database.TransactionItem, len(b.utxo))
	for i, u := range b.utxo {
		in := database.TransactionItem{
			TransactionID: u.TransactionID,
			Index:         u.Index,
			Amount:        u.Amount,
			Address:       u.Address,
		}

		sig, err := b.scheme.Sign(b.secret, in.Ref().Digest())
		if err != nil {
			return database.Transaction{}, fmt.Errorf("signing input %d: %w", i, err)
		}
		in.Signature = sig

		inputs[i] = in
	}

	outputs := []database.TransactionItem{{Amount: b.amount, Address: b.to}}
	if changeAmount > 0 {
		outputs = append(outputs, database.TransactionItem{Amount: changeAmount, Address: b.change})
	}

	tx := database.Transaction{
		ID:   id,
		Type: database.TxRegular,
		Data: database.TransactionData{
			Inputs:  inputs,
			Outputs: outputs,
		},
	}
	tx.Hash = tx.ComputeHash()

	return tx, nil
}
