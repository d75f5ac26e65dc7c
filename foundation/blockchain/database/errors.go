package database

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by a store when the requested item does not exist.
var ErrNotFound = errors.New("not found")

// =============================================================================

// BlockError is returned when a block breaks one of the block rules.
type BlockError struct {
	Index  uint64
	Reason string
	Err    error
}

// NewBlockError constructs a block error with a formatted reason.
func NewBlockError(index uint64, format string, args ...any) error {
	return &BlockError{Index: index, Reason: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (be *BlockError) Error() string {
	if be.Err != nil {
		return fmt.Sprintf("block %d: %s: %s", be.Index, be.Reason, be.Err)
	}
	return fmt.Sprintf("block %d: %s", be.Index, be.Reason)
}

// Unwrap provides access to the transaction error that caused it.
func (be *BlockError) Unwrap() error {
	return be.Err
}

// IsBlockError checks if an error of type BlockError exists.
func IsBlockError(err error) bool {
	var be *BlockError
	return errors.As(err, &be)
}

// =============================================================================

// TxError is returned when a transaction breaks one of the transaction rules.
type TxError struct {
	ID     string
	Reason string
}

// NewTxError constructs a transaction error with a formatted reason.
func NewTxError(id string, format string, args ...any) error {
	return &TxError{ID: id, Reason: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (te *TxError) Error() string {
	return fmt.Sprintf("transaction %s: %s", te.ID, te.Reason)
}

// IsTxError checks if an error of type TxError exists.
func IsTxError(err error) bool {
	var te *TxError
	return errors.As(err, &te)
}

// =============================================================================

// ChainError is returned when a candidate chain can't replace the local one.
type ChainError struct {
	Reason string
	Err    error
}

// NewChainError constructs a chain error with a formatted reason.
func NewChainError(format string, args ...any) error {
	return &ChainError{Reason: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (ce *ChainError) Error() string {
	if ce.Err != nil {
		return fmt.Sprintf("chain: %s: %s", ce.Reason, ce.Err)
	}
	return fmt.Sprintf("chain: %s", ce.Reason)
}

// Unwrap provides access to the block error that caused it.
func (ce *ChainError) Unwrap() error {
	return ce.Err
}

// IsChainError checks if an error of type ChainError exists.
func IsChainError(err error) bool {
	var ce *ChainError
	return errors.As(err, &ce)
}
