package database

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/ardanlabs/coin/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// TxType represents the kind of transaction recorded in a block.
type TxType string

// Set of transaction types.
const (
	TxRegular TxType = "regular" // Moves funds between addresses.
	TxFee     TxType = "fee"     // Pays the miner the fees of the block.
	TxReward  TxType = "reward"  // Pays the miner the subsidy for the block.
)

// =============================================================================

// TransactionItem represents an input or an output of a transaction. An
// output is spent once a later input references its transaction id and index.
type TransactionItem struct {
	TransactionID string        `json:"transactionId,omitempty"`
	Index         uint64        `json:"index"`
	Amount        uint64        `json:"amount"`
	Address       hexutil.Bytes `json:"address"`
	Signature     hexutil.Bytes `json:"signature,omitempty"`
}

// Key returns the output reference this item identifies.
func (ti TransactionItem) Key() string {
	return fmt.Sprintf("%s:%d", ti.TransactionID, ti.Index)
}

// Ref returns the record an input signature covers.
func (ti TransactionItem) Ref() InputRef {
	return InputRef{
		TransactionID: ti.TransactionID,
		Index:         ti.Index,
		Address:       ti.Address,
	}
}

// InputRef is the content signed by the owner of an output to spend it.
type InputRef struct {
	TransactionID string        `json:"transactionId"`
	Index         uint64        `json:"index"`
	Address       hexutil.Bytes `json:"address"`
}

// Digest returns the 32 byte digest that is signed for this reference.
func (ir InputRef) Digest() []byte {
	return signature.HashBytes(ir)
}

// =============================================================================

// TransactionData holds the inputs being spent and the outputs being created.
type TransactionData struct {
	Inputs  []TransactionItem `json:"inputs"`
	Outputs []TransactionItem `json:"outputs"`
}

// Transaction represents a transfer of value recorded on the blockchain.
type Transaction struct {
	ID   string          `json:"id"`
	Hash string          `json:"hash"`
	Type TxType          `json:"type"`
	Data TransactionData `json:"data"`
}

// NewTransactionID generates a random 32 byte id in hex.
func NewTransactionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// ComputeHash calculates the hash of the transaction from its id, type
// and the hash of its data.
func (tx Transaction) ComputeHash() string {
	return signature.Hash(tx.ID + string(tx.Type) + signature.Hash(tx.Data))
}

// InputsTotal returns the sum of the input amounts.
func (tx Transaction) InputsTotal() uint64 {
	var total uint64
	for _, in := range tx.Data.Inputs {
		total += in.Amount
	}
	return total
}

// OutputsTotal returns the sum of the output amounts.
func (tx Transaction) OutputsTotal() uint64 {
	var total uint64
	for _, out := range tx.Data.Outputs {
		total += out.Amount
	}
	return total
}

// Check validates the hash, the input signatures and, for regular
// transactions, that the inputs cover the outputs plus the fee. Fee and
// reward transactions create value and are bounded by the block rules.
func (tx Transaction) Check(feePerTransaction uint64, scheme signature.Scheme) error {
	if hash := tx.ComputeHash(); tx.Hash != hash {
		return NewTxError(tx.ID, "invalid transaction hash, got %s, exp %s", tx.Hash, hash)
	}

	for i, in := range tx.Data.Inputs {
		if !scheme.Verify(in.Address, in.Ref().Digest(), in.Signature) {
			return NewTxError(tx.ID, "invalid input signature at index %d", i)
		}
	}

	if tx.Type != TxRegular {
		return nil
	}

	inputs := tx.InputsTotal()
	outputs := tx.OutputsTotal()
	if inputs < outputs {
		return NewTxError(tx.ID, "invalid transaction balance, inputs sum %d, outputs sum %d", inputs, outputs)
	}

	if fee := inputs - outputs; fee < feePerTransaction {
		return NewTxError(tx.ID, "not enough fee, expected %d got %d", feePerTransaction, fee)
	}

	return nil
}

// String implements the fmt.Stringer interface for logging.
func (tx Transaction) String() string {
	return fmt.Sprintf("%s:%s", tx.Type, tx.ID)
}
