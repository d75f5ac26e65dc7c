package database

import (
	"fmt"

	"github.com/ardanlabs/coin/foundation/blockchain/signature"
)

// Block represents a group of transactions batched together and linked to
// the block before it by hash.
type Block struct {
	Index        uint64        `json:"index"`
	PreviousHash string        `json:"previousHash"`
	Timestamp    int64         `json:"timestamp"`
	Nonce        uint64        `json:"nonce"`
	Hash         string        `json:"hash"`
	Transactions []Transaction `json:"transactions"`
}

// blockContent is the part of a block covered by its hash.
type blockContent struct {
	Index        uint64        `json:"index"`
	PreviousHash string        `json:"previousHash"`
	Timestamp    int64         `json:"timestamp"`
	Nonce        uint64        `json:"nonce"`
	Transactions []Transaction `json:"transactions"`
}

// ComputeHash calculates the hash of every field of the block except the
// hash itself.
func (b Block) ComputeHash() string {
	return signature.Hash(blockContent{
		Index:        b.Index,
		PreviousHash: b.PreviousHash,
		Timestamp:    b.Timestamp,
		Nonce:        b.Nonce,
		Transactions: b.Transactions,
	})
}

// Seal recomputes the transaction hashes and the block hash.
func (b Block) Seal() Block {
	txs := make([]Transaction, len(b.Transactions))
	for i, tx := range b.Transactions {
		tx.Hash = tx.ComputeHash()
		txs[i] = tx
	}
	b.Transactions = txs
	b.Hash = b.ComputeHash()

	return b
}

// CountType returns the number of transactions of the specified type.
func (b Block) CountType(txType TxType) int {
	var n int
	for _, tx := range b.Transactions {
		if tx.Type == txType {
			n++
		}
	}
	return n
}

// String implements the fmt.Stringer interface for logging.
func (b Block) String() string {
	return fmt.Sprintf("%d:%s", b.Index, b.Hash)
}
