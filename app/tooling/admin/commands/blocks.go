package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/ardanlabs/coin/foundation/blockchain/database"
)

// Blocks writes a summary line for every block of the chain.
func Blocks(w io.Writer, blocks database.BlockStore) error {
	chain, err := readChain(blocks)
	if err != nil {
		return err
	}

	for _, b := range chain {
		fmt.Fprintf(w, "Index: %d  Hash: %s  Prev: %s  Time: %s  Nonce: %d  Txs: %d\n",
			b.Index, b.Hash, b.PreviousHash, time.Unix(b.Timestamp, 0).UTC().Format(time.RFC3339), b.Nonce, len(b.Transactions))
	}

	fmt.Fprintf(w, "\nBlocks: %d\n", len(chain))

	return nil
}
