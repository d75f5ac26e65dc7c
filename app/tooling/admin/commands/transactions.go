package commands

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ardanlabs/coin/foundation/blockchain/database"
)

// Transactions writes the transactions recorded in the chain, only the
// ones touching the address when one is provided.
func Transactions(w io.Writer, blocks database.BlockStore, address []byte) error {
	chain, err := readChain(blocks)
	if err != nil {
		return err
	}

	for _, b := range chain {
		for _, tx := range b.Transactions {
			if address != nil && !touches(tx, address) {
				continue
			}

			fmt.Fprintf(w, "Block: %d  ID: %s  Type: %s  In: %d  Out: %d\n",
				b.Index, tx.ID, tx.Type, tx.InputsTotal(), tx.OutputsTotal())

			for _, in := range tx.Data.Inputs {
				fmt.Fprintf(w, "    <- %s  %d  from %s\n", in.Address, in.Amount, in.Key())
			}
			for _, out := range tx.Data.Outputs {
				fmt.Fprintf(w, "    -> %s  %d\n", out.Address, out.Amount)
			}
		}
	}

	return nil
}

func touches(tx database.Transaction, address []byte) bool {
	for _, in := range tx.Data.Inputs {
		if bytes.Equal(in.Address, address) {
			return true
		}
	}
	for _, out := range tx.Data.Outputs {
		if bytes.Equal(out.Address, address) {
			return true
		}
	}
	return false
}
