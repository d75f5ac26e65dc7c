package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/ardanlabs/coin/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Balances writes the balance of every address recorded in the chain, or
// of the single address when one is provided.
func Balances(w io.Writer, blocks database.BlockStore, address []byte) error {
	chain, err := readChain(blocks)
	if err != nil {
		return err
	}

	bals := make(map[string]int64)
	for _, b := range chain {
		for _, tx := range b.Transactions {
			for _, out := range tx.Data.Outputs {
				bals[out.Address.String()] += int64(out.Amount)
			}
			for _, in := range tx.Data.Inputs {
				bals[in.Address.String()] -= int64(in.Amount)
			}
		}
	}

	if address != nil {
		addr := hexutil.Encode(address)
		fmt.Fprintf(w, "Address: %s  Balance: %d\n", addr, bals[addr])
		return nil
	}

	addrs := make([]string, 0, len(bals))
	for addr := range bals {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)

	for _, addr := range addrs {
		fmt.Fprintf(w, "Address: %s  Balance: %d\n", addr, bals[addr])
	}

	return nil
}
