package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/ardanlabs/coin/foundation/blockchain/database"
	"github.com/ardanlabs/coin/foundation/blockchain/database/storage/memory"
	"github.com/ardanlabs/coin/foundation/blockchain/genesis"
	"github.com/ardanlabs/coin/foundation/blockchain/mempool"
	"github.com/ardanlabs/coin/foundation/blockchain/state"
)

// Verify replays the chain of the store into an empty ledger built from
// the coin settings and reports the first block the rules reject.
func Verify(w io.Writer, blocks database.BlockStore, gen genesis.Genesis) error {
	chain, err := readChain(blocks)
	if err != nil {
		return err
	}

	if len(chain) == 0 {
		return errors.New("store holds no blocks")
	}

	st, err := state.New(state.Config{
		Genesis:    gen,
		BlockStore: memory.NewBlocks(),
		TxStore:    mempool.New(),
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	if exp := gen.GenesisBlock.Seal().Hash; chain[0].Hash != exp {
		return fmt.Errorf("genesis block mismatch, got %s, exp %s", chain[0].Hash, exp)
	}

	for _, b := range chain[1:] {
		if err := st.AddBlock(b); err != nil {
			return fmt.Errorf("verifying block %d: %w", b.Index, err)
		}
		fmt.Fprintf(w, "Block: %d  Hash: %s  OK\n", b.Index, b.Hash)
	}

	fmt.Fprintf(w, "\nChain verified: %d blocks\n", len(chain))

	return nil
}
