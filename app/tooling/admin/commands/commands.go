// Package commands contains the functionality for the set of commands
// currently supported by the admin tool.
package commands

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/coin/foundation/blockchain/database"
)

// readChain reads every block of the store in index order.
func readChain(blocks database.BlockStore) ([]database.Block, error) {
	var chain []database.Block

	iter := blocks.ForEach()
	for {
		block, err := iter.Next()
		if err != nil {
			if errors.Is(err, database.ErrEndOfChain) {
				return chain, nil
			}
			return nil, fmt.Errorf("reading block %d: %w", len(chain), err)
		}
		chain = append(chain, block)
	}
}
