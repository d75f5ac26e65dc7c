package memory_test

import (
	"testing"

	"github.com/ardanlabs/coin/foundation/blockchain/database/storage/memory"
	"github.com/ardanlabs/coin/foundation/blockchain/database/storage/storagetest"
)

func Test_Blocks(t *testing.T) {
	storagetest.BlockStore(t, memory.NewBlocks())
}

func Test_Wallets(t *testing.T) {
	storagetest.WalletStore(t, memory.NewWallets())
}
