// Package genesis maintains access to the coin settings and the genesis
// block every node must share.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ardanlabs/coin/foundation/blockchain/database"
)

// Set of proof of work modes.
const (
	ModeStrict = "strict" // A block must meet the required difficulty.
	ModeBypass = "bypass" // Any block is accepted, mining runs once.
)

// Mining represents the settings for building new blocks.
type Mining struct {
	MiningReward         uint64 `json:"miningReward"`         // Subsidy paid to the miner of a block.
	TransactionsPerBlock int    `json:"transactionsPerBlock"` // Pending transactions taken per block.
}

// ProofOfWork represents the settings for the difficulty function.
type ProofOfWork struct {
	BaseDifficulty float64 `json:"baseDifficulty"`
	EveryXBlocks   uint64  `json:"everyXBlocks"`
	PowCurve       float64 `json:"powCurve"`
	Mode           string  `json:"mode"`
}

// Genesis represents the coin settings file.
type Genesis struct {
	FeePerTransaction uint64         `json:"feePerTransaction"` // Fee every regular transaction pays.
	Mining            Mining         `json:"mining"`
	ProofOfWork       ProofOfWork    `json:"proofOfWork"`
	SignatureScheme   string         `json:"signatureScheme"`
	GenesisBlock      database.Block `json:"genesisBlock"`
}

// =============================================================================

// Default returns the reference coin settings.
func Default() Genesis {
	return Genesis{
		FeePerTransaction: 1,
		Mining: Mining{
			MiningReward:         5000000000,
			TransactionsPerBlock: 2,
		},
		ProofOfWork: ProofOfWork{
			BaseDifficulty: 9007199254740991,
			EveryXBlocks:   5,
			PowCurve:       5,
			Mode:           ModeStrict,
		},
		SignatureScheme: "ed25519",
		GenesisBlock:    Block(),
	}
}

// Block returns the reference genesis block.
func Block() database.Block {
	return database.Block{
		Index:        0,
		PreviousHash: "0",
		Timestamp:    1465154705,
		Nonce:        0,
		Transactions: []database.Transaction{
			{
				ID:   "63ec3ac02f822450039df13ddf7c3c0f19bab4acd4dc928c62fcd78d5ebc6dba",
				Type: database.TxRegular,
			},
		},
	}.Seal()
}

// Load opens and consumes the coin settings file. Values missing from the
// file keep their default.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}
	genesis.GenesisBlock = genesis.GenesisBlock.Seal()

	return genesis, nil
}

// Validate checks the settings can drive a chain.
func (g Genesis) Validate() error {
	if g.Mining.TransactionsPerBlock <= 0 {
		return fmt.Errorf("transactionsPerBlock must be positive, got %d", g.Mining.TransactionsPerBlock)
	}

	if g.ProofOfWork.EveryXBlocks == 0 {
		return fmt.Errorf("everyXBlocks must be positive")
	}

	switch g.ProofOfWork.Mode {
	case ModeStrict, ModeBypass:
	default:
		return fmt.Errorf("unknown proof of work mode %q", g.ProofOfWork.Mode)
	}

	if g.GenesisBlock.Index != 0 {
		return fmt.Errorf("genesis block index must be 0, got %d", g.GenesisBlock.Index)
	}

	return nil
}
