// Package pow implements the proof of work rules: the difficulty required
// at a height, the difficulty a block carries and the mining loop.
package pow

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/ardanlabs/coin/foundation/blockchain/database"
	"github.com/ardanlabs/coin/foundation/blockchain/genesis"
)

// prefixLen is the number of hash characters that form the difficulty value.
const prefixLen = 14

// ProofOfWork represents the behavior required to accept and produce blocks.
type ProofOfWork interface {
	RequiredDifficulty(height uint64) float64
	Accept(block database.Block) bool
	Mine(ctx context.Context, candidate database.Block) (database.Block, error)
}

// New constructs the proof of work selected by the settings mode.
func New(settings genesis.ProofOfWork, evHandler func(v string, args ...any)) (ProofOfWork, error) {
	if evHandler == nil {
		evHandler = func(v string, args ...any) {}
	}

	w := work{
		settings:  settings,
		evHandler: evHandler,
	}

	switch settings.Mode {
	case genesis.ModeStrict, "":
		w.accept = w.strict
	case genesis.ModeBypass:
		w.accept = func(database.Block) bool { return true }
	default:
		return nil, fmt.Errorf("unknown proof of work mode %q", settings.Mode)
	}

	return &w, nil
}

// =============================================================================

// RequiredDifficulty returns the value a block hash must stay below at the
// specified height. The value relaxes every EveryXBlocks blocks.
func RequiredDifficulty(settings genesis.ProofOfWork, height uint64) float64 {
	step := float64((height+1)/settings.EveryXBlocks) + 1
	required := math.Floor(settings.BaseDifficulty / math.Pow(step, settings.PowCurve))

	return math.Max(required, 0)
}

// BlockDifficultyValue interprets the first characters of the block hash
// as a base 16 number. Smaller values mean more work was done.
func BlockDifficultyValue(block database.Block) (uint64, error) {
	if len(block.Hash) < prefixLen {
		return 0, fmt.Errorf("hash too short for difficulty, got %d characters", len(block.Hash))
	}

	return strconv.ParseUint(block.Hash[:prefixLen], 16, 64)
}

// =============================================================================

// work implements ProofOfWork with a configurable accept predicate.
type work struct {
	settings  genesis.ProofOfWork
	evHandler func(v string, args ...any)
	accept    func(database.Block) bool
}

// RequiredDifficulty returns the difficulty for the height.
func (w *work) RequiredDifficulty(height uint64) float64 {
	return RequiredDifficulty(w.settings, height)
}

// Accept reports whether the block satisfies the proof of work.
func (w *work) Accept(block database.Block) bool {
	return w.accept(block)
}

// strict requires the block difficulty value to be under the required
// difficulty for its index.
func (w *work) strict(block database.Block) bool {
	value, err := BlockDifficultyValue(block)
	if err != nil {
		return false
	}

	return float64(value) < w.RequiredDifficulty(block.Index)
}

// Mine searches for a nonce and timestamp that make the candidate
// acceptable. The candidate is copied so the caller's value is untouched.
func (w *work) Mine(ctx context.Context, candidate database.Block) (database.Block, error) {
	w.evHandler("pow: Mine: MINING: started: blk[%d]", candidate.Index)
	defer w.evHandler("pow: Mine: MINING: completed: blk[%d]", candidate.Index)

	block := candidate
	block.Transactions = append([]database.Transaction(nil), candidate.Transactions...)

	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			w.evHandler("pow: Mine: MINING: attempts[%d]", attempts)
		}

		// Did we get asked to stop trying to solve the problem.
		if err := ctx.Err(); err != nil {
			w.evHandler("pow: Mine: MINING: CANCELLED")
			return database.Block{}, err
		}

		block.Timestamp = time.Now().UTC().Unix()
		block.Nonce++
		block = block.Seal()

		if w.accept(block) {
			w.evHandler("pow: Mine: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: attempts[%d]", block.PreviousHash, block.Hash, attempts)
			return block, nil
		}
	}
}
