package state_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/ardanlabs/coin/foundation/blockchain/database"
	"github.com/ardanlabs/coin/foundation/blockchain/database/storage/memory"
	"github.com/ardanlabs/coin/foundation/blockchain/genesis"
	"github.com/ardanlabs/coin/foundation/blockchain/mempool"
	"github.com/ardanlabs/coin/foundation/blockchain/signature"
	"github.com/ardanlabs/coin/foundation/blockchain/state"
	"github.com/ardanlabs/coin/foundation/blockchain/txbuilder"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newState(t *testing.T, mode string) *state.State {
	t.Helper()

	gen := genesis.Default()
	gen.ProofOfWork.Mode = mode

	st, err := state.New(state.Config{
		Genesis:    gen,
		BlockStore: memory.NewBlocks(),
		TxStore:    mempool.New(),
		EvHandler:  func(v string, args ...any) { t.Logf(v, args...) },
	})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %s", err)
	}

	return st
}

func newKey(t *testing.T, seed string) (secret []byte, public []byte) {
	t.Helper()

	secret, public, err := signature.Ed25519{}.KeyFromSeed(signature.HashBytes(seed))
	if err != nil {
		t.Fatalf("Should be able to derive keys: %s", err)
	}

	return secret, public
}

func mine(t *testing.T, st *state.State, address []byte) database.Block {
	t.Helper()

	block, err := st.MineNewBlock(context.Background(), address)
	if err != nil {
		t.Fatalf("Should be able to mine a block: %s", err)
	}

	return block
}

func transfer(t *testing.T, st *state.State, secret []byte, from []byte, to []byte, amount uint64) database.Transaction {
	t.Helper()

	utxo, err := st.UnspentOutputsForAddress(from)
	if err != nil {
		t.Fatalf("Should be able to get unspent outputs: %s", err)
	}

	tx, err := txbuilder.New(st.Scheme()).
		From(utxo).
		To(to, amount).
		Change(from).
		Fee(st.Genesis().FeePerTransaction).
		Sign(secret).
		Build()
	if err != nil {
		t.Fatalf("Should be able to build a transaction: %s", err)
	}

	return tx
}

// =============================================================================

func Test_Genesis(t *testing.T) {
	t.Log("Given the need to start a chain from the genesis block.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen starting with empty stores.", testID)
		{
			st := newState(t, genesis.ModeStrict)

			latest, err := st.LatestBlock()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to get the latest block: %v", failed, testID, err)
			}

			if latest.Index != 0 || latest.Hash != genesis.Block().Hash || latest.ComputeHash() != latest.Hash {
				t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, latest)
				t.Fatalf("\t%s\tTest %d:\tShould hold the genesis block.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould hold the genesis block.", success, testID)

			if err := st.Init(); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to init again: %v", failed, testID, err)
			}
			blocks, _ := st.Blocks()
			if len(blocks) != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould not write the genesis block twice: %d", failed, testID, len(blocks))
			}
			t.Logf("\t%s\tTest %d:\tShould not write the genesis block twice.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the pool holds recorded transactions.", testID)
		{
			blocks := memory.NewBlocks()
			pool := mempool.New()
			gen := genesis.Default()

			if err := blocks.Add(gen.GenesisBlock); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to write genesis: %v", failed, testID, err)
			}
			pool.Add(gen.GenesisBlock.Transactions[0])
			pool.Add(database.Transaction{ID: "pending", Type: database.TxRegular})

			if _, err := state.New(state.Config{Genesis: gen, BlockStore: blocks, TxStore: pool}); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the state: %v", failed, testID, err)
			}

			if pool.Count() != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould drop the recorded transaction: %d", failed, testID, pool.Count())
			}
			t.Logf("\t%s\tTest %d:\tShould drop the recorded transaction.", success, testID)
		}
	}
}

func Test_MineOneBlock(t *testing.T) {
	t.Log("Given the need to mine a block with no pending transactions.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen mining to a reward address.", testID)
		{
			st := newState(t, genesis.ModeStrict)
			_, miner := newKey(t, "miner")

			block := mine(t, st, miner)

			if block.CountType(database.TxReward) != 1 || block.CountType(database.TxFee) != 0 || len(block.Transactions) != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould hold exactly one reward transaction.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould hold exactly one reward transaction.", success, testID)

			blocks, err := st.Blocks()
			if err != nil || len(blocks) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould append the block: %v", failed, testID, err)
			}
			if blocks[1].PreviousHash != blocks[0].Hash || blocks[1].ComputeHash() != blocks[1].Hash {
				t.Fatalf("\t%s\tTest %d:\tShould link the block to the genesis block.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould append a linked block.", success, testID)

			balance, err := st.BalanceForAddress(miner)
			if err != nil || balance != st.Genesis().Mining.MiningReward {
				t.Fatalf("\t%s\tTest %d:\tShould pay the reward: %d: %v", failed, testID, balance, err)
			}
			t.Logf("\t%s\tTest %d:\tShould pay the reward.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen there is nothing to mine.", testID)
		{
			st := newState(t, genesis.ModeStrict)

			if _, err := st.MineNewBlock(context.Background(), nil); err != state.ErrNoTransactions {
				t.Fatalf("\t%s\tTest %d:\tShould refuse to mine an empty block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould refuse to mine an empty block.", success, testID)
		}
	}
}

func Test_Transfer(t *testing.T) {
	t.Log("Given the need to move funds between wallets.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen W1 sends 5,000,000,000 to W2.", testID)
		{
			st := newState(t, genesis.ModeStrict)
			secret1, w1 := newKey(t, "w1")
			_, w2 := newKey(t, "w2")
			_, w3 := newKey(t, "w3")

			mine(t, st, w1)
			mine(t, st, w1)

			before, _ := st.BalanceForAddress(w1)
			const amount = 5000000000

			tx := transfer(t, st, secret1, w1, w2, amount)
			if err := st.AddTransaction(tx); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to add the transaction: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to add the transaction.", success, testID)

			block := mine(t, st, w3)
			if block.CountType(database.TxRegular) != 1 || block.CountType(database.TxFee) != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould mine the transaction with its fee.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould mine the transaction with its fee.", success, testID)

			b2, _ := st.BalanceForAddress(w2)
			if b2 != amount {
				t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, b2)
				t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, amount)
				t.Fatalf("\t%s\tTest %d:\tShould credit W2.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould credit W2.", success, testID)

			after, _ := st.BalanceForAddress(w1)
			if exp := before - amount - st.Genesis().FeePerTransaction; after != exp {
				t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, after)
				t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, exp)
				t.Fatalf("\t%s\tTest %d:\tShould debit W1 the amount plus the fee.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould debit W1 the amount plus the fee.", success, testID)

			pending, _ := st.PendingTransactions()
			if len(pending) != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould empty the pool.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould empty the pool.", success, testID)

			if _, err := st.TransactionFromBlocks(tx.ID); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould find the transaction in the chain: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould find the transaction in the chain.", success, testID)
		}
	}
}

func Test_RejectTransactions(t *testing.T) {
	t.Log("Given the need to reject invalid transactions.")
	{
		st := newState(t, genesis.ModeBypass)
		secret1, w1 := newKey(t, "w1")
		_, w2 := newKey(t, "w2")

		mine(t, st, w1)
		utxo, _ := st.UnspentOutputsForAddress(w1)

		testID := 0
		t.Logf("\tTest %d:\tWhen the fee is missing.", testID)
		{
			tx, err := txbuilder.New(st.Scheme()).From(utxo).To(w2, utxo[0].Amount).Sign(secret1).Build()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to build: %v", failed, testID, err)
			}

			err = st.AddTransaction(tx)
			if !database.IsTxError(err) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the transaction: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the transaction: %v", success, testID, err)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the pool already spends the output.", testID)
		{
			tx1 := transfer(t, st, secret1, w1, w2, 100)
			tx2 := transfer(t, st, secret1, w1, w2, 200)

			if err := st.AddTransaction(tx1); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould add the first transaction: %v", failed, testID, err)
			}
			if err := st.AddTransaction(tx1); !database.IsTxError(err) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the same transaction again: %v", failed, testID, err)
			}
			if err := st.AddTransaction(tx2); !database.IsTxError(err) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the second spend: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the second spend.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the chain already spends the output.", testID)
		{
			tx3 := transfer(t, st, secret1, w1, w2, 300)

			mine(t, st, w2)

			err := st.AddTransaction(tx3)
			if !database.IsTxError(err) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the double spend: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the double spend: %v", success, testID, err)
		}
	}
}

func Test_CheckBlock(t *testing.T) {
	st := newState(t, genesis.ModeBypass)
	_, miner := newKey(t, "miner")

	latest, _ := st.LatestBlock()

	valid := func() database.Block {
		b, err := st.NewCandidateBlock(miner)
		if err != nil {
			t.Fatalf("Should be able to build a candidate: %s", err)
		}
		return b.Seal()
	}

	// minerTx builds a zero input transaction the block rules bound by count.
	minerTx := func(id string, txType database.TxType, amount uint64) database.Transaction {
		return database.Transaction{ID: id, Type: txType, Data: database.TransactionData{
			Outputs: []database.TransactionItem{{Amount: amount, Address: miner}},
		}}
	}

	type table struct {
		name   string
		block  func() database.Block
		reason string
	}

	tt := []table{
		{name: "valid", block: valid},
		{name: "index", reason: "invalid index", block: func() database.Block { b := valid(); b.Index = 5; return b.Seal() }},
		{name: "previous hash", reason: "invalid previousHash", block: func() database.Block { b := valid(); b.PreviousHash = "abc"; return b.Seal() }},
		{name: "hash", reason: "invalid hash", block: func() database.Block { b := valid(); b.Nonce = 99; return b }},
		{name: "balance", reason: "invalid block balance", block: func() database.Block {
			b := valid()
			b.Transactions[0].Data.Outputs[0].Amount++
			return b.Seal()
		}},
		{name: "two fees", reason: "invalid fee transaction count, expected at most 1 got 2", block: func() database.Block {
			b := valid()
			b.Transactions = append(b.Transactions, minerTx("fee1", database.TxFee, 0), minerTx("fee2", database.TxFee, 0))
			return b.Seal()
		}},
		{name: "two rewards", reason: "invalid reward transaction count, expected at most 1 got 2", block: func() database.Block {
			b := valid()
			b.Transactions = append(b.Transactions, minerTx("reward2", database.TxReward, 0))
			return b.Seal()
		}},
	}

	t.Log("Given the need to apply the block rules.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen checking a block with a %s.", testID, tst.name)
				{
					err := st.CheckBlock(tst.block(), latest)
					switch {
					case tst.reason == "" && err != nil:
						t.Fatalf("\t%s\tTest %d:\tShould accept the block: %v", failed, testID, err)
					case tst.reason != "" && !database.IsBlockError(err):
						t.Fatalf("\t%s\tTest %d:\tShould reject the block with a block error: %v", failed, testID, err)
					case tst.reason != "" && !strings.Contains(err.Error(), tst.reason):
						t.Fatalf("\t%s\tTest %d:\tShould reject the block for %q: %v", failed, testID, tst.reason, err)
					}
					t.Logf("\t%s\tTest %d:\tShould get the expected result: %v", success, testID, err)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_PurgePool(t *testing.T) {
	t.Log("Given the need to keep only minable transactions in the pool.")
	{
		pool := mempool.New()
		gen := genesis.Default()
		gen.ProofOfWork.Mode = genesis.ModeBypass

		st, err := state.New(state.Config{
			Genesis:    gen,
			BlockStore: memory.NewBlocks(),
			TxStore:    pool,
			EvHandler:  func(v string, args ...any) { t.Logf(v, args...) },
		})
		if err != nil {
			t.Fatalf("Should be able to construct the state: %s", err)
		}
		other := newState(t, genesis.ModeBypass)

		secret1, w1 := newKey(t, "w1")
		_, w2 := newKey(t, "w2")
		_, miner := newKey(t, "miner")

		funding := mine(t, st, w1)
		if err := other.AddBlock(funding); err != nil {
			t.Fatalf("Should be able to share the block: %s", err)
		}

		testID := 0
		t.Logf("\tTest %d:\tWhen a reward transaction is submitted.", testID)
		{
			reward := database.Transaction{ID: "reward", Type: database.TxReward, Data: database.TransactionData{
				Outputs: []database.TransactionItem{{Amount: 5, Address: w2}},
			}}
			reward.Hash = reward.ComputeHash()

			err := st.AddTransaction(reward)
			if !database.IsTxError(err) || !strings.Contains(err.Error(), "invalid transaction type") {
				t.Fatalf("\t%s\tTest %d:\tShould reject the transaction: %v", failed, testID, err)
			}
			if pool.Count() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould leave the pool empty : got %d", failed, testID, pool.Count())
			}
			t.Logf("\t%s\tTest %d:\tShould reject the transaction: %v", success, testID, err)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the pool only holds a reward transaction.", testID)
		{
			reward := database.Transaction{ID: "stored", Type: database.TxReward, Data: database.TransactionData{
				Outputs: []database.TransactionItem{{Amount: 5, Address: w2}},
			}}
			reward.Hash = reward.ComputeHash()
			pool.Add(reward)

			n, err := st.MineableTransactions()
			if err != nil || n != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould have nothing to mine : got %d, %v", failed, testID, n, err)
			}
			t.Logf("\t%s\tTest %d:\tShould have nothing to mine.", success, testID)

			if err := st.Init(); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to init: %v", failed, testID, err)
			}
			if pool.Count() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould drop the reward on init : got %d pending", failed, testID, pool.Count())
			}
			t.Logf("\t%s\tTest %d:\tShould drop the reward on init.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a block spends the output of a pending transaction.", testID)
		{
			pending := transfer(t, st, secret1, w1, w2, 10)
			conflict := transfer(t, other, secret1, w1, miner, 20)

			if err := st.AddTransaction(pending); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to add the transaction: %v", failed, testID, err)
			}
			if n, _ := st.MineableTransactions(); n != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould have one transaction to mine : got %d", failed, testID, n)
			}

			if err := other.AddTransaction(conflict); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to add the conflicting transaction: %v", failed, testID, err)
			}
			if err := st.AddBlock(mine(t, other, miner)); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to add the block: %v", failed, testID, err)
			}

			if pool.Count() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould drop the orphaned transaction : got %d pending", failed, testID, pool.Count())
			}
			t.Logf("\t%s\tTest %d:\tShould drop the orphaned transaction.", success, testID)
		}
	}
}

func Test_StrictProofOfWork(t *testing.T) {
	t.Log("Given the need to enforce the proof of work.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen a block misses the required difficulty.", testID)
		{
			st := newState(t, genesis.ModeStrict)
			_, miner := newKey(t, "miner")

			candidate, err := st.NewCandidateBlock(miner)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to build a candidate: %v", failed, testID, err)
			}

			// Search for a nonce that fails the proof of work.
			var block database.Block
			for nonce := uint64(0); ; nonce++ {
				candidate.Nonce = nonce
				block = candidate.Seal()
				if !st.ProofOfWork().Accept(block) {
					break
				}
			}

			if err := st.AddBlock(block); !database.IsBlockError(err) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the block.", success, testID)
		}
	}
}

func Test_ReplaceChain(t *testing.T) {
	t.Log("Given the need to replace the chain with a longer one.")
	{
		_, miner := newKey(t, "miner")

		local := newState(t, genesis.ModeStrict)
		mine(t, local, miner)

		remote := newState(t, genesis.ModeStrict)
		mine(t, remote, miner)
		mine(t, remote, miner)
		mine(t, remote, miner)

		testID := 0
		t.Logf("\tTest %d:\tWhen the candidate is not longer.", testID)
		{
			own, _ := local.Blocks()
			err := local.ReplaceChain(own)
			if !database.IsChainError(err) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the chain: %v", failed, testID, err)
			}

			after, _ := local.Blocks()
			if len(after) != len(own) {
				t.Fatalf("\t%s\tTest %d:\tShould not change the chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the chain without changes.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the candidate diverges from the local chain.", testID)
		{
			candidate, _ := remote.Blocks()
			err := local.ReplaceChain(candidate)
			if !database.IsChainError(err) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the chain: %v", failed, testID, err)
			}

			after, _ := local.Blocks()
			if len(after) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould not change the chain: %d", failed, testID, len(after))
			}
			t.Logf("\t%s\tTest %d:\tShould reject the chain without changes.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a candidate block is invalid.", testID)
		{
			fresh := newState(t, genesis.ModeStrict)

			candidate, _ := remote.Blocks()
			tampered := append([]database.Block(nil), candidate...)
			tampered[2].Nonce++

			err := fresh.ReplaceChain(tampered)
			if !database.IsChainError(err) || !database.IsBlockError(err) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the chain with the block error: %v", failed, testID, err)
			}

			after, _ := fresh.Blocks()
			if len(after) != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould not change the chain: %d", failed, testID, len(after))
			}
			t.Logf("\t%s\tTest %d:\tShould reject the chain without changes.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the genesis block differs.", testID)
		{
			fresh := newState(t, genesis.ModeStrict)

			candidate, _ := remote.Blocks()
			other := append([]database.Block(nil), candidate...)
			other[0].Timestamp++
			other[0] = other[0].Seal()

			if err := fresh.ReplaceChain(other); !database.IsChainError(err) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the chain: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the chain.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the candidate extends the local chain.", testID)
		{
			fresh := newState(t, genesis.ModeStrict)

			candidate, _ := remote.Blocks()
			if err := fresh.ReplaceChain(candidate); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould replace the chain: %v", failed, testID, err)
			}

			latest, _ := fresh.LatestBlock()
			if latest.Hash != candidate[len(candidate)-1].Hash {
				t.Fatalf("\t%s\tTest %d:\tShould end at the candidate tip.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould replace the chain.", success, testID)
		}
	}
}

func Test_ConcurrentAddBlock(t *testing.T) {
	t.Log("Given the need to add blocks concurrently.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen two goroutines add a block at the same height.", testID)
		{
			st := newState(t, genesis.ModeBypass)
			_, miner := newKey(t, "miner")

			candidate, err := st.NewCandidateBlock(miner)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to build a candidate: %v", failed, testID, err)
			}
			block, err := st.ProofOfWork().Mine(context.Background(), candidate)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mine: %v", failed, testID, err)
			}

			const g = 2
			errs := make([]error, g)

			var wg sync.WaitGroup
			wg.Add(g)
			for i := 0; i < g; i++ {
				go func(i int) {
					defer wg.Done()
					errs[i] = st.AddBlock(block)
				}(i)
			}
			wg.Wait()

			var ok, rejected int
			for _, err := range errs {
				switch {
				case err == nil:
					ok++
				case database.IsBlockError(err):
					rejected++
				}
			}

			if ok != 1 || rejected != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould accept exactly one: %v", failed, testID, errs)
			}
			t.Logf("\t%s\tTest %d:\tShould accept exactly one.", success, testID)

			blocks, _ := st.Blocks()
			if len(blocks) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould store the block once: %d", failed, testID, len(blocks))
			}
			t.Logf("\t%s\tTest %d:\tShould store the block once.", success, testID)
		}
	}
}
