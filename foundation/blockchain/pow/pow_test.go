package pow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ardanlabs/coin/foundation/blockchain/database"
	"github.com/ardanlabs/coin/foundation/blockchain/genesis"
	"github.com/ardanlabs/coin/foundation/blockchain/pow"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_RequiredDifficulty(t *testing.T) {
	settings := genesis.Default().ProofOfWork

	type table struct {
		height uint64
		exp    float64
	}

	tt := []table{
		{height: 0, exp: 9007199254740991},
		{height: 3, exp: 9007199254740991},
		{height: 4, exp: 281474976710655},
		{height: 9, exp: 37066663599757},
	}

	t.Log("Given the need to calculate the required difficulty.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen at height %d.", testID, tst.height)
			{
				got := pow.RequiredDifficulty(settings, tst.height)
				if got != tst.exp {
					t.Logf("\t%s\tTest %d:\tgot: %f", failed, testID, got)
					t.Logf("\t%s\tTest %d:\texp: %f", failed, testID, tst.exp)
					t.Fatalf("\t%s\tTest %d:\tShould get the right difficulty.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould get the right difficulty.", success, testID)
			}
		}

		testID := len(tt)
		t.Logf("\tTest %d:\tWhen walking the heights.", testID)
		{
			prev := pow.RequiredDifficulty(settings, 0)
			for h := uint64(1); h < 500; h++ {
				d := pow.RequiredDifficulty(settings, h)
				if d > prev || d < 0 {
					t.Fatalf("\t%s\tTest %d:\tShould never increase or go negative at height %d: %f > %f", failed, testID, h, d, prev)
				}
				prev = d
			}
			t.Logf("\t%s\tTest %d:\tShould never increase or go negative.", success, testID)
		}
	}
}

func Test_BlockDifficultyValue(t *testing.T) {
	t.Log("Given the need to read the difficulty of a block.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the hash starts with a wide prefix.", testID)
		{
			b := database.Block{Hash: "ffffffffffffff0000000000000000000000000000000000000000000000000000"}
			v, err := pow.BlockDifficultyValue(b)
			if err != nil || v != 0xffffffffffffff {
				t.Fatalf("\t%s\tTest %d:\tShould read the full 56 bit prefix: %x %v", failed, testID, v, err)
			}
			t.Logf("\t%s\tTest %d:\tShould read the full 56 bit prefix.", success, testID)

			if _, err := pow.BlockDifficultyValue(database.Block{Hash: "abc"}); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject a short hash.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a short hash.", success, testID)
		}
	}
}

func Test_Mine(t *testing.T) {
	candidate := database.Block{
		Index:        1,
		PreviousHash: genesis.Block().Hash,
		Transactions: []database.Transaction{
			{ID: "r", Type: database.TxReward, Data: database.TransactionData{
				Outputs: []database.TransactionItem{{Amount: 10, Address: []byte{1}}},
			}},
		},
	}

	t.Log("Given the need to mine blocks.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen mining in strict mode.", testID)
		{
			w, err := pow.New(genesis.Default().ProofOfWork, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the engine: %v", failed, testID, err)
			}

			b, err := w.Mine(context.Background(), candidate)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mine a block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to mine a block.", success, testID)

			if b.Hash != b.ComputeHash() || !w.Accept(b) {
				t.Fatalf("\t%s\tTest %d:\tShould produce a sealed acceptable block.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould produce a sealed acceptable block.", success, testID)

			if candidate.Nonce != 0 || candidate.Hash != "" {
				t.Fatalf("\t%s\tTest %d:\tShould not modify the candidate.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not modify the candidate.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen mining in bypass mode.", testID)
		{
			settings := genesis.Default().ProofOfWork
			settings.BaseDifficulty = 0
			settings.Mode = genesis.ModeBypass

			w, err := pow.New(settings, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the engine: %v", failed, testID, err)
			}

			b, err := w.Mine(context.Background(), candidate)
			if err != nil || b.Nonce != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould run the loop once: nonce %d: %v", failed, testID, b.Nonce, err)
			}
			t.Logf("\t%s\tTest %d:\tShould run the loop once.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen mining is cancelled.", testID)
		{
			settings := genesis.Default().ProofOfWork
			settings.BaseDifficulty = 0

			w, err := pow.New(settings, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the engine: %v", failed, testID, err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			if _, err := w.Mine(ctx, candidate); !errors.Is(err, context.Canceled) {
				t.Fatalf("\t%s\tTest %d:\tShould stop when cancelled: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould stop when cancelled.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen selecting an unknown mode.", testID)
		{
			settings := genesis.Default().ProofOfWork
			settings.Mode = "fast"

			if _, err := pow.New(settings, nil); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject the mode.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the mode.", success, testID)
		}
	}
}
