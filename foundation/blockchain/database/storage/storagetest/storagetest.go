// Package storagetest provides the behavior checks every store
// implementation must pass.
package storagetest

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ardanlabs/coin/foundation/blockchain/database"
	"github.com/ardanlabs/coin/foundation/blockchain/wallet"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

var (
	addrA = []byte{0xaa, 0x01}
	addrB = []byte{0xbb, 0x02}
)

// chain returns three linked blocks where block 2 spends the block 1 output
// paid to addrA.
func chain() []database.Block {
	b0 := database.Block{Index: 0, PreviousHash: "0", Timestamp: 1, Transactions: []database.Transaction{
		{ID: "g", Type: database.TxRegular},
	}}.Seal()

	b1 := database.Block{Index: 1, PreviousHash: b0.Hash, Timestamp: 2, Transactions: []database.Transaction{
		{ID: "r1", Type: database.TxReward, Data: database.TransactionData{
			Outputs: []database.TransactionItem{{Amount: 50, Address: addrA}},
		}},
	}}.Seal()

	b2 := database.Block{Index: 2, PreviousHash: b1.Hash, Timestamp: 3, Transactions: []database.Transaction{
		{ID: "t1", Type: database.TxRegular, Data: database.TransactionData{
			Inputs:  []database.TransactionItem{{TransactionID: "r1", Index: 0, Amount: 50, Address: addrA}},
			Outputs: []database.TransactionItem{{Amount: 30, Address: addrB}, {Amount: 19, Address: addrA}},
		}},
	}}.Seal()

	return []database.Block{b0, b1, b2}
}

// BlockStore exercises the database.BlockStore contract.
func BlockStore(t *testing.T, store database.BlockStore) {
	t.Helper()

	blocks := chain()

	t.Log("Given the need to store the blockchain.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen handling an empty store.", testID)
		{
			if _, err := store.Last(); !errors.Is(err, database.ErrNotFound) {
				t.Fatalf("\t%s\tTest %d:\tShould not find a last block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould not find a last block.", success, testID)

			if err := store.Add(blocks[1]); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject a block out of order.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a block out of order.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen adding blocks.", testID)
		{
			for _, b := range blocks {
				if err := store.Add(b); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to add block %d: %v", failed, testID, b.Index, err)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould be able to add blocks.", success, testID)

			length, err := store.Length()
			if err != nil || length != uint64(len(blocks)) {
				t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, length)
				t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, len(blocks))
				t.Fatalf("\t%s\tTest %d:\tShould get the right length: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get the right length.", success, testID)

			last, err := store.Last()
			if err != nil || last.Hash != blocks[2].Hash {
				t.Fatalf("\t%s\tTest %d:\tShould get the last block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get the last block.", success, testID)

			b, err := store.ByIndex(1)
			if err != nil || b.Hash != blocks[1].Hash || b.ComputeHash() != b.Hash {
				t.Fatalf("\t%s\tTest %d:\tShould get an intact block by index: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get an intact block by index.", success, testID)

			b, err = store.ByHash(blocks[2].Hash)
			if err != nil || b.Index != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould get a block by hash: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get a block by hash.", success, testID)

			if _, err := store.ByIndex(9); !errors.Is(err, database.ErrNotFound) {
				t.Fatalf("\t%s\tTest %d:\tShould not find a missing block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould not find a missing block.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen querying transactions.", testID)
		{
			tx, err := store.TransactionByID("t1")
			if err != nil || tx.Hash != blocks[2].Transactions[0].Hash {
				t.Fatalf("\t%s\tTest %d:\tShould find a transaction by id: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould find a transaction by id.", success, testID)

			ids, err := store.TransactionIDs()
			if err != nil || len(ids) != 3 {
				t.Fatalf("\t%s\tTest %d:\tShould list every transaction id: %v %v", failed, testID, ids, err)
			}
			t.Logf("\t%s\tTest %d:\tShould list every transaction id.", success, testID)

			outs, err := store.OutputsForAddress(addrA)
			if err != nil || len(outs) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould find the outputs of an address: %v", failed, testID, err)
			}
			if outs[1].TransactionID != "t1" || outs[1].Index != 1 || outs[1].Amount != 19 {
				t.Fatalf("\t%s\tTest %d:\tShould reference outputs by transaction and position: %+v", failed, testID, outs[1])
			}
			t.Logf("\t%s\tTest %d:\tShould find the outputs of an address.", success, testID)

			ins, err := store.InputsForAddress(addrA)
			if err != nil || len(ins) != 1 || !bytes.Equal(ins[0].Address, addrA) {
				t.Fatalf("\t%s\tTest %d:\tShould find the inputs of an address: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould find the inputs of an address.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen iterating the chain.", testID)
		{
			var n uint64
			iter := store.ForEach()
			for b, err := iter.Next(); !iter.Done(); b, err = iter.Next() {
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to read block: %v", failed, testID, err)
				}
				if b.Index != n {
					t.Fatalf("\t%s\tTest %d:\tShould read blocks in order, got %d, exp %d", failed, testID, b.Index, n)
				}
				n++
			}
			if n != uint64(len(blocks)) {
				t.Fatalf("\t%s\tTest %d:\tShould read every block, got %d", failed, testID, n)
			}
			t.Logf("\t%s\tTest %d:\tShould read every block in order.", success, testID)
		}
	}
}

// TransactionStore exercises the database.TransactionStore contract.
func TransactionStore(t *testing.T, store database.TransactionStore) {
	t.Helper()

	t.Log("Given the need to store pending transactions.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen adding and deleting transactions.", testID)
		{
			for _, id := range []string{"c", "a", "b"} {
				if err := store.Add(database.Transaction{ID: id, Type: database.TxRegular}); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to add transaction: %v", failed, testID, err)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould be able to add transactions.", success, testID)

			if err := store.Add(database.Transaction{ID: "a"}); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject a duplicate id.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a duplicate id.", success, testID)

			if _, err := store.ByID("a"); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould find a transaction by id: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould find a transaction by id.", success, testID)

			if err := store.Delete("a", "missing"); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to delete: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to delete.", success, testID)

			txs, err := store.All()
			if err != nil || len(txs) != 2 || txs[0].ID != "c" || txs[1].ID != "b" {
				t.Fatalf("\t%s\tTest %d:\tShould keep arrival order: %v %v", failed, testID, txs, err)
			}
			t.Logf("\t%s\tTest %d:\tShould keep arrival order.", success, testID)

			if _, err := store.ByID("a"); !errors.Is(err, database.ErrNotFound) {
				t.Fatalf("\t%s\tTest %d:\tShould not find a deleted transaction: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould not find a deleted transaction.", success, testID)
		}
	}
}

// WalletStore exercises the wallet.Store contract.
func WalletStore(t *testing.T, store wallet.Store) {
	t.Helper()

	t.Log("Given the need to store wallets.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen adding and updating wallets.", testID)
		{
			w := wallet.Wallet{ID: "w1", PasswordHash: "hash", Secret: []byte{1, 2, 3}}

			if err := store.Update(w); !errors.Is(err, wallet.ErrNotFound) {
				t.Fatalf("\t%s\tTest %d:\tShould not update a missing wallet: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould not update a missing wallet.", success, testID)

			if err := store.Add(w); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to add a wallet: %v", failed, testID, err)
			}
			if err := store.Add(w); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject a duplicate wallet.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to add a wallet once.", success, testID)

			w.KeyPairs = []wallet.KeyPair{{Index: 0, SecretKey: []byte{9}, PublicKey: []byte{8}}}
			if err := store.Update(w); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to update a wallet: %v", failed, testID, err)
			}

			got, err := store.ByID("w1")
			if err != nil || len(got.KeyPairs) != 1 || !bytes.Equal(got.Secret, w.Secret) {
				t.Fatalf("\t%s\tTest %d:\tShould get the updated wallet: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get the updated wallet.", success, testID)

			all, err := store.All()
			if err != nil || len(all) != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould list every wallet: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould list every wallet.", success, testID)

			if _, err := store.ByID("nope"); !errors.Is(err, wallet.ErrNotFound) {
				t.Fatalf("\t%s\tTest %d:\tShould not find a missing wallet: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould not find a missing wallet.", success, testID)
		}
	}
}
