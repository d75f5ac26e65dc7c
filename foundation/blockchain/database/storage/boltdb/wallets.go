package boltdb

import (
	"encoding/json"
	"fmt"

	"github.com/ardanlabs/coin/foundation/blockchain/wallet"
	"github.com/boltdb/bolt"
)

// Wallets represents the wallet store in a bolt database. This implements
// the wallet.Store interface.
type Wallets struct {
	db *bolt.DB
}

// Add stores a new wallet.
func (w *Wallets) Add(wlt wallet.Wallet) error {
	return w.put(wlt, false)
}

// Update replaces an existing wallet.
func (w *Wallets) Update(wlt wallet.Wallet) error {
	return w.put(wlt, true)
}

// ByID returns the wallet with the specified id.
func (w *Wallets) ByID(id string) (wallet.Wallet, error) {
	var wlt wallet.Wallet
	err := w.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(walletsBucket).Get([]byte(id))
		if data == nil {
			return wallet.ErrNotFound
		}
		return json.Unmarshal(data, &wlt)
	})

	return wlt, err
}

// All returns every wallet ordered by id.
func (w *Wallets) All() ([]wallet.Wallet, error) {
	var wallets []wallet.Wallet
	err := w.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(walletsBucket).ForEach(func(_, v []byte) error {
			var wlt wallet.Wallet
			if err := json.Unmarshal(v, &wlt); err != nil {
				return err
			}
			wallets = append(wallets, wlt)
			return nil
		})
	})

	return wallets, err
}

// put writes the wallet, requiring it to exist when updating and to be new
// when adding.
func (w *Wallets) put(wlt wallet.Wallet, update bool) error {
	data, err := json.Marshal(wlt)
	if err != nil {
		return err
	}

	return w.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(walletsBucket)

		exists := bucket.Get([]byte(wlt.ID)) != nil
		switch {
		case update && !exists:
			return wallet.ErrNotFound
		case !update && exists:
			return fmt.Errorf("wallet %s already exists", wlt.ID)
		}

		return bucket.Put([]byte(wlt.ID), data)
	})
}
