// Package wallet provides support for wallets holding deterministically
// derived key pairs. The public key of a key pair is an address on the
// blockchain.
package wallet

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/ardanlabs/coin/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/scrypt"
)

// ErrNotFound is returned by a store when the wallet does not exist.
var ErrNotFound = errors.New("wallet not found")

// ErrUnknownAddress is returned when the wallet doesn't own an address.
var ErrUnknownAddress = errors.New("address not found in wallet")

// Store represents the behavior required to be implemented by any package
// providing storage for wallets.
type Store interface {
	Add(w Wallet) error
	ByID(id string) (Wallet, error)
	All() ([]Wallet, error)
	Update(w Wallet) error
}

// Parameters for deriving the wallet secret from the password.
const (
	scryptN      = 1 << 15
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
)

// =============================================================================

// KeyPair represents a key pair derived by a wallet. The index is the
// position of the key pair in the wallet.
type KeyPair struct {
	Index     int           `json:"index"`
	SecretKey hexutil.Bytes `json:"secretKey"`
	PublicKey hexutil.Bytes `json:"publicKey"`
}

// Wallet represents a set of key pairs protected by a password.
type Wallet struct {
	ID           string        `json:"id"`
	PasswordHash string        `json:"passwordHash"`
	Secret       hexutil.Bytes `json:"secret"`
	KeyPairs     []KeyPair     `json:"keyPairs"`
}

// New constructs a wallet for the password. The secret used to derive the
// key pairs comes from the password and the wallet id.
func New(password string) (Wallet, error) {
	if password == "" {
		return Wallet{}, errors.New("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Wallet{}, fmt.Errorf("generating password hash: %w", err)
	}

	id := uuid.NewString()
	secret, err := scrypt.Key([]byte(password), []byte(id), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return Wallet{}, fmt.Errorf("deriving secret: %w", err)
	}

	w := Wallet{
		ID:           id,
		PasswordHash: string(hash),
		Secret:       secret,
	}

	return w, nil
}

// CheckPassword reports whether the password matches the wallet.
func (w Wallet) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(w.PasswordHash), []byte(password)) == nil
}

// GenerateAddress derives the next key pair and returns the wallet holding
// it. The first key pair is derived from the wallet secret and every next
// one from the hash of the previous secret key, so the sequence can always
// be recreated from the secret alone.
func (w Wallet) GenerateAddress(scheme signature.Scheme) (Wallet, KeyPair, error) {
	seed := []byte(w.Secret)
	if n := len(w.KeyPairs); n > 0 {
		sum := sha256.Sum256(w.KeyPairs[n-1].SecretKey)
		seed = sum[:]
	}

	secret, public, err := scheme.KeyFromSeed(seed)
	if err != nil {
		return Wallet{}, KeyPair{}, err
	}

	kp := KeyPair{
		Index:     len(w.KeyPairs),
		SecretKey: secret,
		PublicKey: public,
	}

	keyPairs := make([]KeyPair, len(w.KeyPairs), len(w.KeyPairs)+1)
	copy(keyPairs, w.KeyPairs)
	w.KeyPairs = append(keyPairs, kp)

	return w, kp, nil
}

// Addresses returns the public keys of every key pair in order.
func (w Wallet) Addresses() []hexutil.Bytes {
	addrs := make([]hexutil.Bytes, len(w.KeyPairs))
	for i, kp := range w.KeyPairs {
		addrs[i] = kp.PublicKey
	}
	return addrs
}

// SecretKeyFor returns the secret key for the address.
func (w Wallet) SecretKeyFor(address []byte) ([]byte, error) {
	for _, kp := range w.KeyPairs {
		if bytes.Equal(kp.PublicKey, address) {
			return kp.SecretKey, nil
		}
	}

	return nil, ErrUnknownAddress
}
