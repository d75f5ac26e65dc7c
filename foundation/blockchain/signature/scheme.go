package signature

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// Set of scheme names that can be selected through configuration.
const (
	NameEd25519   = "ed25519"
	NameSecp256k1 = "secp256k1"
)

// Scheme represents the behavior of a key pair signature algorithm. The
// public key produced by a scheme is the address funds are paid to.
type Scheme interface {
	Name() string
	KeyFromSeed(seed []byte) (secret []byte, public []byte, err error)
	Sign(secret []byte, digest []byte) ([]byte, error)
	Verify(public []byte, digest []byte, sig []byte) bool
}

// SchemeByName returns the scheme registered under the specified name.
func SchemeByName(name string) (Scheme, error) {
	switch name {
	case NameEd25519, "":
		return Ed25519{}, nil
	case NameSecp256k1:
		return Secp256k1{}, nil
	}

	return nil, fmt.Errorf("unknown signature scheme %q", name)
}

// =============================================================================

// Ed25519 implements the Scheme interface using Ed25519 keys. The secret
// is the 64 byte private key and the address is the 32 byte public key.
type Ed25519 struct{}

// Name returns the name of the scheme.
func (Ed25519) Name() string {
	return NameEd25519
}

// KeyFromSeed derives the key pair for a 32 byte seed.
func (Ed25519) KeyFromSeed(seed []byte) ([]byte, []byte, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, nil, fmt.Errorf("invalid seed length, got %d, exp %d", len(seed), ed25519.SeedSize)
	}

	priv := ed25519.NewKeyFromSeed(seed)
	return priv, priv.Public().(ed25519.PublicKey), nil
}

// Sign signs the digest with the secret key.
func (Ed25519) Sign(secret []byte, digest []byte) ([]byte, error) {
	if len(secret) != ed25519.PrivateKeySize {
		return nil, errors.New("invalid ed25519 secret key")
	}

	return ed25519.Sign(ed25519.PrivateKey(secret), digest), nil
}

// Verify checks the signature of the digest against the public key.
func (Ed25519) Verify(public []byte, digest []byte, sig []byte) bool {
	if len(public) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}

	return ed25519.Verify(ed25519.PublicKey(public), digest, sig)
}

// =============================================================================

// Secp256k1 implements the Scheme interface using the Ethereum curve. The
// secret is the 32 byte private key and the address is the 33 byte
// compressed public key.
type Secp256k1 struct{}

// Name returns the name of the scheme.
func (Secp256k1) Name() string {
	return NameSecp256k1
}

// KeyFromSeed uses the 32 byte seed as the private key.
func (Secp256k1) KeyFromSeed(seed []byte) ([]byte, []byte, error) {
	privateKey, err := crypto.ToECDSA(seed)
	if err != nil {
		return nil, nil, fmt.Errorf("seed is not a valid private key: %w", err)
	}

	return crypto.FromECDSA(privateKey), crypto.CompressPubkey(&privateKey.PublicKey), nil
}

// Sign produces the 65 byte [R|S|V] signature for the 32 byte digest.
func (Secp256k1) Sign(secret []byte, digest []byte) ([]byte, error) {
	privateKey, err := crypto.ToECDSA(secret)
	if err != nil {
		return nil, err
	}

	return crypto.Sign(digest, privateKey)
}

// Verify checks the signature of the digest against the public key. The
// recovery id is not needed since the public key is known.
func (Secp256k1) Verify(public []byte, digest []byte, sig []byte) bool {
	if len(sig) < crypto.RecoveryIDOffset {
		return false
	}

	return crypto.VerifySignature(public, digest, sig[:crypto.RecoveryIDOffset])
}
