package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

var (
	ErrInvalidPrivateKey = errors.New("invalid private key")
	ErrInvalidPublicKey  = errors.New("invalid public key")
	ErrInvalidSignature  = errors.New("invalid signature")
)

// KeyPair is a secp256k1 signing key used to authenticate operations.
type KeyPair struct {
	priv *btcec.PrivateKey
}

// GenerateKeyPair creates a new random secp256k1 key pair.
func GenerateKeyPair() (*KeyPair, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &KeyPair{priv: priv}, nil
}

// KeyPairFromHex loads a key pair from a hex encoded 32 byte private key.
func KeyPairFromHex(s string) (*KeyPair, error) {
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 32 {
		return nil, ErrInvalidPrivateKey
	}
	priv, _ := btcec.PrivKeyFromBytes(raw)
	return &KeyPair{priv: priv}, nil
}

// KeyPairFromSeed deterministically derives a key pair from an arbitrary
// passphrase. Intended for devnet accounts and tests.
func KeyPairFromSeed(seed string) *KeyPair {
	sum := sha256.Sum256([]byte(seed))
	priv, _ := btcec.PrivKeyFromBytes(sum[:])
	return &KeyPair{priv: priv}
}

// PrivateKeyHex returns the hex encoded private key.
func (k *KeyPair) PrivateKeyHex() string {
	return hex.EncodeToString(k.priv.Serialize())
}

// PublicKey returns the compressed public key.
func (k *KeyPair) PublicKey() []byte {
	return k.priv.PubKey().SerializeCompressed()
}

// AccountID returns the account ID derived from the public key.
func (k *KeyPair) AccountID() [AccountIDSize]byte {
	return CalcAccountID(k.PublicKey())
}

// Sign signs the SHA-256 digest of payload and returns a DER signature.
func (k *KeyPair) Sign(payload []byte) []byte {
	digest := sha256.Sum256(payload)
	return ecdsa.Sign(k.priv, digest[:]).Serialize()
}

// Verify checks a DER signature over the SHA-256 digest of payload.
func Verify(publicKey, payload, signature []byte) error {
	pub, err := btcec.ParsePubKey(publicKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	digest := sha256.Sum256(payload)
	if !sig.Verify(digest[:], pub) {
		return ErrInvalidSignature
	}
	return nil
}
