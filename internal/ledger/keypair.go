package ledger

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"os"

	"github.com/yndnr/curvectl/internal/core/domain"
)

// Keypair is a signer loaded from a solana-keygen file.
type Keypair struct {
	private ed25519.PrivateKey
	Public  domain.PublicKey
}

// LoadKeypair reads a solana-keygen JSON file: an array of 64 byte values,
// the ed25519 seed followed by the public key.
func LoadKeypair(path string) (*Keypair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keypair: %w", err)
	}
	return ParseKeypair(data)
}

// ParseKeypair parses the contents of a solana-keygen file.
func ParseKeypair(data []byte) (*Keypair, error) {
	var raw []int
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse keypair: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("parse keypair: want %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}

	b := make([]byte, len(raw))
	for i, v := range raw {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("parse keypair: byte %d out of range: %d", i, v)
		}
		b[i] = byte(v)
	}

	priv := ed25519.NewKeyFromSeed(b[:ed25519.SeedSize])
	pub := priv.Public().(ed25519.PublicKey)
	if !bytes.Equal(pub, b[ed25519.SeedSize:]) {
		return nil, fmt.Errorf("parse keypair: public key does not match seed")
	}

	pk, err := domain.PublicKeyFromBytes(pub)
	if err != nil {
		return nil, err
	}
	return &Keypair{private: priv, Public: pk}, nil
}

// Sign signs message with the keypair.
func (k *Keypair) Sign(message []byte) []byte {
	return ed25519.Sign(k.private, message)
}
