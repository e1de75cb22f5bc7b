package domain

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// PublicKeySize is the length of an on-chain account address in bytes.
const PublicKeySize = 32

// PublicKey is a decoded on-chain account address.
type PublicKey [PublicKeySize]byte

// DecodePublicKey decodes a base58 account address.
func DecodePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	if s == "" {
		return pk, fmt.Errorf("empty address")
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return pk, fmt.Errorf("decode base58: %w", err)
	}
	if len(raw) != PublicKeySize {
		return pk, fmt.Errorf("decoded length %d, want %d", len(raw), PublicKeySize)
	}
	copy(pk[:], raw)
	return pk, nil
}

// PublicKeyFromBytes builds a PublicKey from a 32-byte slice.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	var pk PublicKey
	if len(b) != PublicKeySize {
		return pk, fmt.Errorf("public key length %d, want %d", len(b), PublicKeySize)
	}
	copy(pk[:], b)
	return pk, nil
}

// String returns the base58 form of the address.
func (pk PublicKey) String() string {
	return base58.Encode(pk[:])
}

// IsZero reports whether the key is all zero bytes.
func (pk PublicKey) IsZero() bool {
	return pk == PublicKey{}
}

// MarshalText implements encoding.TextMarshaler.
func (pk PublicKey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (pk *PublicKey) UnmarshalText(text []byte) error {
	decoded, err := DecodePublicKey(string(text))
	if err != nil {
		return err
	}
	*pk = decoded
	return nil
}
