package ledger

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"

	"github.com/yndnr/curvectl/internal/core/domain"
)

// Well-known program and account addresses.
var (
	SystemProgramID          = mustKey("11111111111111111111111111111111")
	TokenProgramID           = mustKey("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	AssociatedTokenProgramID = mustKey("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	NativeMintID             = mustKey("So11111111111111111111111111111111111111112")
	RentSysvarID             = mustKey("SysvarRent111111111111111111111111111111111")
)

const (
	maxSeeds      = 16
	maxSeedLength = 32
	pdaMarker     = "ProgramDerivedAddress"
)

var ErrNoViableBump = errors.New("ledger: no viable bump seed")

func mustKey(s string) domain.PublicKey {
	pk, err := domain.DecodePublicKey(s)
	if err != nil {
		panic(err)
	}
	return pk
}

// CreateProgramAddress derives the address for seeds under program. It
// fails when the hash lands on the ed25519 curve.
func CreateProgramAddress(seeds [][]byte, program domain.PublicKey) (domain.PublicKey, error) {
	if len(seeds) > maxSeeds {
		return domain.PublicKey{}, fmt.Errorf("ledger: too many seeds: %d", len(seeds))
	}

	h := sha256.New()
	for _, s := range seeds {
		if len(s) > maxSeedLength {
			return domain.PublicKey{}, fmt.Errorf("ledger: seed longer than %d bytes", maxSeedLength)
		}
		h.Write(s)
	}
	h.Write(program[:])
	h.Write([]byte(pdaMarker))

	var out domain.PublicKey
	copy(out[:], h.Sum(nil))
	if onCurve(out) {
		return domain.PublicKey{}, ErrNoViableBump
	}
	return out, nil
}

// FindProgramAddress returns the first off-curve address for seeds,
// trying bump seeds from 255 down.
func FindProgramAddress(seeds [][]byte, program domain.PublicKey) (domain.PublicKey, uint8, error) {
	withBump := append(append([][]byte{}, seeds...), nil)
	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, err := CreateProgramAddress(withBump, program)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, ErrNoViableBump) {
			return domain.PublicKey{}, 0, err
		}
	}
	return domain.PublicKey{}, 0, ErrNoViableBump
}

// AssociatedTokenAddress returns the associated token account of owner
// for mint.
func AssociatedTokenAddress(owner, mint domain.PublicKey) (domain.PublicKey, error) {
	addr, _, err := FindProgramAddress(
		[][]byte{owner[:], TokenProgramID[:], mint[:]},
		AssociatedTokenProgramID,
	)
	return addr, err
}

func onCurve(b domain.PublicKey) bool {
	_, err := new(edwards25519.Point).SetBytes(b[:])
	return err == nil
}
