// internal/authority/authority.go
package authority

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/gagliardetto/solana-go"
)

// DefaultLabel is the seed label the mint authority is derived from.
const DefaultLabel = "mint"

const maxSeedLength = 32

var (
	// ErrDerivationExhausted is returned when no bump in 255..0 yields an off-curve address.
	ErrDerivationExhausted = errors.New("derivation exhausted: no valid bump for seeds")

	// ErrAuthorityMismatch is returned when a supplied account is not the derived authority.
	ErrAuthorityMismatch = errors.New("authority mismatch")

	// ErrInvalidSeed is returned for labels the address space cannot hold.
	ErrInvalidSeed = errors.New("invalid seed")
)

// Authority is an address derived from a program id and a seed label.
// It has no private key; only the program it was derived for can sign as it.
type Authority struct {
	Program solana.PublicKey
	Label   string
	Address solana.PublicKey
	Bump    uint8
}

type createFunc func(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, error)

// Derive finds the canonical (highest) bump for label under programID.
func Derive(programID solana.PublicKey, label string) (Authority, error) {
	return derive(programID, label, solana.CreateProgramAddress)
}

func derive(programID solana.PublicKey, label string, create createFunc) (Authority, error) {
	if len(label) == 0 || len(label) > maxSeedLength {
		return Authority{}, fmt.Errorf("%w: label must be 1..%d bytes, got %d", ErrInvalidSeed, maxSeedLength, len(label))
	}

	for bump := 255; bump >= 0; bump-- {
		address, err := create([][]byte{[]byte(label), {uint8(bump)}}, programID)
		if err != nil {
			continue
		}
		return Authority{
			Program: programID,
			Label:   label,
			Address: address,
			Bump:    uint8(bump),
		}, nil
	}

	return Authority{}, fmt.Errorf("%w: label %q, program %s", ErrDerivationExhausted, label, programID)
}

// Verify re-derives the authority and checks that bump is the canonical one and
// that the address equals expected.
func Verify(programID solana.PublicKey, label string, bump uint8, expected solana.PublicKey) error {
	derived, err := Derive(programID, label)
	if err != nil {
		return err
	}
	if derived.Bump != bump {
		return fmt.Errorf("%w: bump %d is not canonical bump %d", ErrAuthorityMismatch, bump, derived.Bump)
	}
	return derived.Check(expected)
}

// Check returns ErrAuthorityMismatch unless key is the authority address.
func (a Authority) Check(key solana.PublicKey) error {
	if !a.Address.Equals(key) {
		return fmt.Errorf("%w: expected %s, got %s", ErrAuthorityMismatch, a.Address, key)
	}
	return nil
}

// Seeds returns the seeds including the bump.
func (a Authority) Seeds() [][]byte {
	return [][]byte{[]byte(a.Label), {a.Bump}}
}

// Signer returns the authorization token presented in place of a signature.
func (a Authority) Signer() SignerSeeds {
	return NewSignerSeeds(a.Seeds()...)
}

// SignerSeeds is a seed set a program presents to the host to sign for an
// address derived from it. The host pairs the seeds with the id of the
// invoking program, so the same seeds from another program yield another address.
type SignerSeeds struct {
	seeds [][]byte
}

// NewSignerSeeds copies seeds into a signer seed set. The bump must be the last seed.
func NewSignerSeeds(seeds ...[]byte) SignerSeeds {
	out := make([][]byte, len(seeds))
	for i, s := range seeds {
		out[i] = append([]byte(nil), s...)
	}
	return SignerSeeds{seeds: out}
}

// Seeds returns a copy of the seed set.
func (s SignerSeeds) Seeds() [][]byte {
	out := make([][]byte, len(s.seeds))
	for i, seed := range s.seeds {
		out[i] = append([]byte(nil), seed...)
	}
	return out
}

// IsOffCurve reports whether key is not a valid ed25519 point, i.e. no private key can exist for it.
func IsOffCurve(key solana.PublicKey) bool {
	_, err := new(edwards25519.Point).SetBytes(key[:])
	return err != nil
}
