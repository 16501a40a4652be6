// internal/programs/minter/program.go
package minter

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"unicode/utf8"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/token-minter/internal/authority"
	"github.com/rovshanmuradov/token-minter/internal/ledger"
	"github.com/rovshanmuradov/token-minter/internal/utils/binary"
)

// DefaultProgramID is the address the minter is deployed at.
var DefaultProgramID = solana.MustPublicKeyFromBase58("DaAEZvCbrdJ7WADHrmtPSY2rmW6R4c5iZ43PsfxVabYy")

const discriminatorLength = 8

var (
	initiateTokenDiscriminator = discriminator("initiate_token")
	mintTokensDiscriminator    = discriminator("mint_tokens")
)

// discriminator is the 8 byte instruction prefix: sha256("global:<name>").
func discriminator(name string) []byte {
	sum := sha256.Sum256([]byte("global:" + name))
	return sum[:discriminatorLength]
}

// InitTokenParams are the arguments of initiate_token.
type InitTokenParams struct {
	Name     string
	Symbol   string
	URI      string
	Decimals uint8
}

func (p InitTokenParams) encode(w *binary.Writer) {
	w.String(p.Name).String(p.Symbol).String(p.URI).U8(p.Decimals)
}

func decodeInitTokenParams(r *binary.Reader) (InitTokenParams, error) {
	p := InitTokenParams{
		Name:     r.String(),
		Symbol:   r.String(),
		URI:      r.String(),
		Decimals: r.U8(),
	}
	if err := r.Err(); err != nil {
		return InitTokenParams{}, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	for _, f := range [...]struct{ name, value string }{{"name", p.Name}, {"symbol", p.Symbol}, {"uri", p.URI}} {
		if !utf8.ValidString(f.value) {
			return InitTokenParams{}, fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalidArguments, f.name)
		}
	}
	return p, nil
}

// Program is the minter: it owns no state and acts through the mint authority
// derived from its own id.
type Program struct {
	id solana.PublicKey
}

// New creates the minter deployed at programID.
func New(programID solana.PublicKey) *Program {
	return &Program{id: programID}
}

func (p *Program) ID() solana.PublicKey { return p.id }
func (p *Program) Name() string         { return "minter" }

// Process dispatches on the instruction discriminator.
func (p *Program) Process(ic *ledger.InvokeContext) error {
	if len(ic.Data) < discriminatorLength {
		return fmt.Errorf("%w: data shorter than discriminator", ErrUnknownInstruction)
	}
	disc, args := ic.Data[:discriminatorLength], binary.NewReader(ic.Data[discriminatorLength:])

	switch {
	case bytes.Equal(disc, initiateTokenDiscriminator):
		params, err := decodeInitTokenParams(args)
		if err != nil {
			return err
		}
		ic.Log("Instruction: InitiateToken")
		return p.initiateToken(ic, params)
	case bytes.Equal(disc, mintTokensDiscriminator):
		quantity := args.U64()
		if err := args.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		}
		ic.Log("Instruction: MintTokens")
		return p.mintTokens(ic, quantity)
	default:
		return fmt.Errorf("%w: discriminator %x", ErrUnknownInstruction, disc)
	}
}

// MintAuthority derives the mint of this program, which is also its own mint
// and metadata update authority.
func (p *Program) MintAuthority() (authority.Authority, error) {
	return authority.Derive(p.id, authority.DefaultLabel)
}

func expectKey(ref *ledger.AccountRef, want solana.PublicKey, name string) error {
	if !ref.Key.Equals(want) {
		return fmt.Errorf("%w: %s must be %s, got %s", ErrInvalidProgramID, name, want, ref.Key)
	}
	return nil
}

func external(program, instruction string, err error) error {
	return &ExternalProgramError{Program: program, Instruction: instruction, Err: err}
}
