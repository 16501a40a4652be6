// internal/programs/metadata/state.go
package metadata

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/token-minter/internal/utils/binary"
)

// Limits and layout constants of the metadata account.
const (
	MaxNameLength     = 32
	MaxSymbolLength   = 10
	MaxURILength      = 200
	MaxCreatorLimit   = 5
	MaxSellerFeeBasis = 10000
	MaxMetadataLen    = 679
)

// KeyMetadataV1 is the account discriminator of metadata accounts.
const KeyMetadataV1 uint8 = 4

// TokenStandard classifies the asset behind a mint.
type TokenStandard uint8

const (
	TokenStandardNonFungible TokenStandard = iota
	TokenStandardFungibleAsset
	TokenStandardFungible
	TokenStandardNonFungibleEdition
)

// Creator is a royalty recipient.
type Creator struct {
	Address  solana.PublicKey
	Verified bool
	Share    uint8
}

// Collection links the asset to a collection mint.
type Collection struct {
	Verified bool
	Key      solana.PublicKey
}

// Uses limits how many times the asset can be consumed.
type Uses struct {
	UseMethod uint8
	Remaining uint64
	Total     uint64
}

// DataV2 is the descriptive part of the metadata.
type DataV2 struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator
	Collection           *Collection
	Uses                 *Uses
}

// Metadata is the decoded MetadataV1 account.
type Metadata struct {
	Key                 uint8
	UpdateAuthority     solana.PublicKey
	Mint                solana.PublicKey
	Data                DataV2
	PrimarySaleHappened bool
	IsMutable           bool
	EditionNonce        *uint8
	TokenStandard       *TokenStandard
}

// Encode packs the metadata padded to MaxMetadataLen. Name, symbol and uri are
// zero padded to their maximum lengths.
func (m *Metadata) Encode() ([]byte, error) {
	w := binary.NewWriter().
		U8(m.Key).
		PubKey(m.UpdateAuthority).
		PubKey(m.Mint).
		PaddedString(m.Data.Name, MaxNameLength).
		PaddedString(m.Data.Symbol, MaxSymbolLength).
		PaddedString(m.Data.URI, MaxURILength).
		U16(m.Data.SellerFeeBasisPoints)
	writeCreators(w, m.Data.Creators)
	w.Bool(m.PrimarySaleHappened).Bool(m.IsMutable)
	writeOptionU8(w, m.EditionNonce)
	if m.TokenStandard == nil {
		w.U8(0)
	} else {
		w.U8(1).U8(uint8(*m.TokenStandard))
	}
	writeCollection(w, m.Data.Collection)
	writeUses(w, m.Data.Uses)
	// collection_details и programmable_config: None
	w.U8(0).U8(0)
	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}

	data := w.Bytes()
	if len(data) > MaxMetadataLen {
		return nil, fmt.Errorf("metadata of %d bytes exceeds %d", len(data), MaxMetadataLen)
	}
	out := make([]byte, MaxMetadataLen)
	copy(out, data)
	return out, nil
}

// DecodeMetadata unpacks a metadata account, trimming string padding.
func DecodeMetadata(data []byte) (*Metadata, error) {
	r := binary.NewReader(data)
	m := &Metadata{
		Key:             r.U8(),
		UpdateAuthority: r.PubKey(),
		Mint:            r.PubKey(),
	}
	if r.Err() == nil && m.Key != KeyMetadataV1 {
		return nil, fmt.Errorf("%w: account key %d", ErrInvalidMetadataAccount, m.Key)
	}
	m.Data.Name = r.TrimmedString()
	m.Data.Symbol = r.TrimmedString()
	m.Data.URI = r.TrimmedString()
	m.Data.SellerFeeBasisPoints = r.U16()
	m.Data.Creators = readCreators(r)
	m.PrimarySaleHappened = r.Bool()
	m.IsMutable = r.Bool()
	m.EditionNonce = readOptionU8(r)
	if ts := readOptionU8(r); ts != nil {
		standard := TokenStandard(*ts)
		m.TokenStandard = &standard
	}
	m.Data.Collection = readCollection(r)
	m.Data.Uses = readUses(r)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetadataAccount, err)
	}
	return m, nil
}

func writeOptionU8(w *binary.Writer, v *uint8) {
	if v == nil {
		w.U8(0)
		return
	}
	w.U8(1).U8(*v)
}

func readOptionU8(r *binary.Reader) *uint8 {
	if r.U8() == 0 || r.Err() != nil {
		return nil
	}
	v := r.U8()
	return &v
}

func writeCreators(w *binary.Writer, creators []Creator) {
	if creators == nil {
		w.U8(0)
		return
	}
	w.U8(1).U32(uint32(len(creators)))
	for _, c := range creators {
		w.PubKey(c.Address).Bool(c.Verified).U8(c.Share)
	}
}

func readCreators(r *binary.Reader) []Creator {
	if r.U8() == 0 || r.Err() != nil {
		return nil
	}
	n := r.U32()
	if n > MaxCreatorLimit {
		r.Raw(-1) // помечает ридер ошибкой
		return nil
	}
	creators := make([]Creator, 0, n)
	for i := uint32(0); i < n; i++ {
		creators = append(creators, Creator{Address: r.PubKey(), Verified: r.Bool(), Share: r.U8()})
	}
	return creators
}

func writeCollection(w *binary.Writer, c *Collection) {
	if c == nil {
		w.U8(0)
		return
	}
	w.U8(1).Bool(c.Verified).PubKey(c.Key)
}

func readCollection(r *binary.Reader) *Collection {
	if r.U8() == 0 || r.Err() != nil {
		return nil
	}
	return &Collection{Verified: r.Bool(), Key: r.PubKey()}
}

func writeUses(w *binary.Writer, u *Uses) {
	if u == nil {
		w.U8(0)
		return
	}
	w.U8(1).U8(u.UseMethod).U64(u.Remaining).U64(u.Total)
}

func readUses(r *binary.Reader) *Uses {
	if r.U8() == 0 || r.Err() != nil {
		return nil
	}
	return &Uses{UseMethod: r.U8(), Remaining: r.U64(), Total: r.U64()}
}
