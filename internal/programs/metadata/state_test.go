package metadata

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataEncodeDecode(t *testing.T) {
	mint := solana.MustPublicKeyFromBase58("DaAEZvCbrdJ7WADHrmtPSY2rmW6R4c5iZ43PsfxVabYy")
	nonce := uint8(254)
	standard := TokenStandardFungible
	record := &Metadata{
		Key:             KeyMetadataV1,
		UpdateAuthority: mint,
		Mint:            mint,
		Data: DataV2{
			Name:   "Coin",
			Symbol: "CNN",
			URI:    "https://x/m.json",
			Creators: []Creator{
				{Address: mint, Verified: false, Share: 100},
			},
			Collection: &Collection{Key: ProgramID},
		},
		IsMutable:     true,
		EditionNonce:  &nonce,
		TokenStandard: &standard,
	}

	data, err := record.Encode()
	require.NoError(t, err)
	require.Len(t, data, MaxMetadataLen)
	assert.Equal(t, KeyMetadataV1, data[0])
	// имя дополнено нулями до 32 байт
	assert.Equal(t, []byte{32, 0, 0, 0, 'C', 'o', 'i', 'n', 0}, data[65:74])

	decoded, err := DecodeMetadata(data)
	require.NoError(t, err)
	assert.Equal(t, record, decoded)
}

func TestDecodeMetadataRejectsOtherKeys(t *testing.T) {
	data := make([]byte, MaxMetadataLen)
	data[0] = 6
	_, err := DecodeMetadata(data)
	assert.ErrorIs(t, err, ErrInvalidMetadataAccount)

	_, err = DecodeMetadata([]byte{KeyMetadataV1, 1, 2})
	assert.ErrorIs(t, err, ErrInvalidMetadataAccount)
}

func TestEncodeRejectsLongStrings(t *testing.T) {
	record := &Metadata{Key: KeyMetadataV1, Data: DataV2{Symbol: "TOO-LONG-SYMBOL"}}
	_, err := record.Encode()
	assert.Error(t, err)
}
