// internal/programs/metadata/program.go
package metadata

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/token-minter/internal/authority"
	"github.com/rovshanmuradov/token-minter/internal/ledger"
	"github.com/rovshanmuradov/token-minter/internal/programs/spltoken"
	"github.com/rovshanmuradov/token-minter/internal/programs/system"
)

// Program executes CreateMetadataAccountV3.
type Program struct{}

// New creates the metadata program.
func New() *Program {
	return &Program{}
}

func (p *Program) ID() solana.PublicKey { return ProgramID }
func (p *Program) Name() string         { return "token-metadata" }

// Process creates a metadata account for an initialized mint.
func (p *Program) Process(ic *ledger.InvokeContext) error {
	args, err := decodeCreateArgs(ic.Data)
	if err != nil {
		return err
	}
	ic.Log("Instruction: Create Metadata Accounts v3")

	if _, err := ic.Account(5); err != nil {
		return err
	}
	accounts := ic.Accounts()
	metadataAcct, mintAcct, mintAuthority, payer, updateAuthority := accounts[0], accounts[1], accounts[2], accounts[3], accounts[4]

	address, bump, err := Address(mintAcct.Key)
	if err != nil {
		return fmt.Errorf("failed to derive metadata address: %w", err)
	}
	if !address.Equals(metadataAcct.Key) {
		return fmt.Errorf("%w: expected %s, got %s", ErrInvalidMetadataKey, address, metadataAcct.Key)
	}
	if !metadataAcct.Owner.Equals(system.ProgramID) || len(metadataAcct.Data) > 0 {
		return fmt.Errorf("%w: %s", ErrAlreadyInitialized, metadataAcct.Key)
	}

	if !mintAcct.Owner.Equals(spltoken.ProgramID) {
		return fmt.Errorf("%w: %s is owned by %s", ErrInvalidMint, mintAcct.Key, mintAcct.Owner)
	}
	mint, err := spltoken.DecodeMint(mintAcct.Data)
	if err != nil || !mint.IsInitialized {
		return fmt.Errorf("%w: %s", ErrInvalidMint, mintAcct.Key)
	}
	if mint.MintAuthority == nil || !mint.MintAuthority.Equals(mintAuthority.Key) {
		return fmt.Errorf("%w: %s", ErrInvalidMintAuthority, mintAuthority.Key)
	}
	if !mintAuthority.Signer {
		return fmt.Errorf("%w: mint authority %s", ledger.ErrMissingRequiredSignature, mintAuthority.Key)
	}

	if err := validateData(&args.Data, updateAuthority); err != nil {
		return err
	}

	signer := authority.NewSignerSeeds([]byte(seedPrefix), ProgramID[:], mintAcct.Key[:], []byte{bump})
	create := system.NewCreateAccountInstruction(payer.Key, metadataAcct.Key, ledger.MinimumBalance(MaxMetadataLen), MaxMetadataLen, ProgramID)
	if err := ic.InvokeSigned(create, signer); err != nil {
		return err
	}

	_, editionBump, err := EditionAddress(mintAcct.Key)
	if err != nil {
		return fmt.Errorf("failed to derive edition address: %w", err)
	}
	standard := TokenStandardFungibleAsset
	if mint.Decimals > 0 {
		standard = TokenStandardFungible
	}

	record := &Metadata{
		Key:             KeyMetadataV1,
		UpdateAuthority: updateAuthority.Key,
		Mint:            mintAcct.Key,
		Data:            args.Data,
		IsMutable:       args.IsMutable,
		EditionNonce:    &editionBump,
		TokenStandard:   &standard,
	}
	data, err := record.Encode()
	if err != nil {
		return err
	}
	copy(metadataAcct.Data, data)
	return nil
}

func validateData(data *DataV2, updateAuthority *ledger.AccountRef) error {
	switch {
	case len(data.Name) > MaxNameLength:
		return fmt.Errorf("%w: %d bytes, max %d", ErrNameTooLong, len(data.Name), MaxNameLength)
	case len(data.Symbol) > MaxSymbolLength:
		return fmt.Errorf("%w: %d bytes, max %d", ErrSymbolTooLong, len(data.Symbol), MaxSymbolLength)
	case len(data.URI) > MaxURILength:
		return fmt.Errorf("%w: %d bytes, max %d", ErrURITooLong, len(data.URI), MaxURILength)
	case data.SellerFeeBasisPoints > MaxSellerFeeBasis:
		return fmt.Errorf("%w: %d", ErrInvalidBasisPoints, data.SellerFeeBasisPoints)
	case data.Collection != nil && data.Collection.Verified:
		return ErrCollectionVerified
	}

	if data.Creators == nil {
		return nil
	}
	if len(data.Creators) > MaxCreatorLimit {
		return fmt.Errorf("%w: %d creators, max %d", ErrCreatorsTooLong, len(data.Creators), MaxCreatorLimit)
	}
	var total int
	for _, c := range data.Creators {
		total += int(c.Share)
		if c.Verified && (!c.Address.Equals(updateAuthority.Key) || !updateAuthority.Signer) {
			return fmt.Errorf("%w: %s", ErrCannotVerifyAnotherCreator, c.Address)
		}
	}
	if total != 100 {
		return fmt.Errorf("%w: got %d", ErrShareTotalMustBe100, total)
	}
	return nil
}
