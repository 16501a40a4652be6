// internal/programs/metadata/errors.go
package metadata

import "errors"

var (
	ErrInvalidInstruction         = errors.New("invalid metadata instruction")
	ErrInvalidMetadataKey         = errors.New("derived key invalid for metadata account")
	ErrInvalidMetadataAccount     = errors.New("invalid metadata account data")
	ErrAlreadyInitialized         = errors.New("metadata account already initialized")
	ErrInvalidMint                = errors.New("mint is not an initialized token mint")
	ErrInvalidMintAuthority       = errors.New("mint authority provided does not match the authority on the mint")
	ErrNameTooLong                = errors.New("name too long")
	ErrSymbolTooLong              = errors.New("symbol too long")
	ErrURITooLong                 = errors.New("uri too long")
	ErrInvalidBasisPoints         = errors.New("basis points cannot be more than 10000")
	ErrCreatorsTooLong            = errors.New("creators list too long")
	ErrShareTotalMustBe100        = errors.New("share total must equal 100 for creator array")
	ErrCannotVerifyAnotherCreator = errors.New("cannot verify another creator")
	ErrCollectionVerified         = errors.New("collection cannot be verified in this instruction")
)
