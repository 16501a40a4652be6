// internal/storage/models/receipt.go
package models

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Операции minter-программы.
const (
	OperationInitiateToken = "initiate_token"
	OperationMintTokens    = "mint_tokens"
)

// Статусы квитанций.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Receipt records one submitted minter transaction.
type Receipt struct {
	BaseModel
	Signature    string
	Operation    string
	ProgramID    string
	Mint         string
	Payer        string
	Holder       string // пусто для initiate_token
	Destination  string
	Amount       decimal.Decimal // базовые единицы
	Supply       decimal.Decimal // supply после операции
	Status       string
	ErrorMessage string
}

// Units converts a base unit amount to a decimal without losing precision.
func Units(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}
