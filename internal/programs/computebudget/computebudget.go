// internal/programs/computebudget/computebudget.go
package computebudget

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/token-minter/internal/ledger"
	"github.com/rovshanmuradov/token-minter/internal/utils/binary"
)

var ProgramID = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")

const (
	RequestHeapFrame    uint8 = 1
	SetComputeUnitLimit uint8 = 2
	SetComputeUnitPrice uint8 = 3
)

// Предопределенные профили
const (
	DefaultUnits uint32 = 200_000
	MaxUnits     uint32 = 1_400_000
)

// ErrInvalidInstruction is returned for malformed compute budget instructions.
var ErrInvalidInstruction = errors.New("invalid compute budget instruction")

// Config содержит конфигурацию бюджета для транзакции
type Config struct {
	Units     uint32
	UnitPrice uint64 // микролампорты за compute unit
}

// BuildInstructions создает инструкции для настройки бюджета.
// Нулевой Config не добавляет инструкций.
func BuildInstructions(config Config) ([]solana.Instruction, error) {
	if config.Units > MaxUnits {
		return nil, fmt.Errorf("compute unit limit %d exceeds %d", config.Units, MaxUnits)
	}

	var instructions []solana.Instruction
	if config.Units > 0 {
		instructions = append(instructions, NewSetComputeUnitLimitInstruction(config.Units))
	}
	if config.UnitPrice > 0 {
		instructions = append(instructions, NewSetComputeUnitPriceInstruction(config.UnitPrice))
	}
	return instructions, nil
}

// NewSetComputeUnitLimitInstruction создает инструкцию для установки лимита compute units
func NewSetComputeUnitLimitInstruction(units uint32) solana.Instruction {
	data := binary.NewWriter().U8(SetComputeUnitLimit).U32(units).Bytes()
	return solana.NewInstruction(ProgramID, []*solana.AccountMeta{}, data)
}

// NewSetComputeUnitPriceInstruction создает инструкцию для установки цены compute units
func NewSetComputeUnitPriceInstruction(microLamports uint64) solana.Instruction {
	data := binary.NewWriter().U8(SetComputeUnitPrice).U64(microLamports).Bytes()
	return solana.NewInstruction(ProgramID, []*solana.AccountMeta{}, data)
}

// Program принимает инструкции бюджета на локальном леджере.
// Compute units там не учитываются, поэтому проверяется только формат.
type Program struct{}

// New creates the compute budget program.
func New() *Program {
	return &Program{}
}

func (p *Program) ID() solana.PublicKey { return ProgramID }
func (p *Program) Name() string         { return "compute-budget" }

func (p *Program) Process(ic *ledger.InvokeContext) error {
	r := binary.NewReader(ic.Data)
	switch tag := r.U8(); tag {
	case RequestHeapFrame, SetComputeUnitLimit:
		r.U32()
	case SetComputeUnitPrice:
		r.U64()
	default:
		return fmt.Errorf("%w: unsupported tag %d", ErrInvalidInstruction, tag)
	}
	if r.Err() != nil || r.Remaining() != 0 {
		return fmt.Errorf("%w: malformed data", ErrInvalidInstruction)
	}
	return nil
}
