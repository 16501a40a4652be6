// internal/storage/storage.go
package storage

import (
	"context"
	"errors"

	"github.com/rovshanmuradov/token-minter/internal/storage/models"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// Journal хранит квитанции отправленных транзакций
type Journal interface {
	// SaveReceipt сохраняет квитанцию; ErrDuplicateKey если подпись уже записана.
	SaveReceipt(ctx context.Context, r *models.Receipt) error
	// GetReceipt ищет квитанцию по подписи; ErrNotFound если нет.
	GetReceipt(ctx context.Context, signature string) (*models.Receipt, error)
	// ListReceipts возвращает последние квитанции по mint, новые первыми.
	ListReceipts(ctx context.Context, mint string, limit int) ([]*models.Receipt, error)
}
