// internal/storage/postgres/receipt_store.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rovshanmuradov/token-minter/internal/storage"
	"github.com/rovshanmuradov/token-minter/internal/storage/models"
)

// ReceiptStore implements storage.Journal using PostgreSQL.
type ReceiptStore struct {
	pool *Pool
}

// NewReceiptStore creates a new ReceiptStore.
func NewReceiptStore(pool *Pool) *ReceiptStore {
	return &ReceiptStore{pool: pool}
}

var _ storage.Journal = (*ReceiptStore)(nil)

const receiptColumns = `id, signature, operation, program_id, mint, payer, holder, destination,
	amount, supply, status, error_message, created_at`

// SaveReceipt inserts r and fills its ID and CreatedAt.
func (s *ReceiptStore) SaveReceipt(ctx context.Context, r *models.Receipt) error {
	query := `
		INSERT INTO receipts (
			signature, operation, program_id, mint, payer, holder, destination,
			amount, supply, status, error_message
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`

	err := s.pool.QueryRow(ctx, query,
		r.Signature,
		r.Operation,
		r.ProgramID,
		r.Mint,
		r.Payer,
		r.Holder,
		r.Destination,
		r.Amount,
		r.Supply,
		r.Status,
		r.ErrorMessage,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert receipt: %w", err)
	}
	return nil
}

// GetReceipt returns the receipt of signature or storage.ErrNotFound.
func (s *ReceiptStore) GetReceipt(ctx context.Context, signature string) (*models.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE signature = $1`

	r, err := scanReceipt(s.pool.QueryRow(ctx, query, signature))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	return r, nil
}

// ListReceipts returns the latest receipts of mint. A non-positive limit returns all.
func (s *ReceiptStore) ListReceipts(ctx context.Context, mint string, limit int) ([]*models.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE mint = $1 ORDER BY created_at DESC, id DESC`
	args := []any{mint}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	var out []*models.Receipt
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipts: %w", err)
	}
	return out, nil
}

func scanReceipt(row pgx.Row) (*models.Receipt, error) {
	var r models.Receipt
	err := row.Scan(
		&r.ID,
		&r.Signature,
		&r.Operation,
		&r.ProgramID,
		&r.Mint,
		&r.Payer,
		&r.Holder,
		&r.Destination,
		&r.Amount,
		&r.Supply,
		&r.Status,
		&r.ErrorMessage,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
