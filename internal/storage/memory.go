// internal/storage/memory.go
package storage

import (
	"context"
	"sync"
	"time"

	"github.com/rovshanmuradov/token-minter/internal/storage/models"
)

// MemoryJournal is a process-local Journal.
type MemoryJournal struct {
	mu       sync.RWMutex
	nextID   int64
	receipts []*models.Receipt
	bySig    map[string]*models.Receipt
}

// NewMemoryJournal creates an empty journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{bySig: make(map[string]*models.Receipt)}
}

var _ Journal = (*MemoryJournal)(nil)

func (j *MemoryJournal) SaveReceipt(ctx context.Context, r *models.Receipt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	if _, ok := j.bySig[r.Signature]; ok {
		return ErrDuplicateKey
	}
	j.nextID++
	r.ID = j.nextID
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	stored := *r
	j.receipts = append(j.receipts, &stored)
	j.bySig[r.Signature] = &stored
	return nil
}

func (j *MemoryJournal) GetReceipt(ctx context.Context, signature string) (*models.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	j.mu.RLock()
	defer j.mu.RUnlock()

	r, ok := j.bySig[signature]
	if !ok {
		return nil, ErrNotFound
	}
	out := *r
	return &out, nil
}

func (j *MemoryJournal) ListReceipts(ctx context.Context, mint string, limit int) ([]*models.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	j.mu.RLock()
	defer j.mu.RUnlock()

	var out []*models.Receipt
	for i := len(j.receipts) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if r := j.receipts[i]; r.Mint == mint {
			c := *r
			out = append(out, &c)
		}
	}
	return out, nil
}
