// internal/storage/models/base.go
package models

import "time"

// BaseModel содержит общие поля записей журнала
type BaseModel struct {
	ID        int64
	CreatedAt time.Time
}
