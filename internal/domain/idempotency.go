package domain

import "time"

// Idempotency stores the response of a completed write so that a retried
// request carrying the same Idempotency-Key is answered without re-executing
// side effects. Rows are keyed by (api_key_hash, route, key); the raw API key
// is never stored.
type Idempotency struct {
	ID          string    `gorm:"type:varchar(36);primaryKey"`
	APIKeyHash  string    `gorm:"type:varchar(16);not null;uniqueIndex:ux_idem_key_route,priority:1"`
	Route       string    `gorm:"type:varchar(128);not null;uniqueIndex:ux_idem_key_route,priority:2"`
	Key         string    `gorm:"column:idem_key;type:varchar(200);not null;uniqueIndex:ux_idem_key_route,priority:3"`
	RequestHash string    `gorm:"type:varchar(16);not null"`
	Response    string    `gorm:"type:text;not null"`
	CreatedAt   time.Time `gorm:"not null"`
	ExpiresAt   time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
