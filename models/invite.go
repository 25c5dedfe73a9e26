package models

import "time"

type Invite struct {
	ID        int       `json:"id" db:"id"`
	PoolID    int       `json:"pool_id" db:"pool_id"`
	Token     string    `json:"-" db:"token"`
	CreatedBy int       `json:"created_by" db:"created_by"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
