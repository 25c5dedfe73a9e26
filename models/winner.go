package models

import "time"

// PoolWinner фиксирует победителя пула на момент финализации.
// При ничьей по очкам строк несколько.
type PoolWinner struct {
	ID          int       `json:"id" db:"id"`
	PoolID      int       `json:"pool_id" db:"pool_id"`
	EntryID     int       `json:"entry_id" db:"entry_id"`
	UserID      int       `json:"user_id" db:"user_id"`
	TotalPoints int       `json:"total_points" db:"total_points"`
	FinalizedAt time.Time `json:"finalized_at" db:"finalized_at"`

	User *User `json:"user,omitempty" db:"-"`
}
