package models

import "time"

// VisibilityException — явное исключение из тумана войны для зрителя.
type VisibilityException struct {
	ID           int       `json:"id" db:"id"`
	PoolID       int       `json:"pool_id" db:"pool_id"`
	ViewerUserID int       `json:"viewer_user_id" db:"viewer_user_id"`
	GrantedBy    int       `json:"granted_by" db:"granted_by"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
