package models

import "time"

type MembershipStatus string

const (
	MembershipActive  MembershipStatus = "member"
	MembershipRemoved MembershipStatus = "removed"
)

type Membership struct {
	ID        int              `json:"id"`
	PoolID    int              `json:"pool_id"`
	UserID    int              `json:"user_id"`
	Status    MembershipStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`

	User *User `json:"user,omitempty"`
}
