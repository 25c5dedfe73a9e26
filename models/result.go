package models

import "time"

// Result — официальный результат одного матчапа, внесённый владельцем пула.
type Result struct {
	ID           int       `json:"id" db:"id"`
	PoolID       int       `json:"pool_id" db:"pool_id"`
	MatchupUID   string    `json:"matchup_uid" db:"matchup_uid"`
	WinnerTeamID int       `json:"winner_team_id" db:"winner_team_id"`
	RecordedBy   *int      `json:"recorded_by,omitempty" db:"recorded_by"`
	RecordedAt   time.Time `json:"recorded_at" db:"recorded_at"`
}
