package models

// Pick — прогноз победителя по одному матчапу сетки.
type Pick struct {
	ID         int    `json:"id" db:"id"`
	EntryID    int    `json:"entry_id" db:"entry_id"`
	MatchupUID string `json:"matchup_uid" db:"matchup_uid"`
	TeamID     int    `json:"team_id" db:"team_id"`
}
