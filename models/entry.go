package models

import (
	"time"

	"github.com/google/uuid"
)

// Entry представляет заполненную сетку одного участника пула.
type Entry struct {
	ID           int       `json:"id" db:"id"`
	PoolID       int       `json:"pool_id" db:"pool_id"`
	UserID       int       `json:"user_id" db:"user_id"`
	PublicID     uuid.UUID `json:"public_id" db:"public_id"`
	IsOfficial   bool      `json:"is_official" db:"is_official"`
	TotalPoints  int       `json:"total_points" db:"total_points"`
	BasePoints   int       `json:"base_points" db:"base_points"`
	BonusPoints  int       `json:"bonus_points" db:"bonus_points"`
	CorrectPicks int       `json:"correct_picks" db:"correct_picks"`
	SubmittedAt  time.Time `json:"submitted_at" db:"submitted_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	Owner *User  `json:"owner,omitempty" db:"-"`
	Picks []Pick `json:"picks,omitempty" db:"-"`

	// PicksHidden выставляется при выдаче, когда туман войны скрывает прогнозы.
	PicksHidden bool `json:"picks_hidden,omitempty" db:"-"`
}

// PickMap переводит прогнозы в форму, которую принимает движок подсчёта.
func (e *Entry) PickMap() map[string]int {
	if len(e.Picks) == 0 {
		return map[string]int{}
	}
	m := make(map[string]int, len(e.Picks))
	for _, p := range e.Picks {
		m[p.MatchupUID] = p.TeamID
	}
	return m
}
