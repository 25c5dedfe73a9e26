package models

import (
	"encoding/json"
	"time"

	"github.com/Dosada05/bracket-pool/brackets"
)

// PoolStatus представляет статусы пула, соответствующие ENUM в БД.
type PoolStatus string

const (
	StatusSetup     PoolStatus = "setup"
	StatusOpen      PoolStatus = "open"
	StatusLocked    PoolStatus = "locked"
	StatusCompleted PoolStatus = "completed"
	StatusCanceled  PoolStatus = "canceled"
)

// Pool представляет пул прогнозов на одну турнирную сетку.
type Pool struct {
	ID          int        `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description,omitempty" db:"description"`
	GameType    string     `json:"game_type" db:"game_type"`
	OwnerID     int        `json:"owner_id" db:"owner_id"`
	Status      PoolStatus `json:"status" db:"status"`
	LockTime    time.Time  `json:"lock_time" db:"lock_time"`
	FogOfWar    bool       `json:"fog_of_war" db:"fog_of_war"`
	Semifinal1A *int       `json:"semifinal1_a,omitempty" db:"semifinal1_a"`
	Semifinal1B *int       `json:"semifinal1_b,omitempty" db:"semifinal1_b"`
	Semifinal2A *int       `json:"semifinal2_a,omitempty" db:"semifinal2_a"`
	Semifinal2B *int       `json:"semifinal2_b,omitempty" db:"semifinal2_b"`
	ScoringJSON *string    `json:"-" db:"scoring_json"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty" db:"finalized_at"`
	LogoKey     *string    `json:"-" db:"logo_key"`
	LogoURL     *string    `json:"logo_url,omitempty" db:"-"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Owner       *User    `json:"owner,omitempty" db:"-"`
	Regions     []Region `json:"regions,omitempty" db:"-"`
	Results     []Result `json:"results,omitempty" db:"-"`
	MemberCount *int     `json:"member_count,omitempty" db:"-"`
}

// ScoringSettings разбирает scoring_json; пустое значение означает
// настройки по умолчанию для данного количества раундов.
func (p *Pool) ScoringSettings(rounds int) (brackets.ScoringSettings, error) {
	if p.ScoringJSON == nil || *p.ScoringJSON == "" {
		return brackets.DefaultScoringSettings(rounds), nil
	}
	var s brackets.ScoringSettings
	if err := json.Unmarshal([]byte(*p.ScoringJSON), &s); err != nil {
		return brackets.ScoringSettings{}, err
	}
	if len(s.RoundPoints) == 0 {
		s.RoundPoints = brackets.DefaultScoringSettings(rounds).RoundPoints
	}
	return s, nil
}

// SemifinalConfigured сообщает, заполнены ли все четыре слота полуфиналов.
func (p *Pool) SemifinalConfigured() bool {
	return p.Semifinal1A != nil && p.Semifinal1B != nil &&
		p.Semifinal2A != nil && p.Semifinal2B != nil
}

// VisibilitySettings собирает настройки видимости для движка.
// Исключения зрителей подгружаются сервисом отдельно.
func (p *Pool) VisibilitySettings(exceptions map[int]bool) brackets.VisibilitySettings {
	return brackets.VisibilitySettings{
		FogOfWar:   p.FogOfWar,
		Complete:   p.Status == StatusCompleted,
		Exceptions: exceptions,
	}
}
