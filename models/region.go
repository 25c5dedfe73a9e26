package models

// Region представляет регион сетки (четверть поля посева).
type Region struct {
	ID       int    `json:"id" db:"id"`
	PoolID   int    `json:"pool_id" db:"pool_id"`
	Name     string `json:"name" db:"name"`
	Position int    `json:"position" db:"position"`

	Teams []Team `json:"teams,omitempty" db:"-"`
}
