package models

// Team представляет посеянную команду внутри региона.
type Team struct {
	ID       int    `json:"id" db:"id"`
	RegionID int    `json:"region_id" db:"region_id"`
	Name     string `json:"name" db:"name"`
	Seed     int    `json:"seed" db:"seed"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}
