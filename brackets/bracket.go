package brackets

// TeamSeed is one seeded team inside a region.
type TeamSeed struct {
	TeamID int    `json:"team_id"`
	Name   string `json:"name"`
	Seed   int    `json:"seed"`
}

// RegionSeeding is a region with its full seed list, ordered by bracket position.
type RegionSeeding struct {
	Name  string     `json:"name"`
	Teams []TeamSeed `json:"teams"`
}

// RegionPair names the two regions feeding one semifinal slot.
type RegionPair struct {
	RegionA string `json:"region_a"`
	RegionB string `json:"region_b"`
}

// SemifinalConfig assigns regions to the two semifinal slots.
type SemifinalConfig struct {
	Semifinal1 RegionPair `json:"semifinal1"`
	Semifinal2 RegionPair `json:"semifinal2"`
}

// Matchup is a single node of the bracket DAG. Round 1 matchups carry team
// ids directly; later rounds reference the matchups whose winners feed them.
type Matchup struct {
	UID          string `json:"uid"`
	Round        int    `json:"round"`
	OrderInRound int    `json:"order_in_round"`

	// Region is empty for the semifinal and championship rounds.
	Region string `json:"region,omitempty"`

	Team1ID *int `json:"team1_id,omitempty"`
	Team2ID *int `json:"team2_id,omitempty"`

	SourceMatch1UID *string `json:"source_match1_uid,omitempty"`
	SourceMatch2UID *string `json:"source_match2_uid,omitempty"`
}

// Results maps matchup UID to the official winner's team id.
type Results map[string]int

// TeamInfo is the structure's view of one team.
type TeamInfo struct {
	TeamID int    `json:"team_id"`
	Name   string `json:"name"`
	Seed   int    `json:"seed"`
	Region string `json:"region"`
}

// Structure is the complete matchup DAG for one bracket. It is immutable
// once built.
type Structure struct {
	Rounds          int        `json:"rounds"`
	RegionRounds    int        `json:"region_rounds"`
	Matchups        []*Matchup `json:"matchups"`
	ChampionshipUID string     `json:"championship_uid"`

	byUID map[string]*Matchup
	teams map[int]TeamInfo
}

// Matchup looks a matchup up by UID.
func (s *Structure) Matchup(uid string) (*Matchup, bool) {
	m, ok := s.byUID[uid]
	return m, ok
}

// Team looks a team up by id.
func (s *Structure) Team(id int) (TeamInfo, bool) {
	t, ok := s.teams[id]
	return t, ok
}

// RoundMatchups returns the matchups of one round in bracket order.
func (s *Structure) RoundMatchups(round int) []*Matchup {
	out := make([]*Matchup, 0)
	for _, m := range s.Matchups {
		if m.Round == round {
			out = append(out, m)
		}
	}
	return out
}

// CanReach reports whether a team can appear in the given matchup, i.e.
// whether the matchup's subtree contains the team's round-1 slot.
func (s *Structure) CanReach(uid string, teamID int) bool {
	m, ok := s.byUID[uid]
	if !ok {
		return false
	}
	if m.Team1ID != nil && *m.Team1ID == teamID {
		return true
	}
	if m.Team2ID != nil && *m.Team2ID == teamID {
		return true
	}
	if m.SourceMatch1UID != nil && s.CanReach(*m.SourceMatch1UID, teamID) {
		return true
	}
	if m.SourceMatch2UID != nil && s.CanReach(*m.SourceMatch2UID, teamID) {
		return true
	}
	return false
}

// ResolveTeams resolves the two teams feeding a matchup under the given
// results snapshot. A side is nil while its feeder matchup has no recorded
// winner. The snapshot may be partial or mid-update; resolution never fails.
func (s *Structure) ResolveTeams(m *Matchup, results Results) (team1, team2 *int) {
	resolve := func(teamID *int, sourceUID *string) *int {
		if teamID != nil {
			return teamID
		}
		if sourceUID == nil {
			return nil
		}
		winner, ok := results[*sourceUID]
		if !ok {
			return nil
		}
		return &winner
	}
	return resolve(m.Team1ID, m.SourceMatch1UID), resolve(m.Team2ID, m.SourceMatch2UID)
}
