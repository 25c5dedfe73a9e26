package brackets

// ScoringSettings controls how correct picks convert to points. RoundPoints
// holds the base award per round, indexed by round-1. The upset bonus pays
// (winner seed - opponent seed) * UpsetPointsPerSeed whenever a correctly
// picked winner's seed is numerically higher than its actual opponent's seed
// by at least UpsetMinSeedDiff.
type ScoringSettings struct {
	RoundPoints        []int `json:"round_points"`
	UpsetMinSeedDiff   int   `json:"upset_min_seed_diff,omitempty"`
	UpsetPointsPerSeed int   `json:"upset_points_per_seed,omitempty"`
}

// DefaultScoringSettings doubles the base award every round (1, 2, 4, ...)
// and pays no upset bonus.
func DefaultScoringSettings(rounds int) ScoringSettings {
	points := make([]int, rounds)
	p := 1
	for i := 0; i < rounds; i++ {
		points[i] = p
		p *= 2
	}
	return ScoringSettings{RoundPoints: points}
}

func (s ScoringSettings) pointsForRound(round int) int {
	if len(s.RoundPoints) == 0 || round < 1 {
		return 0
	}
	if round > len(s.RoundPoints) {
		return s.RoundPoints[len(s.RoundPoints)-1]
	}
	return s.RoundPoints[round-1]
}

func (s ScoringSettings) minSeedDiff() int {
	if s.UpsetMinSeedDiff < 1 {
		return 1
	}
	return s.UpsetMinSeedDiff
}

// Breakdown is the scoring result for one entry against one results snapshot.
type Breakdown struct {
	Total        int         `json:"total"`
	BasePoints   int         `json:"base_points"`
	BonusPoints  int         `json:"bonus_points"`
	CorrectPicks int         `json:"correct_picks"`
	RoundPoints  map[int]int `json:"round_points"`
}

// Score awards points for every matchup whose official winner is recorded
// and matches the entry's pick. Matchups without a recorded winner, picks
// for unknown matchup UIDs and missing picks all simply contribute nothing:
// scoring a partially played tournament or a malformed entry is the normal
// case, never an error.
//
// The upset bonus needs the actual opponent, resolved by propagating
// recorded winners through the DAG. If the opponent is not resolvable from
// the snapshot (mid-update reads), base points still count and only the
// bonus is skipped for that matchup.
//
// Score is deterministic and monotonic: identical inputs give an identical
// Breakdown, and growing the results never lowers a fixed entry's total.
func Score(picks map[string]int, st *Structure, results Results, settings ScoringSettings) Breakdown {
	b := Breakdown{RoundPoints: make(map[int]int)}
	if st == nil {
		return b
	}

	for _, m := range st.Matchups {
		winner, played := results[m.UID]
		if !played {
			continue
		}
		pick, picked := picks[m.UID]
		if !picked || pick != winner {
			continue
		}

		base := settings.pointsForRound(m.Round)
		bonus := upsetBonus(st, m, winner, results, settings)

		b.BasePoints += base
		b.BonusPoints += bonus
		b.CorrectPicks++
		b.RoundPoints[m.Round] += base + bonus
	}

	b.Total = b.BasePoints + b.BonusPoints
	return b
}

func upsetBonus(st *Structure, m *Matchup, winner int, results Results, settings ScoringSettings) int {
	if settings.UpsetPointsPerSeed <= 0 {
		return 0
	}

	team1, team2 := st.ResolveTeams(m, results)
	var opponent *int
	switch {
	case team1 != nil && *team1 == winner:
		opponent = team2
	case team2 != nil && *team2 == winner:
		opponent = team1
	// Mid-update snapshot: the winner's own feeder may be unresolved while
	// the opposing side already is. The resolved side is the opponent.
	case team1 != nil && team2 == nil:
		opponent = team1
	case team2 != nil && team1 == nil:
		opponent = team2
	default:
		return 0
	}
	if opponent == nil {
		return 0
	}

	winnerInfo, ok := st.Team(winner)
	if !ok {
		return 0
	}
	opponentInfo, ok := st.Team(*opponent)
	if !ok {
		return 0
	}

	diff := winnerInfo.Seed - opponentInfo.Seed
	if diff < settings.minSeedDiff() {
		return 0
	}
	return diff * settings.UpsetPointsPerSeed
}
