package brackets

import (
	"errors"
	"sort"
)

var (
	// ErrNoEntries is returned when winners are requested for an empty
	// entry set.
	ErrNoEntries = errors.New("no entries to rank")

	// ErrResultsIncomplete is returned when winners are requested before
	// the Championship matchup has a recorded winner.
	ErrResultsIncomplete = errors.New("championship result not recorded")
)

// ScoredEntry pairs an entry with its computed breakdown.
type ScoredEntry struct {
	EntryID   int       `json:"entry_id"`
	OwnerID   int       `json:"owner_id"`
	Breakdown Breakdown `json:"breakdown"`
}

// RankedEntry is a scored entry with its leaderboard rank.
type RankedEntry struct {
	ScoredEntry
	Rank int `json:"rank"`
}

// Rank orders entries by total points, highest first. The sort is stable:
// entries with equal totals keep their input order, so callers control the
// display tie-break (submission order, typically). Ties share a rank and
// the following rank is skipped (1, 1, 3). Ranking a partially played
// tournament is always permitted.
func Rank(entries []ScoredEntry) []RankedEntry {
	sorted := make([]ScoredEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Breakdown.Total > sorted[j].Breakdown.Total
	})

	ranked := make([]RankedEntry, len(sorted))
	for i, e := range sorted {
		rank := i + 1
		if i > 0 && e.Breakdown.Total == sorted[i-1].Breakdown.Total {
			rank = ranked[i-1].Rank
		}
		ranked[i] = RankedEntry{ScoredEntry: e, Rank: rank}
	}
	return ranked
}

// DetermineWinners returns every entry sharing the maximum total, in input
// order. Ties produce multiple winners, deliberately.
//
// It refuses to run early: ErrNoEntries when the entry set is empty,
// ErrResultsIncomplete when the structure's Championship matchup has no
// recorded winner yet.
func DetermineWinners(entries []ScoredEntry, st *Structure, results Results) ([]ScoredEntry, error) {
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	if st == nil || st.ChampionshipUID == "" {
		return nil, ErrResultsIncomplete
	}
	if _, done := results[st.ChampionshipUID]; !done {
		return nil, ErrResultsIncomplete
	}

	max := entries[0].Breakdown.Total
	for _, e := range entries[1:] {
		if e.Breakdown.Total > max {
			max = e.Breakdown.Total
		}
	}

	winners := make([]ScoredEntry, 0, 1)
	for _, e := range entries {
		if e.Breakdown.Total == max {
			winners = append(winners, e)
		}
	}
	return winners, nil
}
