package brackets

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// Team ids encode region position and seed (South seed 3 = 103) so tests
// can name teams without threading fixture state around.
func testTeamID(regionPos, seed int) int {
	return regionPos*100 + seed
}

func testRegions() []RegionSeeding {
	names := []string{"South", "West", "Midwest", "East"}
	regions := make([]RegionSeeding, 0, len(names))
	for i, name := range names {
		teams := make([]TeamSeed, 0, 16)
		for seed := 1; seed <= 16; seed++ {
			teams = append(teams, TeamSeed{
				TeamID: testTeamID(i+1, seed),
				Name:   fmt.Sprintf("%s %d", name, seed),
				Seed:   seed,
			})
		}
		regions = append(regions, RegionSeeding{Name: name, Teams: teams})
	}
	return regions
}

func testConfig() SemifinalConfig {
	return SemifinalConfig{
		Semifinal1: RegionPair{RegionA: "South", RegionB: "West"},
		Semifinal2: RegionPair{RegionA: "Midwest", RegionB: "East"},
	}
}

func testStructure(t *testing.T) *Structure {
	t.Helper()
	cfg := testConfig()
	st, err := BuildStructure(BuildParams{
		Regions:   testRegions(),
		Semifinal: &cfg,
		SeedCount: 16,
	})
	require.NoError(t, err)
	return st
}

func singleRegionStructure(t *testing.T) *Structure {
	t.Helper()
	teams := make([]TeamSeed, 0, 16)
	for seed := 1; seed <= 16; seed++ {
		teams = append(teams, TeamSeed{
			TeamID: testTeamID(1, seed),
			Name:   fmt.Sprintf("Field %d", seed),
			Seed:   seed,
		})
	}
	st, err := BuildStructure(BuildParams{
		Regions:   []RegionSeeding{{Name: "Field", Teams: teams}},
		SeedCount: 16,
	})
	require.NoError(t, err)
	return st
}

// chalkResults plays every matchup in favor of the better seed, breaking
// equal-seed meetings (semifinals onward) by the lower team id.
func chalkResults(t *testing.T, st *Structure) Results {
	t.Helper()
	results := Results{}
	for _, m := range st.Matchups {
		t1, t2 := st.ResolveTeams(m, results)
		require.NotNil(t, t1, "matchup %s side 1 unresolved", m.UID)
		require.NotNil(t, t2, "matchup %s side 2 unresolved", m.UID)

		i1, ok := st.Team(*t1)
		require.True(t, ok)
		i2, ok := st.Team(*t2)
		require.True(t, ok)

		winner := *t1
		if i2.Seed < i1.Seed || (i2.Seed == i1.Seed && *t2 < *t1) {
			winner = *t2
		}
		results[m.UID] = winner
	}
	return results
}

// upsetResults plays every matchup in favor of the worse seed, so bonus
// settings have something to pay for in every round.
func upsetResults(t *testing.T, st *Structure) Results {
	t.Helper()
	results := Results{}
	for _, m := range st.Matchups {
		t1, t2 := st.ResolveTeams(m, results)
		require.NotNil(t, t1)
		require.NotNil(t, t2)

		i1, _ := st.Team(*t1)
		i2, _ := st.Team(*t2)

		winner := *t1
		if i2.Seed > i1.Seed || (i2.Seed == i1.Seed && *t2 > *t1) {
			winner = *t2
		}
		results[m.UID] = winner
	}
	return results
}

func picksFrom(results Results) map[string]int {
	picks := make(map[string]int, len(results))
	for uid, winner := range results {
		picks[uid] = winner
	}
	return picks
}
