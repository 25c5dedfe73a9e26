package brackets

import (
	"fmt"
	"strings"
)

// StructureError reports why a bracket structure could not be built. It is
// fatal for the caller's operation; configuration problems that merely need
// fixing travel in Problems.
type StructureError struct {
	Reason   string
	Problems []Problem
}

func (e *StructureError) Error() string {
	if len(e.Problems) == 0 {
		return fmt.Sprintf("bracket structure: %s", e.Reason)
	}
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.String()
	}
	return fmt.Sprintf("bracket structure: %s: %s", e.Reason, strings.Join(parts, "; "))
}

func structureErrorf(format string, args ...interface{}) *StructureError {
	return &StructureError{Reason: fmt.Sprintf(format, args...)}
}

// BuildParams carries everything BuildStructure needs. Semifinal is required
// when four regions are given and ignored for a single region.
type BuildParams struct {
	Regions   []RegionSeeding
	Semifinal *SemifinalConfig
	SeedCount int
}

// BuildStructure derives the full matchup DAG from regions, seeds and the
// semifinal assignment. Matchup UIDs are deterministic ("R3M2"): identical
// inputs always produce an identical structure, so UIDs are stable keys for
// picks and results.
//
// With four regions every region plays down to a regional champion, the two
// semifinal slots pair champions per the config, and the semifinal winners
// meet in the Championship. A single region's bracket ends at its own final.
func BuildStructure(params BuildParams) (*Structure, error) {
	regions := params.Regions
	seedCount := params.SeedCount

	if len(regions) != 1 && len(regions) != 4 {
		return nil, structureErrorf("expected 1 or 4 regions, got %d", len(regions))
	}
	if seedCount < 2 || seedCount&(seedCount-1) != 0 {
		return nil, structureErrorf("seed count must be a power of two, got %d", seedCount)
	}

	regionRounds := 0
	for n := seedCount; n > 1; n /= 2 {
		regionRounds++
	}
	totalRounds := regionRounds
	if len(regions) == 4 {
		totalRounds += 2
	}

	st := &Structure{
		Rounds:       totalRounds,
		RegionRounds: regionRounds,
		byUID:        make(map[string]*Matchup),
		teams:        make(map[int]TeamInfo),
	}

	seenRegions := map[string]bool{}
	for _, region := range regions {
		if region.Name == "" {
			return nil, structureErrorf("region with empty name")
		}
		if seenRegions[region.Name] {
			return nil, structureErrorf("duplicate region name %q", region.Name)
		}
		seenRegions[region.Name] = true

		if len(region.Teams) != seedCount {
			return nil, structureErrorf("region %q has %d teams, expected %d", region.Name, len(region.Teams), seedCount)
		}
		seenSeeds := make(map[int]bool, seedCount)
		for _, t := range region.Teams {
			if t.Seed < 1 || t.Seed > seedCount {
				return nil, structureErrorf("region %q: seed %d out of range 1..%d", region.Name, t.Seed, seedCount)
			}
			if seenSeeds[t.Seed] {
				return nil, structureErrorf("region %q: seed %d assigned twice", region.Name, t.Seed)
			}
			seenSeeds[t.Seed] = true
			if _, dup := st.teams[t.TeamID]; dup {
				return nil, structureErrorf("team id %d appears more than once", t.TeamID)
			}
			st.teams[t.TeamID] = TeamInfo{
				TeamID: t.TeamID,
				Name:   t.Name,
				Seed:   t.Seed,
				Region: region.Name,
			}
		}
	}

	if len(regions) == 4 {
		if params.Semifinal == nil {
			return nil, structureErrorf("semifinal config is required for a four-region bracket")
		}
		if problems := ValidateSemifinalConfig(*params.Semifinal); len(problems) > 0 {
			return nil, &StructureError{Reason: "invalid semifinal config", Problems: problems}
		}
		for _, name := range []string{
			params.Semifinal.Semifinal1.RegionA, params.Semifinal.Semifinal1.RegionB,
			params.Semifinal.Semifinal2.RegionA, params.Semifinal.Semifinal2.RegionB,
		} {
			if !seenRegions[name] {
				return nil, structureErrorf("semifinal config references unknown region %q", name)
			}
		}
	}

	// Regional rounds. Every region is generated round by round; the slice
	// for the next round holds the UID of the matchup feeding each slot.
	regionFinalUID := make(map[string]string, len(regions))
	order := seedOrder(seedCount)

	for r := 1; r <= regionRounds; r++ {
		matchupsInRound := 0
		for _, region := range regions {
			var slots []slot
			if r == 1 {
				bySeed := make(map[int]int, seedCount)
				for _, t := range region.Teams {
					bySeed[t.Seed] = t.TeamID
				}
				for _, seed := range order {
					id := bySeed[seed]
					slots = append(slots, slot{teamID: &id})
				}
			} else {
				prev := st.RoundMatchups(r - 1)
				for _, m := range prev {
					if m.Region == region.Name {
						uid := m.UID
						slots = append(slots, slot{sourceUID: &uid})
					}
				}
			}

			for i := 0; i < len(slots); i += 2 {
				matchupsInRound++
				m := &Matchup{
					UID:          fmt.Sprintf("R%dM%d", r, matchupsInRound),
					Round:        r,
					OrderInRound: matchupsInRound,
					Region:       region.Name,
					Team1ID:      slots[i].teamID,
					Team2ID:      slots[i+1].teamID,

					SourceMatch1UID: slots[i].sourceUID,
					SourceMatch2UID: slots[i+1].sourceUID,
				}
				st.Matchups = append(st.Matchups, m)
				st.byUID[m.UID] = m
				if r == regionRounds {
					regionFinalUID[region.Name] = m.UID
				}
			}
		}
	}

	if len(regions) == 1 {
		st.ChampionshipUID = regionFinalUID[regions[0].Name]
		return st, nil
	}

	// Semifinals and Championship.
	semiRound := regionRounds + 1
	pairs := []RegionPair{params.Semifinal.Semifinal1, params.Semifinal.Semifinal2}
	semiUIDs := make([]string, 0, 2)
	for i, pair := range pairs {
		srcA := regionFinalUID[pair.RegionA]
		srcB := regionFinalUID[pair.RegionB]
		m := &Matchup{
			UID:             fmt.Sprintf("R%dM%d", semiRound, i+1),
			Round:           semiRound,
			OrderInRound:    i + 1,
			SourceMatch1UID: &srcA,
			SourceMatch2UID: &srcB,
		}
		st.Matchups = append(st.Matchups, m)
		st.byUID[m.UID] = m
		semiUIDs = append(semiUIDs, m.UID)
	}

	final := &Matchup{
		UID:             fmt.Sprintf("R%dM1", semiRound+1),
		Round:           semiRound + 1,
		OrderInRound:    1,
		SourceMatch1UID: &semiUIDs[0],
		SourceMatch2UID: &semiUIDs[1],
	}
	st.Matchups = append(st.Matchups, final)
	st.byUID[final.UID] = final
	st.ChampionshipUID = final.UID

	return st, nil
}

type slot struct {
	teamID    *int
	sourceUID *string
}

// seedOrder lays the seeds of one region out in first-round bracket order:
// 1 v 16, 8 v 9, 5 v 12, 4 v 13, ... for sixteen seeds. Grown by mirroring
// the previous order, alternating which side of each pairing leads, so the
// top seed's quarter sits at the outer edge and seeds 1 and 2 can only meet
// in the regional final.
func seedOrder(size int) []int {
	order := []int{1}
	for len(order) < size {
		mirror := len(order)*2 + 1
		grown := make([]int, 0, len(order)*2)
		for i, s := range order {
			if i%2 == 0 {
				grown = append(grown, s, mirror-s)
			} else {
				grown = append(grown, mirror-s, s)
			}
		}
		order = grown
	}
	// Normalize each pairing so the better seed is listed first.
	for i := 0; i < len(order); i += 2 {
		if order[i] > order[i+1] {
			order[i], order[i+1] = order[i+1], order[i]
		}
	}
	return order
}
