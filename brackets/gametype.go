package brackets

import (
	"fmt"
	"sort"
	"sync"
)

// Metadata describes one game type to clients and to the setup surfaces.
type Metadata struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	RegionCount int      `json:"region_count"`
	SeedCount   int      `json:"seed_count"`
	Rounds      int      `json:"rounds"`
	RoundNames  []string `json:"round_names"`
}

// GameType is the capability contract one bracket variant implements. Pools
// reference a game type by its Metadata().ID; behavior differences between
// variants live behind this interface instead of a type hierarchy.
type GameType interface {
	Metadata() Metadata

	// ValidateConfig reports configuration problems for the variant.
	// Variants without cross-region play have nothing to validate.
	ValidateConfig(cfg *SemifinalConfig) []Problem

	// Build derives the matchup DAG for the given seeding.
	Build(regions []RegionSeeding, cfg *SemifinalConfig) (*Structure, error)
}

var (
	gameTypesMu sync.RWMutex
	gameTypes   = make(map[string]GameType)
)

// Register makes a game type available by its metadata id. It panics on a
// duplicate id, mirroring how driver registries behave.
func Register(gt GameType) {
	gameTypesMu.Lock()
	defer gameTypesMu.Unlock()
	id := gt.Metadata().ID
	if _, dup := gameTypes[id]; dup {
		panic(fmt.Sprintf("brackets: game type %q registered twice", id))
	}
	gameTypes[id] = gt
}

// Lookup finds a registered game type by id.
func Lookup(id string) (GameType, bool) {
	gameTypesMu.RLock()
	defer gameTypesMu.RUnlock()
	gt, ok := gameTypes[id]
	return gt, ok
}

// AllGameTypes lists the metadata of every registered game type, ordered by id.
func AllGameTypes() []Metadata {
	gameTypesMu.RLock()
	defer gameTypesMu.RUnlock()
	out := make([]Metadata, 0, len(gameTypes))
	for _, gt := range gameTypes {
		out = append(out, gt.Metadata())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func init() {
	Register(fourRegionBracket{})
	Register(singleRegionBracket{})
}

// fourRegionBracket is the classic 64-team field: four regions of sixteen
// seeds, regional champions cross per the semifinal config, winners meet in
// the Championship.
type fourRegionBracket struct{}

func (fourRegionBracket) Metadata() Metadata {
	return Metadata{
		ID:          "march64",
		Name:        "64-team four-region bracket",
		RegionCount: 4,
		SeedCount:   16,
		Rounds:      6,
		RoundNames: []string{
			"Round of 64",
			"Round of 32",
			"Sweet Sixteen",
			"Elite Eight",
			"Final Four",
			"Championship",
		},
	}
}

func (fourRegionBracket) ValidateConfig(cfg *SemifinalConfig) []Problem {
	if cfg == nil {
		return nil
	}
	return ValidateSemifinalConfig(*cfg)
}

func (g fourRegionBracket) Build(regions []RegionSeeding, cfg *SemifinalConfig) (*Structure, error) {
	if len(regions) != g.Metadata().RegionCount {
		return nil, structureErrorf("game type %s expects %d regions, got %d", g.Metadata().ID, g.Metadata().RegionCount, len(regions))
	}
	return BuildStructure(BuildParams{
		Regions:   regions,
		Semifinal: cfg,
		SeedCount: g.Metadata().SeedCount,
	})
}

// singleRegionBracket is a sixteen-team single-elimination field with no
// cross-region play. The regional final is the Championship.
type singleRegionBracket struct{}

func (singleRegionBracket) Metadata() Metadata {
	return Metadata{
		ID:          "single16",
		Name:        "16-team single bracket",
		RegionCount: 1,
		SeedCount:   16,
		Rounds:      4,
		RoundNames: []string{
			"First Round",
			"Quarterfinals",
			"Semifinals",
			"Championship",
		},
	}
}

func (singleRegionBracket) ValidateConfig(*SemifinalConfig) []Problem {
	return nil
}

func (g singleRegionBracket) Build(regions []RegionSeeding, _ *SemifinalConfig) (*Structure, error) {
	if len(regions) != 1 {
		return nil, structureErrorf("game type %s expects a single region, got %d", g.Metadata().ID, len(regions))
	}
	return BuildStructure(BuildParams{
		Regions:   regions,
		SeedCount: g.Metadata().SeedCount,
	})
}
