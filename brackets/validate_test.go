package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSemifinalConfigValid(t *testing.T) {
	problems := ValidateSemifinalConfig(testConfig())
	assert.Empty(t, problems)
}

func TestValidateSemifinalConfigSameRegionAndDuplicate(t *testing.T) {
	cfg := SemifinalConfig{
		Semifinal1: RegionPair{RegionA: "South", RegionB: "South"},
		Semifinal2: RegionPair{RegionA: "Midwest", RegionB: "East"},
	}

	problems := ValidateSemifinalConfig(cfg)
	require.Len(t, problems, 2)

	assert.Equal(t, ProblemSameRegionMatchup, problems[0].Kind)
	assert.Equal(t, 1, problems[0].Slot)

	assert.Equal(t, ProblemDuplicateRegion, problems[1].Kind)
	assert.Equal(t, "South", problems[1].Region)
}

func TestValidateSemifinalConfigDuplicateAcrossSlots(t *testing.T) {
	cfg := SemifinalConfig{
		Semifinal1: RegionPair{RegionA: "South", RegionB: "West"},
		Semifinal2: RegionPair{RegionA: "South", RegionB: "East"},
	}

	problems := ValidateSemifinalConfig(cfg)
	require.Len(t, problems, 1)
	assert.Equal(t, ProblemDuplicateRegion, problems[0].Kind)
	assert.Equal(t, "South", problems[0].Region)
}

func TestValidateSemifinalConfigIgnoresEmptySlots(t *testing.T) {
	// A half-filled config mid-edit should not spray duplicate problems
	// for the empty values.
	cfg := SemifinalConfig{
		Semifinal1: RegionPair{RegionA: "South"},
	}
	assert.Empty(t, ValidateSemifinalConfig(cfg))
}

func TestValidateSemifinalConfigIsPure(t *testing.T) {
	cfg := SemifinalConfig{
		Semifinal1: RegionPair{RegionA: "West", RegionB: "West"},
		Semifinal2: RegionPair{RegionA: "West", RegionB: "West"},
	}
	first := ValidateSemifinalConfig(cfg)
	second := ValidateSemifinalConfig(cfg)
	assert.Equal(t, first, second)
}

func TestValidConfigBuildsInvalidConfigDoesNot(t *testing.T) {
	regions := testRegions()

	valid := testConfig()
	_, err := BuildStructure(BuildParams{Regions: regions, Semifinal: &valid, SeedCount: 16})
	assert.NoError(t, err)

	invalid := SemifinalConfig{
		Semifinal1: RegionPair{RegionA: "South", RegionB: "South"},
		Semifinal2: RegionPair{RegionA: "Midwest", RegionB: "East"},
	}
	_, err = BuildStructure(BuildParams{Regions: regions, Semifinal: &invalid, SeedCount: 16})

	var structErr *StructureError
	require.ErrorAs(t, err, &structErr)
	assert.NotEmpty(t, structErr.Problems)
}
