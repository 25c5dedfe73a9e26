package brackets

import "fmt"

type ProblemKind string

const (
	// ProblemSameRegionMatchup flags a semifinal slot whose two region
	// fields name the same region.
	ProblemSameRegionMatchup ProblemKind = "same_region_matchup"

	// ProblemDuplicateRegion flags a region assigned to more than one of
	// the four slot positions.
	ProblemDuplicateRegion ProblemKind = "duplicate_region"
)

// Problem is one configuration defect found by the validator. Problems are
// data, not errors: editing surfaces display them, activation refuses while
// any exist.
type Problem struct {
	Kind   ProblemKind `json:"kind"`
	Slot   int         `json:"slot,omitempty"`
	Region string      `json:"region,omitempty"`
}

func (p Problem) String() string {
	switch p.Kind {
	case ProblemSameRegionMatchup:
		return fmt.Sprintf("semifinal %d pairs a region with itself", p.Slot)
	case ProblemDuplicateRegion:
		return fmt.Sprintf("region %q is assigned to more than one semifinal slot", p.Region)
	default:
		return string(p.Kind)
	}
}

// ValidateSemifinalConfig checks a semifinal slot assignment. It is pure:
// same input, same problems, no side effects. Empty slot values are ignored
// so the validator can run on every edit of a half-filled config.
//
// A config is valid (no problems) exactly when the four slot positions hold
// four distinct regions.
func ValidateSemifinalConfig(cfg SemifinalConfig) []Problem {
	var problems []Problem

	slots := []RegionPair{cfg.Semifinal1, cfg.Semifinal2}
	for i, slot := range slots {
		if slot.RegionA != "" && slot.RegionA == slot.RegionB {
			problems = append(problems, Problem{
				Kind:   ProblemSameRegionMatchup,
				Slot:   i + 1,
				Region: slot.RegionA,
			})
		}
	}

	counts := map[string]int{}
	order := make([]string, 0, 4)
	for _, name := range []string{
		cfg.Semifinal1.RegionA, cfg.Semifinal1.RegionB,
		cfg.Semifinal2.RegionA, cfg.Semifinal2.RegionB,
	} {
		if name == "" {
			continue
		}
		if counts[name] == 0 {
			order = append(order, name)
		}
		counts[name]++
	}
	for _, name := range order {
		if counts[name] > 1 {
			problems = append(problems, Problem{
				Kind:   ProblemDuplicateRegion,
				Region: name,
			})
		}
	}

	return problems
}
