package validation

import (
	"math"
	"sort"
	"strings"

	"github.com/c360studio/semonto/config"
	"github.com/c360studio/semonto/ontology"
)

// CompletenessResult scores the properties provided for a class.
type CompletenessResult struct {
	ClassName          string   `json:"class_name"`
	CompletenessScore  float64  `json:"completeness_score"`
	RequiredMissing    []string `json:"required_missing"`
	RecommendedMissing []string `json:"recommended_missing"`
	OptionalMissing    []string `json:"optional_missing"`
	Provided           []string `json:"provided"`
	Unrecognized       []string `json:"unrecognized"`
}

// CheckCompleteness compares the properties provided for className with the
// tiers configured for it in constraints. Without configured tiers every
// property whose domain includes the class is recommended. The score is the
// fraction of tracked properties provided, rounded to three decimals.
func CheckCompleteness(s *ontology.Summary, constraints config.Constraints, className string, provided []string) (*CompletenessResult, error) {
	if strings.TrimSpace(className) == "" {
		return nil, ontology.Invalidf("class name must not be empty")
	}
	label, ok := s.LookupClass(strings.TrimSpace(className))
	if !ok {
		return nil, ontology.NewNotFoundError("Class", className, s.ClassNames())
	}

	applicable := s.PropertiesForClass(label, "")

	tiers := constraints.For(label)
	required := toSet(tiers.Required)
	recommended := toSet(tiers.Recommended)
	optional := toSet(tiers.Optional)
	if len(required)+len(recommended)+len(optional) == 0 {
		for _, ref := range applicable {
			recommended[ref.Name] = true
		}
	}

	result := &CompletenessResult{
		ClassName:    label,
		Unrecognized: []string{},
	}
	have := map[string]bool{}
	for _, name := range provided {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if resolved, _, ok := s.LookupProperty(name); ok {
			have[resolved] = true
		} else {
			result.Unrecognized = append(result.Unrecognized, name)
		}
	}

	result.RequiredMissing = missing(required, have)
	result.RecommendedMissing = missing(recommended, have)
	result.OptionalMissing = missing(optional, have)
	result.Provided = sortedSet(have)

	tracked := len(required) + len(recommended) + len(optional)
	switch {
	case tracked == 0 && len(applicable) == 0:
		result.CompletenessScore = 1.0
	case tracked == 0:
		result.CompletenessScore = 0.0
	default:
		hits := 0
		for _, tier := range []map[string]bool{required, recommended, optional} {
			for name := range tier {
				if have[name] {
					hits++
				}
			}
		}
		result.CompletenessScore = math.Round(float64(hits)/float64(tracked)*1000) / 1000
	}
	return result, nil
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

func missing(tier, have map[string]bool) []string {
	out := []string{}
	for name := range tier {
		if !have[name] {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
