package validation

import (
	"encoding/json"
	"fmt"

	"github.com/c360studio/semonto/ontology"
)

// Relationship is a subject-property-object triple over class labels.
type Relationship struct {
	SubjectClass string `json:"subject_class"`
	Property     string `json:"property"`
	ObjectClass  string `json:"object_class"`
}

// RelationshipCheck is the outcome for one triple.
type RelationshipCheck struct {
	SubjectClass string   `json:"subject_class"`
	Property     string   `json:"property"`
	ObjectClass  string   `json:"object_class"`
	Valid        bool     `json:"valid"`
	Errors       []string `json:"errors"`
}

// RelationshipResult is valid when no triple has an error.
type RelationshipResult struct {
	Valid   bool                `json:"valid"`
	Results []RelationshipCheck `json:"results"`
	Errors  []string            `json:"errors"`
}

// DecodeRelationships reads a non-empty JSON list of triples.
func DecodeRelationships(data []byte) ([]Relationship, error) {
	var rels []Relationship
	if err := json.Unmarshal(data, &rels); err != nil || len(rels) == 0 {
		return nil, ontology.Invalidf("relationships must be a non-empty list of objects")
	}
	return rels, nil
}

// CheckRelationships verifies each triple against its object property. The
// subject must be, or descend from, a member of the property's domain; the
// object likewise for the range. Undeclared domains and ranges accept
// anything.
func CheckRelationships(s *ontology.Summary, rels []Relationship) (*RelationshipResult, error) {
	if len(rels) == 0 {
		return nil, ontology.Invalidf("relationships must be a non-empty list of objects")
	}

	result := &RelationshipResult{
		Results: make([]RelationshipCheck, 0, len(rels)),
		Errors:  []string{},
	}
	for _, rel := range rels {
		check := RelationshipCheck{
			SubjectClass: rel.SubjectClass,
			Property:     rel.Property,
			ObjectClass:  rel.ObjectClass,
			Errors:       []string{},
		}

		label, info, ok := s.LookupObjectProperty(rel.Property)
		if !ok {
			check.Errors = append(check.Errors, fmt.Sprintf("Property '%s' not found in ontology", rel.Property))
		} else {
			check.Property = label
			if rel.SubjectClass != "" && !compatible(s, rel.SubjectClass, info.Domain) {
				check.Errors = append(check.Errors,
					fmt.Sprintf("Subject '%s' is not compatible with property domain '%s'", rel.SubjectClass, info.Domain))
			}
			if rel.ObjectClass != "" && !compatible(s, rel.ObjectClass, info.Range) {
				check.Errors = append(check.Errors,
					fmt.Sprintf("Object '%s' is not compatible with property range '%s'", rel.ObjectClass, info.Range))
			}
		}

		check.Valid = len(check.Errors) == 0
		result.Results = append(result.Results, check)
		result.Errors = append(result.Errors, check.Errors...)
	}
	result.Valid = len(result.Errors) == 0
	return result, nil
}

func compatible(s *ontology.Summary, class string, expr ontology.ClassExpr) bool {
	if expr.IsZero() {
		return true
	}
	for _, member := range expr.Members() {
		if s.IsSubclassOf(class, member) {
			return true
		}
	}
	return false
}
