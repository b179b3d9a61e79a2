package mapping

import (
	"fmt"
	"strings"

	"github.com/c360studio/semonto/config"
	"github.com/c360studio/semonto/ontology"
)

// Match confidences by matcher.
const (
	SynonymConfidence     = 0.9
	ExactConfidence       = 1.0
	SubstringConfidence   = 0.7
	DescriptionConfidence = 0.5
)

// Entity types carried in match types.
const (
	entityClass          = "class"
	entityObjectProperty = "object_property"
	entityDataProperty   = "data_property"
)

// ConceptRequest lists the terms to map. Mappings supplies the optional
// synonym tables; nil means none.
type ConceptRequest struct {
	Term     string
	Terms    []string
	Mappings *config.MappingConfig
}

// ConceptMatch is one term mapped onto an ontology label.
type ConceptMatch struct {
	Term       string  `json:"term"`
	Matched    string  `json:"matched"`
	MatchType  string  `json:"match_type"`
	Confidence float64 `json:"confidence"`
	IRI        string  `json:"iri"`
}

// ConceptResult collects the matches of every term, the terms nothing
// matched, and a suggestion per unmatched term.
type ConceptResult struct {
	Matches     []ConceptMatch `json:"matches"`
	Unmatched   []string       `json:"unmatched"`
	Suggestions []string       `json:"suggestions"`
}

// entity is a label of the summary with its table.
type entity struct {
	label string
	kind  string
	iri   string
}

// conceptIndex holds the lookup tables shared by all matchers of one call.
type conceptIndex struct {
	summary  *ontology.Summary
	entities []entity
	byLower  map[string]entity
	mappings *config.MappingConfig
}

// matcher is one strategy of the cascade. An exclusive matcher ends the
// cascade for a term once it matches; a fallback matcher only runs when
// nothing has matched the term yet.
type matcher struct {
	exclusive bool
	fallback  bool
	match     func(idx *conceptIndex, term string) []ConceptMatch
}

var conceptMatchers = []matcher{
	{exclusive: true, match: matchSynonym},
	{exclusive: true, match: matchPropertySynonym},
	{exclusive: true, match: matchExact},
	{match: matchSubstring},
	{fallback: true, match: matchDescription},
}

// MapConcepts maps every requested term onto the classes and properties of s.
func MapConcepts(s *ontology.Summary, req ConceptRequest) (*ConceptResult, error) {
	var terms []string
	for _, t := range append([]string{req.Term}, req.Terms...) {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return nil, ontology.Invalidf("provide a term or a list of terms")
	}

	idx := newConceptIndex(s, req)
	result := &ConceptResult{
		Matches:     []ConceptMatch{},
		Unmatched:   []string{},
		Suggestions: []string{},
	}
	seen := map[[2]string]bool{}

	for _, term := range terms {
		found := false
		for _, m := range conceptMatchers {
			if m.fallback && found {
				continue
			}
			hits := m.match(idx, term)
			for _, hit := range hits {
				key := [2]string{hit.Term, hit.Matched}
				if seen[key] {
					continue
				}
				seen[key] = true
				result.Matches = append(result.Matches, hit)
			}
			if len(hits) > 0 {
				found = true
				if m.exclusive {
					break
				}
			}
		}
		if !found {
			result.Unmatched = append(result.Unmatched, term)
			result.Suggestions = append(result.Suggestions,
				fmt.Sprintf("Try searching with semonto browse --search '%s'", term))
		}
	}
	return result, nil
}

func newConceptIndex(s *ontology.Summary, req ConceptRequest) *conceptIndex {
	idx := &conceptIndex{
		summary:  s,
		byLower:  map[string]entity{},
		mappings: req.Mappings,
	}
	add := func(label, kind, iri string) {
		lower := strings.ToLower(label)
		if _, dup := idx.byLower[lower]; dup {
			return
		}
		e := entity{label: label, kind: kind, iri: iri}
		idx.byLower[lower] = e
		idx.entities = append(idx.entities, e)
	}
	for _, label := range ontology.SortedKeys(s.Classes) {
		add(label, entityClass, s.Classes[label].IRI)
	}
	for _, label := range ontology.SortedKeys(s.ObjectProperties) {
		add(label, entityObjectProperty, s.ObjectProperties[label].IRI)
	}
	for _, label := range ontology.SortedKeys(s.DataProperties) {
		add(label, entityDataProperty, s.DataProperties[label].IRI)
	}
	return idx
}

func matchSynonym(idx *conceptIndex, term string) []ConceptMatch {
	target, ok := idx.mappings.Synonym(term)
	if !ok {
		return nil
	}
	kind := "property"
	if _, isClass := idx.summary.Classes[target]; isClass {
		kind = entityClass
	}
	return []ConceptMatch{{
		Term:       term,
		Matched:    target,
		MatchType:  "synonym_" + kind,
		Confidence: SynonymConfidence,
		IRI:        idx.summary.IRIOf(target),
	}}
}

func matchPropertySynonym(idx *conceptIndex, term string) []ConceptMatch {
	target, ok := idx.mappings.PropertySynonym(term)
	if !ok {
		return nil
	}
	var iri string
	if p, ok := idx.summary.ObjectProperties[target]; ok {
		iri = p.IRI
	} else if p, ok := idx.summary.DataProperties[target]; ok {
		iri = p.IRI
	}
	return []ConceptMatch{{
		Term:       term,
		Matched:    target,
		MatchType:  "synonym_property",
		Confidence: SynonymConfidence,
		IRI:        iri,
	}}
}

func matchExact(idx *conceptIndex, term string) []ConceptMatch {
	e, ok := idx.byLower[strings.ToLower(term)]
	if !ok {
		return nil
	}
	return []ConceptMatch{e.match(term, "exact_", ExactConfidence)}
}

func matchSubstring(idx *conceptIndex, term string) []ConceptMatch {
	needle := strings.ToLower(term)
	var hits []ConceptMatch
	for _, e := range idx.entities {
		if strings.Contains(strings.ToLower(e.label), needle) {
			hits = append(hits, e.match(term, "substring_", SubstringConfidence))
		}
	}
	return hits
}

func matchDescription(idx *conceptIndex, term string) []ConceptMatch {
	needle := strings.ToLower(term)
	var hits []ConceptMatch
	for _, label := range ontology.SortedKeys(idx.summary.Classes) {
		info := idx.summary.Classes[label]
		if strings.Contains(strings.ToLower(info.Description), needle) {
			hits = append(hits, ConceptMatch{
				Term:       term,
				Matched:    label,
				MatchType:  "description_class",
				Confidence: DescriptionConfidence,
				IRI:        info.IRI,
			})
		}
	}
	return hits
}

func (e entity) match(term, prefix string, confidence float64) ConceptMatch {
	return ConceptMatch{
		Term:       term,
		Matched:    e.label,
		MatchType:  prefix + e.kind,
		Confidence: confidence,
		IRI:        e.iri,
	}
}
