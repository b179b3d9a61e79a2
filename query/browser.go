package query

import (
	"sort"
	"strings"

	"github.com/c360studio/semonto/ontology"
)

// Search relevance scores.
const (
	LabelRelevance       = 1.0
	DescriptionRelevance = 0.5
)

// BrowseRequest selects the class browser modes to run. At least one of
// Class, ListRoots or Search must be set.
type BrowseRequest struct {
	Class     string
	ListRoots bool
	Search    string
	// Depth bounds the subtree of Class. Negative means unbounded.
	Depth int
}

// BrowseResult holds the output of every requested mode.
type BrowseResult struct {
	Roots         []string           `json:"roots,omitzero"`
	SearchResults []ClassMatch       `json:"search_results,omitzero"`
	ClassInfo     *ClassView         `json:"class_info,omitempty"`
	Subtree       ontology.Hierarchy `json:"subtree,omitzero"`
	PathToRoot    []string           `json:"path_to_root,omitzero"`
	Properties    *ClassProperties   `json:"properties,omitempty"`
}

// ClassView is one class table entry with its label.
type ClassView struct {
	Label       string   `json:"label"`
	IRI         string   `json:"iri"`
	Parent      string   `json:"parent,omitempty"`
	Children    []string `json:"children"`
	Description string   `json:"description,omitempty"`
}

// ClassMatch is a class search hit.
type ClassMatch struct {
	Label       string  `json:"label"`
	Parent      string  `json:"parent,omitempty"`
	Description string  `json:"description,omitempty"`
	Relevance   float64 `json:"relevance"`
}

// ClassProperties groups the properties applicable to a class.
type ClassProperties struct {
	ObjectProperties []ontology.PropertyRef `json:"object_properties"`
	DataProperties   []ontology.PropertyRef `json:"data_properties"`
}

// BrowseClasses runs the requested browser modes over s.
func BrowseClasses(s *ontology.Summary, req BrowseRequest) (*BrowseResult, error) {
	if req.Class == "" && !req.ListRoots && req.Search == "" {
		return nil, ontology.Invalidf("provide a class, list-roots, or a search term")
	}

	result := &BrowseResult{}
	if req.ListRoots {
		result.Roots = append([]string{}, s.Roots()...)
	}
	if req.Search != "" {
		result.SearchResults = SearchClasses(s, req.Search)
	}
	if req.Class != "" {
		label, ok := s.ResolveClass(req.Class)
		if !ok {
			return nil, ontology.NewNotFoundError("Class", req.Class, s.ClassNames())
		}
		info := s.Classes[label]
		result.ClassInfo = &ClassView{
			Label:       label,
			IRI:         info.IRI,
			Parent:      info.Parent,
			Children:    append([]string{}, info.Children...),
			Description: info.Description,
		}
		result.Subtree = s.Subtree(label, req.Depth)
		result.PathToRoot = s.PathToRoot(label)
		result.Properties = &ClassProperties{
			ObjectProperties: orEmpty(s.PropertiesForClass(label, ontology.KindObject)),
			DataProperties:   orEmpty(s.PropertiesForClass(label, ontology.KindData)),
		}
	}
	return result, nil
}

// SearchClasses matches term case-insensitively against class labels and
// descriptions, best matches first.
func SearchClasses(s *ontology.Summary, term string) []ClassMatch {
	needle := strings.ToLower(term)
	matches := []ClassMatch{}
	for label, info := range s.Classes {
		var score float64
		if strings.Contains(strings.ToLower(label), needle) {
			score = LabelRelevance
		} else if strings.Contains(strings.ToLower(info.Description), needle) {
			score = DescriptionRelevance
		}
		if score > 0 {
			matches = append(matches, ClassMatch{
				Label:       label,
				Parent:      info.Parent,
				Description: info.Description,
				Relevance:   score,
			})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Relevance != matches[j].Relevance {
			return matches[i].Relevance > matches[j].Relevance
		}
		return matches[i].Label < matches[j].Label
	})
	return matches
}

func orEmpty(refs []ontology.PropertyRef) []ontology.PropertyRef {
	if refs == nil {
		return []ontology.PropertyRef{}
	}
	return refs
}
