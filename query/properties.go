package query

import (
	"strings"

	"github.com/c360studio/semonto/ontology"
)

// Property type filters.
const (
	TypeAll    = "all"
	TypeObject = "object"
	TypeData   = "data"
)

// PropertyRequest selects the property lookup modes to run. At least one of
// Name, Class or Search must be set.
type PropertyRequest struct {
	Name   string
	Class  string
	Search string
	// Type filters class and search results: all, object or data. Empty
	// means all.
	Type string
}

// PropertyResult holds the output of every requested mode.
type PropertyResult struct {
	PropertyInfo    *ontology.PropertyRef  `json:"property_info,omitempty"`
	ClassName       string                 `json:"class_name,omitempty"`
	ClassProperties []ontology.PropertyRef `json:"class_properties,omitzero"`
	SearchResults   []ontology.PropertyRef `json:"search_results,omitzero"`
}

// LookupProperties runs the requested property lookup modes over s.
func LookupProperties(s *ontology.Summary, req PropertyRequest) (*PropertyResult, error) {
	kind, err := kindFilter(req.Type)
	if err != nil {
		return nil, err
	}
	if req.Name == "" && req.Class == "" && req.Search == "" {
		return nil, ontology.Invalidf("provide a property, a class, or a search term")
	}

	result := &PropertyResult{}
	if req.Name != "" {
		ref, err := FindProperty(s, req.Name)
		if err != nil {
			return nil, err
		}
		result.PropertyInfo = ref
	}
	if req.Class != "" {
		label := req.Class
		if resolved, ok := s.ResolveClass(req.Class); ok {
			label = resolved
		}
		result.ClassName = req.Class
		result.ClassProperties = orEmpty(s.PropertiesForClass(label, kind))
	}
	if req.Search != "" {
		result.SearchResults = SearchProperties(s, req.Search, kind)
	}
	return result, nil
}

// FindProperty resolves name case-insensitively over object then data
// properties, falling back to the first label containing name.
func FindProperty(s *ontology.Summary, name string) (*ontology.PropertyRef, error) {
	if label, p, ok := s.LookupProperty(name); ok {
		ref := p.Ref(label)
		return &ref, nil
	}
	needle := strings.ToLower(name)
	for _, table := range []map[string]*ontology.PropertyInfo{s.ObjectProperties, s.DataProperties} {
		for _, label := range ontology.SortedKeys(table) {
			if strings.Contains(strings.ToLower(label), needle) {
				ref := table[label].Ref(label)
				return &ref, nil
			}
		}
	}
	return nil, ontology.NewNotFoundError("Property", name, s.PropertyNames())
}

// SearchProperties matches term case-insensitively against property labels
// and descriptions, sorted by (type, name).
func SearchProperties(s *ontology.Summary, term string, kind ontology.PropertyKind) []ontology.PropertyRef {
	needle := strings.ToLower(term)
	matches := []ontology.PropertyRef{}
	collect := func(table map[string]*ontology.PropertyInfo) {
		for label, p := range table {
			if strings.Contains(strings.ToLower(label), needle) ||
				strings.Contains(strings.ToLower(p.Description), needle) {
				matches = append(matches, p.Ref(label))
			}
		}
	}
	if kind == "" || kind == ontology.KindObject {
		collect(s.ObjectProperties)
	}
	if kind == "" || kind == ontology.KindData {
		collect(s.DataProperties)
	}
	ontology.SortRefs(matches)
	return matches
}

func kindFilter(t string) (ontology.PropertyKind, error) {
	switch strings.ToLower(t) {
	case "", TypeAll:
		return "", nil
	case TypeObject:
		return ontology.KindObject, nil
	case TypeData:
		return ontology.KindData, nil
	default:
		return "", ontology.Invalidf("invalid property type %q: must be all, object or data", t)
	}
}
