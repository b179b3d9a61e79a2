package ontology

import (
	"encoding/json"
	"time"
)

// PropertyKind discriminates object properties from data properties.
type PropertyKind string

// Property kinds, also used as the type filter values of property queries.
const (
	KindObject PropertyKind = "object"
	KindData   PropertyKind = "data"
)

// Summary is the normalized, label-indexed knowledge model of one ontology.
// It is built once per invocation and must not be mutated by consumers.
type Summary struct {
	Metadata         Metadata                 `json:"metadata"`
	Classes          map[string]*ClassInfo    `json:"classes"`
	ClassHierarchy   Hierarchy                `json:"class_hierarchy"`
	ObjectProperties map[string]*PropertyInfo `json:"object_properties"`
	DataProperties   map[string]*PropertyInfo `json:"data_properties"`
	Statistics       Statistics               `json:"statistics"`
}

// Metadata describes the ontology and how the summary was produced.
type Metadata struct {
	IRI         string    `json:"iri"`
	Title       string    `json:"title"`
	Version     string    `json:"version"`
	Description string    `json:"description"`
	Source      string    `json:"source,omitempty"`
	SourceURL   string    `json:"source_url,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ClassInfo is one entry of the class table.
type ClassInfo struct {
	IRI         string   `json:"iri"`
	Parent      string   `json:"parent"`
	Children    []string `json:"children"`
	Description string   `json:"description"`
}

// MarshalJSON writes empty parent and description as null and children as
// an array.
func (c ClassInfo) MarshalJSON() ([]byte, error) {
	children := c.Children
	if children == nil {
		children = []string{}
	}
	return json.Marshal(struct {
		IRI         string   `json:"iri"`
		Parent      *string  `json:"parent"`
		Children    []string `json:"children"`
		Description *string  `json:"description"`
	}{c.IRI, nullable(c.Parent), children, nullable(c.Description)})
}

// PropertyInfo is one entry of the object or data property table.
type PropertyInfo struct {
	Kind        PropertyKind `json:"-"`
	IRI         string       `json:"iri"`
	Domain      ClassExpr    `json:"domain"`
	Range       ClassExpr    `json:"range"`
	RangeType   string       `json:"range_type"`
	Description string       `json:"description"`
}

// MarshalJSON writes "range" for object properties and "range_type" for
// data properties.
func (p PropertyInfo) MarshalJSON() ([]byte, error) {
	if p.Kind == KindData {
		return json.Marshal(struct {
			IRI         string    `json:"iri"`
			Domain      ClassExpr `json:"domain"`
			RangeType   *string   `json:"range_type"`
			Description *string   `json:"description"`
		}{p.IRI, p.Domain, nullable(p.RangeType), nullable(p.Description)})
	}
	return json.Marshal(struct {
		IRI         string    `json:"iri"`
		Domain      ClassExpr `json:"domain"`
		Range       ClassExpr `json:"range"`
		Description *string   `json:"description"`
	}{p.IRI, p.Domain, p.Range, nullable(p.Description)})
}

// Hierarchy is the nested root-first class tree.
type Hierarchy map[string]Hierarchy

// Statistics holds entity counts.
type Statistics struct {
	NumClasses          int `json:"num_classes"`
	NumObjectProperties int `json:"num_object_properties"`
	NumDataProperties   int `json:"num_data_properties"`
}

// UnmarshalJSON decodes a summary document and restores property kinds.
func (s *Summary) UnmarshalJSON(data []byte) error {
	type plain Summary
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Summary(p)
	if s.Classes == nil {
		s.Classes = map[string]*ClassInfo{}
	}
	if s.ObjectProperties == nil {
		s.ObjectProperties = map[string]*PropertyInfo{}
	}
	if s.DataProperties == nil {
		s.DataProperties = map[string]*PropertyInfo{}
	}
	for name, c := range s.Classes {
		if c == nil {
			s.Classes[name] = &ClassInfo{}
		}
	}
	for name, p := range s.ObjectProperties {
		if p == nil {
			p = &PropertyInfo{}
			s.ObjectProperties[name] = p
		}
		p.Kind = KindObject
	}
	for name, p := range s.DataProperties {
		if p == nil {
			p = &PropertyInfo{}
			s.DataProperties[name] = p
		}
		p.Kind = KindData
	}
	return nil
}

// PropertyRef is a named property as returned by queries.
type PropertyRef struct {
	Name        string       `json:"name"`
	Type        PropertyKind `json:"type"`
	Domain      ClassExpr    `json:"domain"`
	Range       ClassExpr    `json:"range,omitzero"`
	RangeType   string       `json:"range_type,omitempty"`
	Description string       `json:"description,omitempty"`
	IRI         string       `json:"iri,omitempty"`
}

// Ref returns the query view of a property.
func (p *PropertyInfo) Ref(name string) PropertyRef {
	return PropertyRef{
		Name:        name,
		Type:        p.Kind,
		Domain:      p.Domain,
		Range:       p.Range,
		RangeType:   p.RangeType,
		Description: p.Description,
		IRI:         p.IRI,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
