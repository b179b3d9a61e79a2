package mapping

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/c360studio/semonto/config"
	"github.com/c360studio/semonto/ontology"
)

// Annotation confidences.
const (
	SampleConfidence          = 1.0
	AmorphousConfidence       = 0.9
	MaterialConfidence        = 0.95
	CrystalPropertyConfidence = 0.95
	ElementConfidence         = 1.0
	AtomCountConfidence       = 1.0
	WarningConfidence         = 1.0
)

// AnnotationWarning is the type of warning annotations.
const AnnotationWarning = "warning"

var knownSampleFields = map[string]bool{
	"material": true, "structure": true, "system": true, "bravais": true,
	"space_group": true, "lattice_a": true, "lattice_b": true, "lattice_c": true,
	"alpha": true, "beta": true, "gamma": true, "elements": true,
	"num_atoms": true, "number_of_atoms": true,
}

// Sample is a structured sample description: a JSON object whose field
// order is preserved.
type Sample struct {
	keys   []string
	fields map[string]json.RawMessage
}

// DecodeSample decodes a non-empty JSON object.
func DecodeSample(data []byte) (*Sample, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, ontology.Invalidf("sample is not valid JSON: %v", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, ontology.Invalidf("sample must be a non-empty object")
	}

	s := &Sample{fields: map[string]json.RawMessage{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, ontology.Invalidf("sample is not valid JSON: %v", err)
		}
		key := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, ontology.Invalidf("sample field %q: %v", key, err)
		}
		if _, dup := s.fields[key]; !dup {
			s.keys = append(s.keys, key)
		}
		s.fields[key] = raw
	}
	if _, err := dec.Token(); err != nil {
		return nil, ontology.Invalidf("sample is not valid JSON: %v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, ontology.Invalidf("sample has trailing content after the object")
	}
	if len(s.keys) == 0 {
		return nil, ontology.Invalidf("sample must be a non-empty object")
	}
	return s, nil
}

// Keys returns the field names in input order.
func (s *Sample) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Has reports whether the field is present, even when null.
func (s *Sample) Has(key string) bool {
	_, ok := s.fields[key]
	return ok
}

// Value returns the decoded field, or nil when absent or null. Numbers are
// returned as json.Number.
func (s *Sample) Value(key string) any {
	raw, ok := s.fields[key]
	if !ok {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

// Text returns a string field as is and any other non-null field as its
// JSON text. Absent and null fields are "".
func (s *Sample) Text(key string) string {
	switch v := s.Value(key).(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return strings.TrimSpace(string(s.fields[key]))
	}
}

// Float returns a numeric field. Numeric strings are accepted.
func (s *Sample) Float(key string) (*float64, error) {
	var f float64
	var err error
	switch v := s.Value(key).(type) {
	case nil:
		return nil, nil
	case json.Number:
		f, err = v.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		err = fmt.Errorf("not a number")
	}
	if err != nil {
		return nil, ontology.Invalidf("%s must be a number", key)
	}
	return &f, nil
}

// Int returns an integral numeric field. Numeric strings are accepted.
func (s *Sample) Int(key string) (*int, error) {
	f, err := s.Float(key)
	if err != nil || f == nil {
		return nil, err
	}
	if *f != math.Trunc(*f) || math.Abs(*f) > math.MaxInt32 {
		return nil, ontology.Invalidf("%s must be an integer", key)
	}
	n := int(*f)
	return &n, nil
}

// Annotation is one record produced by the sample annotator: a class
// assignment, a property value, or a warning.
type Annotation struct {
	Type       string  `json:"type,omitempty"`
	Class      string  `json:"class,omitempty"`
	Subclass   string  `json:"subclass,omitempty"`
	Property   string  `json:"property,omitempty"`
	Value      any     `json:"value,omitempty"`
	Message    string  `json:"message,omitempty"`
	Confidence float64 `json:"confidence"`
	IRI        string  `json:"iri,omitempty"`
}

// MarshalJSON writes the value of a property annotation even when it is
// null, and omits it elsewhere.
func (a Annotation) MarshalJSON() ([]byte, error) {
	type plain Annotation
	if a.Property == "" {
		return json.Marshal(plain(a))
	}
	return json.Marshal(struct {
		Type       string  `json:"type,omitempty"`
		Class      string  `json:"class,omitempty"`
		Subclass   string  `json:"subclass,omitempty"`
		Property   string  `json:"property"`
		Value      any     `json:"value"`
		Message    string  `json:"message,omitempty"`
		Confidence float64 `json:"confidence"`
		IRI        string  `json:"iri,omitempty"`
	}(a))
}

// SampleResult is the annotation of one sample.
type SampleResult struct {
	Annotations         []Annotation `json:"annotations"`
	SampleType          string       `json:"sample_type"`
	MaterialType        string       `json:"material_type"`
	UnmappedFields      []string     `json:"unmapped_fields"`
	SuggestedProperties []string     `json:"suggested_properties"`
}

// AnnotateSample annotates sample with the labels of m (the generic labels
// when m is nil). Class IRIs are attached when s knows the class; s may be
// nil.
func AnnotateSample(s *ontology.Summary, sample *Sample, m *config.MappingConfig) (*SampleResult, error) {
	if sample == nil || len(sample.keys) == 0 {
		return nil, ontology.Invalidf("sample must be a non-empty object")
	}

	schema := m.Sample()
	routing := m.Routing()

	materialType := classifyMaterial(sample, m.MaterialRules())
	amorphous := strings.HasPrefix(strings.ToLower(materialType), "amorphous")

	result := &SampleResult{
		Annotations:         []Annotation{},
		SampleType:          schema.SampleSubclass,
		MaterialType:        materialType,
		UnmappedFields:      []string{},
		SuggestedProperties: []string{},
	}
	iri := func(class string) string {
		if s == nil {
			return ""
		}
		return s.IRIOf(class)
	}
	add := func(a Annotation) {
		if a.Class != "" && a.IRI == "" {
			a.IRI = iri(a.Class)
		}
		result.Annotations = append(result.Annotations, a)
	}

	add(Annotation{Class: schema.SampleClass, Subclass: schema.SampleSubclass, Confidence: SampleConfidence})
	materialConfidence := MaterialConfidence
	if amorphous {
		materialConfidence = AmorphousConfidence
	}
	add(Annotation{Class: schema.MaterialClass, Subclass: materialType, Confidence: materialConfidence})

	if !amorphous {
		in, err := crystalInput(sample)
		if err != nil {
			return nil, err
		}
		crystal, err := MapCrystal(in, m.Crystal())
		if err != nil {
			return nil, err
		}
		for _, p := range crystal.OntologyProperties {
			class := routing.CrystalStructureClass
			for _, ind := range routing.UnitCellIndicators {
				if strings.Contains(p.Property, ind) {
					class = routing.UnitCellClass
					break
				}
			}
			add(Annotation{Class: class, Property: p.Property, Value: p.Value, Confidence: CrystalPropertyConfidence})
		}
		for _, w := range crystal.ValidationWarnings {
			add(Annotation{Type: AnnotationWarning, Message: w, Confidence: WarningConfidence})
		}
	}

	elements := resolveElements(sample)
	for _, sym := range elements {
		add(Annotation{
			Class:      schema.ElementClass,
			Property:   schema.ElementProperty,
			Value:      sym,
			Confidence: ElementConfidence,
		})
	}

	if sample.Has("num_atoms") || sample.Has("number_of_atoms") {
		count := sample.Value("num_atoms")
		if isFalsy(count) {
			count = sample.Value("number_of_atoms")
		}
		add(Annotation{
			Class:      schema.AtomCountClass,
			Property:   schema.AtomCountProperty,
			Value:      count,
			Confidence: AtomCountConfidence,
		})
	}

	for _, key := range sample.keys {
		if !knownSampleFields[key] {
			result.UnmappedFields = append(result.UnmappedFields, key)
		}
	}

	if len(elements) == 0 {
		result.SuggestedProperties = append(result.SuggestedProperties, "elements (list of chemical element symbols)")
	}
	if sample.Value("space_group") == nil && !amorphous {
		result.SuggestedProperties = append(result.SuggestedProperties, "space_group (integer 1-230)")
	}
	if sample.Value("lattice_a") == nil && !amorphous {
		result.SuggestedProperties = append(result.SuggestedProperties, "lattice_a (lattice parameter a in angstroms)")
	}

	return result, nil
}

// crystalInput reads the crystal parameters of a sample. An explicit bravais
// field wins; otherwise the structure field is used when it names a known
// lattice.
func crystalInput(sample *Sample) (CrystalInput, error) {
	in := CrystalInput{
		System:  sample.Text("system"),
		Bravais: sample.Text("bravais"),
	}
	if in.Bravais == "" {
		if structure := sample.Text("structure"); structure != "" {
			if _, ok := ResolveBravais(structure); ok {
				in.Bravais = structure
			}
		}
	}

	var err error
	if in.SpaceGroup, err = sample.Int("space_group"); err != nil {
		return in, err
	}
	for _, f := range []struct {
		key string
		dst **float64
	}{
		{"lattice_a", &in.A},
		{"lattice_b", &in.B},
		{"lattice_c", &in.C},
		{"alpha", &in.Alpha},
		{"beta", &in.Beta},
		{"gamma", &in.Gamma},
	} {
		if *f.dst, err = sample.Float(f.key); err != nil {
			return in, err
		}
	}
	return in, nil
}

// classifyMaterial returns the material class of the first keyword rule
// whose keyword occurs in one of its fields, else the default.
func classifyMaterial(sample *Sample, rules *config.MaterialTypeRules) string {
	for _, rule := range rules.KeywordRules {
		keyword := strings.ToLower(rule.Keyword)
		for _, field := range rule.Fields {
			if strings.Contains(strings.ToLower(sample.Text(field)), keyword) {
				return rule.MapsTo
			}
		}
	}
	return rules.Default
}

// resolveElements collects element symbols from the elements field (a list
// or a comma separated string of symbols or names) and from a material
// field naming a single element.
func resolveElements(sample *Sample) []string {
	var elements []string
	if sample.Has("elements") {
		var items []string
		switch v := sample.Value("elements").(type) {
		case []any:
			for _, item := range v {
				items = append(items, fmt.Sprint(item))
			}
		case nil:
		default:
			items = strings.Split(sample.Text("elements"), ",")
		}
		for _, item := range items {
			if sym, ok := ElementSymbol(item); ok {
				elements = append(elements, sym)
			}
		}
	}

	if material, ok := sample.Value("material").(string); ok {
		if sym, ok := ElementSymbol(material); ok && !slices.Contains(elements, sym) {
			elements = append(elements, sym)
		}
	}
	return elements
}

func isFalsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 0
	}
	return false
}
