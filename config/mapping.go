package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/semonto/ontology"
)

// MappingConfig is the optional per-ontology mapping configuration. Every
// section falls back to a generic built-in default when absent.
type MappingConfig struct {
	// Synonyms maps a lower-cased term to a class or property label.
	Synonyms map[string]string `yaml:"synonyms" json:"synonyms,omitempty"`
	// PropertySynonyms maps a lower-cased term to a property label.
	PropertySynonyms  map[string]string  `yaml:"property_synonyms" json:"property_synonyms,omitempty"`
	CrystalOutput     *CrystalOutput     `yaml:"crystal_output" json:"crystal_output,omitempty"`
	SampleSchema      *SampleSchema      `yaml:"sample_schema" json:"sample_schema,omitempty"`
	MaterialTypeRules *MaterialTypeRules `yaml:"material_type_rules" json:"material_type_rules,omitempty"`
	AnnotationRouting *AnnotationRouting `yaml:"annotation_routing" json:"annotation_routing,omitempty"`
}

// CrystalOutput names the ontology classes and properties emitted by the
// crystal mapper.
type CrystalOutput struct {
	BaseClasses           []string          `yaml:"base_classes" json:"base_classes"`
	SpaceGroupClass       string            `yaml:"space_group_class" json:"space_group_class"`
	LatticeParameterClass string            `yaml:"lattice_parameter_class" json:"lattice_parameter_class"`
	PropertyMap           map[string]string `yaml:"property_map" json:"property_map"`
}

// Crystal property keys of CrystalOutput.PropertyMap.
const (
	PropBravaisLattice   = "bravais_lattice"
	PropSpaceGroupNumber = "space_group_number"
	PropLengthX          = "length_x"
	PropLengthY          = "length_y"
	PropLengthZ          = "length_z"
	PropAngleAlpha       = "angle_alpha"
	PropAngleBeta        = "angle_beta"
	PropAngleGamma       = "angle_gamma"
)

// SampleSchema names the classes and properties used by the sample annotator.
type SampleSchema struct {
	SampleClass       string `yaml:"sample_class" json:"sample_class"`
	SampleSubclass    string `yaml:"sample_subclass" json:"sample_subclass"`
	MaterialClass     string `yaml:"material_class" json:"material_class"`
	ElementClass      string `yaml:"element_class" json:"element_class"`
	ElementProperty   string `yaml:"element_property" json:"element_property"`
	AtomCountClass    string `yaml:"atom_count_class" json:"atom_count_class"`
	AtomCountProperty string `yaml:"atom_count_property" json:"atom_count_property"`
}

// MaterialTypeRules classifies a sample's material by keyword.
type MaterialTypeRules struct {
	KeywordRules []KeywordRule `yaml:"keyword_rules" json:"keyword_rules"`
	// Default is used when no rule matches.
	Default string `yaml:"default" json:"default"`
}

// KeywordRule maps a keyword found in any of Fields to a material class.
type KeywordRule struct {
	Keyword string   `yaml:"keyword" json:"keyword"`
	Fields  []string `yaml:"fields" json:"fields"`
	MapsTo  string   `yaml:"maps_to" json:"maps_to"`
}

// AnnotationRouting decides which class a crystal property annotates.
type AnnotationRouting struct {
	// UnitCellIndicators route a property to UnitCellClass when its name
	// contains one of them.
	UnitCellIndicators    []string `yaml:"unit_cell_indicators" json:"unit_cell_indicators"`
	CrystalStructureClass string   `yaml:"crystal_structure_class" json:"crystal_structure_class"`
	UnitCellClass         string   `yaml:"unit_cell_class" json:"unit_cell_class"`
}

// DefaultCrystalOutput returns the generic crystal output labels.
func DefaultCrystalOutput() *CrystalOutput {
	return &CrystalOutput{
		BaseClasses:           []string{"Sample", "Crystalline Material", "Crystal Structure", "Unit Cell"},
		SpaceGroupClass:       "Space Group",
		LatticeParameterClass: "Lattice Parameter",
		PropertyMap: map[string]string{
			PropBravaisLattice:   PropBravaisLattice,
			PropSpaceGroupNumber: PropSpaceGroupNumber,
			PropLengthX:          PropLengthX,
			PropLengthY:          PropLengthY,
			PropLengthZ:          PropLengthZ,
			PropAngleAlpha:       PropAngleAlpha,
			PropAngleBeta:        PropAngleBeta,
			PropAngleGamma:       PropAngleGamma,
		},
	}
}

// DefaultSampleSchema returns the generic sample labels.
func DefaultSampleSchema() *SampleSchema {
	return &SampleSchema{
		SampleClass:       "Sample",
		SampleSubclass:    "Atomic Scale Sample",
		MaterialClass:     "Material",
		ElementClass:      "Chemical Element",
		ElementProperty:   "chemical_symbol",
		AtomCountClass:    "Atomic Scale Sample",
		AtomCountProperty: "number_of_atoms",
	}
}

// DefaultMaterialTypeRules returns the generic material classification.
func DefaultMaterialTypeRules() *MaterialTypeRules {
	return &MaterialTypeRules{
		KeywordRules: []KeywordRule{
			{Keyword: "amorphous", Fields: []string{"material", "structure"}, MapsTo: "Amorphous Material"},
			{Keyword: "poly", Fields: []string{"material", "structure"}, MapsTo: "Polycrystal"},
			{Keyword: "bicrystal", Fields: []string{"material"}, MapsTo: "Bicrystal"},
		},
		Default: "Crystalline Material",
	}
}

// DefaultAnnotationRouting returns the generic routing.
func DefaultAnnotationRouting() *AnnotationRouting {
	return &AnnotationRouting{
		UnitCellIndicators:    []string{"length", "angle", "Bravais"},
		CrystalStructureClass: "Crystal Structure",
		UnitCellClass:         "Unit Cell",
	}
}

// Crystal returns the crystal output section with defaults filled in.
func (m *MappingConfig) Crystal() *CrystalOutput {
	if m == nil {
		return DefaultCrystalOutput()
	}
	return m.CrystalOutput.WithDefaults()
}

// Sample returns the sample schema with defaults filled in.
func (m *MappingConfig) Sample() *SampleSchema {
	def := DefaultSampleSchema()
	if m == nil || m.SampleSchema == nil {
		return def
	}
	s := *m.SampleSchema
	fill(&s.SampleClass, def.SampleClass)
	fill(&s.SampleSubclass, def.SampleSubclass)
	fill(&s.MaterialClass, def.MaterialClass)
	fill(&s.ElementClass, def.ElementClass)
	fill(&s.ElementProperty, def.ElementProperty)
	fill(&s.AtomCountClass, def.AtomCountClass)
	fill(&s.AtomCountProperty, def.AtomCountProperty)
	return &s
}

// MaterialRules returns the material type rules. A configured section with
// no keyword rules classifies everything as its default.
func (m *MappingConfig) MaterialRules() *MaterialTypeRules {
	if m == nil || m.MaterialTypeRules == nil {
		return DefaultMaterialTypeRules()
	}
	r := *m.MaterialTypeRules
	fill(&r.Default, DefaultMaterialTypeRules().Default)
	rules := make([]KeywordRule, len(r.KeywordRules))
	for i, kr := range r.KeywordRules {
		if len(kr.Fields) == 0 {
			kr.Fields = []string{"material", "structure"}
		}
		rules[i] = kr
	}
	r.KeywordRules = rules
	return &r
}

// Routing returns the annotation routing with defaults filled in.
func (m *MappingConfig) Routing() *AnnotationRouting {
	def := DefaultAnnotationRouting()
	if m == nil || m.AnnotationRouting == nil {
		return def
	}
	r := *m.AnnotationRouting
	if r.UnitCellIndicators == nil {
		r.UnitCellIndicators = def.UnitCellIndicators
	}
	fill(&r.CrystalStructureClass, def.CrystalStructureClass)
	fill(&r.UnitCellClass, def.UnitCellClass)
	return &r
}

// WithDefaults returns a copy with missing fields taken from the defaults.
// A nil receiver yields the defaults.
func (c *CrystalOutput) WithDefaults() *CrystalOutput {
	def := DefaultCrystalOutput()
	if c == nil {
		return def
	}
	out := *c
	if out.BaseClasses == nil {
		out.BaseClasses = def.BaseClasses
	}
	fill(&out.SpaceGroupClass, def.SpaceGroupClass)
	fill(&out.LatticeParameterClass, def.LatticeParameterClass)
	if out.PropertyMap == nil {
		out.PropertyMap = def.PropertyMap
	}
	return &out
}

// Property returns the configured property name for key, or key itself.
func (c *CrystalOutput) Property(key string) string {
	if c != nil {
		if name, ok := c.PropertyMap[key]; ok && name != "" {
			return name
		}
	}
	return key
}

// Synonym looks up a term in the synonym table, ignoring case.
func (m *MappingConfig) Synonym(term string) (string, bool) {
	if m == nil {
		return "", false
	}
	return lookupFold(m.Synonyms, term)
}

// PropertySynonym looks up a term in the property synonym table, ignoring
// case.
func (m *MappingConfig) PropertySynonym(term string) (string, bool) {
	if m == nil {
		return "", false
	}
	return lookupFold(m.PropertySynonyms, term)
}

// lookupFold tries the lower-cased key that LoadMappingConfig stores, then
// any key equal under case folding, in sorted order.
func lookupFold(table map[string]string, term string) (string, bool) {
	if target, ok := table[strings.ToLower(term)]; ok {
		return target, true
	}
	for _, k := range ontology.SortedKeys(table) {
		if strings.EqualFold(k, term) {
			return table[k], true
		}
	}
	return "", false
}

// LoadMappingConfig reads a mapping config file (YAML or JSON). An empty
// path or a missing file yields an empty config, which means the defaults.
func LoadMappingConfig(path string) (*MappingConfig, error) {
	cfg := &MappingConfig{}
	if err := loadOptional(path, cfg); err != nil {
		return nil, fmt.Errorf("load mapping config: %w", err)
	}
	cfg.Synonyms = lowerKeys(cfg.Synonyms)
	cfg.PropertySynonyms = lowerKeys(cfg.PropertySynonyms)
	return cfg, nil
}

// ClassConstraints lists the property tiers tracked for one class.
type ClassConstraints struct {
	Required    []string `yaml:"required" json:"required"`
	Recommended []string `yaml:"recommended" json:"recommended"`
	Optional    []string `yaml:"optional" json:"optional"`
}

// IsEmpty reports whether no tier lists any property.
func (c ClassConstraints) IsEmpty() bool {
	return len(c.Required) == 0 && len(c.Recommended) == 0 && len(c.Optional) == 0
}

// Constraints maps class labels to their property tiers.
type Constraints map[string]ClassConstraints

// For returns the tiers of a class, matching the label exactly and then
// case-insensitively.
func (c Constraints) For(class string) ClassConstraints {
	if cc, ok := c[class]; ok {
		return cc
	}
	for label, cc := range c {
		if strings.EqualFold(label, class) {
			return cc
		}
	}
	return ClassConstraints{}
}

// LoadConstraints reads a constraints file (YAML or JSON). An empty path or
// a missing file yields no constraints.
func LoadConstraints(path string) (Constraints, error) {
	c := Constraints{}
	if err := loadOptional(path, &c); err != nil {
		return nil, fmt.Errorf("load constraints: %w", err)
	}
	return c, nil
}

func loadOptional(path string, out any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := decodeDocument(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// decodeDocument decodes JSON documents with encoding/json and everything
// else as YAML.
func decodeDocument(data []byte, out any) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return json.Unmarshal(trimmed, out)
	}
	return yaml.Unmarshal(data, out)
}

func lowerKeys(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}

func fill(field *string, def string) {
	if *field == "" {
		*field = def
	}
}
