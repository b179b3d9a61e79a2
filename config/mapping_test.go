package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMappingConfigDefaults(t *testing.T) {
	var m *MappingConfig

	assert.Equal(t, DefaultCrystalOutput(), m.Crystal())
	assert.Equal(t, DefaultSampleSchema(), m.Sample())
	assert.Equal(t, DefaultMaterialTypeRules(), m.MaterialRules())
	assert.Equal(t, DefaultAnnotationRouting(), m.Routing())

	_, ok := m.Synonym("lattice")
	assert.False(t, ok)
}

func TestMappingConfigPartialSections(t *testing.T) {
	m := &MappingConfig{
		CrystalOutput: &CrystalOutput{
			SpaceGroupClass: "SpaceGroup",
			PropertyMap:     map[string]string{PropLengthX: "hasLength_x"},
		},
		SampleSchema:      &SampleSchema{SampleClass: "ComputationalSample"},
		MaterialTypeRules: &MaterialTypeRules{KeywordRules: []KeywordRule{{Keyword: "glass", MapsTo: "Glass"}}},
		AnnotationRouting: &AnnotationRouting{UnitCellClass: "SimulationCell"},
	}

	crystal := m.Crystal()
	assert.Equal(t, "SpaceGroup", crystal.SpaceGroupClass)
	assert.Equal(t, "Lattice Parameter", crystal.LatticeParameterClass)
	assert.Equal(t, DefaultCrystalOutput().BaseClasses, crystal.BaseClasses)
	assert.Equal(t, "hasLength_x", crystal.Property(PropLengthX))
	assert.Equal(t, PropLengthY, crystal.Property(PropLengthY))

	sample := m.Sample()
	assert.Equal(t, "ComputationalSample", sample.SampleClass)
	assert.Equal(t, "Atomic Scale Sample", sample.SampleSubclass)

	rules := m.MaterialRules()
	require.Len(t, rules.KeywordRules, 1)
	assert.Equal(t, []string{"material", "structure"}, rules.KeywordRules[0].Fields)
	assert.Equal(t, "Crystalline Material", rules.Default)
	assert.Nil(t, m.MaterialTypeRules.KeywordRules[0].Fields, "configured rules are not mutated")

	routing := m.Routing()
	assert.Equal(t, "SimulationCell", routing.UnitCellClass)
	assert.Equal(t, []string{"length", "angle", "Bravais"}, routing.UnitCellIndicators)
}

func TestLoadMappingConfig(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "cmso_mappings.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
synonyms:
  FCC: Face Centered Cubic
property_synonyms:
  lattice constant: length_x
crystal_output:
  base_classes: [ComputationalSample, CrystallineMaterial]
`), 0644))

	m, err := LoadMappingConfig(yamlPath)
	require.NoError(t, err)
	target, ok := m.Synonym("fcc")
	assert.True(t, ok)
	assert.Equal(t, "Face Centered Cubic", target)
	target, ok = m.PropertySynonym("Lattice Constant")
	assert.True(t, ok)
	assert.Equal(t, "length_x", target)
	assert.Equal(t, []string{"ComputationalSample", "CrystallineMaterial"}, m.Crystal().BaseClasses)

	jsonPath := filepath.Join(dir, "other_mappings.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte("{\n\t\"sample_schema\": {\"material_class\": \"Substance\"}\n}"), 0644))
	m, err = LoadMappingConfig(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "Substance", m.Sample().MaterialClass)
}

func TestMappingConfigSynonymCase(t *testing.T) {
	m := &MappingConfig{
		Synonyms:         map[string]string{"FCC Metal": "Crystalline Material", "bcc": "Body Centered Cubic"},
		PropertySynonyms: map[string]string{"Lattice Constant": "length_x"},
	}

	tests := []struct {
		name   string
		lookup func(string) (string, bool)
		term   string
		want   string
		ok     bool
	}{
		{"lower-cased key", m.Synonym, "BCC", "Body Centered Cubic", true},
		{"mixed-case key", m.Synonym, "fcc metal", "Crystalline Material", true},
		{"property synonym", m.PropertySynonym, "lattice constant", "length_x", true},
		{"absent", m.Synonym, "hcp", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.lookup(tt.term)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	var none *MappingConfig
	_, ok := none.Synonym("fcc")
	assert.False(t, ok)
}

func TestLoadMappingConfigMissingAndMalformed(t *testing.T) {
	m, err := LoadMappingConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSampleSchema(), m.Sample())

	m, err = LoadMappingConfig(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Nil(t, m.Synonyms)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
	_, err = LoadMappingConfig(bad)
	assert.Error(t, err)
}

func TestLoadConstraints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cmso_constraints.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
	  "Unit Cell": {"required": ["length_x"], "recommended": ["angle_alpha"], "optional": []}
	}`), 0644))

	c, err := LoadConstraints(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"length_x"}, c.For("unit cell").Required)
	assert.True(t, c.For("Sample").IsEmpty())

	none, err := LoadConstraints("")
	require.NoError(t, err)
	assert.Empty(t, none)
}
