package mapping

import (
	"encoding/json"
	"testing"

	"github.com/c360studio/semonto/config"
	"github.com/c360studio/semonto/ontology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSample(t *testing.T, data string) *Sample {
	t.Helper()
	s, err := DecodeSample([]byte(data))
	require.NoError(t, err)
	return s
}

func TestDecodeSample(t *testing.T) {
	s := mustSample(t, `{"material": "Cu", "zeta": 1, "alpha": "90", "space_group": null}`)
	assert.Equal(t, []string{"material", "zeta", "alpha", "space_group"}, s.Keys())
	assert.True(t, s.Has("space_group"))
	assert.Nil(t, s.Value("space_group"))

	alpha, err := s.Float("alpha")
	require.NoError(t, err)
	assert.Equal(t, 90.0, *alpha)

	missing, err := s.Float("beta")
	require.NoError(t, err)
	assert.Nil(t, missing)

	for _, bad := range []string{`{}`, `[1, 2]`, `"fcc"`, `{"material": `, `not json`,
		`{"a": 1} garbage`, `{"a": 1} {"b": 2}`, `{"a": 1}]`} {
		_, err := DecodeSample([]byte(bad))
		require.Error(t, err, bad)
		assert.True(t, ontology.IsValidation(err), bad)
	}
}

func TestDecodeSampleTrailingWhitespace(t *testing.T) {
	s := mustSample(t, "{\"material\": \"Cu\"}\n\t ")
	assert.Equal(t, []string{"material"}, s.Keys())
}

func TestAnnotationJSONValue(t *testing.T) {
	res, err := AnnotateSample(nil, mustSample(t, `{"material": "amorphous silica", "num_atoms": null}`), nil)
	require.NoError(t, err)

	data, err := json.Marshal(res.Annotations)
	require.NoError(t, err)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	var counted bool
	for _, ann := range got {
		if ann["property"] == "number_of_atoms" {
			counted = true
			assert.Contains(t, ann, "value")
			assert.Nil(t, ann["value"])
		}
		if _, isProperty := ann["property"]; !isProperty {
			assert.NotContains(t, ann, "value")
		}
	}
	assert.True(t, counted, "no atom count annotation in %s", data)
}

func TestAnnotateCrystallineSample(t *testing.T) {
	sample := mustSample(t, `{
		"material": "Copper",
		"structure": "FCC",
		"space_group": 225,
		"lattice_a": 3.615,
		"elements": ["Cu"],
		"num_atoms": 4,
		"temperature": 300
	}`)

	res, err := AnnotateSample(nil, sample, nil)
	require.NoError(t, err)

	assert.Equal(t, "Atomic Scale Sample", res.SampleType)
	assert.Equal(t, "Crystalline Material", res.MaterialType)
	assert.Equal(t, []string{"temperature"}, res.UnmappedFields)
	assert.Empty(t, res.SuggestedProperties)

	assert.Equal(t, []Annotation{
		{Class: "Sample", Subclass: "Atomic Scale Sample", Confidence: 1.0},
		{Class: "Material", Subclass: "Crystalline Material", Confidence: 0.95},
		{Class: "Crystal Structure", Property: "bravais_lattice", Value: "cF", Confidence: 0.95},
		{Class: "Crystal Structure", Property: "space_group_number", Value: 225, Confidence: 0.95},
		{Class: "Unit Cell", Property: "length_x", Value: 3.615, Confidence: 0.95},
		{Class: "Chemical Element", Property: "chemical_symbol", Value: "Cu", Confidence: 1.0},
		{Class: "Atomic Scale Sample", Property: "number_of_atoms", Value: json.Number("4"), Confidence: 1.0},
	}, res.Annotations)
}

func TestAnnotateAmorphousSample(t *testing.T) {
	sample := mustSample(t, `{"material": "amorphous silica", "elements": "Si, O, Xx"}`)

	res, err := AnnotateSample(nil, sample, nil)
	require.NoError(t, err)

	assert.Equal(t, "Amorphous Material", res.MaterialType)
	assert.Empty(t, res.SuggestedProperties)
	require.Len(t, res.Annotations, 4)
	assert.Equal(t, 0.9, res.Annotations[1].Confidence)
	assert.Equal(t, "Si", res.Annotations[2].Value)
	assert.Equal(t, "O", res.Annotations[3].Value)
}

func TestAnnotateSampleWarningsAndSuggestions(t *testing.T) {
	sample := mustSample(t, `{"material": "Fe", "system": "cubic", "lattice_a": 2.8, "lattice_b": 3.0}`)

	res, err := AnnotateSample(nil, sample, nil)
	require.NoError(t, err)

	var warnings []Annotation
	for _, a := range res.Annotations {
		if a.Type == AnnotationWarning {
			warnings = append(warnings, a)
		}
	}
	require.Len(t, warnings, 1)
	assert.Equal(t, "Cubic requires a=b, but a=2.8, b=3.0", warnings[0].Message)
	assert.Equal(t, 1.0, warnings[0].Confidence)

	last := res.Annotations[len(res.Annotations)-1]
	assert.Equal(t, "Fe", last.Value)
	assert.Equal(t, []string{"space_group (integer 1-230)"}, res.SuggestedProperties)
}

func TestAnnotateSampleMappingConfig(t *testing.T) {
	s := &ontology.Summary{Classes: map[string]*ontology.ClassInfo{
		"Computational Sample": {IRI: "x#ComputationalSample"},
	}}
	m := &config.MappingConfig{
		SampleSchema: &config.SampleSchema{SampleClass: "Computational Sample"},
		MaterialTypeRules: &config.MaterialTypeRules{
			KeywordRules: []config.KeywordRule{{Keyword: "GB", Fields: []string{"notes"}, MapsTo: "Bicrystal"}},
		},
	}
	sample := mustSample(t, `{"notes": "tilt gb", "num_atoms": 0, "number_of_atoms": 8}`)

	res, err := AnnotateSample(s, sample, m)
	require.NoError(t, err)

	assert.Equal(t, "Bicrystal", res.MaterialType)
	assert.Equal(t, "x#ComputationalSample", res.Annotations[0].IRI)
	last := res.Annotations[len(res.Annotations)-1]
	assert.Equal(t, "number_of_atoms", last.Property)
	assert.Equal(t, json.Number("8"), last.Value)
	assert.Equal(t, []string{"notes"}, res.UnmappedFields)
	assert.Equal(t, []string{
		"elements (list of chemical element symbols)",
		"space_group (integer 1-230)",
		"lattice_a (lattice parameter a in angstroms)",
	}, res.SuggestedProperties)
}

func TestAnnotateSampleRejectsBadCrystal(t *testing.T) {
	for data, want := range map[string]string{
		`{"lattice_a": -1}`:      "a must be positive",
		`{"space_group": "abc"}`: "space_group must be a number",
		`{"space_group": 12.5}`:  "space_group must be an integer",
		`{"gamma": [90]}`:        "gamma must be a number",
		`{"space_group": 300}`:   "space_group must be between 1 and 230",
	} {
		_, err := AnnotateSample(nil, mustSample(t, data), nil)
		require.Error(t, err, data)
		assert.True(t, ontology.IsValidation(err), data)
		assert.Equal(t, want, err.Error(), data)
	}
}

func TestElementSymbol(t *testing.T) {
	sym, ok := ElementSymbol(" Aluminium ")
	assert.True(t, ok)
	assert.Equal(t, "Al", sym)

	sym, ok = ElementSymbol("Pu")
	assert.True(t, ok)
	assert.Equal(t, "Pu", sym)

	_, ok = ElementSymbol("cu")
	assert.False(t, ok)
}
