package ontology

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSummary() *Summary {
	return &Summary{
		Classes: map[string]*ClassInfo{
			"Material":             {IRI: "x#Material", Children: []string{"Crystalline Material"}},
			"Crystalline Material": {IRI: "x#CrystallineMaterial", Parent: "Material", Children: []string{"Polycrystal"}},
			"Polycrystal":          {IRI: "x#Polycrystal", Parent: "Crystalline Material"},
			"Sample":               {IRI: "x#Sample", Children: []string{"Computational Sample"}},
			"Computational Sample": {IRI: "x#ComputationalSample", Parent: "Sample"},
			"Unit Cell":            {IRI: "x#UnitCell"},
		},
		ObjectProperties: map[string]*PropertyInfo{
			"has material":  {Kind: KindObject, IRI: "x#hasMaterial", Domain: Single("Sample"), Range: Single("Material")},
			"has unit cell": {Kind: KindObject, IRI: "x#hasUnitCell", Domain: Union("Crystalline Material", "Sample"), Range: Single("Unit Cell")},
		},
		DataProperties: map[string]*PropertyInfo{
			"length_x":        {Kind: KindData, IRI: "x#length_x", Domain: Single("UnitCell"), RangeType: "float"},
			"chemical_symbol": {Kind: KindData, IRI: "x#chemical_symbol", Domain: Single("Material"), RangeType: "string"},
		},
	}
}

func TestClassExpr(t *testing.T) {
	e := ParseClassExpr("Crystalline Material | Sample")
	assert.True(t, e.IsUnion())
	assert.Equal(t, []string{"Crystalline Material", "Sample"}, e.Members())
	assert.Equal(t, "Crystalline Material | Sample", e.String())

	assert.True(t, e.Includes("sample"))
	assert.True(t, e.Includes("Crystalline Material"))
	assert.True(t, e.Includes("Material"))
	assert.False(t, e.Includes("Unit Cell"))
	assert.True(t, e.MentionsText("material"))

	compact := Single("UnitCell")
	assert.True(t, compact.Includes("Unit Cell"))

	assert.True(t, ParseClassExpr("  ").IsZero())
	assert.True(t, Union("", " ").IsZero())
	assert.False(t, ClassExpr{}.Includes(""))
}

func TestClassExprJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		D ClassExpr `json:"d"`
		R ClassExpr `json:"r"`
	}{D: Union("A", "B")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"A | B","r":null}`, string(data))

	var e ClassExpr
	require.NoError(t, json.Unmarshal([]byte(`"A|B"`), &e))
	assert.Equal(t, []string{"A", "B"}, e.Members())
	require.NoError(t, json.Unmarshal([]byte(`null`), &e))
	assert.True(t, e.IsZero())
}

func TestResolveClass(t *testing.T) {
	s := testSummary()
	tests := []struct {
		name  string
		input string
		want  string
		found bool
	}{
		{"exact", "Unit Cell", "Unit Cell", true},
		{"case-insensitive", "unit cell", "Unit Cell", true},
		{"whitespace-insensitive", "UnitCell", "Unit Cell", true},
		{"unknown", "Lattice", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.ResolveClass(tt.input)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := s.LookupClass("UnitCell")
	assert.False(t, ok)
}

func TestLookupProperty(t *testing.T) {
	s := testSummary()

	name, p, ok := s.LookupProperty("HAS MATERIAL")
	require.True(t, ok)
	assert.Equal(t, "has material", name)
	assert.Equal(t, KindObject, p.Kind)

	name, _, ok = s.LookupProperty("Length_X")
	require.True(t, ok)
	assert.Equal(t, "length_x", name)

	_, _, ok = s.LookupObjectProperty("length_x")
	assert.False(t, ok)
}

func TestPropertiesForClass(t *testing.T) {
	s := testSummary()

	refs := s.PropertiesForClass("Sample", "")
	require.Len(t, refs, 2)
	assert.Equal(t, "has material", refs[0].Name)
	assert.Equal(t, "has unit cell", refs[1].Name)

	refs = s.PropertiesForClass("Unit Cell", "")
	require.Len(t, refs, 1)
	assert.Equal(t, "length_x", refs[0].Name)
	assert.Equal(t, KindData, refs[0].Type)

	assert.Empty(t, s.PropertiesForClass("Sample", KindData))

	refs = s.PropertiesForClass("Material", "")
	require.Len(t, refs, 2)
	assert.Equal(t, "chemical_symbol", refs[0].Name)
	assert.Equal(t, "has unit cell", refs[1].Name)
}

func TestPropertiesForClassCompoundDomain(t *testing.T) {
	s := testSummary()
	s.DataProperties["temperature"] = &PropertyInfo{Kind: KindData, IRI: "x#temperature", Domain: Single("Computational Sample")}
	s.DataProperties["cell_volume"] = &PropertyInfo{Kind: KindData, IRI: "x#cell_volume", Domain: Single("UnitCell | Polycrystal")}

	tests := []struct {
		class string
		want  []string
	}{
		{class: "Sample", want: []string{"temperature", "has material", "has unit cell"}},
		{class: "sample", want: []string{"temperature", "has material", "has unit cell"}},
		{class: "Computational Sample", want: []string{"temperature"}},
		{class: "Unit Cell", want: []string{"cell_volume", "length_x"}},
		{class: "Polycrystal", want: []string{"cell_volume"}},
		{class: "Phonon", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			var got []string
			for _, ref := range s.PropertiesForClass(tt.class, "") {
				got = append(got, ref.Name)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"Material", "Sample", "Unit Cell", "b"}, SortedKeys(map[string]int{"b": 1, "Unit Cell": 2, "Sample": 3, "Material": 4}))
	assert.Empty(t, SortedKeys(map[string]*ClassInfo(nil)))
}

func TestTraversal(t *testing.T) {
	s := testSummary()

	assert.Equal(t, []string{"Material", "Sample", "Unit Cell"}, s.Roots())
	assert.Equal(t, []string{"Material", "Crystalline Material", "Polycrystal"}, s.PathToRoot("Polycrystal"))
	assert.Equal(t, []string{"Unit Cell"}, s.PathToRoot("Unit Cell"))

	assert.Equal(t, Hierarchy{"Crystalline Material": {"Polycrystal": {}}}, s.Subtree("Material", -1))
	assert.Equal(t, Hierarchy{"Crystalline Material": {}}, s.Subtree("Material", 1))
	assert.Equal(t, Hierarchy{}, s.Subtree("Material", 0))

	assert.True(t, s.IsSubclassOf("Polycrystal", "material"))
	assert.True(t, s.IsSubclassOf("unit cell", "Unit Cell"))
	assert.False(t, s.IsSubclassOf("Sample", "Material"))
}

func TestTraversalCycle(t *testing.T) {
	s := &Summary{Classes: map[string]*ClassInfo{
		"A": {Parent: "B", Children: []string{"B"}},
		"B": {Parent: "A", Children: []string{"A"}},
	}}

	assert.Equal(t, []string{"B", "A"}, s.PathToRoot("A"))
	assert.False(t, s.IsSubclassOf("A", "C"))
	assert.Equal(t, Hierarchy{"B": {}}, s.Subtree("A", -1))
}

func TestNotFoundError(t *testing.T) {
	known := make([]string, 25)
	for i := range known {
		known[i] = fmt.Sprintf("C%02d", i)
	}
	err := NewNotFoundError("Class", "Lattice", known)

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Len(t, nf.Candidates, MaxCandidates)
	assert.True(t, nf.Truncated)
	assert.Contains(t, err.Error(), "Class 'Lattice' not found. Available: C00, C01")
	assert.Contains(t, err.Error(), "C19...")
	assert.True(t, IsNotFound(fmt.Errorf("browse: %w", err)))
	assert.False(t, IsValidation(err))
}

func TestParseError(t *testing.T) {
	cause := errors.New("boom")
	err := NewParseError("onto.owl", cause)
	assert.True(t, IsParseError(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, `cannot parse OWL source "onto.owl": boom`, err.Error())

	assert.True(t, IsValidation(Invalidf("bad %s", "input")))
}
