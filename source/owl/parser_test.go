package owl

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/c360studio/semonto/ontology"
	"github.com/c360studio/semonto/source"
	"github.com/c360studio/semonto/vocabulary/rdf"
	"github.com/c360studio/semstreams/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFixture(t *testing.T, name string) *Document {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", name))
	require.NoError(t, err)
	defer f.Close()

	doc, err := Parse(name, f)
	require.NoError(t, err)
	return doc
}

func classByIRI(t *testing.T, doc *Document, local string) RawClass {
	t.Helper()
	for _, c := range doc.Classes {
		if strings.HasSuffix(c.IRI, "#"+local) {
			return c
		}
	}
	t.Fatalf("class %s not found", local)
	return RawClass{}
}

func TestParseMetadata(t *testing.T) {
	doc := parseFixture(t, "materials.owl")

	assert.Equal(t, "http://example.org/materials", doc.Metadata.IRI)
	assert.Equal(t, "1.2.0", doc.Metadata.Version)
	assert.Equal(t, "Materials Test Ontology", doc.Metadata.Title)
	assert.Equal(t, "A small ontology of samples and materials.", doc.Metadata.Description)
	assert.Equal(t, []string{"http://purl.obolibrary.org/obo/bfo.owl"}, doc.Imports)
}

func TestParseClasses(t *testing.T) {
	doc := parseFixture(t, "materials.owl")

	// The anonymous class has no rdf:about and is skipped.
	assert.Len(t, doc.Classes, 7)

	tests := []struct {
		local       string
		label       string
		parent      string
		description string
	}{
		{"Material", "Material", "", "Matter from which a sample is made."},
		{"CrystallineMaterial", "Crystalline Material", "Material", "A material with long-range atomic order."},
		{"AmorphousMaterial", "Amorphous Material", "Material", "A material **without** long-range order."},
		{"Sample", "Sample", "", "A portion of material under study."},
		{"ComputationalSample", "Computational Sample", "Sample", ""},
		{"UnitCell", "Unit Cell", "", "The smallest repeating unit of a crystal lattice."},
		{"Orphan", "Orphan", "Missing", ""},
	}
	for _, tt := range tests {
		t.Run(tt.local, func(t *testing.T) {
			c := classByIRI(t, doc, tt.local)
			assert.Equal(t, tt.label, c.Label)
			assert.Equal(t, tt.parent, c.Parent)
			assert.Equal(t, tt.description, c.Description)
		})
	}
}

func TestParseProperties(t *testing.T) {
	doc := parseFixture(t, "materials.owl")

	require.Len(t, doc.ObjectProperties, 2)
	hasMaterial := doc.ObjectProperties[0]
	assert.Equal(t, "has material", hasMaterial.Label)
	assert.Equal(t, ontology.KindObject, hasMaterial.Kind)
	assert.Equal(t, "Sample", hasMaterial.Domain.String())
	assert.Equal(t, "Material", hasMaterial.Range.String())

	hasUnitCell := doc.ObjectProperties[1]
	assert.Equal(t, "hasUnitCell", hasUnitCell.Label)
	assert.True(t, hasUnitCell.Domain.IsUnion())
	assert.Equal(t, []string{"CrystallineMaterial", "Sample"}, hasUnitCell.Domain.Members())

	require.Len(t, doc.DataProperties, 2)
	length := doc.DataProperties[0]
	assert.Equal(t, ontology.KindData, length.Kind)
	assert.Equal(t, "UnitCell", length.Domain.String())
	assert.Equal(t, "float", length.RangeType)
	assert.True(t, length.Range.IsZero())
	assert.Equal(t, "chemical_symbol", doc.DataProperties[1].Label)
}

func TestParserReadsRegisteredPredicates(t *testing.T) {
	orig := vocabulary.GetPredicateMetadata(rdf.PropertyDomain)
	require.NotNil(t, orig)
	t.Cleanup(func() { vocabulary.RegisterPredicate(*orig) })

	const input = `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
    xmlns:rdfs="http://www.w3.org/2000/01/rdf-schema#"
    xmlns:owl="http://www.w3.org/2002/07/owl#"
    xmlns:schema="http://schema.org/">
  <owl:ObjectProperty rdf:about="http://example.org/x#hasPart">
    <schema:domainIncludes rdf:resource="http://example.org/x#Sample"/>
    <rdfs:domain rdf:resource="http://example.org/x#Material"/>
  </owl:ObjectProperty>
</rdf:RDF>`

	doc, err := NewParser(nil).Parse("inline", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, doc.ObjectProperties, 1)
	assert.Equal(t, "Material", doc.ObjectProperties[0].Domain.String())

	vocabulary.Register(rdf.PropertyDomain, vocabulary.WithIRI("http://schema.org/domainIncludes"))

	doc, err = NewParser(nil).Parse("inline", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, doc.ObjectProperties, 1)
	assert.Equal(t, "Sample", doc.ObjectProperties[0].Domain.String())
}

func TestParseDeclaredCharset(t *testing.T) {
	doc := parseFixture(t, "latin1.owl")
	require.Len(t, doc.Classes, 1)
	assert.Equal(t, "Phase état", doc.Classes[0].Label)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", "<rdf:RDF xmlns:rdf=\"http://www.w3.org/1999/02/22-rdf-syntax-ns#\"><owl:Class>"},
		{"wrong root", "<html><body/></html>"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse("inline", strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Nil(t, doc)
			assert.True(t, ontology.IsParseError(err))
		})
	}
}

func TestParseSource(t *testing.T) {
	fetcher := source.NewFetcher()
	doc, err := ParseSource(context.Background(), fetcher, filepath.Join("testdata", "materials.owl"))
	require.NoError(t, err)
	assert.Len(t, doc.Classes, 7)

	_, err = ParseSource(context.Background(), fetcher, filepath.Join("testdata", "missing.owl"))
	assert.True(t, ontology.IsParseError(err))
}

func TestDocumentHierarchy(t *testing.T) {
	doc := parseFixture(t, "materials.owl")
	h := doc.Hierarchy()

	assert.Contains(t, h, "Material")
	assert.Contains(t, h, "Sample")
	assert.Contains(t, h, "Unit Cell")
	assert.NotContains(t, h, "Orphan")
	assert.Contains(t, h["Sample"], "Computational Sample")
}

func TestRawClassJSON(t *testing.T) {
	data, err := json.Marshal(RawClass{IRI: "x#A", Label: "A"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"iri":"x#A","label":"A","parent":null,"description":null}`, string(data))

	data, err = json.Marshal(RawProperty{Kind: ontology.KindData, IRI: "x#p", Label: "p", RangeType: "float"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"iri":"x#p","label":"p","domain":null,"range_type":"float","description":null}`, string(data))
}
