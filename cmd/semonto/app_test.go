package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/semonto/config"
	"github.com/c360studio/semonto/ontology"
)

const materialsOWL = "../../source/owl/testdata/materials.owl"

type cliResult struct {
	code   int
	stdout string
	stderr string
}

// runCLI executes the command line with a config that discovers the
// ontologies under testdata/refs.
func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "semonto.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("registry:\n  search_dir: testdata/refs\n"), 0644))

	var stdout, stderr bytes.Buffer
	code := NewApp(&stdout, &stderr).Execute(append([]string{"--config", cfgPath}, args...))
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// runJSON executes the command line with --json and decodes the envelope.
func runJSON(t *testing.T, args ...string) (map[string]any, map[string]any) {
	t.Helper()
	res := runCLI(t, append([]string{"--json"}, args...)...)
	require.Equal(t, 0, res.code, "stderr: %s", res.stderr)

	var env struct {
		Inputs  map[string]any `json:"inputs"`
		Results map[string]any `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &env), res.stdout)
	return env.Inputs, env.Results
}

func TestVersion(t *testing.T) {
	res := runCLI(t, "version")
	require.Equal(t, 0, res.code)
	assert.Equal(t, "semonto version 0.1.0 (build: dev)\n", res.stdout)
}

func TestBrowseListRoots(t *testing.T) {
	inputs, results := runJSON(t, "browse", "--ontology", "CMSO", "--list-roots")

	assert.Equal(t, "CMSO", inputs["ontology"])
	assert.Equal(t, true, inputs["list_roots"])
	assert.Equal(t, []any{"Material", "Sample", "Unit Cell"}, results["roots"])
}

func TestBrowseClassPath(t *testing.T) {
	_, results := runJSON(t, "browse", "--summary-file", "testdata/refs/cmso_summary.json", "--class", "crystalline material")

	assert.Equal(t, []any{"Material", "Crystalline Material"}, results["path_to_root"])
	info, ok := results["class_info"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Crystalline Material", info["label"])
}

func TestBrowseYAMLOutput(t *testing.T) {
	res := runCLI(t, "browse", "--ontology", "cmso", "--list-roots")
	require.Equal(t, 0, res.code, res.stderr)

	var out map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(res.stdout), &out), res.stdout)
	assert.Equal(t, []any{"Material", "Sample", "Unit Cell"}, out["roots"])
}

func TestUnknownOntology(t *testing.T) {
	res := runCLI(t, "--json", "browse", "--ontology", "nope", "--list-roots")
	assert.Equal(t, 2, res.code)

	var out map[string]string
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out), res.stdout)
	assert.Equal(t, "Ontology 'nope' not found. Available: cmso", out["error"])
}

func TestMissingOntologySelection(t *testing.T) {
	res := runCLI(t, "browse", "--list-roots")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "Error: provide --ontology or --summary-file")
	assert.Empty(t, res.stdout)
}

func TestUnknownClassIsNotFound(t *testing.T) {
	res := runCLI(t, "--json", "browse", "--ontology", "cmso", "--class", "Phonon")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stdout, "not found")
}

func TestPropertyByClass(t *testing.T) {
	_, results := runJSON(t, "property", "--ontology", "cmso", "--class", "Unit Cell", "--type", "data")

	refs, ok := results["class_properties"].([]any)
	require.True(t, ok)
	require.Len(t, refs, 1)
	assert.Equal(t, "length_x", refs[0].(map[string]any)["name"])
}

func TestPropertyBadType(t *testing.T) {
	res := runCLI(t, "property", "--ontology", "cmso", "--search", "length", "--type", "annotation")
	assert.Equal(t, 2, res.code)
}

func TestSummarizeToFile(t *testing.T) {
	output := filepath.Join(t.TempDir(), "materials_summary.json")
	inputs, results := runJSON(t, "summarize", "--source", materialsOWL, "--output", output)

	assert.Equal(t, output, inputs["output"])
	assert.Equal(t, map[string]any{
		"num_classes":           float64(7),
		"num_object_properties": float64(2),
		"num_data_properties":   float64(2),
	}, results["statistics"])

	_, results = runJSON(t, "browse", "--summary-file", output, "--list-roots")
	assert.Equal(t, []any{"Material", "Sample", "Unit Cell"}, results["roots"])
}

func TestSummarizeMissingSource(t *testing.T) {
	res := runCLI(t, "summarize", "--source", filepath.Join(t.TempDir(), "missing.owl"))
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "cannot parse OWL source")
}

func TestSummarizeWatchRequiresOutput(t *testing.T) {
	res := runCLI(t, "summarize", "--source", materialsOWL, "--watch")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "--watch requires --output")
}

func TestParse(t *testing.T) {
	_, results := runJSON(t, "parse", "--source", materialsOWL)

	classes, ok := results["classes"].([]any)
	require.True(t, ok)
	assert.Len(t, classes, 7)
	assert.Contains(t, results, "metadata")

	tree, ok := results["class_hierarchy"].(map[string]any)
	require.True(t, ok, "class_hierarchy missing: %v", results)
	assert.Contains(t, tree, "Material")
	assert.Contains(t, tree, "Unit Cell")
	require.Contains(t, tree, "Sample")
	assert.Contains(t, tree["Sample"], "Computational Sample")
}

func TestMapConceptUsesRegistryMappings(t *testing.T) {
	_, results := runJSON(t, "map", "concept", "--ontology", "cmso", "--terms", "lattice,phonon")

	matches, ok := results["matches"].([]any)
	require.True(t, ok)
	require.Len(t, matches, 1)
	match := matches[0].(map[string]any)
	assert.Equal(t, "Unit Cell", match["matched"])
	assert.Equal(t, "synonym_class", match["match_type"])
	assert.Equal(t, []any{"phonon"}, results["unmatched"])
}

func TestMapCrystal(t *testing.T) {
	inputs, results := runJSON(t, "map", "crystal", "--bravais", "FCC", "--space-group", "225", "--a", "3.615")

	assert.Equal(t, "cF", results["bravais_lattice"])
	assert.Equal(t, "cubic", results["effective_system"])
	assert.Empty(t, results["validation_warnings"])

	params, ok := inputs["lattice_parameters"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 3.615, params["a"])
	assert.Nil(t, params["b"])
}

func TestMapCrystalWarningAndRejects(t *testing.T) {
	_, results := runJSON(t, "map", "crystal", "--system", "cubic", "--a", "3", "--b", "4")
	assert.Equal(t, []any{"Cubic requires a=b, but a=3.0, b=4.0"}, results["validation_warnings"])

	res := runCLI(t, "map", "crystal", "--space-group", "231")
	assert.Equal(t, 2, res.code)

	res = runCLI(t, "map", "crystal", "--a", "-1")
	assert.Equal(t, 2, res.code)
}

func TestAnnotateWithoutOntology(t *testing.T) {
	_, results := runJSON(t, "annotate", "--sample", `{"material": "Copper", "structure": "FCC", "temperature": 300}`)

	assert.Equal(t, "Crystalline Material", results["material_type"])
	assert.Equal(t, []any{"temperature"}, results["unmapped_fields"])
}

func TestAnnotateSampleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"material": "amorphous silica"}`), 0644))

	_, results := runJSON(t, "annotate", "--sample-file", path, "--ontology", "cmso")
	assert.Equal(t, "Amorphous Material", results["material_type"])

	res := runCLI(t, "annotate", "--sample", `[1, 2]`)
	assert.Equal(t, 2, res.code)

	res = runCLI(t, "annotate")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "provide --sample or --sample-file")
}

func TestValidateSchema(t *testing.T) {
	_, results := runJSON(t, "validate", "schema", "--ontology", "cmso",
		"--annotation", `{"class": "Unit Cell", "properties": {"length_x": 3.6}}`)
	assert.Equal(t, true, results["valid"])

	_, results = runJSON(t, "validate", "schema", "--ontology", "cmso",
		"--annotation", `{"class": "Unit Cell", "properties": {"length_q": 3.6}}`)
	assert.Equal(t, false, results["valid"])
	assert.Equal(t, map[string]any{"Unit Cell": true}, results["class_valid"])
	assert.Equal(t, map[string]any{"length_q": false}, results["properties_valid"])
}

func TestValidateCompletenessUsesConstraints(t *testing.T) {
	_, results := runJSON(t, "validate", "completeness", "--ontology", "cmso", "--class", "unit cell")
	assert.Equal(t, "Unit Cell", results["class_name"])
	assert.Equal(t, float64(0), results["completeness_score"])
	assert.Equal(t, []any{"length_x"}, results["required_missing"])

	_, results = runJSON(t, "validate", "completeness", "--ontology", "cmso", "--class", "Unit Cell",
		"--provided", "length_x,colour")
	assert.Equal(t, float64(1), results["completeness_score"])
	assert.Equal(t, []any{"colour"}, results["unrecognized"])
}

func TestValidateRelationships(t *testing.T) {
	_, results := runJSON(t, "validate", "relationships", "--ontology", "cmso", "--relationships", `[
		{"subject_class": "Computational Sample", "property": "has material", "object_class": "Crystalline Material"},
		{"subject_class": "Unit Cell", "property": "has material", "object_class": "Material"}
	]`)

	assert.Equal(t, false, results["valid"])
	checks, ok := results["results"].([]any)
	require.True(t, ok)
	require.Len(t, checks, 2)
	assert.Equal(t, true, checks[0].(map[string]any)["valid"])
	assert.Equal(t, false, checks[1].(map[string]any)["valid"])

	res := runCLI(t, "validate", "relationships", "--ontology", "cmso", "--relationships", `[]`)
	assert.Equal(t, 2, res.code)
}

func TestRegistryList(t *testing.T) {
	res := runCLI(t, "--json", "registry", "list")
	require.Equal(t, 0, res.code, res.stderr)

	var env struct {
		Results []map[string]any `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &env))
	require.Len(t, env.Results, 1)
	assert.Equal(t, "cmso", env.Results[0]["name"])
	assert.Equal(t, filepath.Join("testdata", "refs", "cmso_mappings.yaml"), env.Results[0]["mappings_file"])
}

func TestMetricsTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "semonto.prom")

	res := runCLI(t, "--metrics-textfile", path, "browse", "--ontology", "cmso", "--list-roots")
	require.Equal(t, 0, res.code, res.stderr)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `semonto_operation_total{operation="browse",status="ok"} 1`)
	assert.Contains(t, string(data), `semonto_ontology_entities{kind="class",ontology="cmso"} 5`)

	res = runCLI(t, "--metrics-textfile", path, "browse", "--ontology", "nope", "--list-roots")
	require.Equal(t, 2, res.code)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `semonto_operation_total{operation="browse",status="not_found"} 1`)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"parse", ontology.NewParseError("x.owl", errors.New("boom")), 2},
		{"not found", ontology.NewNotFoundError("Class", "X", nil), 2},
		{"validation", ontology.Invalidf("bad"), 2},
		{"other", errors.New("disk full"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestToYAMLKeepsJSONOrder(t *testing.T) {
	out, err := toYAML(struct {
		Zeta  int    `json:"zeta"`
		Alpha string `json:"alpha"`
		Count string `json:"count"`
	}{1, "x", "1"})
	require.NoError(t, err)

	assert.Less(t, bytes.Index(out, []byte("zeta")), bytes.Index(out, []byte("alpha")))

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, "1", back["count"])
	assert.Equal(t, 1, back["zeta"])
}

func TestConfigInit(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	want := filepath.Join(home, config.UserConfigDir, config.UserConfigFile)

	_, results := runJSON(t, "config", "init")
	assert.Equal(t, want, results["path"])
	assert.Equal(t, true, results["created"])
	assert.FileExists(t, want)

	_, results = runJSON(t, "config", "init")
	assert.Equal(t, false, results["created"])
}
