package mapping

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/c360studio/semonto/config"
	"github.com/c360studio/semonto/ontology"
)

// LatticeTolerance is the absolute tolerance of lattice equality checks.
const LatticeTolerance = 1e-4

// Space group number bounds.
const (
	MinSpaceGroup = 1
	MaxSpaceGroup = 230
)

// CrystalSystem describes one of the seven crystal systems.
type CrystalSystem struct {
	Name        string   `json:"name"`
	Constraints string   `json:"constraints"`
	Bravais     []string `json:"bravais"`
	// MinSpaceGroup and MaxSpaceGroup bound the system's space groups,
	// inclusive.
	MinSpaceGroup int `json:"min_space_group"`
	MaxSpaceGroup int `json:"max_space_group"`
}

var crystalSystems = []CrystalSystem{
	{"triclinic", "a!=b!=c, alpha!=beta!=gamma", []string{"aP"}, 1, 2},
	{"monoclinic", "a!=b!=c, alpha=gamma=90, beta!=90", []string{"mP", "mC"}, 3, 15},
	{"orthorhombic", "a!=b!=c, alpha=beta=gamma=90", []string{"oP", "oC", "oI", "oF"}, 16, 74},
	{"tetragonal", "a=b!=c, alpha=beta=gamma=90", []string{"tP", "tI"}, 75, 142},
	{"trigonal", "a=b=c, alpha=beta=gamma!=90 (rhombohedral) or a=b!=c (hexagonal)", []string{"hR", "hP"}, 143, 167},
	{"hexagonal", "a=b!=c, alpha=beta=90, gamma=120", []string{"hP"}, 168, 194},
	{"cubic", "a=b=c, alpha=beta=gamma=90", []string{"cP", "cI", "cF"}, 195, 230},
}

var bravaisAliases = map[string]string{
	"fcc":                        "cF",
	"bcc":                        "cI",
	"sc":                         "cP",
	"simple cubic":               "cP",
	"body-centered cubic":        "cI",
	"face-centered cubic":        "cF",
	"hcp":                        "hP",
	"hexagonal":                  "hP",
	"rhombohedral":               "hR",
	"simple tetragonal":          "tP",
	"body-centered tetragonal":   "tI",
	"simple orthorhombic":        "oP",
	"base-centered orthorhombic": "oC",
	"body-centered orthorhombic": "oI",
	"face-centered orthorhombic": "oF",
	"simple monoclinic":          "mP",
	"base-centered monoclinic":   "mC",
	"triclinic":                  "aP",
}

func init() {
	for _, sys := range crystalSystems {
		for _, code := range sys.Bravais {
			bravaisAliases[strings.ToLower(code)] = code
		}
	}
}

// CrystalSystems returns the seven crystal systems ordered by space group.
func CrystalSystems() []CrystalSystem {
	out := make([]CrystalSystem, len(crystalSystems))
	copy(out, crystalSystems)
	return out
}

// LookupCrystalSystem returns the system with the given name, compared
// case-insensitively.
func LookupCrystalSystem(name string) (CrystalSystem, bool) {
	for _, sys := range crystalSystems {
		if strings.EqualFold(sys.Name, strings.TrimSpace(name)) {
			return sys, true
		}
	}
	return CrystalSystem{}, false
}

// SystemForSpaceGroup infers the crystal system of a space group number.
func SystemForSpaceGroup(sg int) (string, bool) {
	for _, sys := range crystalSystems {
		if sg >= sys.MinSpaceGroup && sg <= sys.MaxSpaceGroup {
			return sys.Name, true
		}
	}
	return "", false
}

// ResolveBravais maps a Bravais lattice alias or short code
// (case-insensitive) to its canonical short code.
func ResolveBravais(alias string) (string, bool) {
	code, ok := bravaisAliases[strings.ToLower(strings.TrimSpace(alias))]
	return code, ok
}

// CrystalInput holds the crystallographic parameters of one structure. Nil
// fields are not given.
type CrystalInput struct {
	System     string   `json:"system,omitempty"`
	Bravais    string   `json:"bravais,omitempty"`
	SpaceGroup *int     `json:"space_group,omitempty"`
	A          *float64 `json:"a,omitempty"`
	B          *float64 `json:"b,omitempty"`
	C          *float64 `json:"c,omitempty"`
	Alpha      *float64 `json:"alpha,omitempty"`
	Beta       *float64 `json:"beta,omitempty"`
	Gamma      *float64 `json:"gamma,omitempty"`
}

// CrystalProperty is a property/value pair of the crystal mapping.
type CrystalProperty struct {
	Property string `json:"property"`
	Value    any    `json:"value"`
	Type     string `json:"type"`
}

// CrystalResult is the ontology rendering of a CrystalInput.
type CrystalResult struct {
	OntologyClasses    []string          `json:"ontology_classes"`
	OntologyProperties []CrystalProperty `json:"ontology_properties"`
	EffectiveSystem    string            `json:"effective_system,omitempty"`
	InferredSystem     string            `json:"inferred_system,omitempty"`
	BravaisLattice     string            `json:"bravais_lattice,omitempty"`
	ValidationWarnings []string          `json:"validation_warnings"`
	Notes              []string          `json:"notes"`
}

// MapCrystal validates in, infers and reconciles its crystal system and
// renders it with the labels of out (the generic labels when out is nil).
// Malformed magnitudes are a ValidationError; constraint violations are
// reported as warnings.
func MapCrystal(in CrystalInput, out *config.CrystalOutput) (*CrystalResult, error) {
	if err := validateMagnitudes(in); err != nil {
		return nil, err
	}
	out = out.WithDefaults()

	result := &CrystalResult{
		OntologyClasses:    append([]string{}, out.BaseClasses...),
		OntologyProperties: []CrystalProperty{},
		ValidationWarnings: []string{},
		Notes:              []string{},
	}

	if in.Bravais != "" {
		if code, ok := ResolveBravais(in.Bravais); ok {
			result.BravaisLattice = code
		} else {
			result.BravaisLattice = in.Bravais
			result.Notes = append(result.Notes,
				fmt.Sprintf("Unrecognized Bravais lattice %q kept as given", in.Bravais))
		}
	}

	if in.SpaceGroup != nil {
		result.InferredSystem, _ = SystemForSpaceGroup(*in.SpaceGroup)
	}

	declared := strings.ToLower(strings.TrimSpace(in.System))
	result.EffectiveSystem = declared
	if declared == "" {
		result.EffectiveSystem = result.InferredSystem
	}

	system, known := LookupCrystalSystem(result.EffectiveSystem)
	if result.EffectiveSystem != "" {
		if known {
			result.ValidationWarnings = append(result.ValidationWarnings, checkLattice(system.Name, in)...)
		} else {
			result.Notes = append(result.Notes,
				fmt.Sprintf("Unknown crystal system %q; lattice checks skipped", in.System))
		}
	}
	if declared != "" && result.InferredSystem != "" && declared != result.InferredSystem {
		result.ValidationWarnings = append(result.ValidationWarnings,
			fmt.Sprintf("Space group %d implies %s, but %s was specified", *in.SpaceGroup, result.InferredSystem, in.System))
	}
	if known && result.BravaisLattice != "" && isBravaisCode(result.BravaisLattice) &&
		!slices.Contains(system.Bravais, result.BravaisLattice) {
		result.ValidationWarnings = append(result.ValidationWarnings,
			fmt.Sprintf("Bravais lattice %s is not a %s lattice (expected one of %s)",
				result.BravaisLattice, system.Name, strings.Join(system.Bravais, ", ")))
	}

	if in.SpaceGroup != nil {
		result.OntologyClasses = append(result.OntologyClasses, out.SpaceGroupClass)
	}
	if in.A != nil || in.B != nil || in.C != nil {
		result.OntologyClasses = append(result.OntologyClasses, out.LatticeParameterClass)
	}

	addProperty := func(key string, value any) {
		result.OntologyProperties = append(result.OntologyProperties, CrystalProperty{
			Property: out.Property(key),
			Value:    value,
			Type:     "data",
		})
	}
	if result.BravaisLattice != "" {
		addProperty(config.PropBravaisLattice, result.BravaisLattice)
	}
	if in.SpaceGroup != nil {
		addProperty(config.PropSpaceGroupNumber, *in.SpaceGroup)
	}
	for _, p := range []struct {
		key string
		val *float64
	}{
		{config.PropLengthX, in.A},
		{config.PropLengthY, in.B},
		{config.PropLengthZ, in.C},
		{config.PropAngleAlpha, in.Alpha},
		{config.PropAngleBeta, in.Beta},
		{config.PropAngleGamma, in.Gamma},
	} {
		if p.val != nil {
			addProperty(p.key, *p.val)
		}
	}

	return result, nil
}

func validateMagnitudes(in CrystalInput) error {
	for _, l := range []struct {
		name string
		val  *float64
	}{{"a", in.A}, {"b", in.B}, {"c", in.C}} {
		if l.val == nil {
			continue
		}
		if math.IsNaN(*l.val) || math.IsInf(*l.val, 0) {
			return ontology.Invalidf("%s must be finite (no NaN or Inf)", l.name)
		}
		if *l.val <= 0 {
			return ontology.Invalidf("%s must be positive", l.name)
		}
	}
	for _, a := range []struct {
		name string
		val  *float64
	}{{"alpha", in.Alpha}, {"beta", in.Beta}, {"gamma", in.Gamma}} {
		if a.val == nil {
			continue
		}
		if math.IsNaN(*a.val) || math.IsInf(*a.val, 0) {
			return ontology.Invalidf("%s must be finite (no NaN or Inf)", a.name)
		}
		if *a.val <= 0 || *a.val >= 180 {
			return ontology.Invalidf("%s must be between 0 and 180 degrees", a.name)
		}
	}
	if in.SpaceGroup != nil && (*in.SpaceGroup < MinSpaceGroup || *in.SpaceGroup > MaxSpaceGroup) {
		return ontology.Invalidf("space_group must be between %d and %d", MinSpaceGroup, MaxSpaceGroup)
	}
	return nil
}

// latticeRule is one equality constraint of a crystal system: two lengths
// that must agree, or an angle with its required value.
type latticeRule struct {
	lengths [2]string
	angle   string
	degrees float64
}

var latticeRules = map[string][]latticeRule{
	"cubic": {
		{lengths: [2]string{"a", "b"}},
		{lengths: [2]string{"a", "c"}},
		{angle: "alpha", degrees: 90},
		{angle: "beta", degrees: 90},
		{angle: "gamma", degrees: 90},
	},
	"hexagonal": {
		{lengths: [2]string{"a", "b"}},
		{angle: "alpha", degrees: 90},
		{angle: "beta", degrees: 90},
		{angle: "gamma", degrees: 120},
	},
	"tetragonal": {
		{lengths: [2]string{"a", "b"}},
		{angle: "alpha", degrees: 90},
		{angle: "beta", degrees: 90},
		{angle: "gamma", degrees: 90},
	},
	"orthorhombic": {
		{angle: "alpha", degrees: 90},
		{angle: "beta", degrees: 90},
		{angle: "gamma", degrees: 90},
	},
	"monoclinic": {
		{angle: "alpha", degrees: 90},
		{angle: "gamma", degrees: 90},
	},
}

// checkLattice returns one warning per violated constraint of system.
// Parameters that are not given are not checked.
func checkLattice(system string, in CrystalInput) []string {
	params := map[string]*float64{
		"a": in.A, "b": in.B, "c": in.C,
		"alpha": in.Alpha, "beta": in.Beta, "gamma": in.Gamma,
	}
	title := strings.ToUpper(system[:1]) + system[1:]

	var warnings []string
	for _, rule := range latticeRules[system] {
		if rule.angle != "" {
			v := params[rule.angle]
			if v != nil && math.Abs(*v-rule.degrees) > LatticeTolerance {
				warnings = append(warnings, fmt.Sprintf("%s requires %s=%g, but %s=%s",
					title, rule.angle, rule.degrees, rule.angle, formatFloat(*v)))
			}
			continue
		}
		x, y := rule.lengths[0], rule.lengths[1]
		vx, vy := params[x], params[y]
		if vx != nil && vy != nil && math.Abs(*vx-*vy) > LatticeTolerance {
			warnings = append(warnings, fmt.Sprintf("%s requires %s=%s, but %s=%s, %s=%s",
				title, x, y, x, formatFloat(*vx), y, formatFloat(*vy)))
		}
	}
	return warnings
}

func isBravaisCode(code string) bool {
	for _, sys := range crystalSystems {
		if slices.Contains(sys.Bravais, code) {
			return true
		}
	}
	return false
}

// formatFloat prints whole numbers with one decimal place ("3.0") and
// everything else in its shortest form.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}
