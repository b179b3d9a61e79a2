package mapping

import "strings"

var elementSymbols = map[string]bool{}

func init() {
	for _, sym := range strings.Fields(`
		H He Li Be B C N O F Ne Na Mg Al Si P S Cl Ar K Ca
		Sc Ti V Cr Mn Fe Co Ni Cu Zn Ga Ge As Se Br Kr Rb Sr Y Zr
		Nb Mo Tc Ru Rh Pd Ag Cd In Sn Sb Te I Xe Cs Ba La Ce Pr Nd
		Pm Sm Eu Gd Tb Dy Ho Er Tm Yb Lu Hf Ta W Re Os Ir Pt Au Hg
		Tl Pb Bi Po At Rn Fr Ra Ac Th Pa U Np Pu`) {
		elementSymbols[sym] = true
	}
}

var elementNames = map[string]string{
	"hydrogen": "H", "helium": "He", "lithium": "Li", "beryllium": "Be",
	"boron": "B", "carbon": "C", "nitrogen": "N", "oxygen": "O",
	"fluorine": "F", "neon": "Ne", "sodium": "Na", "magnesium": "Mg",
	"aluminum": "Al", "aluminium": "Al", "silicon": "Si",
	"phosphorus": "P", "sulfur": "S", "chlorine": "Cl", "argon": "Ar",
	"potassium": "K", "calcium": "Ca", "scandium": "Sc", "titanium": "Ti",
	"vanadium": "V", "chromium": "Cr", "manganese": "Mn", "iron": "Fe",
	"cobalt": "Co", "nickel": "Ni", "copper": "Cu", "zinc": "Zn",
	"gallium": "Ga", "germanium": "Ge", "arsenic": "As", "selenium": "Se",
	"bromine": "Br", "krypton": "Kr", "rubidium": "Rb", "strontium": "Sr",
	"yttrium": "Y", "zirconium": "Zr", "niobium": "Nb", "molybdenum": "Mo",
	"ruthenium": "Ru", "rhodium": "Rh", "palladium": "Pd", "silver": "Ag",
	"cadmium": "Cd", "indium": "In", "tin": "Sn", "antimony": "Sb",
	"tellurium": "Te", "iodine": "I", "xenon": "Xe", "cesium": "Cs",
	"barium": "Ba", "lanthanum": "La", "cerium": "Ce", "gold": "Au",
	"platinum": "Pt", "tungsten": "W", "lead": "Pb", "uranium": "U",
}

// ElementSymbol resolves a chemical symbol (case-sensitive) or an element
// name (case-insensitive) to its symbol.
func ElementSymbol(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if elementSymbols[s] {
		return s, true
	}
	if sym, ok := elementNames[strings.ToLower(s)]; ok {
		return sym, true
	}
	return "", false
}
