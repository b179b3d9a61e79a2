// Package mapping maps free text and structured material data onto an
// ontology Summary.
//
// MapConcepts runs each term through an ordered list of matchers (synonym
// table, property synonym table, exact label, label substring, class
// description) and scores every hit with the matcher's fixed confidence.
// MapCrystal normalizes crystallographic parameters independently of any
// ontology and renders them with configurable output labels. AnnotateSample
// combines both with element and material-type resolution to annotate a
// sample description.
package mapping
