package rdf

import "github.com/c360studio/semstreams/vocabulary"

// Namespace IRIs of the vocabularies read from OWL/XML documents.
const (
	RDF     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS    = "http://www.w3.org/2000/01/rdf-schema#"
	OWL     = "http://www.w3.org/2002/07/owl#"
	SKOS    = "http://www.w3.org/2004/02/skos/core#"
	DC      = "http://purl.org/dc/elements/1.1/"
	DCTerms = "http://purl.org/dc/terms/"
	OBO     = "http://purl.obolibrary.org/obo/"
)

// Structural terms.
const (
	RDFRoot        = RDF + "RDF"
	RDFAbout       = RDF + "about"
	RDFResource    = RDF + "resource"
	RDFDescription = RDF + "Description"

	RDFSSubClassOf = RDFS + "subClassOf"
	RDFSDomain     = RDFS + "domain"
	RDFSRange      = RDFS + "range"

	OWLOntology            = OWL + "Ontology"
	OWLClass               = OWL + "Class"
	OWLObjectProperty      = OWL + "ObjectProperty"
	OWLDatatypeProperty    = OWL + "DatatypeProperty"
	OWLUnionOf             = OWL + "unionOf"
	OWLVersionInfo         = OWL + "versionInfo"
	OWLImports             = OWL + "imports"
	OWLAnnotation          = OWL + "Annotation"
	OWLAnnotationProperty  = OWL + "AnnotationProperty"
	OWLLiteral             = OWL + "Literal"
	OWLThing               = OWL + "Thing"
	OWLNamedIndividual     = OWL + "NamedIndividual"
	RDFSResource           = RDFS + "Resource"
	SKOSDefinition         = SKOS + "definition"
	DCTermsDescription     = DCTerms + "description"
	DCTermsAbstract        = DCTerms + "abstract"
	DCElementsTitle        = DC + "title"
	DCElementsDescription  = DC + "description"
	IAODefinition          = OBO + "IAO_0000115"
)

// LabelIRIs are the annotation properties read as an entity label, in
// priority order.
var LabelIRIs = []string{vocabulary.RdfsLabel, vocabulary.SkosPrefLabel}

// DescriptionIRIs are the annotation properties read as an entity
// description, in priority order.
var DescriptionIRIs = []string{vocabulary.RdfsComment, SKOSDefinition, IAODefinition}

// TitleIRIs are the ontology title properties, in priority order.
var TitleIRIs = []string{DCElementsTitle, vocabulary.DcTitle}

// OntologyDescriptionIRIs are the ontology description properties, in
// priority order.
var OntologyDescriptionIRIs = []string{DCElementsDescription, DCTermsDescription, DCTermsAbstract}

// builtinParents are superclass local names that carry no information.
var builtinParents = map[string]bool{
	LocalName(OWLThing):           true,
	LocalName(RDFSResource):       true,
	LocalName(OWLNamedIndividual): true,
}

// IsBuiltinParent reports whether a superclass local name is one of the
// top-level OWL/RDFS built-ins.
func IsBuiltinParent(local string) bool {
	return builtinParents[local]
}

// LocalName returns the fragment after the last '#', else the segment after
// the last '/'. An IRI with neither is returned unchanged.
func LocalName(iri string) string {
	for i := len(iri) - 1; i >= 0; i-- {
		if iri[i] == '#' {
			return iri[i+1:]
		}
	}
	for i := len(iri) - 1; i >= 0; i-- {
		if iri[i] == '/' {
			return iri[i+1:]
		}
	}
	return iri
}
