package rdf

import "github.com/c360studio/semstreams/vocabulary"

// Class predicates of the summary model.
const (
	// ClassLabel is the display label that keys the class table.
	ClassLabel = "ontology.class.label"

	// ClassParent is the resolved label of the first declared superclass.
	ClassParent = "ontology.class.parent"

	// ClassDescription is the first non-empty definition annotation.
	ClassDescription = "ontology.class.description"
)

// Property predicates of the summary model.
const (
	PropertyLabel       = "ontology.property.label"
	PropertyDomain      = "ontology.property.domain"
	PropertyRange       = "ontology.property.range"
	PropertyDescription = "ontology.property.description"
)

// Ontology-level predicates.
const (
	OntologyTitle       = "ontology.meta.title"
	OntologyVersion     = "ontology.meta.version"
	OntologyDescription = "ontology.meta.description"
	OntologyImports     = "ontology.meta.imports"
)

// SourceIRI returns the RDF property a summary predicate is read from, as
// registered with the vocabulary, or "" when the predicate is unregistered.
func SourceIRI(predicate string) string {
	if meta := vocabulary.GetPredicateMetadata(predicate); meta != nil {
		return meta.StandardIRI
	}
	return ""
}

func init() {
	vocabulary.Register(ClassLabel,
		vocabulary.WithDescription("Human-readable class label, falling back to the IRI local name"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(vocabulary.RdfsLabel),
		vocabulary.WithAlias(vocabulary.AliasTypeLabel, 0))

	vocabulary.Register(ClassParent,
		vocabulary.WithDescription("Label of the declared superclass"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(RDFSSubClassOf))

	vocabulary.Register(ClassDescription,
		vocabulary.WithDescription("Class definition text"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(vocabulary.RdfsComment))

	vocabulary.Register(PropertyLabel,
		vocabulary.WithDescription("Human-readable property label"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(vocabulary.RdfsLabel),
		vocabulary.WithAlias(vocabulary.AliasTypeLabel, 1))

	vocabulary.Register(PropertyDomain,
		vocabulary.WithDescription("Class label or union of class labels the property applies to"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(RDFSDomain))

	vocabulary.Register(PropertyRange,
		vocabulary.WithDescription("Class label, union of class labels, or datatype local name"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(RDFSRange))

	vocabulary.Register(PropertyDescription,
		vocabulary.WithDescription("Property definition text"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(vocabulary.RdfsComment))

	vocabulary.Register(OntologyTitle,
		vocabulary.WithDescription("Ontology title"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(vocabulary.DcTitle))

	vocabulary.Register(OntologyVersion,
		vocabulary.WithDescription("Ontology version info"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(OWLVersionInfo))

	vocabulary.Register(OntologyDescription,
		vocabulary.WithDescription("Ontology description or abstract"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(DCTermsDescription))

	vocabulary.Register(OntologyImports,
		vocabulary.WithDescription("IRIs of imported ontologies"),
		vocabulary.WithDataType("array"),
		vocabulary.WithIRI(OWLImports))
}
