// Package rdf provides the RDF, RDFS, OWL, SKOS and Dublin Core terms read
// from OWL/XML ontology documents, and registers the predicates of the
// ontology summary model.
//
// Element names in an OWL/XML document are matched by their expanded IRI
// (namespace plus local name), so documents using unusual prefixes parse the
// same as documents using the conventional ones.
//
// The parser reads the structural properties (superclass, domain, range,
// version and imports) through SourceIRI, so registering a predicate again
// with another IRI changes what the parser reads.
//
// Import this package to auto-register predicates:
//
//	import _ "github.com/c360studio/semonto/vocabulary/rdf"
package rdf
