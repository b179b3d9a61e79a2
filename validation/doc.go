// Package validation checks annotations against an ontology Summary.
//
// CheckSchema verifies that the classes and properties an annotation uses
// exist, flagging properties applied outside their declared domain.
// CheckCompleteness scores the properties provided for a class against its
// required, recommended and optional tiers. CheckRelationships verifies
// subject-property-object triples against domain and range, walking declared
// subclass links.
package validation
