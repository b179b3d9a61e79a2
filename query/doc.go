// Package query implements read-only browsing of an ontology Summary: class
// lookup with subtree, ancestor path and applicable properties, root listing,
// class search, and property lookup by name, class or search term.
package query
