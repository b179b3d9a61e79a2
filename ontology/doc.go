// Package ontology defines the shared knowledge model of the toolkit: the
// label-indexed Summary with its class table, class hierarchy and property
// tables, the ClassExpr domain/range expression, and the typed errors every
// component reports.
//
// A Summary is built once per invocation (see package summary) and is only
// read afterwards. The lookup and traversal helpers on *Summary are shared by
// the query, mapping and validation packages so that every component resolves
// names and walks the hierarchy the same way:
//
//   - class names resolve exactly, then case-insensitively, then ignoring
//     whitespace (ResolveClass)
//   - a property applies to a class when its flattened domain contains the
//     class name, or the class name without spaces (PropertiesForClass)
//   - every upward or downward walk carries a visited set, so a malformed
//     parent cycle terminates
package ontology
