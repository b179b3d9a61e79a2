package ontology

import (
	"encoding/json"
	"strings"
)

// UnionSeparator joins union members in the flattened document form.
const UnionSeparator = " | "

// ClassExpr is a domain or range expression: a single class label or an
// ordered union of labels. The zero value means "not declared".
type ClassExpr struct {
	members []string
}

// Single returns an expression naming one class.
func Single(label string) ClassExpr {
	if label == "" {
		return ClassExpr{}
	}
	return ClassExpr{members: []string{label}}
}

// Union returns an expression naming any of the given classes, in order.
// Empty labels are dropped; a one-member union is a Single.
func Union(labels ...string) ClassExpr {
	members := make([]string, 0, len(labels))
	for _, l := range labels {
		if l = strings.TrimSpace(l); l != "" {
			members = append(members, l)
		}
	}
	if len(members) == 0 {
		return ClassExpr{}
	}
	return ClassExpr{members: members}
}

// ParseClassExpr splits the flattened "A | B" form.
func ParseClassExpr(s string) ClassExpr {
	if strings.TrimSpace(s) == "" {
		return ClassExpr{}
	}
	return Union(strings.Split(s, "|")...)
}

// IsZero reports whether no class is declared.
func (e ClassExpr) IsZero() bool {
	return len(e.members) == 0
}

// IsUnion reports whether the expression names more than one class.
func (e ClassExpr) IsUnion() bool {
	return len(e.members) > 1
}

// Members returns a copy of the member labels in declaration order.
func (e ClassExpr) Members() []string {
	return append([]string(nil), e.members...)
}

// Map returns a new expression with every member passed through fn.
func (e ClassExpr) Map(fn func(string) string) ClassExpr {
	if e.IsZero() {
		return e
	}
	out := make([]string, len(e.members))
	for i, m := range e.members {
		out[i] = fn(m)
	}
	return Union(out...)
}

// String returns the flattened document form.
func (e ClassExpr) String() string {
	return strings.Join(e.members, UnionSeparator)
}

// Includes reports whether the flattened form contains label, or label
// with its spaces removed, compared case-insensitively. A compound domain
// such as "Computational Sample" therefore includes "Sample".
func (e ClassExpr) Includes(label string) bool {
	if label == "" || e.IsZero() {
		return false
	}
	flat := strings.ToLower(e.String())
	needle := strings.ToLower(label)
	return strings.Contains(flat, needle) ||
		strings.Contains(flat, strings.ReplaceAll(needle, " ", ""))
}

// MentionsText reports whether the flattened form contains name as a
// case-insensitive substring.
func (e ClassExpr) MentionsText(name string) bool {
	if name == "" || e.IsZero() {
		return false
	}
	return strings.Contains(strings.ToLower(e.String()), strings.ToLower(name))
}

// MarshalJSON writes the flattened form, or null when undeclared.
func (e ClassExpr) MarshalJSON() ([]byte, error) {
	if e.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(e.String())
}

// UnmarshalJSON reads the flattened form; null and "" are undeclared.
func (e *ClassExpr) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*e = ClassExpr{}
		return nil
	}
	*e = ParseClassExpr(*s)
	return nil
}
