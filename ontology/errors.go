package ontology

import (
	"errors"
	"fmt"
	"strings"
)

// MaxCandidates bounds the candidate list attached to a NotFoundError.
const MaxCandidates = 20

// ParseError reports a source document that could not be read or parsed.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse OWL source %q: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError wraps err as a ParseError for the given source locator.
func NewParseError(source string, err error) error {
	return &ParseError{Source: source, Err: err}
}

// NotFoundError reports a class, property or ontology name with no match.
type NotFoundError struct {
	// Kind is what was looked up ("class", "property", "ontology").
	Kind string
	// Name is the requested name as given by the caller.
	Name string
	// Candidates lists at most MaxCandidates known names, sorted.
	Candidates []string
	// Truncated is set when more names were available than listed.
	Truncated bool
}

func (e *NotFoundError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s '%s' not found", e.Kind, e.Name)
	if len(e.Candidates) > 0 {
		sb.WriteString(". Available: ")
		sb.WriteString(strings.Join(e.Candidates, ", "))
		if e.Truncated {
			sb.WriteString("...")
		}
	}
	return sb.String()
}

// NewNotFoundError builds a NotFoundError from a sorted list of known names.
func NewNotFoundError(kind, name string, known []string) error {
	e := &NotFoundError{Kind: kind, Name: name}
	if len(known) > MaxCandidates {
		e.Candidates = append([]string(nil), known[:MaxCandidates]...)
		e.Truncated = true
	} else {
		e.Candidates = append([]string(nil), known...)
	}
	return e
}

// ValidationError reports structurally invalid caller input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Invalidf formats a ValidationError.
func Invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsParseError returns true if err is or wraps a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsNotFound returns true if err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation returns true if err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Warning is a non-fatal advisory collected into a result payload.
type Warning struct {
	// Type classifies the warning (e.g. "domain_mismatch", "lattice_constraint").
	Type    string `json:"warning_type"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}
