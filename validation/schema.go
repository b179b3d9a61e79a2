package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/c360studio/semonto/ontology"
)

// Schema issue types.
const (
	ErrUnknownClass    = "unknown_class"
	ErrUnknownProperty = "unknown_property"
	WarnDomainMismatch = "domain_mismatch"
)

// Record is one annotation record: a class (or subclass) with the
// properties applied to it. Records of type "warning" are not checked.
type Record struct {
	Type       string   `json:"type,omitempty"`
	Class      string   `json:"class,omitempty"`
	Subclass   string   `json:"subclass,omitempty"`
	Properties []string `json:"properties,omitempty"`
	Property   string   `json:"property,omitempty"`
}

// ClassName returns the class a record annotates.
func (r Record) ClassName() string {
	if r.Class != "" {
		return r.Class
	}
	return r.Subclass
}

// SchemaIssue is a schema error.
type SchemaIssue struct {
	Field     string `json:"field"`
	ErrorType string `json:"error_type"`
	Message   string `json:"message"`
}

// SchemaResult reports the outcome of a schema check. It is valid when no
// errors were found; warnings do not affect validity.
type SchemaResult struct {
	Valid           bool               `json:"valid"`
	Errors          []SchemaIssue      `json:"errors"`
	Warnings        []ontology.Warning `json:"warnings"`
	ClassValid      map[string]bool    `json:"class_valid"`
	PropertiesValid map[string]bool    `json:"properties_valid"`
}

// DecodeAnnotation reads a single annotation record or an object wrapping
// a list of records under "annotations". Property maps are reduced to their
// sorted keys; list entries that are not objects are skipped.
func DecodeAnnotation(data []byte) ([]Record, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		return nil, ontology.Invalidf("annotation must be a JSON object")
	}

	raw, wrapped := doc["annotations"]
	if !wrapped {
		return []Record{decodeRecord(doc)}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		items = []json.RawMessage{raw}
	}
	records := make([]Record, 0, len(items))
	for _, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			continue
		}
		records = append(records, decodeRecord(fields))
	}
	return records, nil
}

func decodeRecord(fields map[string]json.RawMessage) Record {
	r := Record{
		Type:     stringField(fields, "type"),
		Class:    stringField(fields, "class"),
		Subclass: stringField(fields, "subclass"),
		Property: stringField(fields, "property"),
	}
	var props map[string]json.RawMessage
	if raw, ok := fields["properties"]; ok && json.Unmarshal(raw, &props) == nil {
		for name := range props {
			r.Properties = append(r.Properties, name)
		}
		sort.Strings(r.Properties)
	}
	return r
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// CheckSchemaJSON decodes an annotation document and checks it.
func CheckSchemaJSON(s *ontology.Summary, data []byte) (*SchemaResult, error) {
	records, err := DecodeAnnotation(data)
	if err != nil {
		return nil, err
	}
	return CheckSchema(s, records), nil
}

// CheckSchema verifies that every class and property used by records is
// known to s, matching names exactly and then case-insensitively. A known
// property whose domain does not mention a known class is a domain mismatch
// warning.
func CheckSchema(s *ontology.Summary, records []Record) *SchemaResult {
	result := &SchemaResult{
		Errors:          []SchemaIssue{},
		Warnings:        []ontology.Warning{},
		ClassValid:      map[string]bool{},
		PropertiesValid: map[string]bool{},
	}

	for _, r := range records {
		if r.Type == "warning" {
			continue
		}
		class := r.ClassName()
		if class == "" {
			continue
		}

		_, classKnown := s.LookupClass(class)
		result.ClassValid[class] = classKnown
		if !classKnown {
			result.Errors = append(result.Errors, SchemaIssue{
				Field:     class,
				ErrorType: ErrUnknownClass,
				Message:   fmt.Sprintf("Class '%s' not found in ontology", class),
			})
		}

		names := r.Properties
		if r.Property != "" {
			names = append(append([]string(nil), names...), r.Property)
		}
		for _, name := range names {
			_, info, ok := s.LookupProperty(name)
			result.PropertiesValid[name] = ok
			if !ok {
				result.Errors = append(result.Errors, SchemaIssue{
					Field:     name,
					ErrorType: ErrUnknownProperty,
					Message:   fmt.Sprintf("Property '%s' not found in ontology", name),
				})
				continue
			}
			if classKnown && !info.Domain.IsZero() && !info.Domain.MentionsText(class) {
				result.Warnings = append(result.Warnings, ontology.Warning{
					Type:    WarnDomainMismatch,
					Field:   name,
					Message: fmt.Sprintf("Property '%s' has domain '%s', but applied to '%s'", name, info.Domain, class),
				})
			}
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}
