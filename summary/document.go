package summary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/c360studio/semonto/ontology"
)

// Decode reads a Summary document. Documents with null fields are accepted.
func Decode(r io.Reader) (*ontology.Summary, error) {
	var s ontology.Summary
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return &s, nil
}

// Load reads a Summary document from path.
func Load(path string) (*ontology.Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ontology.NewParseError(path, fmt.Errorf("read summary file: %w", err))
	}
	s, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ontology.NewParseError(path, err)
	}
	return s, nil
}

// Write encodes s as indented JSON followed by a newline.
func Write(w io.Writer, s *ontology.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}

// Save writes s to path, creating parent directories.
func Save(path string, s *ontology.Summary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create summary directory: %w", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, s); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write summary file: %w", err)
	}
	return nil
}
