package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/c360studio/semonto/ontology"
)

// Registry file name suffixes used by discovery.
const (
	SummarySuffix     = "_summary.json"
	MappingsSuffix    = "_mappings"
	ConstraintsSuffix = "_constraints"
)

// RegistryEntry locates the files of one registered ontology. Paths are
// absolute or relative to the working directory once loaded.
type RegistryEntry struct {
	Name            string `yaml:"-" json:"name"`
	SummaryFile     string `yaml:"summary_file" json:"summary_file"`
	MappingsFile    string `yaml:"mappings_file,omitempty" json:"mappings_file,omitempty"`
	ConstraintsFile string `yaml:"constraints_file,omitempty" json:"constraints_file,omitempty"`
	// Source is the OWL locator the summary was built from.
	Source string `yaml:"source,omitempty" json:"source,omitempty"`
}

// Mappings loads the entry's mapping config, or the defaults when it has none.
func (e *RegistryEntry) Mappings() (*MappingConfig, error) {
	return LoadMappingConfig(e.MappingsFile)
}

// Constraints loads the entry's constraints, or none when it has none.
func (e *RegistryEntry) Constraints() (Constraints, error) {
	return LoadConstraints(e.ConstraintsFile)
}

// Registry maps ontology names to their files. Names compare
// case-insensitively.
type Registry struct {
	entries map[string]*RegistryEntry
}

// NewRegistry builds a registry from entries keyed by name.
func NewRegistry(entries map[string]RegistryEntry) *Registry {
	r := &Registry{entries: make(map[string]*RegistryEntry, len(entries))}
	for name, e := range entries {
		e.Name = strings.ToLower(name)
		r.entries[e.Name] = &e
	}
	return r
}

// OpenRegistry loads the configured registry file, or discovers entries
// under the search directory when no file is configured.
func OpenRegistry(cfg RegistryConfig, logger *slog.Logger) (*Registry, error) {
	if cfg.Path != "" {
		return LoadRegistry(cfg.Path, logger)
	}
	return DiscoverRegistry(cfg.SearchDir, logger)
}

// LoadRegistry reads a registry file (YAML or JSON) mapping names to entries.
// Relative paths resolve against the registry's directory. An entry without
// a constraints file picks up a sibling <name>_constraints.json.
func LoadRegistry(path string, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ontology.Invalidf("ontology registry not found at %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	raw := map[string]RegistryEntry{}
	if err := decodeDocument(data, &raw); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for name, e := range raw {
		e.SummaryFile = resolveAgainst(dir, e.SummaryFile)
		e.MappingsFile = resolveAgainst(dir, e.MappingsFile)
		e.ConstraintsFile = resolveAgainst(dir, e.ConstraintsFile)
		if e.ConstraintsFile == "" {
			candidate := filepath.Join(dir, strings.ToLower(name)+ConstraintsSuffix+".json")
			if _, err := os.Stat(candidate); err == nil {
				e.ConstraintsFile = candidate
			}
		}
		raw[name] = e
	}

	r := NewRegistry(raw)
	logger.Debug("Loaded ontology registry", slog.String("path", path), slog.Int("entries", len(r.entries)))
	return r, nil
}

// DiscoverRegistry builds a registry from every *_summary.json under dir,
// pairing each with sibling <name>_mappings.* and <name>_constraints.* files.
func DiscoverRegistry(dir string, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir == "" {
		dir = "."
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(dir, "**", "*"+SummarySuffix))
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}

	entries := map[string]RegistryEntry{}
	for _, match := range matches {
		base := filepath.Base(match)
		name := strings.TrimSuffix(base, SummarySuffix)
		if name == "" {
			continue
		}
		siblingDir := filepath.Dir(match)
		entry := RegistryEntry{
			SummaryFile:     match,
			MappingsFile:    firstSibling(siblingDir, name+MappingsSuffix),
			ConstraintsFile: firstSibling(siblingDir, name+ConstraintsSuffix),
		}
		if prev, dup := entries[strings.ToLower(name)]; dup {
			logger.Warn("Duplicate ontology summary, keeping first",
				slog.String("name", name),
				slog.String("kept", prev.SummaryFile),
				slog.String("ignored", match))
			continue
		}
		entries[strings.ToLower(name)] = entry
	}

	r := NewRegistry(entries)
	logger.Debug("Discovered ontology registry", slog.String("dir", dir), slog.Int("entries", len(r.entries)))
	return r, nil
}

// Lookup returns the entry registered under name, case-insensitively.
func (r *Registry) Lookup(name string) (*RegistryEntry, error) {
	if e, ok := r.entries[strings.ToLower(name)]; ok {
		return e, nil
	}
	return nil, ontology.NewNotFoundError("Ontology", name, r.Names())
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries returns all entries sorted by name.
func (r *Registry) Entries() []RegistryEntry {
	out := make([]RegistryEntry, 0, len(r.entries))
	for _, name := range r.Names() {
		out = append(out, *r.entries[name])
	}
	return out
}

func resolveAgainst(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func firstSibling(dir, stem string) string {
	matches, err := doublestar.FilepathGlob(filepath.Join(dir, stem+".{json,yaml,yml}"))
	if err != nil || len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	return matches[0]
}
