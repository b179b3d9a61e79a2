// Package summary builds the label-indexed ontology Summary from a parsed
// OWL document and reads and writes Summary documents.
package summary

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/c360studio/semonto/ontology"
	"github.com/c360studio/semonto/source"
	"github.com/c360studio/semonto/source/owl"
	"github.com/c360studio/semonto/vocabulary/rdf"
)

// Builder resolves a parsed document into a Summary.
type Builder struct {
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithClock sets the source of the generation timestamp.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBuilder creates a builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build resolves doc into a Summary with a default builder.
func Build(doc *owl.Document, locator string, opts ...Option) *ontology.Summary {
	return NewBuilder(opts...).Build(doc, locator)
}

// FromSource fetches, parses and summarizes the ontology at locator.
func FromSource(ctx context.Context, fetcher owl.Fetcher, locator string, opts ...Option) (*ontology.Summary, error) {
	b := NewBuilder(opts...)
	doc, err := owl.NewParser(b.logger).ParseSource(ctx, fetcher, locator)
	if err != nil {
		return nil, err
	}
	return b.Build(doc, locator), nil
}

// Build resolves doc into a Summary. Local names are resolved to labels in
// two stages: an index is built from every class first, then parents,
// children and property domains and ranges are resolved through it.
func (b *Builder) Build(doc *owl.Document, locator string) *ontology.Summary {
	index := make(map[string]string, len(doc.Classes))
	for _, c := range doc.Classes {
		index[rdf.LocalName(c.IRI)] = c.Label
	}
	resolve := func(local string) string {
		if label, ok := index[local]; ok {
			return label
		}
		return local
	}

	classes := make(map[string]*ontology.ClassInfo, len(doc.Classes))
	for _, c := range doc.Classes {
		if prev, dup := classes[c.Label]; dup {
			b.logger.Debug("Duplicate class label, later declaration wins",
				slog.String("label", c.Label),
				slog.String("previous_iri", prev.IRI),
				slog.String("iri", c.IRI))
		}
		info := &ontology.ClassInfo{
			IRI:         c.IRI,
			Description: c.Description,
			Children:    []string{},
		}
		if c.Parent != "" {
			info.Parent = resolve(c.Parent)
		}
		classes[c.Label] = info
	}

	for label, info := range classes {
		if info.Parent == "" || info.Parent == label {
			continue
		}
		if parent, ok := classes[info.Parent]; ok {
			parent.Children = append(parent.Children, label)
		}
	}
	for _, info := range classes {
		sort.Strings(info.Children)
		info.Children = dedupeSorted(info.Children)
	}

	s := &ontology.Summary{
		Metadata: ontology.Metadata{
			IRI:         doc.Metadata.IRI,
			Title:       doc.Metadata.Title,
			Version:     doc.Metadata.Version,
			Description: doc.Metadata.Description,
			Source:      locator,
			GeneratedAt: b.now().UTC(),
		},
		Classes:          classes,
		ObjectProperties: b.properties(doc.ObjectProperties, resolve),
		DataProperties:   b.properties(doc.DataProperties, resolve),
	}
	if source.IsURL(locator) {
		s.Metadata.SourceURL = locator
	}
	s.ClassHierarchy = Hierarchy(classes)
	s.Statistics = ontology.Statistics{
		NumClasses:          len(s.Classes),
		NumObjectProperties: len(s.ObjectProperties),
		NumDataProperties:   len(s.DataProperties),
	}

	b.logger.Info("Built ontology summary",
		slog.String("source", locator),
		slog.Int("classes", s.Statistics.NumClasses),
		slog.Int("object_properties", s.Statistics.NumObjectProperties),
		slog.Int("data_properties", s.Statistics.NumDataProperties))
	return s
}

func (b *Builder) properties(raw []owl.RawProperty, resolve func(string) string) map[string]*ontology.PropertyInfo {
	out := make(map[string]*ontology.PropertyInfo, len(raw))
	for _, p := range raw {
		if _, dup := out[p.Label]; dup {
			b.logger.Debug("Duplicate property label, later declaration wins",
				slog.String("label", p.Label),
				slog.String("kind", string(p.Kind)))
		}
		out[p.Label] = &ontology.PropertyInfo{
			Kind:        p.Kind,
			IRI:         p.IRI,
			Domain:      p.Domain.Map(resolve),
			Range:       p.Range.Map(resolve),
			RangeType:   p.RangeType,
			Description: p.Description,
		}
	}
	return out
}

// Hierarchy nests classes under their parents, roots first. Classes whose
// parent is absent from the table appear nowhere in the tree.
func Hierarchy(classes map[string]*ontology.ClassInfo) ontology.Hierarchy {
	childrenOf := map[string][]string{}
	for label, info := range classes {
		childrenOf[info.Parent] = append(childrenOf[info.Parent], label)
	}
	for _, kids := range childrenOf {
		sort.Strings(kids)
	}

	visited := map[string]bool{}
	var build func(label string) ontology.Hierarchy
	build = func(label string) ontology.Hierarchy {
		tree := ontology.Hierarchy{}
		for _, kid := range childrenOf[label] {
			if visited[kid] {
				continue
			}
			visited[kid] = true
			tree[kid] = build(kid)
		}
		return tree
	}
	return build("")
}

func dedupeSorted(in []string) []string {
	out := in[:0]
	for i, s := range in {
		if i == 0 || s != in[i-1] {
			out = append(out, s)
		}
	}
	return out
}
