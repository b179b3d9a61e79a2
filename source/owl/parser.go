package owl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"

	"github.com/c360studio/semonto/ontology"
	"github.com/c360studio/semonto/source"
	"github.com/c360studio/semonto/vocabulary/rdf"
)

var markupRe = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9]*(\s[^<>]*)?/?>`)

// Metadata is the ontology header as declared in the document.
type Metadata struct {
	IRI         string `json:"iri"`
	Version     string `json:"version"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// RawClass is a class as declared, before cross-references are resolved.
type RawClass struct {
	IRI   string
	Label string
	// Parent is the local name of the first declared superclass, with OWL
	// built-ins dropped.
	Parent      string
	Description string
}

// RawProperty is an object or data property as declared. Domain and Range
// members are IRI local names.
type RawProperty struct {
	Kind        ontology.PropertyKind
	IRI         string
	Label       string
	Domain      ontology.ClassExpr
	Range       ontology.ClassExpr
	RangeType   string
	Description string
}

// Document is the parse result of one OWL/XML source.
type Document struct {
	Metadata         Metadata      `json:"metadata"`
	Classes          []RawClass    `json:"classes"`
	ObjectProperties []RawProperty `json:"object_properties"`
	DataProperties   []RawProperty `json:"data_properties"`
	Imports          []string      `json:"imports"`
}

// Fetcher reads a source document by locator.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) (*source.Document, error)
}

// Parser extracts classes and properties from OWL/XML.
type Parser struct {
	logger    *slog.Logger
	converter *md.Converter
	terms     terms
}

// terms are the RDF properties the structural summary predicates are read
// from.
type terms struct {
	parent  string
	domain  string
	rng     string
	version string
	imports string
}

func registeredTerms() terms {
	return terms{
		parent:  rdf.SourceIRI(rdf.ClassParent),
		domain:  rdf.SourceIRI(rdf.PropertyDomain),
		rng:     rdf.SourceIRI(rdf.PropertyRange),
		version: rdf.SourceIRI(rdf.OntologyVersion),
		imports: rdf.SourceIRI(rdf.OntologyImports),
	}
}

// NewParser creates a parser. A nil logger uses slog.Default(). The
// structural properties are resolved from the predicate vocabulary once,
// here.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	return &Parser{logger: logger, converter: converter, terms: registeredTerms()}
}

// Parse reads an OWL/XML document with a default parser.
func Parse(locator string, r io.Reader) (*Document, error) {
	return NewParser(nil).Parse(locator, r)
}

// ParseSource fetches locator and parses it with a default parser.
func ParseSource(ctx context.Context, fetcher Fetcher, locator string) (*Document, error) {
	return NewParser(nil).ParseSource(ctx, fetcher, locator)
}

// ParseSource fetches locator and parses it.
func (p *Parser) ParseSource(ctx context.Context, fetcher Fetcher, locator string) (*Document, error) {
	src, err := fetcher.Fetch(ctx, locator)
	if err != nil {
		return nil, err
	}
	return p.Parse(locator, bytes.NewReader(src.Body))
}

// Parse reads an OWL/XML document. Failures are returned as
// *ontology.ParseError; no partial document is returned.
func (p *Parser) Parse(locator string, r io.Reader) (*Document, error) {
	root, err := decodeTree(r)
	if err != nil {
		return nil, ontology.NewParseError(locator, err)
	}
	if root.iri != rdf.RDFRoot {
		return nil, ontology.NewParseError(locator, errors.New("root element is not rdf:RDF"))
	}

	doc := &Document{
		Classes:          []RawClass{},
		ObjectProperties: []RawProperty{},
		DataProperties:   []RawProperty{},
		Imports:          []string{},
	}

	if ont := root.find(rdf.OWLOntology); ont != nil {
		doc.Metadata = Metadata{
			IRI:         ont.attr(rdf.RDFAbout),
			Version:     ont.firstText(p.terms.version),
			Title:       ont.firstText(rdf.TitleIRIs...),
			Description: p.normalize(ont.firstText(rdf.OntologyDescriptionIRIs...)),
		}
		for _, imp := range ont.findAll(p.terms.imports) {
			if res := imp.attr(rdf.RDFResource); res != "" {
				doc.Imports = append(doc.Imports, res)
			}
		}
	}

	for _, el := range root.children {
		iri := el.attr(rdf.RDFAbout)
		if iri == "" {
			continue
		}
		switch el.iri {
		case rdf.OWLClass:
			doc.Classes = append(doc.Classes, p.class(el, iri))
		case rdf.OWLObjectProperty:
			doc.ObjectProperties = append(doc.ObjectProperties, p.property(el, iri, ontology.KindObject))
		case rdf.OWLDatatypeProperty:
			doc.DataProperties = append(doc.DataProperties, p.property(el, iri, ontology.KindData))
		}
	}

	p.logger.Debug("Parsed OWL document",
		slog.String("source", locator),
		slog.Int("classes", len(doc.Classes)),
		slog.Int("object_properties", len(doc.ObjectProperties)),
		slog.Int("data_properties", len(doc.DataProperties)))

	return doc, nil
}

func (p *Parser) class(el *element, iri string) RawClass {
	c := RawClass{
		IRI:         iri,
		Label:       label(el, iri),
		Description: p.description(el),
	}
	for _, sub := range el.findAll(p.terms.parent) {
		if res := sub.attr(rdf.RDFResource); res != "" {
			if parent := rdf.LocalName(res); !rdf.IsBuiltinParent(parent) {
				c.Parent = parent
			}
			break
		}
	}
	return c
}

func (p *Parser) property(el *element, iri string, kind ontology.PropertyKind) RawProperty {
	prop := RawProperty{
		Kind:        kind,
		IRI:         iri,
		Label:       label(el, iri),
		Domain:      classExpr(el.find(p.terms.domain)),
		Description: p.description(el),
	}
	rng := classExpr(el.find(p.terms.rng))
	if kind == ontology.KindData {
		prop.RangeType = rng.String()
	} else {
		prop.Range = rng
	}
	return prop
}

func label(el *element, iri string) string {
	if l := el.firstText(rdf.LabelIRIs...); l != "" {
		return l
	}
	return rdf.LocalName(iri)
}

func (p *Parser) description(el *element) string {
	if d := el.firstText(rdf.DescriptionIRIs...); d != "" {
		return p.normalize(d)
	}
	for _, ann := range el.findAll(rdf.OWLAnnotation) {
		prop := ann.find(rdf.OWLAnnotationProperty)
		if prop == nil || prop.attr(rdf.RDFResource) != rdf.IAODefinition {
			continue
		}
		if lit := ann.find(rdf.OWLLiteral); lit != nil && lit.value() != "" {
			return p.normalize(lit.value())
		}
	}
	return ""
}

// classExpr reads a domain or range element: a direct resource, or an
// anonymous owl:Class holding an owl:unionOf list.
func classExpr(el *element) ontology.ClassExpr {
	if el == nil {
		return ontology.ClassExpr{}
	}
	if res := el.attr(rdf.RDFResource); res != "" {
		return ontology.Single(rdf.LocalName(res))
	}
	cls := el.find(rdf.OWLClass)
	if cls == nil {
		return ontology.ClassExpr{}
	}
	union := cls.find(rdf.OWLUnionOf)
	if union == nil {
		return ontology.ClassExpr{}
	}
	var members []string
	for _, m := range union.children {
		switch m.iri {
		case rdf.RDFDescription, rdf.RDFS + "Description", rdf.OWLClass:
			if about := m.attr(rdf.RDFAbout); about != "" {
				members = append(members, rdf.LocalName(about))
			}
		}
	}
	return ontology.Union(members...)
}

// normalize converts HTML markup in annotation text to Markdown.
func (p *Parser) normalize(text string) string {
	if !markupRe.MatchString(text) {
		return text
	}
	converted, err := p.converter.ConvertString(text)
	if err != nil {
		p.logger.Debug("Keeping raw annotation markup", slog.String("error", err.Error()))
		return text
	}
	return strings.TrimSpace(converted)
}

// MarshalJSON writes an empty parent or description as null.
func (c RawClass) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		IRI         string  `json:"iri"`
		Label       string  `json:"label"`
		Parent      *string `json:"parent"`
		Description *string `json:"description"`
	}{c.IRI, c.Label, nullable(c.Parent), nullable(c.Description)})
}

// MarshalJSON writes "range" for object properties and "range_type" for
// data properties.
func (rp RawProperty) MarshalJSON() ([]byte, error) {
	if rp.Kind == ontology.KindData {
		return json.Marshal(struct {
			IRI         string             `json:"iri"`
			Label       string             `json:"label"`
			Domain      ontology.ClassExpr `json:"domain"`
			RangeType   *string            `json:"range_type"`
			Description *string            `json:"description"`
		}{rp.IRI, rp.Label, rp.Domain, nullable(rp.RangeType), nullable(rp.Description)})
	}
	return json.Marshal(struct {
		IRI         string             `json:"iri"`
		Label       string             `json:"label"`
		Domain      ontology.ClassExpr `json:"domain"`
		Range       ontology.ClassExpr `json:"range"`
		Description *string            `json:"description"`
	}{rp.IRI, rp.Label, rp.Domain, rp.Range, nullable(rp.Description)})
}

// Hierarchy nests raw class labels under their declared parent local names,
// roots first. Classes whose parent is declared but absent are omitted.
func (d *Document) Hierarchy() ontology.Hierarchy {
	children := map[string][]string{}
	for _, c := range d.Classes {
		children[c.Parent] = append(children[c.Parent], c.Label)
	}
	var build func(label string, seen map[string]bool) ontology.Hierarchy
	build = func(label string, seen map[string]bool) ontology.Hierarchy {
		tree := ontology.Hierarchy{}
		for _, kid := range children[label] {
			if seen[kid] {
				continue
			}
			seen[kid] = true
			tree[kid] = build(kid, seen)
			delete(seen, kid)
		}
		return tree
	}
	return build("", map[string]bool{})
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
