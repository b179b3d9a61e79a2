package owl

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// element is one node of the decoded XML tree. Names and attribute keys are
// expanded to namespace IRI plus local name.
type element struct {
	iri      string
	attrs    map[string]string
	children []*element
	text     strings.Builder
}

func expand(name xml.Name) string {
	return name.Space + name.Local
}

// decodeTree reads a whole XML document into an element tree. Declared
// non-UTF-8 encodings are transcoded.
func decodeTree(r io.Reader) (*element, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var (
		root  *element
		stack []*element
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{iri: expand(t.Name), attrs: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				el.attrs[expand(a.Name)] = a.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("decode xml: multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			// Only text that precedes the first child counts, as for
			// mixed-content annotation literals.
			if len(stack) > 0 {
				if top := stack[len(stack)-1]; len(top.children) == 0 {
					top.text.Write(t)
				}
			}
		}
	}
	if root == nil {
		return nil, errors.New("decode xml: empty document")
	}
	return root, nil
}

// attr returns the attribute with the given expanded name.
func (e *element) attr(iri string) string {
	return e.attrs[iri]
}

// value returns the trimmed text content.
func (e *element) value() string {
	return strings.TrimSpace(e.text.String())
}

// find returns the first child with the given expanded name.
func (e *element) find(iri string) *element {
	for _, c := range e.children {
		if c.iri == iri {
			return c
		}
	}
	return nil
}

// findAll returns every child with the given expanded name.
func (e *element) findAll(iri string) []*element {
	var out []*element
	for _, c := range e.children {
		if c.iri == iri {
			out = append(out, c)
		}
	}
	return out
}

// firstText returns the first non-empty text among children named by iris,
// trying each name in order.
func (e *element) firstText(iris ...string) string {
	for _, iri := range iris {
		for _, c := range e.findAll(iri) {
			if v := c.value(); v != "" {
				return v
			}
		}
	}
	return ""
}
