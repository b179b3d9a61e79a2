package ontology

import (
	"sort"
	"strings"
)

// ClassNames returns all class labels, sorted.
func (s *Summary) ClassNames() []string {
	names := make([]string, 0, len(s.Classes))
	for name := range s.Classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PropertyNames returns all object and data property labels, sorted.
func (s *Summary) PropertyNames() []string {
	names := make([]string, 0, len(s.ObjectProperties)+len(s.DataProperties))
	for name := range s.ObjectProperties {
		names = append(names, name)
	}
	for name := range s.DataProperties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupClass resolves a class name exactly, then case-insensitively.
func (s *Summary) LookupClass(name string) (string, bool) {
	if _, ok := s.Classes[name]; ok {
		return name, true
	}
	for _, label := range s.ClassNames() {
		if strings.EqualFold(label, name) {
			return label, true
		}
	}
	return "", false
}

// ResolveClass extends LookupClass with a whitespace-insensitive pass.
func (s *Summary) ResolveClass(name string) (string, bool) {
	if label, ok := s.LookupClass(name); ok {
		return label, true
	}
	compact := strings.ToLower(strings.Join(strings.Fields(name), ""))
	if compact == "" {
		return "", false
	}
	for _, label := range s.ClassNames() {
		if strings.ToLower(strings.Join(strings.Fields(label), "")) == compact {
			return label, true
		}
	}
	return "", false
}

// LookupProperty resolves a property name exactly, then case-insensitively,
// searching object properties before data properties.
func (s *Summary) LookupProperty(name string) (string, *PropertyInfo, bool) {
	if p, ok := s.ObjectProperties[name]; ok {
		return name, p, true
	}
	if p, ok := s.DataProperties[name]; ok {
		return name, p, true
	}
	for _, table := range []map[string]*PropertyInfo{s.ObjectProperties, s.DataProperties} {
		for _, label := range SortedKeys(table) {
			if strings.EqualFold(label, name) {
				return label, table[label], true
			}
		}
	}
	return "", nil, false
}

// LookupObjectProperty resolves an object property case-insensitively.
func (s *Summary) LookupObjectProperty(name string) (string, *PropertyInfo, bool) {
	if p, ok := s.ObjectProperties[name]; ok {
		return name, p, true
	}
	for _, label := range SortedKeys(s.ObjectProperties) {
		if strings.EqualFold(label, name) {
			return label, s.ObjectProperties[label], true
		}
	}
	return "", nil, false
}

// PropertiesForClass returns the properties whose domain includes label,
// restricted to kind unless kind is empty, sorted by (type, name).
func (s *Summary) PropertiesForClass(label string, kind PropertyKind) []PropertyRef {
	var refs []PropertyRef
	if kind == "" || kind == KindObject {
		for _, name := range SortedKeys(s.ObjectProperties) {
			if p := s.ObjectProperties[name]; p.Domain.Includes(label) {
				refs = append(refs, p.Ref(name))
			}
		}
	}
	if kind == "" || kind == KindData {
		for _, name := range SortedKeys(s.DataProperties) {
			if p := s.DataProperties[name]; p.Domain.Includes(label) {
				refs = append(refs, p.Ref(name))
			}
		}
	}
	SortRefs(refs)
	return refs
}

// SortRefs orders property refs by (type, name).
func SortRefs(refs []PropertyRef) {
	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].Type != refs[j].Type {
			return refs[i].Type < refs[j].Type
		}
		return refs[i].Name < refs[j].Name
	})
}

// Roots returns the classes without a parent, sorted.
func (s *Summary) Roots() []string {
	var roots []string
	for name, info := range s.Classes {
		if info.Parent == "" {
			roots = append(roots, name)
		}
	}
	sort.Strings(roots)
	return roots
}

// PathToRoot returns the ancestors of label followed by label itself,
// root first. A repeated ancestor stops the walk.
func (s *Summary) PathToRoot(label string) []string {
	path := []string{label}
	seen := map[string]bool{label: true}
	current := label
	for {
		info, ok := s.Classes[current]
		if !ok || info.Parent == "" || seen[info.Parent] {
			break
		}
		seen[info.Parent] = true
		path = append(path, info.Parent)
		current = info.Parent
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Subtree expands the children of label down to depth levels. A negative
// depth is unbounded; depth 0 yields an empty tree.
func (s *Summary) Subtree(label string, depth int) Hierarchy {
	return s.subtree(label, depth, 0, map[string]bool{label: true})
}

func (s *Summary) subtree(label string, depth, level int, onPath map[string]bool) Hierarchy {
	tree := Hierarchy{}
	if depth >= 0 && level >= depth {
		return tree
	}
	info, ok := s.Classes[label]
	if !ok {
		return tree
	}
	for _, child := range info.Children {
		if onPath[child] {
			continue
		}
		onPath[child] = true
		tree[child] = s.subtree(child, depth, level+1, onPath)
		delete(onPath, child)
	}
	return tree
}

// IsSubclassOf reports whether child equals ancestor or reaches it through
// declared parents. Names compare case-insensitively.
func (s *Summary) IsSubclassOf(child, ancestor string) bool {
	if strings.EqualFold(child, ancestor) {
		return true
	}
	current := child
	if label, ok := s.LookupClass(child); ok {
		current = label
	}
	seen := map[string]bool{}
	for {
		info, ok := s.Classes[current]
		if !ok || seen[current] {
			return false
		}
		seen[current] = true
		if info.Parent == "" {
			return false
		}
		if strings.EqualFold(info.Parent, ancestor) {
			return true
		}
		current = info.Parent
	}
}

// IRIOf returns the IRI of a class or property label, or "".
func (s *Summary) IRIOf(label string) string {
	if c, ok := s.Classes[label]; ok {
		return c.IRI
	}
	if p, ok := s.ObjectProperties[label]; ok {
		return p.IRI
	}
	if p, ok := s.DataProperties[label]; ok {
		return p.IRI
	}
	return ""
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
