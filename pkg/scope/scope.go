// Package scope defines isolation scope paths and the markers that carry
// scope identifiers from virtual nodes into the live DOM.
package scope

import "strings"

const (
	// Attr is the element attribute listing the scope identifiers applied to
	// an element, innermost first, separated by spaces.
	Attr = "data-isolate"

	// ClassPrefix prefixes the namespace class derived from an identifier.
	ClassPrefix = "___"
)

// Class returns the namespace class for a scope identifier.
func Class(id string) string {
	return ClassPrefix + id
}

// Path is the ordered chain of scope identifiers from the render root to an
// isolation boundary. The empty path is the render root.
type Path []string

// Root is the path of the unscoped render root.
var Root = Path{}

// Child returns a new path extended by id. The receiver is not modified.
func (p Path) Child(id string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, id)
}

// Equal reports whether both paths hold the same identifiers in order.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is an ancestor of, or equal to, p.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	return p[:len(prefix)].Equal(prefix)
}

// Last returns the innermost identifier, or "" for the root path.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Depth returns the nesting depth.
func (p Path) Depth() int {
	return len(p)
}

// String renders the path as "/a/b", or "/" for the root.
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	return "/" + strings.Join(p, "/")
}

// Encode renders an innermost-first identifier list as an attribute value.
func Encode(ids []string) string {
	return strings.Join(ids, " ")
}

// Decode parses an attribute value written by Encode.
func Decode(v string) []string {
	return strings.Fields(v)
}
