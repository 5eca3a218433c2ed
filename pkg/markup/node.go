// Package markup is the element tree shared by layout and serialization.
//
// A [Node] is either an element (name, ordered attributes, ordered children)
// or a text leaf. Layout code builds trees with [Element], [Text] and
// [Node.Append]; nothing mutates a tree after it has been handed on. The
// serializers in this package turn a tree into SVG/XML text ([Marshal]) or
// into the svgson-style JSON consumed by the playground viewer
// ([MarshalJSON]).
package markup

import "strconv"

// Kind distinguishes element nodes from text leaves.
type Kind int

const (
	KindElement Kind = iota
	KindText
)

// Attr is one attribute. Value is a string or a number (int, float64).
type Attr struct {
	Name  string
	Value any
}

// A builds an Attr.
func A(name string, value any) Attr { return Attr{Name: name, Value: value} }

// Node is an element or a text leaf.
type Node struct {
	Kind     Kind
	Name     string
	Attrs    []Attr
	Children []*Node
	Text     string // payload of KindText nodes
}

// Element returns an element node with the given attributes.
func Element(name string, attrs ...Attr) *Node {
	return &Node{Kind: KindElement, Name: name, Attrs: attrs}
}

// Text returns a text leaf.
func Text(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}

// Append adds children in order and returns n for chaining.
// Nil children are skipped.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (any, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

// AttrString returns the named attribute formatted as it would be serialized.
func (n *Node) AttrString(name string) string {
	v, ok := n.Attr(name)
	if !ok {
		return ""
	}
	return FormatValue(v)
}

// Float returns a numeric attribute value.
func (n *Node) Float(name string) (float64, bool) {
	v, ok := n.Attr(name)
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}

// Content concatenates the payloads of all text leaves below n.
func (n *Node) Content() string {
	if n.Kind == KindText {
		return n.Text
	}
	var s string
	for _, c := range n.Children {
		s += c.Content()
	}
	return s
}

// Elements returns the element children named name, in order.
func (n *Node) Elements(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == KindElement && c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Walk visits n and its descendants depth-first, parents before children.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// FormatValue renders an attribute value. Floats use the shortest
// representation that round-trips (124, 62.5, 95.75).
func FormatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return ""
	}
	return ""
}
