package markup

import "encoding/json"

// jsonNode mirrors the svgson object shape the playground viewer reads.
type jsonNode struct {
	Name       string            `json:"name"`
	Type       string            `json:"type"`
	Value      string            `json:"value"`
	Attributes map[string]string `json:"attributes"`
	Children   []jsonNode        `json:"children"`
}

// MarshalJSON encodes a tree in svgson's object form:
// {name, type: "element"|"text", value, attributes, children}.
// Attribute values are stringified as they would be in the XML output.
func MarshalJSON(n *Node) ([]byte, error) {
	return json.MarshalIndent(toJSON(n), "", "  ")
}

func toJSON(n *Node) jsonNode {
	if n.Kind == KindText {
		return jsonNode{Type: "text", Value: n.Text, Attributes: map[string]string{}, Children: []jsonNode{}}
	}
	jn := jsonNode{
		Name:       n.Name,
		Type:       "element",
		Attributes: make(map[string]string, len(n.Attrs)),
		Children:   make([]jsonNode, 0, len(n.Children)),
	}
	for _, a := range n.Attrs {
		jn.Attributes[a.Name] = FormatValue(a.Value)
	}
	for _, c := range n.Children {
		jn.Children = append(jn.Children, toJSON(c))
	}
	return jn
}
