package markup

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"unicode/utf8"
)

// Marshal serializes a tree as XML text. Attributes keep their order, text
// is escaped, and elements without children are self-closed.
func Marshal(n *Node) []byte {
	var buf bytes.Buffer
	writeNode(&buf, n, 0, false)
	return buf.Bytes()
}

// MarshalIndent is like Marshal but puts each element on its own line,
// indented by two spaces per level. Elements holding text, and every text
// element, stay on one line so no whitespace enters rendered content.
func MarshalIndent(n *Node) []byte {
	var buf bytes.Buffer
	writeNode(&buf, n, 0, true)
	return buf.Bytes()
}

// Encode writes the serialized tree to w.
func Encode(w io.Writer, n *Node, indent bool) error {
	var data []byte
	if indent {
		data = MarshalIndent(n)
	} else {
		data = Marshal(n)
	}
	_, err := w.Write(data)
	return err
}

func writeNode(buf *bytes.Buffer, n *Node, depth int, indent bool) {
	if n.Kind == KindText {
		escapeText(buf, n.Text)
		return
	}
	pad := ""
	if indent {
		pad = strings.Repeat("  ", depth)
	}
	buf.WriteString(pad)
	buf.WriteByte('<')
	buf.WriteString(n.Name)
	for _, a := range n.Attrs {
		buf.WriteByte(' ')
		buf.WriteString(a.Name)
		buf.WriteString(`="`)
		escapeAttr(buf, FormatValue(a.Value))
		buf.WriteByte('"')
	}
	if len(n.Children) == 0 {
		buf.WriteString("/>")
		if indent {
			buf.WriteByte('\n')
		}
		return
	}
	buf.WriteByte('>')

	inline := !indent || n.Name == "text" || hasText(n)
	if !inline {
		buf.WriteByte('\n')
	}
	for _, c := range n.Children {
		writeNode(buf, c, depth+1, !inline)
	}
	if !inline {
		buf.WriteString(pad)
	}
	buf.WriteString("</")
	buf.WriteString(n.Name)
	buf.WriteByte('>')
	if indent {
		buf.WriteByte('\n')
	}
}

func hasText(n *Node) bool {
	for _, c := range n.Children {
		if c.Kind == KindText {
			return true
		}
	}
	return false
}

// escapeText escapes markup characters and replaces invalid UTF-8 and runes
// outside the XML Char range with U+FFFD. Newlines and tabs are kept so
// stylesheet text stays readable.
func escapeText(buf *bytes.Buffer, s string) {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		switch {
		case r == utf8.RuneError && size == 1:
			buf.WriteRune(utf8.RuneError)
		case r == '&':
			buf.WriteString("&amp;")
		case r == '<':
			buf.WriteString("&lt;")
		case r == '>':
			buf.WriteString("&gt;")
		case !isXMLChar(r):
			buf.WriteRune(utf8.RuneError)
		default:
			buf.WriteRune(r)
		}
	}
}

// isXMLChar reports whether r is in the XML 1.0 Char production.
func isXMLChar(r rune) bool {
	return r == '\t' || r == '\n' || r == '\r' ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= utf8.MaxRune
}

func escapeAttr(buf *bytes.Buffer, s string) {
	xml.EscapeText(buf, []byte(s))
}
