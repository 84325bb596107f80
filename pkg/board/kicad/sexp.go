package kicad

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/OpenTraceLab/OpenTraceLength/pkg/geom"
)

var sexpLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Symbol", Pattern: `[^\s()"]+`},
})

// Document is a parsed s-expression file.
type Document struct {
	Nodes []*Node `@@*`
}

// Node is either an atom or a parenthesised list.
type Node struct {
	Atom *string `  @(String | Symbol)`
	List *List   `| @@`
}

// List holds the items between a pair of parentheses.
type List struct {
	Items []*Node `"(" @@* ")"`
}

var sexpParser = participle.MustBuild[Document](
	participle.Lexer(sexpLexer),
	participle.Elide("Whitespace"),
)

// parseSexp reads every top-level expression from r.
func parseSexp(name string, r io.Reader) ([]*Node, error) {
	doc, err := sexpParser.Parse(name, r)
	if err != nil {
		return nil, err
	}
	return doc.Nodes, nil
}

// IsLeaf reports whether n is an atom.
func (n *Node) IsLeaf() bool {
	return n.List == nil
}

func (n *Node) items() []*Node {
	if n == nil || n.List == nil {
		return nil
	}
	return n.List.Items
}

// unquote strips the surrounding quotes of a string atom.
func unquote(s string) string {
	if len(s) < 2 || s[0] != '"' {
		return s
	}
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	return strings.Trim(s, `"`)
}

// getNodeName returns the head symbol of a list, e.g. "segment".
func getNodeName(n *Node) (string, error) {
	items := n.items()
	if len(items) == 0 || !items[0].IsLeaf() {
		return "", fmt.Errorf("expected list with a name")
	}
	return unquote(*items[0].Atom), nil
}

// findNode returns the first child list whose name is key.
func findNode(n *Node, key string) (*Node, bool) {
	for _, item := range n.items() {
		if name, err := getNodeName(item); err == nil && name == key {
			return item, true
		}
	}
	return nil, false
}

// findAllNodes returns every child list whose name is key.
func findAllNodes(n *Node, key string) []*Node {
	var out []*Node
	for _, item := range n.items() {
		if name, err := getNodeName(item); err == nil && name == key {
			out = append(out, item)
		}
	}
	return out
}

// getString returns the atom at index, unquoted.
func getString(n *Node, index int) (string, error) {
	items := n.items()
	if index >= len(items) {
		return "", fmt.Errorf("index %d out of range", index)
	}
	if !items[index].IsLeaf() {
		return "", fmt.Errorf("expected atom at index %d", index)
	}
	return unquote(*items[index].Atom), nil
}

// getStrings returns every atom after the name.
func getStrings(n *Node) []string {
	var out []string
	for i, item := range n.items() {
		if i == 0 || !item.IsLeaf() {
			continue
		}
		out = append(out, unquote(*item.Atom))
	}
	return out
}

func getFloat(n *Node, index int) (float64, error) {
	s, err := getString(n, index)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}

// getFirstFloat returns the first numeric atom after the name. Used for
// fields like (drill oval 1.0 1.5).
func getFirstFloat(n *Node) (float64, bool) {
	for _, s := range getStrings(n) {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

// getPoint reads (key x y) and converts millimetres to mils.
func getPoint(n *Node, key string) (geom.Point, error) {
	pn, found := findNode(n, key)
	if !found {
		return geom.Point{}, fmt.Errorf("missing required '%s' position", key)
	}
	x, err := getFloat(pn, 1)
	if err != nil {
		return geom.Point{}, fmt.Errorf("failed to parse %s X: %w", key, err)
	}
	y, err := getFloat(pn, 2)
	if err != nil {
		return geom.Point{}, fmt.Errorf("failed to parse %s Y: %w", key, err)
	}
	return geom.Pt(geom.MillimetersToMils(x), geom.MillimetersToMils(y)), nil
}

// getAngle reads the optional third value of an (at x y angle) node.
func getAngle(n *Node) float64 {
	at, found := findNode(n, "at")
	if !found {
		return 0
	}
	angle, err := getFloat(at, 3)
	if err != nil {
		return 0
	}
	return angle
}

// getLength reads (key v) in millimetres and returns mils.
func getLength(n *Node, key string) (float64, bool, error) {
	ln, found := findNode(n, key)
	if !found {
		return 0, false, nil
	}
	v, err := getFloat(ln, 1)
	if err != nil {
		return 0, true, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return geom.MillimetersToMils(v), true, nil
}
