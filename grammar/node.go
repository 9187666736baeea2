package grammar

import (
	"fmt"
	"strings"
)

// Node is one matched rule. Text is the exact matched span of the input.
type Node struct {
	Rule     Rule
	Pos      int
	Text     string
	Children []*Node
}

// Child returns the first direct child matching r, or nil.
func (n *Node) Child(r Rule) *Node {
	for _, c := range n.Children {
		if c.Rule == r {
			return c
		}
	}
	return nil
}

// All returns every direct child matching r.
func (n *Node) All(r Rule) []*Node {
	var nodes []*Node
	for _, c := range n.Children {
		if c.Rule == r {
			nodes = append(nodes, c)
		}
	}
	return nodes
}

// Find returns the first descendant matching r in depth first order.
func (n *Node) Find(r Rule) *Node {
	for _, c := range n.Children {
		if c.Rule == r {
			return c
		}
		if f := c.Find(r); f != nil {
			return f
		}
	}
	return nil
}

func (n *Node) String() string {
	var b strings.Builder
	n.dump(&b, 0)
	return b.String()
}

func (n *Node) dump(b *strings.Builder, depth int) {
	fmt.Fprintf(b, "%s%s %q\n", strings.Repeat("  ", depth), n.Rule, n.Text)
	for _, c := range n.Children {
		c.dump(b, depth+1)
	}
}

// ParseError describes the farthest point the grammar reached before giving up.
type ParseError struct {
	Rule     Rule
	Pos      int
	Line     int
	Column   int
	Expected []string
	Near     string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s failed at line %d column %d (offset %d): expected %s near %q",
		e.Rule, e.Line, e.Column, e.Pos, strings.Join(e.Expected, " or "), e.Near)
}
