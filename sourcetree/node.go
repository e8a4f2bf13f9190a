// Package sourcetree defines the syntax tree model shared by the parser,
// the pattern matchers, and the triple builders, together with the generic
// depth-first walker that drives all structural analysis.
//
// A tree is a strict rooted tree: no cycles, and the order of a composite
// node's children is significant and preserved by every traversal.
package sourcetree

import (
	"fmt"
	"strconv"
)

// Node is either a *Composite (tag, metadata, ordered children) or a *Leaf
// (atom, integer, float, string, boolean, or nil). Pattern matchers switch
// exhaustively over these two variants.
type Node interface {
	isNode()
}

// Composite is an interior tree node identified by its tag.
type Composite struct {
	Tag      string
	Meta     Metadata
	Children []Node
}

func (*Composite) isNode() {}

// LeafKind discriminates the primitive value carried by a Leaf.
type LeafKind int

const (
	LeafAtom LeafKind = iota
	LeafInteger
	LeafFloat
	LeafString
	LeafBoolean
	LeafNil
)

// String returns the kind name used in logs and error messages.
func (k LeafKind) String() string {
	switch k {
	case LeafAtom:
		return "atom"
	case LeafInteger:
		return "integer"
	case LeafFloat:
		return "float"
	case LeafString:
		return "string"
	case LeafBoolean:
		return "boolean"
	case LeafNil:
		return "nil"
	}
	return "unknown"
}

// Leaf is an atomic tree node. Only the field matching Kind is meaningful.
type Leaf struct {
	Kind  LeafKind
	Atom  string
	Int   int64
	Float float64
	Str   string
	Bool  bool
}

func (*Leaf) isNode() {}

// Text returns the leaf's value rendered as source-like text.
func (l *Leaf) Text() string {
	switch l.Kind {
	case LeafAtom:
		return l.Atom
	case LeafInteger:
		return strconv.FormatInt(l.Int, 10)
	case LeafFloat:
		return strconv.FormatFloat(l.Float, 'g', -1, 64)
	case LeafString:
		return l.Str
	case LeafBoolean:
		return strconv.FormatBool(l.Bool)
	case LeafNil:
		return "nil"
	}
	return ""
}

// Atom returns a new atom leaf.
func Atom(name string) *Leaf { return &Leaf{Kind: LeafAtom, Atom: name} }

// Integer returns a new integer leaf.
func Integer(v int64) *Leaf { return &Leaf{Kind: LeafInteger, Int: v} }

// Float returns a new float leaf.
func Float(v float64) *Leaf { return &Leaf{Kind: LeafFloat, Float: v} }

// String returns a new string leaf.
func String(s string) *Leaf { return &Leaf{Kind: LeafString, Str: s} }

// Boolean returns a new boolean leaf.
func Boolean(b bool) *Leaf { return &Leaf{Kind: LeafBoolean, Bool: b} }

// Nil returns a new nil leaf.
func Nil() *Leaf { return &Leaf{Kind: LeafNil} }

// NewComposite returns a composite node with the given tag and children.
func NewComposite(tag string, children ...Node) *Composite {
	return &Composite{Tag: tag, Children: children}
}

// Standard metadata keys. Every parser that records source positions uses
// these keys so that downstream consumers never depend on parser internals.
const (
	MetaLine      = "line"
	MetaColumn    = "column"
	MetaEndLine   = "end_line"
	MetaEndColumn = "end_column"
	MetaByteStart = "byte_start"
	MetaByteEnd   = "byte_end"

	// MetaOperator carries the operator token of an operator composite,
	// which some grammars expose only as an anonymous token.
	MetaOperator = "operator"
)

// Metadata is an insert-ordered string-keyed attribute map. Node metadata is
// always read from the node it was attached to; there is no implicit
// propagation between nodes.
type Metadata struct {
	pairs []metaPair
}

type metaPair struct {
	key   string
	value any
}

// Set stores a value under key, replacing an existing entry in place so that
// the original insertion order is kept.
func (m *Metadata) Set(key string, value any) {
	for i := range m.pairs {
		if m.pairs[i].key == key {
			m.pairs[i].value = value
			return
		}
	}
	m.pairs = append(m.pairs, metaPair{key: key, value: value})
}

// Get returns the value stored under key.
func (m *Metadata) Get(key string) (any, bool) {
	for i := range m.pairs {
		if m.pairs[i].key == key {
			return m.pairs[i].value, true
		}
	}
	return nil, false
}

// Len returns the number of stored attributes.
func (m *Metadata) Len() int { return len(m.pairs) }

// Keys returns the attribute keys in insertion order.
func (m *Metadata) Keys() []string {
	keys := make([]string, 0, len(m.pairs))
	for i := range m.pairs {
		keys = append(keys, m.pairs[i].key)
	}
	return keys
}

// Int returns the attribute under key coerced to int.
func (m *Metadata) Int(key string) (int, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint32:
		return int(n), true
	}
	return 0, false
}

// Str returns the attribute under key coerced to string.
func (m *Metadata) Str(key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Line returns the 1-based source line recorded on the node, if any.
func (m *Metadata) Line() (int, bool) { return m.Int(MetaLine) }

// Column returns the 1-based source column recorded on the node, if any.
func (m *Metadata) Column() (int, bool) { return m.Int(MetaColumn) }

// Describe renders a short human-readable form of a node for diagnostics.
func Describe(n Node) string {
	switch v := n.(type) {
	case *Composite:
		return fmt.Sprintf("composite(%s, %d children)", v.Tag, len(v.Children))
	case *Leaf:
		return fmt.Sprintf("leaf(%s, %s)", v.Kind, v.Text())
	}
	return "nil"
}
