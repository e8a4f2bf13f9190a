// Package parser turns Elixir source text into the generic tree the
// analyzer walks. It wraps the tree-sitter Elixir grammar: every named CST
// node becomes a Composite tagged with the grammar node type, terminals
// become typed leaves, and source positions ride along as node metadata.
package parser

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/elixir"

	"github.com/c360studio/semlix/sourcetree"
)

// Options configures tree construction.
type Options struct {
	// TrackColumns attaches column metadata in addition to lines.
	TrackColumns bool

	// TrackTokenMetadata attaches byte offsets and end positions, for
	// tooling that needs exact source spans.
	TrackTokenMetadata bool

	// EmitWarnings collects recoverable oddities seen during conversion,
	// retrievable from Warnings after a parse.
	EmitWarnings bool

	// SourceFile labels parse errors with a file path. It does not affect
	// the tree itself.
	SourceFile string
}

// Warning is a recoverable oddity noticed while converting the tree, such
// as a numeric literal that had to be kept as raw text.
type Warning struct {
	File    string
	Line    int
	Message string
}

// ParseError reports a syntax error with its source position.
type ParseError struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Parser parses Elixir source files. It is not safe for concurrent use;
// create one per goroutine.
type Parser struct {
	opts     Options
	ts       *sitter.Parser
	warnings []Warning
}

// New creates a parser with the given options.
func New(opts Options) *Parser {
	p := sitter.NewParser()
	p.SetLanguage(elixir.GetLanguage())
	return &Parser{opts: opts, ts: p}
}

// Parse parses source and returns the root of the converted tree. A file
// that fails to parse yields a *ParseError carrying the position of the
// first syntax error; no partial tree is returned.
func (p *Parser) Parse(ctx context.Context, source []byte) (sourcetree.Node, error) {
	p.warnings = nil

	tree, err := p.ts.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, p.errorAt(root, source)
	}

	return p.convert(root, source), nil
}

// Warnings returns the warnings collected by the most recent Parse. Empty
// unless EmitWarnings is set.
func (p *Parser) Warnings() []Warning {
	return p.warnings
}

func (p *Parser) warnf(node *sitter.Node, format string, args ...any) {
	if !p.opts.EmitWarnings {
		return
	}
	p.warnings = append(p.warnings, Warning{
		File:    p.opts.SourceFile,
		Line:    int(node.StartPoint().Row) + 1,
		Message: fmt.Sprintf(format, args...),
	})
}

// convert maps one CST node into the generic tree.
func (p *Parser) convert(node *sitter.Node, source []byte) sourcetree.Node {
	if leaf, ok := p.leaf(node, source); ok {
		return leaf
	}

	comp := &sourcetree.Composite{Tag: node.Type(), Meta: p.metadata(node)}
	// Operator tokens are anonymous in the grammar; surface them as
	// metadata so matchers can tell a `when` guard from other operators.
	if op := node.ChildByFieldName("operator"); op != nil {
		comp.Meta.Set(sourcetree.MetaOperator, op.Content(source))
	}
	count := int(node.NamedChildCount())
	for i := 0; i < count; i++ {
		comp.Children = append(comp.Children, p.convert(node.NamedChild(i), source))
	}
	return comp
}

// leaf converts terminal grammar nodes into typed leaves. Unrecognized
// node types fall through to Composite conversion.
func (p *Parser) leaf(node *sitter.Node, source []byte) (sourcetree.Node, bool) {
	text := node.Content(source)

	switch node.Type() {
	case "atom":
		return sourcetree.Atom(strings.TrimPrefix(text, ":")), true

	case "identifier", "operator_identifier":
		return sourcetree.Atom(text), true

	case "alias":
		// Aliases keep their dotted form; the analyzer splits segments.
		return sourcetree.Atom(text), true

	case "integer":
		v, err := strconv.ParseInt(strings.ReplaceAll(text, "_", ""), 0, 64)
		if err != nil {
			p.warnf(node, "integer literal %q kept as text: %v", text, err)
			return sourcetree.String(text), true
		}
		return sourcetree.Integer(v), true

	case "float":
		v, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
		if err != nil {
			p.warnf(node, "float literal %q kept as text: %v", text, err)
			return sourcetree.String(text), true
		}
		return sourcetree.Float(v), true

	case "boolean":
		return sourcetree.Boolean(text == "true"), true

	case "nil":
		return sourcetree.Nil(), true

	case "string":
		return sourcetree.String(stringContent(node, source)), true

	case "char", "charlist", "sigil":
		return sourcetree.String(text), true
	}

	return nil, false
}

// stringContent extracts the inner text of a string node. tree-sitter
// represents the quotes as anonymous tokens around a quoted_content child;
// interpolated strings have several children, concatenated verbatim here.
func stringContent(node *sitter.Node, source []byte) string {
	count := int(node.NamedChildCount())
	if count == 0 {
		return strings.Trim(node.Content(source), `"`)
	}
	var b strings.Builder
	for i := 0; i < count; i++ {
		b.WriteString(node.NamedChild(i).Content(source))
	}
	return b.String()
}

func (p *Parser) metadata(node *sitter.Node) sourcetree.Metadata {
	var m sourcetree.Metadata
	start := node.StartPoint()
	m.Set(sourcetree.MetaLine, int(start.Row)+1)
	if p.opts.TrackColumns {
		m.Set(sourcetree.MetaColumn, int(start.Column)+1)
	}
	if p.opts.TrackTokenMetadata {
		end := node.EndPoint()
		m.Set(sourcetree.MetaEndLine, int(end.Row)+1)
		m.Set(sourcetree.MetaEndColumn, int(end.Column)+1)
		m.Set(sourcetree.MetaByteStart, int(node.StartByte()))
		m.Set(sourcetree.MetaByteEnd, int(node.EndByte()))
	}
	return m
}

// errorAt locates the first error node and builds the ParseError.
func (p *Parser) errorAt(root *sitter.Node, source []byte) *ParseError {
	errNode := firstError(root)
	if errNode == nil {
		errNode = root
	}
	point := errNode.StartPoint()
	msg := "syntax error"
	if errNode.IsMissing() {
		msg = fmt.Sprintf("missing %s", errNode.Type())
	} else if t := errNode.Content(source); t != "" && len(t) <= 40 {
		msg = fmt.Sprintf("syntax error near %q", t)
	}
	return &ParseError{
		File:    p.opts.SourceFile,
		Line:    int(point.Row) + 1,
		Column:  int(point.Column) + 1,
		Message: msg,
	}
}

func firstError(node *sitter.Node) *sitter.Node {
	if node.Type() == "ERROR" || node.IsMissing() {
		return node
	}
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		if found := firstError(node.Child(i)); found != nil {
			return found
		}
	}
	return nil
}
