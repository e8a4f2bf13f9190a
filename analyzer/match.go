package analyzer

import (
	"strings"

	"github.com/c360studio/semlix/fact"
	"github.com/c360studio/semlix/sourcetree"
)

// Matchers recognize the structural forms the extractor cares about. They
// operate on the generic tree only and never look at raw source text, so
// they work identically on parsed files and on trees built by hand in tests.

// callTarget returns the call's target name when n is a call composite
// whose target is a plain atom leaf (defmodule, def, quote, ...).
func callTarget(n sourcetree.Node) (string, *sourcetree.Composite, bool) {
	c, ok := n.(*sourcetree.Composite)
	if !ok || c.Tag != "call" || len(c.Children) == 0 {
		return "", nil, false
	}
	leaf, ok := c.Children[0].(*sourcetree.Leaf)
	if !ok || leaf.Kind != sourcetree.LeafAtom {
		return "", nil, false
	}
	return leaf.Atom, c, true
}

// dottedTarget returns the alias and function name of a Module.function
// call, e.g. ("Supervisor", "start_link").
func dottedTarget(n sourcetree.Node) (alias, fn string, c *sourcetree.Composite, ok bool) {
	c, isComp := n.(*sourcetree.Composite)
	if !isComp || c.Tag != "call" || len(c.Children) == 0 {
		return "", "", nil, false
	}
	dot, isComp := c.Children[0].(*sourcetree.Composite)
	if !isComp || dot.Tag != "dot" || len(dot.Children) != 2 {
		return "", "", nil, false
	}
	left, lok := dot.Children[0].(*sourcetree.Leaf)
	right, rok := dot.Children[1].(*sourcetree.Leaf)
	if !lok || !rok || left.Kind != sourcetree.LeafAtom || right.Kind != sourcetree.LeafAtom {
		return "", "", nil, false
	}
	return left.Atom, right.Atom, c, true
}

// child returns the first direct child composite with the given tag.
func child(c *sourcetree.Composite, tag string) *sourcetree.Composite {
	for _, n := range c.Children {
		if cc, ok := n.(*sourcetree.Composite); ok && cc.Tag == tag {
			return cc
		}
	}
	return nil
}

func callArguments(c *sourcetree.Composite) *sourcetree.Composite {
	return child(c, "arguments")
}

func callDoBlock(c *sourcetree.Composite) *sourcetree.Composite {
	return child(c, "do_block")
}

// locOf reads the source position recorded on a composite. Nil when the
// tree carries no position, which extraction must tolerate.
func locOf(n sourcetree.Node) *fact.Location {
	c, ok := n.(*sourcetree.Composite)
	if !ok {
		return nil
	}
	line, ok := c.Meta.Line()
	if !ok {
		return nil
	}
	loc := &fact.Location{Line: line}
	if col, ok := c.Meta.Column(); ok {
		loc.Column = col
	}
	return loc
}

// IsModuleDef reports whether n is a defmodule call.
func IsModuleDef(n sourcetree.Node) bool {
	t, _, ok := callTarget(n)
	return ok && t == "defmodule"
}

// IsProtocolDef reports whether n is a defprotocol call.
func IsProtocolDef(n sourcetree.Node) bool {
	t, _, ok := callTarget(n)
	return ok && t == "defprotocol"
}

// IsProtocolImpl reports whether n is a defimpl call.
func IsProtocolImpl(n sourcetree.Node) bool {
	t, _, ok := callTarget(n)
	return ok && t == "defimpl"
}

// isModuleLike matches every form that opens a module naming scope.
func isModuleLike(n sourcetree.Node) bool {
	return IsModuleDef(n) || IsProtocolDef(n) || IsProtocolImpl(n)
}

// moduleAlias returns the dot-split segments of the call's first alias
// argument, e.g. defmodule MyApp.Server -> ["MyApp", "Server"].
func moduleAlias(c *sourcetree.Composite) ([]string, bool) {
	args := callArguments(c)
	if args == nil || len(args.Children) == 0 {
		return nil, false
	}
	leaf, ok := args.Children[0].(*sourcetree.Leaf)
	if !ok || leaf.Kind != sourcetree.LeafAtom || leaf.Atom == "" {
		return nil, false
	}
	return strings.Split(leaf.Atom, "."), true
}

// functionKind maps a call target to its definition form.
func functionKind(target string) (fact.FunctionKind, bool) {
	switch target {
	case "def":
		return fact.KindDef, true
	case "defp":
		return fact.KindDefp, true
	case "defmacro":
		return fact.KindDefmacro, true
	}
	return "", false
}

// functionHead decodes a def's first argument into name, arity, and guard
// presence. The head is either a bare atom (zero arity without parens), a
// nested call (name plus parameters), or a `when` operator wrapping one of
// those with a guard expression.
func functionHead(defCall *sourcetree.Composite) (name string, arity int, guarded bool, ok bool) {
	args := callArguments(defCall)
	if args == nil || len(args.Children) == 0 {
		return "", 0, false, false
	}
	return decodeHead(args.Children[0])
}

func decodeHead(n sourcetree.Node) (string, int, bool, bool) {
	switch v := n.(type) {
	case *sourcetree.Leaf:
		if v.Kind == sourcetree.LeafAtom && v.Atom != "" {
			return v.Atom, 0, false, true
		}
	case *sourcetree.Composite:
		if op, _ := v.Meta.Str(sourcetree.MetaOperator); v.Tag == "binary_operator" && op == "when" {
			if len(v.Children) == 0 {
				return "", 0, false, false
			}
			name, arity, _, ok := decodeHead(v.Children[0])
			return name, arity, true, ok
		}
		if name, call, ok := callTarget(v); ok {
			arity := 0
			if args := callArguments(call); args != nil {
				arity = len(args.Children)
			}
			return name, arity, false, true
		}
	}
	return "", 0, false, false
}

// attribute decodes an @attr form, returning the attribute name and its
// argument nodes. Module attributes parse as a unary_operator with an @
// operator wrapping a call.
func attribute(n sourcetree.Node) (string, []sourcetree.Node, bool) {
	c, ok := n.(*sourcetree.Composite)
	if !ok || c.Tag != "unary_operator" {
		return "", nil, false
	}
	if op, _ := c.Meta.Str(sourcetree.MetaOperator); op != "@" {
		return "", nil, false
	}
	if len(c.Children) == 0 {
		return "", nil, false
	}
	name, call, ok := callTarget(c.Children[0])
	if !ok {
		return "", nil, false
	}
	var args []sourcetree.Node
	if a := callArguments(call); a != nil {
		args = a.Children
	}
	return name, args, true
}

// stringArg extracts a string (or false, meaning @doc false) argument.
func stringArg(args []sourcetree.Node) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	leaf, ok := args[0].(*sourcetree.Leaf)
	if !ok {
		return "", false
	}
	switch leaf.Kind {
	case sourcetree.LeafString:
		return leaf.Str, true
	case sourcetree.LeafBoolean:
		// @doc false disables docs; treated as absent.
		return "", false
	}
	return "", false
}

// IsAnonFunction reports whether n is an fn -> end expression.
func IsAnonFunction(n sourcetree.Node) bool {
	c, ok := n.(*sourcetree.Composite)
	return ok && c.Tag == "anonymous_function"
}

// stabClauses returns the clause composites of an anonymous function.
func stabClauses(c *sourcetree.Composite) []*sourcetree.Composite {
	var out []*sourcetree.Composite
	for _, n := range c.Children {
		if cc, ok := n.(*sourcetree.Composite); ok && cc.Tag == "stab_clause" {
			out = append(out, cc)
		}
	}
	return out
}

// stabArity returns the parameter count and guard presence of one stab
// clause. A clause without an argument list has arity 0.
func stabArity(clause *sourcetree.Composite) (int, bool) {
	for _, n := range clause.Children {
		c, ok := n.(*sourcetree.Composite)
		if !ok {
			continue
		}
		switch c.Tag {
		case "arguments":
			return len(c.Children), false
		case "binary_operator":
			if op, _ := c.Meta.Str(sourcetree.MetaOperator); op == "when" {
				if args := child(c, "arguments"); args != nil {
					return len(args.Children), true
				}
				return 0, true
			}
		}
	}
	return 0, false
}

// IsQuote reports whether n is a quote call with a do block.
func IsQuote(n sourcetree.Node) bool {
	t, c, ok := callTarget(n)
	return ok && t == "quote" && callDoBlock(c) != nil
}

// IsUnquote and friends classify meta-programming escapes inside a quote.
func IsUnquote(n sourcetree.Node) bool {
	t, _, ok := callTarget(n)
	return ok && t == "unquote"
}

func IsUnquoteSplicing(n sourcetree.Node) bool {
	t, _, ok := callTarget(n)
	return ok && t == "unquote_splicing"
}

// hygieneEscape returns the variable named by a var! call.
func hygieneEscape(n sourcetree.Node) (string, bool) {
	t, c, ok := callTarget(n)
	if !ok || t != "var!" {
		return "", false
	}
	args := callArguments(c)
	if args == nil || len(args.Children) == 0 {
		return "", false
	}
	leaf, ok := args.Children[0].(*sourcetree.Leaf)
	if !ok || leaf.Kind != sourcetree.LeafAtom {
		return "", false
	}
	return leaf.Atom, true
}

// supervisorCall matches Supervisor.start_link/2 and Supervisor.init/2,
// the two forms that attach a child list and strategy.
func supervisorCall(n sourcetree.Node) (*sourcetree.Composite, bool) {
	alias, fn, c, ok := dottedTarget(n)
	if !ok {
		return nil, false
	}
	if alias != "Supervisor" && !strings.HasSuffix(alias, ".Supervisor") {
		return nil, false
	}
	if fn != "start_link" && fn != "init" {
		return nil, false
	}
	return c, true
}

// IsDefstruct reports whether n is a defstruct call.
func IsDefstruct(n sourcetree.Node) bool {
	t, _, ok := callTarget(n)
	return ok && t == "defstruct"
}
