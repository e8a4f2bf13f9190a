package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semlix/fact"
	"github.com/c360studio/semlix/sourcetree"
)

// Tree construction helpers mirroring the parser's conventions: calls are
// composites whose first child is the target atom, followed by arguments
// and do_block composites.

func call(target string, children ...sourcetree.Node) *sourcetree.Composite {
	kids := append([]sourcetree.Node{sourcetree.Atom(target)}, children...)
	return sourcetree.NewComposite("call", kids...)
}

func args(children ...sourcetree.Node) *sourcetree.Composite {
	return sourcetree.NewComposite("arguments", children...)
}

func doBlock(children ...sourcetree.Node) *sourcetree.Composite {
	return sourcetree.NewComposite("do_block", children...)
}

func attr(name string, value sourcetree.Node) *sourcetree.Composite {
	c := sourcetree.NewComposite("unary_operator", call(name, args(value)))
	c.Meta.Set(sourcetree.MetaOperator, "@")
	return c
}

func whenGuard(head sourcetree.Node, guard sourcetree.Node) *sourcetree.Composite {
	c := sourcetree.NewComposite("binary_operator", head, guard)
	c.Meta.Set(sourcetree.MetaOperator, "when")
	return c
}

func pair(key string, value sourcetree.Node) *sourcetree.Composite {
	return sourcetree.NewComposite("pair", sourcetree.Atom(key), value)
}

func moduleDef(name string, body ...sourcetree.Node) *sourcetree.Composite {
	return call("defmodule", args(sourcetree.Atom(name)), doBlock(body...))
}

func TestExtractModuleWithFunctions(t *testing.T) {
	root := sourcetree.NewComposite("source",
		moduleDef("MyApp.Server",
			attr("moduledoc", sourcetree.String("A server.")),
			attr("behaviour", sourcetree.Atom("GenServer")),
			attr("doc", sourcetree.String("Handles calls.")),
			call("def", args(whenGuard(
				call("handle_call", args(sourcetree.Atom("req"), sourcetree.Atom("from"), sourcetree.Atom("state"))),
				call("is_atom", args(sourcetree.Atom("req"))),
			)), doBlock()),
			call("def", args(
				call("handle_call", args(sourcetree.Atom("req"), sourcetree.Atom("from"), sourcetree.Atom("state"))),
			), doBlock()),
			call("defp", args(sourcetree.Atom("helper")), doBlock()),
		),
	)

	f := ExtractFile(root, "lib/server.ex")
	require.Len(t, f.Modules, 1)

	m := f.Modules[0]
	assert.Equal(t, []string{"MyApp", "Server"}, m.Segments)
	assert.Equal(t, "A server.", m.Doc)
	assert.Equal(t, []string{"GenServer"}, m.Behaviours)

	require.Len(t, m.Functions, 2)

	hc := m.Functions[0]
	assert.Equal(t, "handle_call", hc.Name)
	assert.Equal(t, 3, hc.Arity)
	assert.Equal(t, fact.KindDef, hc.Kind)
	assert.Equal(t, "Handles calls.", hc.Doc, "@doc attaches to the next def")
	require.Len(t, hc.Clauses, 2, "same name/arity defs group into one function")
	assert.Equal(t, 0, hc.Clauses[0].Index)
	assert.True(t, hc.Clauses[0].HasGuard)
	assert.Equal(t, 1, hc.Clauses[1].Index)
	assert.False(t, hc.Clauses[1].HasGuard)

	helper := m.Functions[1]
	assert.Equal(t, "helper", helper.Name)
	assert.Equal(t, 0, helper.Arity, "bare atom head is zero arity")
	assert.Equal(t, fact.KindDefp, helper.Kind)
	assert.Empty(t, helper.Doc, "pending doc is consumed by the first def")
}

func TestExtractNestedModules(t *testing.T) {
	root := sourcetree.NewComposite("source",
		moduleDef("Outer",
			call("def", args(sourcetree.Atom("outer_fn")), doBlock()),
			moduleDef("Inner",
				call("def", args(sourcetree.Atom("inner_fn")), doBlock()),
			),
		),
	)

	f := ExtractFile(root, "lib/nested.ex")
	require.Len(t, f.Modules, 2)

	outer := f.Modules[0]
	assert.Equal(t, []string{"Outer"}, outer.Segments)
	require.Len(t, outer.Functions, 1)
	assert.Equal(t, "outer_fn", outer.Functions[0].Name,
		"inner module's functions stay out of the outer record")

	inner := f.Modules[1]
	assert.Equal(t, []string{"Outer", "Inner"}, inner.Segments,
		"nested defmodule concatenates enclosing segments")
	require.Len(t, inner.Functions, 1)
	assert.Equal(t, "inner_fn", inner.Functions[0].Name)
}

func TestExtractAnonFunctions(t *testing.T) {
	anon := func(clauses ...sourcetree.Node) *sourcetree.Composite {
		return sourcetree.NewComposite("anonymous_function", clauses...)
	}
	stab := func(params ...sourcetree.Node) *sourcetree.Composite {
		return sourcetree.NewComposite("stab_clause", args(params...))
	}

	root := sourcetree.NewComposite("source",
		moduleDef("M",
			call("def", args(sourcetree.Atom("f")), doBlock(
				anon(stab(sourcetree.Atom("x"))),
				anon(
					stab(sourcetree.Atom("a"), sourcetree.Atom("b")),
					stab(sourcetree.Atom("c"), sourcetree.Atom("d")),
				),
			)),
		),
	)

	f := ExtractFile(root, "lib/m.ex")
	require.Len(t, f.Modules, 1)

	anons := f.Modules[0].Anons
	require.Len(t, anons, 2)
	assert.Equal(t, 0, anons[0].Index)
	assert.Equal(t, 1, anons[0].Arity)
	assert.Equal(t, 1, anons[1].Index, "indices assigned in pre-order")
	assert.Equal(t, 2, anons[1].Arity)
	require.Len(t, anons[1].Clauses, 2)
	assert.Equal(t, 1, anons[1].Clauses[1].Index)
}

func TestExtractQuoted(t *testing.T) {
	root := sourcetree.NewComposite("source",
		moduleDef("Macros",
			call("defmacro", args(call("wrap", args(sourcetree.Atom("x")))), doBlock(
				call("quote", doBlock(
					call("unquote", args(sourcetree.Atom("x"))),
					call("unquote", args(sourcetree.Atom("x"))),
					call("unquote_splicing", args(sourcetree.Atom("xs"))),
					call("var!", args(sourcetree.Atom("leaked"))),
				)),
			)),
		),
	)

	f := ExtractFile(root, "lib/macros.ex")
	require.Len(t, f.Modules, 1)

	quoted := f.Modules[0].Quoted
	require.Len(t, quoted, 1)
	q := quoted[0]
	assert.Equal(t, 0, q.Index)
	assert.Equal(t, 2, q.UnquoteCount)
	assert.Equal(t, 1, q.SpliceCount, "unquote_splicing is not double-counted as unquote")
	assert.Equal(t, []string{"leaked"}, q.HygieneViolations)
}

func TestExtractSupervisor(t *testing.T) {
	supCall := sourcetree.NewComposite("call",
		sourcetree.NewComposite("dot", sourcetree.Atom("Supervisor"), sourcetree.Atom("start_link")),
		args(
			sourcetree.NewComposite("list",
				sourcetree.Atom("MyApp.Repo"),
				sourcetree.NewComposite("tuple", sourcetree.Atom("MyApp.Worker"), sourcetree.Atom("arg")),
				sourcetree.Atom("MyApp.Repo"),
			),
			sourcetree.NewComposite("keywords",
				pair("strategy", sourcetree.Atom("one_for_one")),
			),
		),
	)

	root := sourcetree.NewComposite("source",
		moduleDef("MyApp.Sup",
			call("def", args(call("init", args(sourcetree.Atom("arg")))), doBlock(supCall)),
		),
	)

	f := ExtractFile(root, "lib/sup.ex")
	require.Len(t, f.Modules, 1)

	sup := f.Modules[0].Supervisor
	require.NotNil(t, sup)
	assert.Equal(t, "one_for_one", sup.Strategy)
	require.Len(t, sup.Children, 3)
	assert.Equal(t, "MyApp.Repo", sup.Children[0].ID)
	assert.Equal(t, 0, sup.Children[0].Position)
	assert.Equal(t, "MyApp.Worker", sup.Children[1].ID)
	assert.Equal(t, 2, sup.Children[2].Position,
		"duplicate child modules keep their list position")
}

func TestExtractDefstruct(t *testing.T) {
	root := sourcetree.NewComposite("source",
		moduleDef("MyApp.User",
			call("defstruct", args(
				sourcetree.NewComposite("list",
					sourcetree.Atom("email"),
					sourcetree.NewComposite("keywords",
						pair("active", sourcetree.Boolean(true)),
						pair("email", sourcetree.String("dup")),
					),
				),
			)),
		),
	)

	f := ExtractFile(root, "lib/user.ex")
	require.Len(t, f.Modules, 1)

	fields := f.Modules[0].Fields
	require.Len(t, fields, 2, "duplicate field names keep the first occurrence")
	assert.Equal(t, "email", fields[0].Name)
	assert.False(t, fields[0].HasDefault)
	assert.Equal(t, "active", fields[1].Name)
	assert.True(t, fields[1].HasDefault)
	assert.Equal(t, "true", fields[1].Default)
}

func TestExtractProtocolAndImpl(t *testing.T) {
	root := sourcetree.NewComposite("source",
		call("defprotocol", args(sourcetree.Atom("Size")), doBlock(
			call("def", args(call("size", args(sourcetree.Atom("data")))), doBlock()),
		)),
		call("defimpl", args(
			sourcetree.Atom("Size"),
			sourcetree.NewComposite("keywords", pair("for", sourcetree.Atom("BitString"))),
		), doBlock(
			call("def", args(call("size", args(sourcetree.Atom("s")))), doBlock()),
		)),
	)

	f := ExtractFile(root, "lib/size.ex")
	require.Len(t, f.Modules, 2)

	proto := f.Modules[0]
	assert.Equal(t, "Size", proto.Protocol)
	assert.Equal(t, []string{"Size"}, proto.Segments)

	impl := f.Modules[1]
	assert.Equal(t, "Size", impl.ImplFor)
	assert.Equal(t, []string{"Size", "BitString"}, impl.Segments,
		"defimpl defines Proto.Type")
}

func TestExtractEmptyFile(t *testing.T) {
	f := ExtractFile(sourcetree.NewComposite("source"), "lib/empty.ex")
	assert.Empty(t, f.Modules)
	assert.Equal(t, "lib/empty.ex", f.Path)
}
