package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semlix/sourcetree"
)

func parse(t *testing.T, src string) sourcetree.Node {
	t.Helper()
	root, err := New(Options{TrackColumns: true}).Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	return root
}

func TestParseSimpleModule(t *testing.T) {
	root := parse(t, `
defmodule MyApp do
  def hello, do: :world
end
`)

	calls := sourcetree.FindAll(root, func(n sourcetree.Node) bool {
		c, ok := n.(*sourcetree.Composite)
		return ok && c.Tag == "call"
	})
	require.NotEmpty(t, calls, "defmodule should surface as a call node")

	head := calls[0].(*sourcetree.Composite)
	require.NotEmpty(t, head.Children)
	leaf, ok := head.Children[0].(*sourcetree.Leaf)
	require.True(t, ok)
	assert.Equal(t, "defmodule", leaf.Atom)
}

func TestParseLeafConversions(t *testing.T) {
	root := parse(t, `x = [1_000, 2.5, :ok, true, nil, "hi"]`)

	var ints, floats, atoms, bools, nils, strs int
	_, err := sourcetree.Walk(root, 0, sourcetree.Visitor[int]{
		Pre: func(n sourcetree.Node, _ sourcetree.Context, acc int) sourcetree.Step[int] {
			if l, ok := n.(*sourcetree.Leaf); ok {
				switch l.Kind {
				case sourcetree.LeafInteger:
					ints++
					assert.Equal(t, int64(1000), l.Int, "underscore separators are stripped")
				case sourcetree.LeafFloat:
					floats++
				case sourcetree.LeafAtom:
					if l.Atom == "ok" {
						atoms++
					}
				case sourcetree.LeafBoolean:
					bools++
				case sourcetree.LeafNil:
					nils++
				case sourcetree.LeafString:
					if l.Str == "hi" {
						strs++
					}
				}
			}
			return sourcetree.Continue(acc)
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, ints)
	assert.Equal(t, 1, floats)
	assert.Equal(t, 1, atoms)
	assert.Equal(t, 1, bools)
	assert.Equal(t, 1, nils)
	assert.Equal(t, 1, strs)
}

func TestParseLineMetadata(t *testing.T) {
	root := parse(t, "defmodule A do\n  def f, do: 1\nend\n")

	comp, ok := root.(*sourcetree.Composite)
	require.True(t, ok)
	require.NotEmpty(t, comp.Children)

	mod, ok := comp.Children[0].(*sourcetree.Composite)
	require.True(t, ok)

	line, ok := mod.Meta.Line()
	require.True(t, ok)
	assert.Equal(t, 1, line, "lines are 1-based")

	col, ok := mod.Meta.Column()
	require.True(t, ok)
	assert.Equal(t, 1, col)
}

func TestParseColumnsOptional(t *testing.T) {
	root, err := New(Options{}).Parse(context.Background(), []byte("defmodule A do\nend\n"))
	require.NoError(t, err)

	comp := root.(*sourcetree.Composite)
	mod := comp.Children[0].(*sourcetree.Composite)

	_, ok := mod.Meta.Line()
	assert.True(t, ok)
	_, ok = mod.Meta.Column()
	assert.False(t, ok, "columns are opt-in")
}

func TestParseSyntaxError(t *testing.T) {
	_, err := New(Options{SourceFile: "lib/bad.ex"}).Parse(context.Background(),
		[]byte("defmodule Broken do\n  def oops(\nend\n"))
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "lib/bad.ex", perr.File)
	assert.Positive(t, perr.Line)
	assert.Contains(t, perr.Error(), "lib/bad.ex:")
}

func TestParseWarnings(t *testing.T) {
	p := New(Options{EmitWarnings: true, SourceFile: "lib/big.ex"})

	// Overflows int64, so the literal is kept as raw text with a warning.
	root, err := p.Parse(context.Background(), []byte("x = 99999999999999999999999999\n"))
	require.NoError(t, err)
	require.NotNil(t, root)

	warnings := p.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, "lib/big.ex", warnings[0].File)
	assert.Equal(t, 1, warnings[0].Line)
	assert.Contains(t, warnings[0].Message, "integer literal")

	// A clean parse resets the collection.
	_, err = p.Parse(context.Background(), []byte("x = 1\n"))
	require.NoError(t, err)
	assert.Empty(t, p.Warnings())
}

func TestParseDeterminism(t *testing.T) {
	src := []byte("defmodule A do\n  def f(x), do: x\nend\n")

	a, err := New(Options{TrackColumns: true}).Parse(context.Background(), src)
	require.NoError(t, err)
	b, err := New(Options{TrackColumns: true}).Parse(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, sourcetree.CountNodes(a), sourcetree.CountNodes(b))
}
