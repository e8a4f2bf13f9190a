package rdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiteralSerialize(t *testing.T) {
	tests := []struct {
		name string
		lit  Literal
		want string
	}{
		{"plain string", Str("hello"), `"hello"`},
		{"boolean", Bool(true), `"true"^^<http://www.w3.org/2001/XMLSchema#boolean>`},
		{"integer", Integer(-3), `"-3"^^<http://www.w3.org/2001/XMLSchema#integer>`},
		{"non-negative", NonNegInt(2), `"2"^^<http://www.w3.org/2001/XMLSchema#nonNegativeInteger>`},
		{"positive", PosInt(1), `"1"^^<http://www.w3.org/2001/XMLSchema#positiveInteger>`},
		{"quoting", Str(`say "hi"`), `"say \"hi\""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.lit.Serialize())
		})
	}
}

func TestNonNegIntPanicsOnNegative(t *testing.T) {
	assert.Panics(t, func() { NonNegInt(-1) })
	assert.Panics(t, func() { PosInt(0) })
}

func TestDedupe(t *testing.T) {
	a := Triple{Subject: IRI("s"), Predicate: "p", Object: Str("x")}
	b := Triple{Subject: IRI("s"), Predicate: "p", Object: Str("y")}

	got := Dedupe([]Triple{a, b, a, a, b})
	require.Len(t, got, 2)
	assert.Equal(t, a, got[0])
	assert.Equal(t, b, got[1])
}

func TestGraphSetSemantics(t *testing.T) {
	g := NewGraph()
	tr := Triple{Subject: IRI("s"), Predicate: "p", Object: Str("x")}

	assert.True(t, g.Add(tr))
	assert.False(t, g.Add(tr))
	assert.Equal(t, 1, g.Len())
	assert.True(t, g.Contains(tr))
}

func TestGraphMergeAndCount(t *testing.T) {
	g1 := NewGraph()
	g1.Add(Triple{Subject: IRI("a"), Predicate: "p", Object: Str("1")})

	g2 := NewGraph()
	g2.Add(Triple{Subject: IRI("a"), Predicate: "p", Object: Str("1")})
	g2.Add(Triple{Subject: IRI("b"), Predicate: "p", Object: Str("2")})

	g1.Merge(g2)
	assert.Equal(t, 2, g1.Len())

	g1.Merge(nil)
	assert.Equal(t, 2, g1.Len())
}

func TestGraphObjectsAndTypes(t *testing.T) {
	g := NewGraph()
	g.Add(Triple{Subject: IRI("m1"), Predicate: RDFType, Object: IRI("Module")})
	g.Add(Triple{Subject: IRI("m2"), Predicate: RDFType, Object: IRI("Module")})
	g.Add(Triple{Subject: IRI("f1"), Predicate: RDFType, Object: IRI("Function")})
	g.Add(Triple{Subject: IRI("m1"), Predicate: "name", Object: Str("MyApp")})

	subjects := g.SubjectsWithType(IRI("Module"))
	require.Len(t, subjects, 2)
	assert.Equal(t, "<m1>", subjects[0].Serialize())
	assert.Equal(t, "<m2>", subjects[1].Serialize())

	names := g.Objects(IRI("m1"), "name")
	require.Len(t, names, 1)
	assert.Equal(t, Str("MyApp"), names[0])

	assert.True(t, g.HasType(IRI("f1"), IRI("Function")))
	assert.False(t, g.HasType(IRI("f1"), IRI("Module")))
}

func TestEmitAndReadList(t *testing.T) {
	gen := NewBlankNodeGen("c")
	items := []Term{IRI("child0"), IRI("child1"), IRI("child2")}

	triples := EmitList(IRI("sup"), "hasChildren", items, gen)
	g := NewGraph()
	g.AddAll(triples)

	heads := g.Objects(IRI("sup"), "hasChildren")
	require.Len(t, heads, 1)

	got, ok := ReadList(g, heads[0])
	require.True(t, ok)
	require.Len(t, got, 3)
	for i := range items {
		assert.Equal(t, items[i].Serialize(), got[i].Serialize())
	}
}

func TestEmitListEmpty(t *testing.T) {
	gen := NewBlankNodeGen("c")
	triples := EmitList(IRI("sup"), "hasChildren", nil, gen)
	require.Len(t, triples, 1)
	assert.Equal(t, Term(RDFNil), triples[0].Object)
}

func TestTriplesJSONRoundTrip(t *testing.T) {
	in := []Triple{
		{Subject: IRI("https://example.org/m"), Predicate: RDFType, Object: IRI("https://example.org/Module")},
		{Subject: BlankNode("b0"), Predicate: RDFFirst, Object: IRI("https://example.org/c")},
		{Subject: IRI("https://example.org/f"), Predicate: "https://example.org/arity", Object: NonNegInt(2)},
		{Subject: IRI("https://example.org/m"), Predicate: "https://example.org/doc", Object: Str("")},
	}

	data, err := MarshalTriples(in)
	require.NoError(t, err)

	out, err := UnmarshalTriples(data)
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i := range in {
		assert.Equal(t, in[i].Key(), out[i].Key())
	}
}

func TestUnmarshalTriplesRejectsBadInput(t *testing.T) {
	_, err := UnmarshalTriples([]byte(`[{"s":{"iri":"x"},"p":"","o":{"value":"v"}}]`))
	assert.Error(t, err)

	_, err = UnmarshalTriples([]byte(`not json`))
	assert.Error(t, err)
}
