package rdf

import "fmt"

// BlankNodeGen allocates blank node labels unique within one builder run.
// Builders thread a generator through so that independent list encodings in
// the same triple set never share labels.
type BlankNodeGen struct {
	prefix string
	next   int
}

// NewBlankNodeGen returns a generator whose labels start with prefix.
func NewBlankNodeGen(prefix string) *BlankNodeGen {
	return &BlankNodeGen{prefix: prefix}
}

// Next returns a fresh blank node.
func (g *BlankNodeGen) Next() BlankNode {
	b := BlankNode(fmt.Sprintf("%s%d", g.prefix, g.next))
	g.next++
	return b
}

// EmitList encodes items as an rdf:first/rest chain of blank nodes attached
// to subject via predicate. The chain is the authoritative encoding of the
// items' order; a per-item position attribute may coexist but is not relied
// upon for ordering. An empty items list links subject directly to rdf:nil.
func EmitList(subject Term, predicate IRI, items []Term, gen *BlankNodeGen) []Triple {
	if len(items) == 0 {
		return []Triple{{Subject: subject, Predicate: predicate, Object: RDFNil}}
	}

	head := gen.Next()
	triples := []Triple{{Subject: subject, Predicate: predicate, Object: head}}

	cell := head
	for i, item := range items {
		triples = append(triples, Triple{Subject: cell, Predicate: RDFFirst, Object: item})
		if i == len(items)-1 {
			triples = append(triples, Triple{Subject: cell, Predicate: RDFRest, Object: RDFNil})
			break
		}
		next := gen.Next()
		triples = append(triples, Triple{Subject: cell, Predicate: RDFRest, Object: next})
		cell = next
	}
	return triples
}

// ReadList walks an rdf:first/rest chain starting at head and returns the
// items in order. It returns false on a malformed chain (missing rdf:first
// or rdf:rest) or a cycle.
func ReadList(g *Graph, head Term) ([]Term, bool) {
	var items []Term
	visited := make(map[string]struct{})

	cell := head
	for {
		if cell.Serialize() == Term(RDFNil).Serialize() {
			return items, true
		}
		if _, loop := visited[cell.Serialize()]; loop {
			return nil, false
		}
		visited[cell.Serialize()] = struct{}{}

		firsts := g.Objects(cell, RDFFirst)
		rests := g.Objects(cell, RDFRest)
		if len(firsts) != 1 || len(rests) != 1 {
			return nil, false
		}
		items = append(items, firsts[0])
		cell = rests[0]
	}
}
