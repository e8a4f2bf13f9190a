package rdf

import "sort"

// Graph is an in-memory triple set with first-seen insertion order. Adding
// a duplicate triple is a no-op, so statement counts reflect distinct facts.
type Graph struct {
	triples []Triple
	index   map[string]struct{}
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{index: make(map[string]struct{})}
}

// Add inserts a triple, returning false if it was already present.
func (g *Graph) Add(t Triple) bool {
	k := t.Key()
	if _, dup := g.index[k]; dup {
		return false
	}
	g.index[k] = struct{}{}
	g.triples = append(g.triples, t)
	return true
}

// AddAll inserts every triple in ts.
func (g *Graph) AddAll(ts []Triple) {
	for _, t := range ts {
		g.Add(t)
	}
}

// Merge folds other's triples into g. File-level triple sets merge into a
// project-level graph this way.
func (g *Graph) Merge(other *Graph) {
	if other == nil {
		return
	}
	g.AddAll(other.triples)
}

// Len returns the number of distinct statements.
func (g *Graph) Len() int { return len(g.triples) }

// Triples returns the statements in insertion order. The returned slice is
// shared; callers must not mutate it.
func (g *Graph) Triples() []Triple { return g.triples }

// Contains reports whether the exact triple is asserted.
func (g *Graph) Contains(t Triple) bool {
	_, ok := g.index[t.Key()]
	return ok
}

// Objects returns every object reachable from subject via predicate, in
// insertion order.
func (g *Graph) Objects(subject Term, predicate IRI) []Term {
	subjKey := subject.Serialize()
	var out []Term
	for _, t := range g.triples {
		if t.Predicate == predicate && t.Subject.Serialize() == subjKey {
			out = append(out, t.Object)
		}
	}
	return out
}

// SubjectsWithType returns every subject asserted to have rdf:type class.
// The result is sorted by serialized term so that shape validation visits
// focus nodes in a reproducible order.
func (g *Graph) SubjectsWithType(class IRI) []Term {
	classKey := Term(class).Serialize()
	seen := make(map[string]Term)
	for _, t := range g.triples {
		if t.Predicate == RDFType && t.Object.Serialize() == classKey {
			seen[t.Subject.Serialize()] = t.Subject
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Term, 0, len(keys))
	for _, k := range keys {
		out = append(out, seen[k])
	}
	return out
}

// HasType reports whether node is asserted to have rdf:type class.
func (g *Graph) HasType(node Term, class IRI) bool {
	return g.Contains(Triple{Subject: node, Predicate: RDFType, Object: class})
}
