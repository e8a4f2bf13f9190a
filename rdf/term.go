// Package rdf provides the minimal RDF term and triple model used by the
// triple builders and the shape validation engine. It is deliberately not a
// general serialization layer: terms know how to render themselves in
// N-Triples-like syntax for keying and query substitution, and nothing more.
package rdf

import (
	"fmt"
	"strconv"
	"strings"
)

// Well-known vocabulary IRIs.
const (
	RDFType  IRI = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	RDFFirst IRI = "http://www.w3.org/1999/02/22-rdf-syntax-ns#first"
	RDFRest  IRI = "http://www.w3.org/1999/02/22-rdf-syntax-ns#rest"
	RDFNil   IRI = "http://www.w3.org/1999/02/22-rdf-syntax-ns#nil"
)

// XSD datatype IRIs used by the builders.
const (
	XSDString             IRI = "http://www.w3.org/2001/XMLSchema#string"
	XSDBoolean            IRI = "http://www.w3.org/2001/XMLSchema#boolean"
	XSDInteger            IRI = "http://www.w3.org/2001/XMLSchema#integer"
	XSDNonNegativeInteger IRI = "http://www.w3.org/2001/XMLSchema#nonNegativeInteger"
	XSDPositiveInteger    IRI = "http://www.w3.org/2001/XMLSchema#positiveInteger"
	XSDDouble             IRI = "http://www.w3.org/2001/XMLSchema#double"
)

// Term is an RDF term: IRI, BlankNode, or Literal.
type Term interface {
	// Serialize renders the term in N-Triples syntax. The result is used
	// as a dedup key, for canonical result ordering, and for $this
	// substitution in query constraints.
	Serialize() string

	isTerm()
}

// IRI is a globally unique identifier. Subjects and predicates are IRIs or
// blank nodes, never literals.
type IRI string

func (i IRI) isTerm() {}

// Serialize renders the IRI in angle brackets.
func (i IRI) Serialize() string { return "<" + string(i) + ">" }

// BlankNode is a graph-local node label (without the _: prefix).
type BlankNode string

func (b BlankNode) isTerm() {}

// Serialize renders the blank node with its _: prefix.
func (b BlankNode) Serialize() string { return "_:" + string(b) }

// Literal is a typed literal value. A zero Datatype means xsd:string.
type Literal struct {
	Value    string
	Datatype IRI
}

func (l Literal) isTerm() {}

// Serialize renders the literal with its datatype annotation when the
// datatype is not xsd:string.
func (l Literal) Serialize() string {
	quoted := strconv.Quote(l.Value)
	if l.Datatype == "" || l.Datatype == XSDString {
		return quoted
	}
	return quoted + "^^" + l.Datatype.Serialize()
}

// EffectiveDatatype returns the literal's datatype, defaulting to xsd:string.
func (l Literal) EffectiveDatatype() IRI {
	if l.Datatype == "" {
		return XSDString
	}
	return l.Datatype
}

// Str returns a plain xsd:string literal.
func Str(v string) Literal { return Literal{Value: v} }

// Bool returns an xsd:boolean literal.
func Bool(v bool) Literal {
	return Literal{Value: strconv.FormatBool(v), Datatype: XSDBoolean}
}

// Integer returns an xsd:integer literal.
func Integer(v int64) Literal {
	return Literal{Value: strconv.FormatInt(v, 10), Datatype: XSDInteger}
}

// NonNegInt returns an xsd:nonNegativeInteger literal. Negative input is a
// programming error and panics.
func NonNegInt(v int) Literal {
	if v < 0 {
		panic(fmt.Sprintf("rdf: nonNegativeInteger from %d", v))
	}
	return Literal{Value: strconv.Itoa(v), Datatype: XSDNonNegativeInteger}
}

// PosInt returns an xsd:positiveInteger literal. Non-positive input is a
// programming error and panics.
func PosInt(v int) Literal {
	if v < 1 {
		panic(fmt.Sprintf("rdf: positiveInteger from %d", v))
	}
	return Literal{Value: strconv.Itoa(v), Datatype: XSDPositiveInteger}
}

// Double returns an xsd:double literal.
func Double(v float64) Literal {
	return Literal{Value: strconv.FormatFloat(v, 'g', -1, 64), Datatype: XSDDouble}
}

// Triple is one (subject, predicate, object) fact. Subject is an IRI or
// blank node by construction; predicates are always IRIs.
type Triple struct {
	Subject   Term
	Predicate IRI
	Object    Term
}

// Key returns the canonical dedup key for the triple.
func (t Triple) Key() string {
	var b strings.Builder
	b.WriteString(t.Subject.Serialize())
	b.WriteByte(' ')
	b.WriteString(t.Predicate.Serialize())
	b.WriteByte(' ')
	b.WriteString(t.Object.Serialize())
	return b.String()
}

// Dedupe returns ts with exact duplicates removed, preserving first-seen
// order. Builders call this before returning so that every returned triple
// collection has set semantics.
func Dedupe(ts []Triple) []Triple {
	if len(ts) < 2 {
		return ts
	}
	seen := make(map[string]struct{}, len(ts))
	out := ts[:0:0]
	for _, t := range ts {
		k := t.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	return out
}
