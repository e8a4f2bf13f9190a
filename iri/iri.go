// Package iri constructs the deterministic, collision-free identifiers
// assigned to every structural fact the analyzer recognizes.
//
// Identifiers have the shape
//
//	<base><scope>/<role>/<index-or-name>[/<secondary-index>]
//
// where <scope> is the module path joined with dots, a parent identifier
// used verbatim, or a file/<relative-path> marker when no module context is
// known. Identical naming input always regenerates the same identifier, so
// incremental re-analysis produces a stable graph.
package iri

import (
	"strconv"
	"strings"

	"github.com/c360studio/semlix/rdf"
)

// DefaultBase is the entity namespace used when a project does not
// configure its own.
const DefaultBase = "https://semlix.dev/code#"

// Scope is the naming context an identifier is derived from. Exactly one of
// Segments, Parent, or FilePath supplies the scope prefix; Parent wins over
// Segments, and FilePath is the fallback so anonymous constructs in
// different files never collide.
type Scope struct {
	// Base is the IRI namespace prefix, e.g. "https://example.org/code#".
	Base string

	// Segments are the module path parts, e.g. ["MyApp", "Server"].
	Segments []string

	// Parent, when set, is a previously built identifier used verbatim as
	// the prefix (no namespace joining).
	Parent rdf.IRI

	// FilePath is the repo-relative source path used when neither
	// Segments nor Parent is available.
	FilePath string
}

// prefix resolves the scope to a full identifier prefix. ok is false when
// the scope carries no usable naming information.
func (s Scope) prefix() (string, bool) {
	base := s.Base
	if base == "" {
		base = DefaultBase
	}
	switch {
	case s.Parent != "":
		return string(s.Parent), true
	case len(s.Segments) > 0:
		return base + strings.Join(s.Segments, "."), true
	case s.FilePath != "":
		cleaned, ok := CleanPath(s.FilePath)
		if !ok {
			return "", false
		}
		return base + "file/" + cleaned, true
	}
	return "", false
}

// Module returns the identifier for the module named by the scope's
// segments (or file fallback).
func (s Scope) Module() (rdf.IRI, bool) {
	p, ok := s.prefix()
	if !ok {
		return "", false
	}
	return rdf.IRI(p), true
}

// Function returns <scope>/<name>/<arity>. Arity disambiguates
// multi-clause and overloaded definitions of the same name.
func (s Scope) Function(name string, arity int) (rdf.IRI, bool) {
	p, ok := s.prefix()
	if !ok || name == "" || arity < 0 {
		return "", false
	}
	return rdf.IRI(p + "/" + name + "/" + strconv.Itoa(arity)), true
}

// Anon returns <scope>/anon/<index> for the index-th anonymous function in
// the scope, in pre-order.
func (s Scope) Anon(index int) (rdf.IRI, bool) {
	return s.roleIndex("anon", index)
}

// Clause returns <parent>/clause/<index> for a clause nested under a
// function or anonymous function. The identifier index is 0-based; the
// recorded clauseOrder attribute is 1-based. The asymmetry is deliberate
// and preserved for identifier stability.
func Clause(parent rdf.IRI, index int) (rdf.IRI, bool) {
	if parent == "" || index < 0 {
		return "", false
	}
	return rdf.IRI(string(parent) + "/clause/" + strconv.Itoa(index)), true
}

// Field returns <scope>/field/<name>. Field names are unique within one
// struct by construction, so no index is needed.
func (s Scope) Field(name string) (rdf.IRI, bool) {
	p, ok := s.prefix()
	if !ok || name == "" {
		return "", false
	}
	return rdf.IRI(p + "/field/" + name), true
}

// Child returns <scope>/child/<id>/<position> for a supervised child.
// Both the child id and the 0-based position are included because ids are
// not guaranteed unique across a child list (the same worker module may be
// started several times).
func (s Scope) Child(childID string, position int) (rdf.IRI, bool) {
	p, ok := s.prefix()
	if !ok || childID == "" || position < 0 {
		return "", false
	}
	seg, ok := SafeSegment(childID)
	if !ok {
		return "", false
	}
	return rdf.IRI(p + "/child/" + seg + "/" + strconv.Itoa(position)), true
}

// Quoted returns <scope>/quoted/<index> for the index-th quote block in
// the scope.
func (s Scope) Quoted(index int) (rdf.IRI, bool) {
	return s.roleIndex("quoted", index)
}

func (s Scope) roleIndex(role string, index int) (rdf.IRI, bool) {
	p, ok := s.prefix()
	if !ok || index < 0 {
		return "", false
	}
	return rdf.IRI(p + "/" + role + "/" + strconv.Itoa(index)), true
}
