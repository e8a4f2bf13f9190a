// Package shacl validates RDF graphs against shape definitions: node
// shapes select focus nodes by class, property shapes constrain values
// reachable over one predicate, and query constraints express cross-entity
// rules a per-property facet cannot.
package shacl

import "github.com/c360studio/semlix/rdf"

// Severity ranks a validation result. Only Violation affects conformance;
// Warning and Info are advisory.
type Severity string

const (
	SeverityViolation Severity = "Violation"
	SeverityWarning   Severity = "Warning"
	SeverityInfo      Severity = "Info"
)

// PropertyShape constrains the values reachable from a focus node over
// Path. Facet pointers distinguish "absent" from zero values; every facet
// set on the shape is checked independently, so one property shape can
// produce several results for the same focus node.
type PropertyShape struct {
	// Path is the predicate whose values are constrained.
	Path rdf.IRI

	// MinCount / MaxCount bound the number of values.
	MinCount *int
	MaxCount *int

	// Datatype requires every value to be a literal of this datatype.
	Datatype *rdf.IRI

	// Class requires every value to be a node asserted to have this type.
	Class *rdf.IRI

	// Pattern is an anchored-as-written regular expression every value's
	// string form must match.
	Pattern *string

	// MinLength bounds the length of each value's string form.
	MinLength *int

	// MinInclusive / MaxInclusive bound numeric literal values.
	MinInclusive *float64
	MaxInclusive *float64

	// In enumerates the admissible values.
	In []rdf.Term

	// HasValue requires at least one value equal to this term.
	HasValue rdf.Term

	// QualifiedClass and QualifiedMinCount require at least
	// QualifiedMinCount values typed with QualifiedClass.
	QualifiedClass    *rdf.IRI
	QualifiedMinCount *int

	// Severity of results produced by this shape. Empty means Violation.
	Severity Severity

	// Message overrides the generated result message when set.
	Message string
}

// QueryConstraint is a SELECT-based constraint attached to a node shape.
// The query may reference the focus node as $this; every row the query
// returns is one validation result, so a conforming focus node is one for
// which the query returns no rows.
type QueryConstraint struct {
	// Select is the query text with $this placeholders.
	Select string

	// Message describes the violation. Required; queries carry no
	// self-describing result text.
	Message string

	// Severity of produced results. Empty means Violation.
	Severity Severity
}

// NodeShape groups constraints that apply to every instance of a class.
type NodeShape struct {
	// Name identifies the shape in results and reports.
	Name string

	// TargetClasses select the focus nodes: every subject whose rdf:type
	// is among them.
	TargetClasses []rdf.IRI

	// Properties are the per-predicate constraints.
	Properties []PropertyShape

	// Queries are the SELECT-based constraints.
	Queries []QueryConstraint

	// Deactivated excludes the shape from validation without deleting it
	// from the manifest.
	Deactivated bool
}

func (s Severity) orViolation() Severity {
	if s == "" {
		return SeverityViolation
	}
	return s
}
