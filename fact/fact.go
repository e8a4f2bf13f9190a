// Package fact defines the plain structural records the analyzer decodes
// from a syntax tree. Builders turn these records into triples; nothing in
// this package knows about RDF or tree nodes, which keeps both sides pure.
package fact

// Location is a source position. A nil *Location means the position is
// unknown; consumers must then omit location output rather than emit a
// sentinel.
type Location struct {
	Line   int
	Column int
}

// FunctionKind distinguishes the definition forms that produce callables.
type FunctionKind string

const (
	KindDef      FunctionKind = "def"
	KindDefp     FunctionKind = "defp"
	KindDefmacro FunctionKind = "defmacro"
)

// Clause is one clause of a multi-clause function. Index is 0-based and
// assigned in source order. HasGuard is a per-instance recorded flag: it is
// always present on the record and always emitted, unlike optional fields.
type Clause struct {
	Index    int
	HasGuard bool
	Loc      *Location
}

// Function is a named function or macro grouped across its clauses.
type Function struct {
	Name    string
	Arity   int
	Kind    FunctionKind
	Doc     string
	Clauses []Clause
	Loc     *Location
}

// AnonFunction is an fn -> end expression. Index is assigned per enclosing
// module in pre-order.
type AnonFunction struct {
	Index   int
	Arity   int
	Clauses []Clause
	Loc     *Location
}

// Field is one struct field. Names are unique within a struct by
// construction.
type Field struct {
	Name       string
	HasDefault bool
	Default    string
}

// ChildSpec is one entry of a supervisor's ordered child list. ID is the
// human-readable child id; it is not guaranteed unique across the list, so
// consumers must also carry the 0-based Position.
type ChildSpec struct {
	ID          string
	StartModule string
	Position    int
}

// Supervisor captures a supervision tree definition: the strategy and the
// ordered child list. Child order is significant.
type Supervisor struct {
	Strategy string
	Children []ChildSpec
	Loc      *Location
}

// Quoted captures one quote block together with its meta-programming
// profile. UnquoteCount and SpliceCount are recorded facts even when zero;
// HygieneViolations lists variables marked with var!.
type Quoted struct {
	Index             int
	UnquoteCount      int
	SpliceCount       int
	HygieneViolations []string
	Loc               *Location
}

// Module is the root record for one module definition. Segments carry the
// fully qualified name including enclosing modules (nested defmodule
// concatenates).
type Module struct {
	Segments   []string
	Doc        string
	Behaviours []string
	Protocol   string // non-empty for defprotocol
	ImplFor    string // non-empty for defimpl: the protocol implemented
	Functions  []Function
	Anons      []AnonFunction
	Fields     []Field // defstruct fields, if any
	Supervisor *Supervisor
	Quoted     []Quoted
	Loc        *Location
}

// File groups everything extracted from a single source file.
type File struct {
	Path    string
	Modules []Module
}
