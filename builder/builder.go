// Package builder turns decoded structural facts into triples. Every
// builder follows the same contract: the rdf:type triple comes first,
// optional scalars are emitted only when present, per-instance boolean
// flags are always emitted as xsd:boolean literals, numeric literals carry
// their mandated datatype, and the returned collection is deduplicated
// (set semantics) before it is handed back.
package builder

import (
	"fmt"

	"github.com/c360studio/semlix/fact"
	"github.com/c360studio/semlix/iri"
	"github.com/c360studio/semlix/rdf"
	"github.com/c360studio/semlix/vocabulary/elixir"
)

// Emitter builds triples for one source file. It carries the entity base
// namespace, the repo-relative file path for source-location attachment,
// and a blank node generator shared by all list encodings of the file.
type Emitter struct {
	base     string
	filePath string
	gen      *rdf.BlankNodeGen
}

// New returns an Emitter for the given entity base and file path. filePath
// may be empty, in which case source-location triples are silently omitted.
func New(base, filePath string) *Emitter {
	return &Emitter{
		base:     base,
		filePath: filePath,
		gen:      rdf.NewBlankNodeGen("n"),
	}
}

// File builds triples for every module in the file record.
func (e *Emitter) File(f fact.File) ([]rdf.Triple, error) {
	var out []rdf.Triple
	for i := range f.Modules {
		_, ts, err := e.Module(f.Modules[i])
		if err != nil {
			return nil, fmt.Errorf("module %d: %w", i, err)
		}
		out = append(out, ts...)
	}
	return rdf.Dedupe(out), nil
}

// Module builds the triples for one module definition and everything
// nested in it.
func (e *Emitter) Module(m fact.Module) (rdf.IRI, []rdf.Triple, error) {
	scope := e.scope(m.Segments)
	id, ok := scope.Module()
	if !ok {
		return "", nil, fmt.Errorf("module identifier: empty naming context")
	}

	class := rdf.IRI(elixir.ClassModule)
	switch {
	case m.Protocol != "":
		class = rdf.IRI(elixir.ClassProtocol)
	case m.ImplFor != "":
		class = rdf.IRI(elixir.ClassProtocolImpl)
	case m.Supervisor != nil:
		class = rdf.IRI(elixir.ClassSupervisor)
	}

	triples := []rdf.Triple{typeOf(id, class)}
	triples = append(triples, obj(id, elixir.PropModuleName, rdf.Str(joinSegments(m.Segments))))

	if m.Doc != "" {
		triples = append(triples, obj(id, elixir.PropDoc, rdf.Str(m.Doc)))
	}
	for _, b := range m.Behaviours {
		triples = append(triples, obj(id, elixir.PropImplementsBehaviour, rdf.Str(b)))
	}
	if m.ImplFor != "" {
		triples = append(triples, obj(id, elixir.PropImplementsProtocol, rdf.Str(m.ImplFor)))
	}
	triples = append(triples, e.location(id, m.Loc)...)

	for i := range m.Functions {
		fnID, ts, err := e.Function(m.Functions[i], scope)
		if err != nil {
			return "", nil, err
		}
		triples = append(triples, rdf.Triple{Subject: id, Predicate: rdf.IRI(elixir.PropDefinesFunction), Object: fnID})
		triples = append(triples, ts...)
	}

	for i := range m.Anons {
		anonID, ts, err := e.AnonFunction(m.Anons[i], scope)
		if err != nil {
			return "", nil, err
		}
		triples = append(triples, rdf.Triple{Subject: id, Predicate: rdf.IRI(elixir.PropHasAnonymousFunction), Object: anonID})
		triples = append(triples, ts...)
	}

	for i := range m.Fields {
		fieldID, ts, err := e.Field(m.Fields[i], scope)
		if err != nil {
			return "", nil, err
		}
		triples = append(triples, rdf.Triple{Subject: id, Predicate: rdf.IRI(elixir.PropHasField), Object: fieldID})
		triples = append(triples, ts...)
	}

	if m.Supervisor != nil {
		ts, err := e.Supervisor(*m.Supervisor, id, scope)
		if err != nil {
			return "", nil, err
		}
		triples = append(triples, ts...)
	}

	for i := range m.Quoted {
		qID, ts, err := e.Quoted(m.Quoted[i], scope)
		if err != nil {
			return "", nil, err
		}
		triples = append(triples, rdf.Triple{Subject: id, Predicate: rdf.IRI(elixir.PropHasQuoted), Object: qID})
		triples = append(triples, ts...)
	}

	return id, rdf.Dedupe(triples), nil
}

// Function builds the triples for one named function and its clauses.
func (e *Emitter) Function(fn fact.Function, scope iri.Scope) (rdf.IRI, []rdf.Triple, error) {
	id, ok := scope.Function(fn.Name, fn.Arity)
	if !ok {
		return "", nil, fmt.Errorf("function identifier for %s/%d", fn.Name, fn.Arity)
	}

	triples := []rdf.Triple{
		typeOf(id, rdf.IRI(elixir.ClassFunction)),
		obj(id, elixir.PropFunctionName, rdf.Str(fn.Name)),
		obj(id, elixir.PropArity, rdf.NonNegInt(fn.Arity)),
		obj(id, elixir.PropFunctionKind, rdf.Str(string(fn.Kind))),
	}
	if fn.Doc != "" {
		triples = append(triples, obj(id, elixir.PropDoc, rdf.Str(fn.Doc)))
	}
	triples = append(triples, e.location(id, fn.Loc)...)

	clauseTriples, err := e.clauses(fn.Clauses, id)
	if err != nil {
		return "", nil, err
	}
	triples = append(triples, clauseTriples...)

	return id, rdf.Dedupe(triples), nil
}

// AnonFunction builds the triples for one fn -> end expression.
func (e *Emitter) AnonFunction(an fact.AnonFunction, scope iri.Scope) (rdf.IRI, []rdf.Triple, error) {
	id, ok := scope.Anon(an.Index)
	if !ok {
		return "", nil, fmt.Errorf("anonymous function identifier at index %d", an.Index)
	}

	triples := []rdf.Triple{
		typeOf(id, rdf.IRI(elixir.ClassAnonymousFunction)),
		obj(id, elixir.PropArity, rdf.NonNegInt(an.Arity)),
	}
	triples = append(triples, e.location(id, an.Loc)...)

	clauseTriples, err := e.clauses(an.Clauses, id)
	if err != nil {
		return "", nil, err
	}
	triples = append(triples, clauseTriples...)

	return id, rdf.Dedupe(triples), nil
}

// clauses emits each clause under parent. The identifier path is 0-indexed
// while the recorded clauseOrder attribute is 1-indexed; both must be
// reproduced exactly for identifier stability.
func (e *Emitter) clauses(cs []fact.Clause, parent rdf.IRI) ([]rdf.Triple, error) {
	var triples []rdf.Triple
	for _, c := range cs {
		id, ok := iri.Clause(parent, c.Index)
		if !ok {
			return nil, fmt.Errorf("clause identifier at index %d under %s", c.Index, parent)
		}
		triples = append(triples,
			rdf.Triple{Subject: parent, Predicate: rdf.IRI(elixir.PropHasClause), Object: id},
			typeOf(id, rdf.IRI(elixir.ClassClause)),
			obj(id, elixir.PropClauseOrder, rdf.PosInt(c.Index+1)),
			// Guard presence is a recorded per-instance flag, emitted as
			// an explicit boolean rather than by triple absence.
			obj(id, elixir.PropHasGuard, rdf.Bool(c.HasGuard)),
		)
		triples = append(triples, e.location(id, c.Loc)...)
	}
	return triples, nil
}

// Field builds the triples for one struct field.
func (e *Emitter) Field(f fact.Field, scope iri.Scope) (rdf.IRI, []rdf.Triple, error) {
	id, ok := scope.Field(f.Name)
	if !ok {
		return "", nil, fmt.Errorf("field identifier for %q", f.Name)
	}

	triples := []rdf.Triple{
		typeOf(id, rdf.IRI(elixir.ClassStructField)),
		obj(id, elixir.PropFieldName, rdf.Str(f.Name)),
	}
	if f.HasDefault {
		triples = append(triples, obj(id, elixir.PropFieldDefault, rdf.Str(f.Default)))
	}
	return id, rdf.Dedupe(triples), nil
}

// Supervisor builds the triples for a supervision tree: per-child entities
// and the ordered rdf list linking them. The list encoding is authoritative
// for traversal order; childPosition integers coexist as informational
// attributes only.
func (e *Emitter) Supervisor(sup fact.Supervisor, moduleID rdf.IRI, scope iri.Scope) ([]rdf.Triple, error) {
	var triples []rdf.Triple
	if sup.Strategy != "" {
		triples = append(triples, obj(moduleID, elixir.PropStrategy, rdf.Str(sup.Strategy)))
	}
	triples = append(triples, e.location(moduleID, sup.Loc)...)

	childIDs := make([]rdf.Term, 0, len(sup.Children))
	for _, child := range sup.Children {
		id, ok := scope.Child(child.ID, child.Position)
		if !ok {
			return nil, fmt.Errorf("child identifier for %q at position %d", child.ID, child.Position)
		}
		childIDs = append(childIDs, id)

		triples = append(triples,
			rdf.Triple{Subject: moduleID, Predicate: rdf.IRI(elixir.PropHasChild), Object: id},
			typeOf(id, rdf.IRI(elixir.ClassChildSpec)),
			obj(id, elixir.PropChildID, rdf.Str(child.ID)),
			obj(id, elixir.PropChildPosition, rdf.NonNegInt(child.Position)),
		)
		if child.StartModule != "" {
			triples = append(triples, obj(id, elixir.PropStartModule, rdf.Str(child.StartModule)))
		}
	}

	triples = append(triples, rdf.EmitList(moduleID, rdf.IRI(elixir.PropChildList), childIDs, e.gen)...)
	return rdf.Dedupe(triples), nil
}

// Quoted builds the triples for one quote block. Unquote and splice counts
// are recorded facts and always emitted, even when zero.
func (e *Emitter) Quoted(q fact.Quoted, scope iri.Scope) (rdf.IRI, []rdf.Triple, error) {
	id, ok := scope.Quoted(q.Index)
	if !ok {
		return "", nil, fmt.Errorf("quoted identifier at index %d", q.Index)
	}

	triples := []rdf.Triple{
		typeOf(id, rdf.IRI(elixir.ClassQuotedExpression)),
		obj(id, elixir.PropUnquoteCount, rdf.NonNegInt(q.UnquoteCount)),
		obj(id, elixir.PropSpliceCount, rdf.NonNegInt(q.SpliceCount)),
	}
	for _, v := range q.HygieneViolations {
		triples = append(triples, obj(id, elixir.PropHygieneViolation, rdf.Str(v)))
	}
	triples = append(triples, e.location(id, q.Loc)...)

	return id, rdf.Dedupe(triples), nil
}

// location attaches source-position triples. Both a location record and a
// file-path context are required; when either is missing the triples are
// silently omitted, which is the documented contract rather than an error.
func (e *Emitter) location(subject rdf.IRI, loc *fact.Location) []rdf.Triple {
	if loc == nil || e.filePath == "" {
		return nil
	}
	triples := []rdf.Triple{obj(subject, elixir.PropFile, rdf.Str(e.filePath))}
	if loc.Line > 0 {
		triples = append(triples, obj(subject, elixir.PropLine, rdf.PosInt(loc.Line)))
	}
	if loc.Column > 0 {
		triples = append(triples, obj(subject, elixir.PropColumn, rdf.PosInt(loc.Column)))
	}
	return triples
}

func (e *Emitter) scope(segments []string) iri.Scope {
	return iri.Scope{Base: e.base, Segments: segments, FilePath: e.filePath}
}

func typeOf(subject rdf.IRI, class rdf.IRI) rdf.Triple {
	return rdf.Triple{Subject: subject, Predicate: rdf.RDFType, Object: class}
}

func obj(subject rdf.IRI, predicate string, o rdf.Term) rdf.Triple {
	return rdf.Triple{Subject: subject, Predicate: rdf.IRI(predicate), Object: o}
}

func joinSegments(segments []string) string {
	out := ""
	for i, s := range segments {
		if i > 0 {
			out += "."
		}
		out += s
	}
	return out
}
