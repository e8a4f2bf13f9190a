package shacl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semlix/rdf"
)

const ns = "https://semlix.dev/ontology/"

func intp(v int) *int          { return &v }
func strp(v string) *string    { return &v }
func irip(v rdf.IRI) *rdf.IRI  { return &v }
func f64p(v float64) *float64  { return &v }

func moduleGraph() *rdf.Graph {
	g := rdf.NewGraph()
	a := rdf.IRI("https://example.org/code#A")
	b := rdf.IRI("https://example.org/code#B")
	g.AddAll([]rdf.Triple{
		{Subject: a, Predicate: rdf.RDFType, Object: rdf.IRI(ns + "Module")},
		{Subject: a, Predicate: rdf.IRI(ns + "moduleName"), Object: rdf.Str("A")},
		{Subject: b, Predicate: rdf.RDFType, Object: rdf.IRI(ns + "Module")},
	})
	return g
}

func validate(t *testing.T, g *rdf.Graph, shapes []NodeShape) *Report {
	t.Helper()
	report, err := NewValidator(nil).Validate(context.Background(), g, shapes)
	require.NoError(t, err)
	return report
}

func TestMultipleTargetClasses(t *testing.T) {
	g := moduleGraph()
	// B is typed with both classes; it must be validated once, not twice.
	g.Add(rdf.Triple{
		Subject:   rdf.IRI("https://example.org/code#B"),
		Predicate: rdf.RDFType,
		Object:    rdf.IRI(ns + "Protocol"),
	})

	shapes := []NodeShape{{
		Name:          "NamedShape",
		TargetClasses: []rdf.IRI{rdf.IRI(ns + "Module"), rdf.IRI(ns + "Protocol")},
		Properties: []PropertyShape{{
			Path:     rdf.IRI(ns + "moduleName"),
			MinCount: intp(1),
		}},
	}}

	report := validate(t, g, shapes)
	require.Len(t, report.Results, 1)
	assert.Equal(t, rdf.IRI("https://example.org/code#B"), report.Results[0].FocusNode)
}

func TestMinCountViolation(t *testing.T) {
	shapes := []NodeShape{{
		Name:          "ModuleShape",
		TargetClasses: []rdf.IRI{rdf.IRI(ns + "Module")},
		Properties: []PropertyShape{{
			Path:     rdf.IRI(ns + "moduleName"),
			MinCount: intp(1),
		}},
	}}

	report := validate(t, moduleGraph(), shapes)

	assert.False(t, report.Conforms())
	require.Len(t, report.Results, 1, "only the node missing the name violates")
	res := report.Results[0]
	assert.Equal(t, rdf.IRI("https://example.org/code#B"), res.FocusNode)
	assert.Equal(t, "minCount", res.Constraint)
	assert.Equal(t, SeverityViolation, res.Severity)
}

func TestMaxCountAndDatatype(t *testing.T) {
	g := moduleGraph()
	a := rdf.IRI("https://example.org/code#A")
	g.Add(rdf.Triple{Subject: a, Predicate: rdf.IRI(ns + "moduleName"), Object: rdf.Str("Alias")})
	g.Add(rdf.Triple{Subject: a, Predicate: rdf.IRI(ns + "arity"), Object: rdf.Str("three")})

	shapes := []NodeShape{{
		Name:          "ModuleShape",
		TargetClasses: []rdf.IRI{rdf.IRI(ns + "Module")},
		Properties: []PropertyShape{
			{Path: rdf.IRI(ns + "moduleName"), MaxCount: intp(1)},
			{Path: rdf.IRI(ns + "arity"), Datatype: irip(rdf.XSDNonNegativeInteger)},
		},
	}}

	report := validate(t, g, shapes)
	assert.False(t, report.Conforms())

	constraints := make(map[string]int)
	for _, res := range report.Results {
		constraints[res.Constraint]++
	}
	assert.Equal(t, 1, constraints["maxCount"])
	assert.Equal(t, 1, constraints["datatype"], "a string where an integer is required is a datatype violation")
}

func TestClassConstraint(t *testing.T) {
	g := rdf.NewGraph()
	mod := rdf.IRI("https://example.org/code#M")
	fn := rdf.IRI("https://example.org/code#M/f/0")
	stray := rdf.IRI("https://example.org/code#stray")
	g.AddAll([]rdf.Triple{
		{Subject: mod, Predicate: rdf.RDFType, Object: rdf.IRI(ns + "Module")},
		{Subject: fn, Predicate: rdf.RDFType, Object: rdf.IRI(ns + "Function")},
		{Subject: mod, Predicate: rdf.IRI(ns + "definesFunction"), Object: fn},
		{Subject: mod, Predicate: rdf.IRI(ns + "definesFunction"), Object: stray},
	})

	shapes := []NodeShape{{
		Name:          "ModuleShape",
		TargetClasses: []rdf.IRI{rdf.IRI(ns + "Module")},
		Properties: []PropertyShape{{
			Path:  rdf.IRI(ns + "definesFunction"),
			Class: irip(rdf.IRI(ns + "Function")),
		}},
	}}

	report := validate(t, g, shapes)
	require.Len(t, report.Results, 1)
	assert.Equal(t, stray, report.Results[0].Value)
}

func TestPatternInAndRange(t *testing.T) {
	g := rdf.NewGraph()
	c := rdf.IRI("https://example.org/code#M/f/0/clause/0")
	g.AddAll([]rdf.Triple{
		{Subject: c, Predicate: rdf.RDFType, Object: rdf.IRI(ns + "Clause")},
		{Subject: c, Predicate: rdf.IRI(ns + "clauseOrder"), Object: rdf.PosInt(1)},
		{Subject: c, Predicate: rdf.IRI(ns + "kind"), Object: rdf.Str("defx")},
	})

	shapes := []NodeShape{{
		Name:          "ClauseShape",
		TargetClasses: []rdf.IRI{rdf.IRI(ns + "Clause")},
		Properties: []PropertyShape{
			{Path: rdf.IRI(ns + "clauseOrder"), MinInclusive: f64p(1)},
			{Path: rdf.IRI(ns + "kind"), In: []rdf.Term{rdf.Str("def"), rdf.Str("defp"), rdf.Str("defmacro")}},
			{Path: rdf.IRI(ns + "kind"), Pattern: strp(`^def(p|macro)?$`)},
		},
	}}

	report := validate(t, g, shapes)

	constraints := make(map[string]int)
	for _, res := range report.Results {
		constraints[res.Constraint]++
	}
	assert.Zero(t, constraints["minInclusive"], "order 1 satisfies minInclusive 1")
	assert.Equal(t, 1, constraints["in"])
	assert.Equal(t, 1, constraints["pattern"])
}

func TestWarningsDoNotAffectConformance(t *testing.T) {
	shapes := []NodeShape{{
		Name:          "ModuleShape",
		TargetClasses: []rdf.IRI{rdf.IRI(ns + "Module")},
		Properties: []PropertyShape{{
			Path:     rdf.IRI(ns + "doc"),
			MinCount: intp(1),
			Severity: SeverityWarning,
			Message:  "modules should be documented",
		}},
	}}

	report := validate(t, moduleGraph(), shapes)

	assert.True(t, report.Conforms(), "warnings alone leave the graph conformant")
	assert.Equal(t, 2, report.Count(SeverityWarning))
	assert.Equal(t, "modules should be documented", report.Results[0].Message)
}

func TestDeactivatedShapeSkipped(t *testing.T) {
	shapes := []NodeShape{{
		Name:          "ModuleShape",
		TargetClasses: []rdf.IRI{rdf.IRI(ns + "Module")},
		Deactivated:   true,
		Properties:    []PropertyShape{{Path: rdf.IRI(ns + "moduleName"), MinCount: intp(1)}},
	}}

	report := validate(t, moduleGraph(), shapes)
	assert.True(t, report.Conforms())
	assert.Empty(t, report.Results)
}

func TestCanonicalOrdering(t *testing.T) {
	shapes := []NodeShape{{
		Name:          "ModuleShape",
		TargetClasses: []rdf.IRI{rdf.IRI(ns + "Module")},
		Properties: []PropertyShape{
			{Path: rdf.IRI(ns + "moduleName"), MinCount: intp(1)},
			{Path: rdf.IRI(ns + "doc"), MinCount: intp(1)},
		},
	}}

	first := validate(t, moduleGraph(), shapes)
	second := validate(t, moduleGraph(), shapes)

	require.Equal(t, len(first.Results), len(second.Results))
	for i := range first.Results {
		assert.Equal(t, first.Results[i], second.Results[i], "result order is canonical")
	}
	for i := 1; i < len(first.Results); i++ {
		prev, cur := first.Results[i-1], first.Results[i]
		assert.LessOrEqual(t, prev.FocusNode.Serialize(), cur.FocusNode.Serialize())
	}
}

// fakeExecutor returns canned rows and records the queries it saw.
type fakeExecutor struct {
	rows    map[string][]map[string]rdf.Term
	queries []string
	err     error
}

func (f *fakeExecutor) Select(_ context.Context, query string) ([]map[string]rdf.Term, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.rows[query], nil
}

func TestQueryConstraintSubstitutesThis(t *testing.T) {
	g := rdf.NewGraph()
	m := rdf.IRI("https://example.org/code#M")
	g.Add(rdf.Triple{Subject: m, Predicate: rdf.RDFType, Object: rdf.IRI(ns + "Module")})

	exec := &fakeExecutor{}
	shapes := []NodeShape{{
		Name:          "OrphanCheck",
		TargetClasses: []rdf.IRI{rdf.IRI(ns + "Module")},
		Queries: []QueryConstraint{{
			Select:  "SELECT ?value WHERE { $this ?p ?value }",
			Message: "module has dangling references",
		}},
	}}

	report, err := NewValidator(exec).Validate(context.Background(), g, shapes)
	require.NoError(t, err)

	require.Len(t, exec.queries, 1)
	assert.Contains(t, exec.queries[0], m.Serialize())
	assert.NotContains(t, exec.queries[0], "$this")
	assert.True(t, report.Conforms(), "zero rows means the focus node conforms")
}

func TestQueryConstraintRowsBecomeResults(t *testing.T) {
	g := rdf.NewGraph()
	m := rdf.IRI("https://example.org/code#M")
	g.Add(rdf.Triple{Subject: m, Predicate: rdf.RDFType, Object: rdf.IRI(ns + "Module")})

	query := strings.ReplaceAll("SELECT ?value WHERE { $this ?p ?value }", "$this", m.Serialize())
	exec := &fakeExecutor{rows: map[string][]map[string]rdf.Term{
		query: {
			{"value": rdf.Str("first")},
			{"value": rdf.Str("second")},
		},
	}}

	shapes := []NodeShape{{
		Name:          "OrphanCheck",
		TargetClasses: []rdf.IRI{rdf.IRI(ns + "Module")},
		Queries: []QueryConstraint{{
			Select:  "SELECT ?value WHERE { $this ?p ?value }",
			Message: "dangling reference",
		}},
	}}

	report, err := NewValidator(exec).Validate(context.Background(), g, shapes)
	require.NoError(t, err)

	assert.False(t, report.Conforms())
	require.Len(t, report.Results, 2, "every row is one result")
	assert.Equal(t, "dangling reference", report.Results[0].Message)
	assert.Equal(t, "query", report.Results[0].Constraint)
}

func TestQueryFailureIsIsolated(t *testing.T) {
	g := rdf.NewGraph()
	m := rdf.IRI("https://example.org/code#M")
	g.AddAll([]rdf.Triple{
		{Subject: m, Predicate: rdf.RDFType, Object: rdf.IRI(ns + "Module")},
	})

	exec := &fakeExecutor{err: errors.New("store unavailable")}
	shapes := []NodeShape{{
		Name:          "Broken",
		TargetClasses: []rdf.IRI{rdf.IRI(ns + "Module")},
		Queries:       []QueryConstraint{{Select: "SELECT 1", Message: "x"}},
		Properties:    []PropertyShape{{Path: rdf.IRI(ns + "moduleName"), MinCount: intp(1)}},
	}}

	report, err := NewValidator(exec).Validate(context.Background(), g, shapes)
	require.NoError(t, err, "a failing query does not abort the run")

	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0].Detail, "store unavailable")
	assert.Len(t, report.Results, 1, "property constraints still ran")
}

func TestQueryWithoutExecutorRecordsError(t *testing.T) {
	shapes := []NodeShape{{
		Name:          "NeedsExec",
		TargetClasses: []rdf.IRI{rdf.IRI(ns + "Module")},
		Queries:       []QueryConstraint{{Select: "SELECT 1", Message: "x"}},
	}}

	report := validate(t, moduleGraph(), shapes)

	assert.Len(t, report.Errors, 2, "one per focus node")
	assert.True(t, report.Conforms(), "evaluation errors are not violations")
}

func TestBadPatternRecordsError(t *testing.T) {
	g := moduleGraph()
	shapes := []NodeShape{{
		Name:          "ModuleShape",
		TargetClasses: []rdf.IRI{rdf.IRI(ns + "Module")},
		Properties: []PropertyShape{{
			Path:    rdf.IRI(ns + "moduleName"),
			Pattern: strp("("),
		}},
	}}

	report := validate(t, g, shapes)
	assert.NotEmpty(t, report.Errors)
	assert.True(t, report.Conforms())
}

func TestReportJSON(t *testing.T) {
	report := validate(t, moduleGraph(), []NodeShape{{
		Name:          "ModuleShape",
		TargetClasses: []rdf.IRI{rdf.IRI(ns + "Module")},
		Properties:    []PropertyShape{{Path: rdf.IRI(ns + "moduleName"), MinCount: intp(1)}},
	}})

	data, err := report.MarshalJSON()
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"conforms":false`)
	assert.Contains(t, s, `"minCount"`)
	assert.Contains(t, s, fmt.Sprintf(`"severity":%q`, SeverityViolation))
}
