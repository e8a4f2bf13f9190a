package shacl

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/c360studio/semlix/rdf"
)

// QueryExecutor evaluates a SELECT query against the graph under
// validation. Each returned row is a binding of variable name to term.
type QueryExecutor interface {
	Select(ctx context.Context, query string) ([]map[string]rdf.Term, error)
}

// Validator checks graphs against node shapes. The zero value validates
// property shapes only; attach a QueryExecutor to evaluate query
// constraints.
type Validator struct {
	exec QueryExecutor
}

// NewValidator creates a validator. exec may be nil, in which case query
// constraints are recorded as evaluation errors rather than silently
// skipped.
func NewValidator(exec QueryExecutor) *Validator {
	return &Validator{exec: exec}
}

// Validate checks every focus node of every active shape and returns the
// report. Constraint evaluation failures (bad pattern, query error) never
// abort the run: they are isolated into the report's Errors list and the
// remaining constraints still run.
func (v *Validator) Validate(ctx context.Context, g *rdf.Graph, shapes []NodeShape) (*Report, error) {
	report := &Report{}

	for _, shape := range shapes {
		if shape.Deactivated {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, focus := range focusNodes(g, shape.TargetClasses) {
			for i := range shape.Properties {
				v.checkProperty(g, shape, focus, &shape.Properties[i], report)
			}
			for i := range shape.Queries {
				v.checkQuery(ctx, shape, focus, &shape.Queries[i], report)
			}
		}
	}

	report.sortResults()
	return report, nil
}

// focusNodes unions the instances of every target class. A node typed with
// more than one target class is validated once.
func focusNodes(g *rdf.Graph, classes []rdf.IRI) []rdf.Term {
	var nodes []rdf.Term
	seen := make(map[string]struct{})
	for _, class := range classes {
		for _, node := range g.SubjectsWithType(class) {
			key := node.Serialize()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			nodes = append(nodes, node)
		}
	}
	return nodes
}

func (v *Validator) checkProperty(g *rdf.Graph, shape NodeShape, focus rdf.Term, p *PropertyShape, report *Report) {
	values := g.Objects(focus, p.Path)
	severity := p.Severity.orViolation()

	add := func(constraint, message string, value rdf.Term) {
		if p.Message != "" {
			message = p.Message
		}
		report.Results = append(report.Results, Result{
			FocusNode:  focus,
			Shape:      shape.Name,
			Path:       p.Path,
			Constraint: constraint,
			Severity:   severity,
			Message:    message,
			Value:      value,
		})
	}

	if p.MinCount != nil && len(values) < *p.MinCount {
		add("minCount", fmt.Sprintf("expected at least %d values, found %d", *p.MinCount, len(values)), nil)
	}
	if p.MaxCount != nil && len(values) > *p.MaxCount {
		add("maxCount", fmt.Sprintf("expected at most %d values, found %d", *p.MaxCount, len(values)), nil)
	}

	if p.Datatype != nil {
		for _, val := range values {
			lit, ok := val.(rdf.Literal)
			if !ok || lit.EffectiveDatatype() != *p.Datatype {
				add("datatype", fmt.Sprintf("value is not a %s literal", *p.Datatype), val)
			}
		}
	}

	if p.Class != nil {
		for _, val := range values {
			if _, isLit := val.(rdf.Literal); isLit || !g.HasType(val, *p.Class) {
				add("class", fmt.Sprintf("value is not an instance of %s", *p.Class), val)
			}
		}
	}

	if p.Pattern != nil {
		re, err := regexp.Compile(*p.Pattern)
		if err != nil {
			report.Errors = append(report.Errors, EvaluationError{
				Shape:     shape.Name,
				FocusNode: focus,
				Detail:    fmt.Sprintf("bad pattern %q: %v", *p.Pattern, err),
			})
		} else {
			for _, val := range values {
				if !re.MatchString(stringForm(val)) {
					add("pattern", fmt.Sprintf("value does not match %q", *p.Pattern), val)
				}
			}
		}
	}

	if p.MinLength != nil {
		for _, val := range values {
			if len(stringForm(val)) < *p.MinLength {
				add("minLength", fmt.Sprintf("value shorter than %d", *p.MinLength), val)
			}
		}
	}

	if p.MinInclusive != nil || p.MaxInclusive != nil {
		for _, val := range values {
			n, ok := numericValue(val)
			if !ok {
				add("range", "value is not numeric", val)
				continue
			}
			if p.MinInclusive != nil && n < *p.MinInclusive {
				add("minInclusive", fmt.Sprintf("value %v below %v", n, *p.MinInclusive), val)
			}
			if p.MaxInclusive != nil && n > *p.MaxInclusive {
				add("maxInclusive", fmt.Sprintf("value %v above %v", n, *p.MaxInclusive), val)
			}
		}
	}

	if len(p.In) > 0 {
		allowed := make(map[string]struct{}, len(p.In))
		for _, t := range p.In {
			allowed[t.Serialize()] = struct{}{}
		}
		for _, val := range values {
			if _, ok := allowed[val.Serialize()]; !ok {
				add("in", "value is not in the admissible set", val)
			}
		}
	}

	if p.HasValue != nil {
		found := false
		for _, val := range values {
			if val.Serialize() == p.HasValue.Serialize() {
				found = true
				break
			}
		}
		if !found {
			add("hasValue", fmt.Sprintf("required value %s is absent", p.HasValue.Serialize()), nil)
		}
	}

	if p.QualifiedClass != nil && p.QualifiedMinCount != nil {
		count := 0
		for _, val := range values {
			if _, isLit := val.(rdf.Literal); !isLit && g.HasType(val, *p.QualifiedClass) {
				count++
			}
		}
		if count < *p.QualifiedMinCount {
			add("qualifiedMinCount",
				fmt.Sprintf("expected at least %d values of %s, found %d",
					*p.QualifiedMinCount, *p.QualifiedClass, count), nil)
		}
	}
}

// checkQuery evaluates one query constraint for one focus node. The focus
// node is injected by substituting $this with the node's serialized form;
// every row of the result set becomes one validation result.
func (v *Validator) checkQuery(ctx context.Context, shape NodeShape, focus rdf.Term, q *QueryConstraint, report *Report) {
	if v.exec == nil {
		report.Errors = append(report.Errors, EvaluationError{
			Shape:     shape.Name,
			FocusNode: focus,
			Detail:    "query constraint present but no query executor configured",
		})
		return
	}

	query := strings.ReplaceAll(q.Select, "$this", focus.Serialize())
	rows, err := v.exec.Select(ctx, query)
	if err != nil {
		report.Errors = append(report.Errors, EvaluationError{
			Shape:     shape.Name,
			FocusNode: focus,
			Detail:    fmt.Sprintf("query failed: %v", err),
		})
		return
	}

	for _, row := range rows {
		report.Results = append(report.Results, Result{
			FocusNode:  focus,
			Shape:      shape.Name,
			Constraint: "query",
			Severity:   q.Severity.orViolation(),
			Message:    q.Message,
			Value:      rowValue(row),
		})
	}
}

// rowValue picks the reported value binding of a result row: the "value"
// variable when bound, otherwise the lexicographically first binding, so
// the same row always reports the same term.
func rowValue(row map[string]rdf.Term) rdf.Term {
	if v, ok := row["value"]; ok {
		return v
	}
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	return row[keys[0]]
}

// stringForm is the text a string facet inspects: the lexical value for
// literals, the full IRI for nodes.
func stringForm(t rdf.Term) string {
	switch v := t.(type) {
	case rdf.Literal:
		return v.Value
	case rdf.IRI:
		return string(v)
	case rdf.BlankNode:
		return string(v)
	}
	return ""
}

func numericValue(t rdf.Term) (float64, bool) {
	lit, ok := t.(rdf.Literal)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseFloat(lit.Value, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
