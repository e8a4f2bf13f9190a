package shacl

import (
	"fmt"
	"sort"

	"github.com/goccy/go-json"

	"github.com/c360studio/semlix/rdf"
)

// Result is one validation finding for one focus node.
type Result struct {
	FocusNode  rdf.Term
	Shape      string
	Path       rdf.IRI
	Constraint string
	Severity   Severity
	Message    string
	Value      rdf.Term
}

// EvaluationError records a constraint that could not be evaluated. It is
// not a validation result: conformance is unaffected, but reports surface
// these so a broken shape is never mistaken for a clean run.
type EvaluationError struct {
	Shape     string
	FocusNode rdf.Term
	Detail    string
}

// Report is the outcome of one validation run.
type Report struct {
	Results []Result
	Errors  []EvaluationError
}

// Conforms reports whether the run produced no Violation-severity results.
// It is computed from the current result list on every call, never cached,
// so a report stays consistent if results are filtered or appended.
func (r *Report) Conforms() bool {
	for i := range r.Results {
		if r.Results[i].Severity.orViolation() == SeverityViolation {
			return false
		}
	}
	return true
}

// Count returns the number of results at the given severity.
func (r *Report) Count(s Severity) int {
	n := 0
	for i := range r.Results {
		if r.Results[i].Severity.orViolation() == s {
			n++
		}
	}
	return n
}

// sortResults puts results in canonical order: focus node, then shape,
// then path, then constraint. Two runs over the same graph and shapes
// produce byte-identical reports.
func (r *Report) sortResults() {
	sort.SliceStable(r.Results, func(i, j int) bool {
		a, b := &r.Results[i], &r.Results[j]
		if af, bf := serializeOrEmpty(a.FocusNode), serializeOrEmpty(b.FocusNode); af != bf {
			return af < bf
		}
		if a.Shape != b.Shape {
			return a.Shape < b.Shape
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Constraint < b.Constraint
	})
}

func serializeOrEmpty(t rdf.Term) string {
	if t == nil {
		return ""
	}
	return t.Serialize()
}

// jsonResult is the wire form of a Result.
type jsonResult struct {
	FocusNode  string `json:"focus_node"`
	Shape      string `json:"shape"`
	Path       string `json:"path,omitempty"`
	Constraint string `json:"constraint"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	Value      string `json:"value,omitempty"`
}

type jsonError struct {
	Shape     string `json:"shape"`
	FocusNode string `json:"focus_node,omitempty"`
	Detail    string `json:"detail"`
}

type jsonReport struct {
	Conforms bool         `json:"conforms"`
	Results  []jsonResult `json:"results"`
	Errors   []jsonError  `json:"errors,omitempty"`
}

// MarshalJSON renders the report for machine consumption. Terms appear in
// their serialized N-Triples form.
func (r *Report) MarshalJSON() ([]byte, error) {
	out := jsonReport{
		Conforms: r.Conforms(),
		Results:  make([]jsonResult, 0, len(r.Results)),
	}
	for i := range r.Results {
		res := &r.Results[i]
		out.Results = append(out.Results, jsonResult{
			FocusNode:  serializeOrEmpty(res.FocusNode),
			Shape:      res.Shape,
			Path:       string(res.Path),
			Constraint: res.Constraint,
			Severity:   string(res.Severity.orViolation()),
			Message:    res.Message,
			Value:      serializeOrEmpty(res.Value),
		})
	}
	for i := range r.Errors {
		e := &r.Errors[i]
		out.Errors = append(out.Errors, jsonError{
			Shape:     e.Shape,
			FocusNode: serializeOrEmpty(e.FocusNode),
			Detail:    e.Detail,
		})
	}
	return json.Marshal(out)
}

// Summary renders a one-line human summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("conforms=%t violations=%d warnings=%d info=%d errors=%d",
		r.Conforms(),
		r.Count(SeverityViolation),
		r.Count(SeverityWarning),
		r.Count(SeverityInfo),
		len(r.Errors))
}
