package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/c360studio/semlix/analyzer"
	"github.com/c360studio/semlix/rdf"
	"github.com/c360studio/semlix/shacl"
)

// renderRunSummary formats a per-file table of the analysis run.
func renderRunSummary(run *analyzer.RunResult) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"File", "Modules", "Triples"})

	totalModules := 0
	for _, f := range run.Files {
		tbl.AppendRow(table.Row{f.Path, len(f.Facts.Modules), len(f.Triples)})
		totalModules += len(f.Facts.Modules)
	}
	tbl.AppendFooter(table.Row{
		fmt.Sprintf("%d files", len(run.Files)),
		totalModules,
		run.Graph.Len(),
	})

	var b strings.Builder
	b.WriteString(tbl.Render())

	for _, e := range run.Errors {
		fmt.Fprintf(&b, "\n✗ %s: %v", e.Path, e.Err)
	}
	return b.String()
}

// renderReport formats a validation report: one row per finding, then
// evaluation errors and the conformance verdict.
func renderReport(report *shacl.Report) string {
	var b strings.Builder

	if len(report.Results) > 0 {
		tbl := table.NewWriter()
		tbl.SetStyle(table.StyleLight)
		tbl.AppendHeader(table.Row{"Severity", "Focus", "Shape", "Constraint", "Message"})
		for _, r := range report.Results {
			tbl.AppendRow(table.Row{
				string(r.Severity),
				termLabel(r.FocusNode),
				r.Shape,
				r.Constraint,
				r.Message,
			})
		}
		b.WriteString(tbl.Render())
		b.WriteString("\n")
	}

	for _, e := range report.Errors {
		fmt.Fprintf(&b, "! shape %s: %s\n", e.Shape, e.Detail)
	}

	b.WriteString(report.Summary())
	return b.String()
}

// termLabel renders a term compactly for table display.
func termLabel(t rdf.Term) string {
	if t == nil {
		return ""
	}
	if iri, ok := t.(rdf.IRI); ok {
		return string(iri)
	}
	return t.Serialize()
}
