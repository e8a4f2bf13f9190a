// Package graph publishes analyzed code entities to the knowledge graph.
package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/goccy/go-json"

	"github.com/c360studio/semlix/analyzer"
	"github.com/c360studio/semlix/rdf"
	"github.com/c360studio/semlix/vocabulary/elixir"
)

// Subject for graph ingestion.
const GraphIngestSubject = "graph.ingest.entity"

// Source tag attached to every published triple.
const tripleSource = "semlix.analyzer"

// PublishRun publishes every file of an analysis run to the knowledge
// graph, one ingest message per file. A nil client skips publishing so
// local runs degrade gracefully.
func PublishRun(ctx context.Context, nc *natsclient.Client, run *analyzer.RunResult) error {
	if nc == nil {
		return nil
	}

	for i := range run.Files {
		if err := PublishFile(ctx, nc, run.RunID, &run.Files[i]); err != nil {
			return fmt.Errorf("publish %s: %w", run.Files[i].Path, err)
		}
	}
	return nil
}

// PublishFile publishes one file's triples.
func PublishFile(ctx context.Context, nc *natsclient.Client, runID string, file *analyzer.FileResult) error {
	if nc == nil {
		return nil
	}

	now := time.Now()
	payload := EntityPayload{
		EntityID_:  FileEntityID(file.Path),
		RunID:      runID,
		TripleData: toMessageTriples(file.Triples, now),
		UpdatedAt:  now,
	}

	data, err := json.Marshal(&payload)
	if err != nil {
		return fmt.Errorf("marshal entity: %w", err)
	}

	if err := nc.PublishToStream(ctx, GraphIngestSubject, data); err != nil {
		return fmt.Errorf("publish entity: %w", err)
	}
	return nil
}

// toMessageTriples converts ontology triples to the stream's triple form.
// Predicates with a registered dotted name cross the boundary under it;
// the rest keep their raw IRI. Typed literal objects flatten to their
// lexical value, node objects to their IRI or blank label.
func toMessageTriples(triples []rdf.Triple, now time.Time) []message.Triple {
	out := make([]message.Triple, 0, len(triples))
	for _, t := range triples {
		predicate := string(t.Predicate)
		if dotted, ok := elixir.DottedForIRI(predicate); ok {
			predicate = dotted
		}
		out = append(out, message.Triple{
			Subject:    subjectString(t.Subject),
			Predicate:  predicate,
			Object:     objectValue(t.Object),
			Source:     tripleSource,
			Timestamp:  now,
			Confidence: 1.0,
		})
	}
	return out
}

func subjectString(t rdf.Term) string {
	switch v := t.(type) {
	case rdf.IRI:
		return string(v)
	case rdf.BlankNode:
		return v.Serialize()
	}
	return t.Serialize()
}

func objectValue(t rdf.Term) any {
	switch v := t.(type) {
	case rdf.IRI:
		return string(v)
	case rdf.BlankNode:
		return v.Serialize()
	case rdf.Literal:
		return v.Value
	}
	return t.Serialize()
}

// FileEntityID generates a consistent entity ID for a source file.
// Format: semlix.local.code.file.<path>
func FileEntityID(path string) string {
	return fmt.Sprintf("semlix.local.code.file.%s", path)
}
