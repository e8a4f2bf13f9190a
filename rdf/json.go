package rdf

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// jsonTerm is the wire form of a term: exactly one of iri, bnode, or value
// is set; datatype qualifies value.
type jsonTerm struct {
	IRI      string `json:"iri,omitempty"`
	BNode    string `json:"bnode,omitempty"`
	Value    string `json:"value,omitempty"`
	Datatype string `json:"datatype,omitempty"`
}

func encodeTerm(t Term) jsonTerm {
	switch v := t.(type) {
	case IRI:
		return jsonTerm{IRI: string(v)}
	case BlankNode:
		return jsonTerm{BNode: string(v)}
	case Literal:
		return jsonTerm{Value: v.Value, Datatype: string(v.Datatype)}
	}
	return jsonTerm{}
}

func (j jsonTerm) term() (Term, error) {
	switch {
	case j.IRI != "":
		return IRI(j.IRI), nil
	case j.BNode != "":
		return BlankNode(j.BNode), nil
	default:
		// A literal may legitimately be the empty string, so Value being
		// empty does not make the term invalid.
		return Literal{Value: j.Value, Datatype: IRI(j.Datatype)}, nil
	}
}

type jsonTriple struct {
	Subject   jsonTerm `json:"s"`
	Predicate string   `json:"p"`
	Object    jsonTerm `json:"o"`
}

// MarshalTriples serializes triples to the semlix JSON interchange form
// consumed by `semlix validate --data`.
func MarshalTriples(ts []Triple) ([]byte, error) {
	out := make([]jsonTriple, 0, len(ts))
	for _, t := range ts {
		out = append(out, jsonTriple{
			Subject:   encodeTerm(t.Subject),
			Predicate: string(t.Predicate),
			Object:    encodeTerm(t.Object),
		})
	}
	return json.MarshalIndent(out, "", "  ")
}

// UnmarshalTriples parses the JSON interchange form back into triples.
func UnmarshalTriples(data []byte) ([]Triple, error) {
	var raw []jsonTriple
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse triples JSON: %w", err)
	}
	out := make([]Triple, 0, len(raw))
	for i, jt := range raw {
		subj, err := jt.Subject.term()
		if err != nil {
			return nil, fmt.Errorf("triple %d subject: %w", i, err)
		}
		if _, isLit := subj.(Literal); isLit {
			return nil, fmt.Errorf("triple %d: literal subject", i)
		}
		if jt.Predicate == "" {
			return nil, fmt.Errorf("triple %d: empty predicate", i)
		}
		obj, err := jt.Object.term()
		if err != nil {
			return nil, fmt.Errorf("triple %d object: %w", i, err)
		}
		out = append(out, Triple{Subject: subj, Predicate: IRI(jt.Predicate), Object: obj})
	}
	return out, nil
}
