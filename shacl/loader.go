package shacl

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/semlix/rdf"
)

// Shape manifests are YAML files declaring node shapes. IRIs may be
// written in full or with a prefix declared in the manifest; xsd: and rdf:
// are predeclared.

var builtinPrefixes = map[string]string{
	"xsd": "http://www.w3.org/2001/XMLSchema#",
	"rdf": "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
}

type manifest struct {
	Prefixes map[string]string `yaml:"prefixes"`
	Shapes   []manifestShape   `yaml:"shapes"`
}

type manifestShape struct {
	Name          string             `yaml:"name"`
	TargetClass   string             `yaml:"target_class"`
	TargetClasses []string           `yaml:"target_classes"`
	Deactivated   bool               `yaml:"deactivated"`
	Properties    []manifestProperty `yaml:"properties"`
	Queries       []manifestQuery    `yaml:"queries"`
}

type manifestProperty struct {
	Path              string   `yaml:"path"`
	MinCount          *int     `yaml:"min_count"`
	MaxCount          *int     `yaml:"max_count"`
	Datatype          string   `yaml:"datatype"`
	Class             string   `yaml:"class"`
	Pattern           *string  `yaml:"pattern"`
	MinLength         *int     `yaml:"min_length"`
	MinInclusive      *float64 `yaml:"min_inclusive"`
	MaxInclusive      *float64 `yaml:"max_inclusive"`
	In                []string `yaml:"in"`
	HasValue          string   `yaml:"has_value"`
	QualifiedClass    string   `yaml:"qualified_class"`
	QualifiedMinCount *int     `yaml:"qualified_min_count"`
	Severity          string   `yaml:"severity"`
	Message           string   `yaml:"message"`
}

type manifestQuery struct {
	Select   string `yaml:"select"`
	Message  string `yaml:"message"`
	Severity string `yaml:"severity"`
}

// LoadFile reads a YAML shape manifest from disk.
func LoadFile(path string) ([]NodeShape, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shapes: %w", err)
	}
	shapes, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("load shapes %s: %w", path, err)
	}
	return shapes, nil
}

// Load parses a YAML shape manifest.
func Load(data []byte) ([]NodeShape, error) {
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	prefixes := make(map[string]string, len(builtinPrefixes)+len(m.Prefixes))
	for k, v := range builtinPrefixes {
		prefixes[k] = v
	}
	for k, v := range m.Prefixes {
		prefixes[k] = v
	}

	var shapes []NodeShape
	for i, ms := range m.Shapes {
		shape, err := buildShape(ms, prefixes)
		if err != nil {
			return nil, fmt.Errorf("shape %d (%s): %w", i, ms.Name, err)
		}
		shapes = append(shapes, shape)
	}
	return shapes, nil
}

func buildShape(ms manifestShape, prefixes map[string]string) (NodeShape, error) {
	if ms.Name == "" {
		return NodeShape{}, fmt.Errorf("missing name")
	}
	raw := ms.TargetClasses
	if ms.TargetClass != "" {
		raw = append([]string{ms.TargetClass}, raw...)
	}
	if len(raw) == 0 {
		return NodeShape{}, fmt.Errorf("missing target_class")
	}

	var targets []rdf.IRI
	for _, tc := range raw {
		target, err := expandIRI(tc, prefixes)
		if err != nil {
			return NodeShape{}, fmt.Errorf("target_class: %w", err)
		}
		targets = append(targets, target)
	}

	shape := NodeShape{
		Name:          ms.Name,
		TargetClasses: targets,
		Deactivated:   ms.Deactivated,
	}

	for j, mp := range ms.Properties {
		p, err := buildProperty(mp, prefixes)
		if err != nil {
			return NodeShape{}, fmt.Errorf("property %d: %w", j, err)
		}
		shape.Properties = append(shape.Properties, p)
	}

	for j, mq := range ms.Queries {
		if mq.Select == "" {
			return NodeShape{}, fmt.Errorf("query %d: missing select", j)
		}
		if mq.Message == "" {
			return NodeShape{}, fmt.Errorf("query %d: missing message", j)
		}
		sev, err := parseSeverity(mq.Severity)
		if err != nil {
			return NodeShape{}, fmt.Errorf("query %d: %w", j, err)
		}
		shape.Queries = append(shape.Queries, QueryConstraint{
			Select:   mq.Select,
			Message:  mq.Message,
			Severity: sev,
		})
	}

	return shape, nil
}

func buildProperty(mp manifestProperty, prefixes map[string]string) (PropertyShape, error) {
	path, err := expandIRI(mp.Path, prefixes)
	if err != nil {
		return PropertyShape{}, fmt.Errorf("path: %w", err)
	}

	sev, err := parseSeverity(mp.Severity)
	if err != nil {
		return PropertyShape{}, err
	}

	p := PropertyShape{
		Path:              path,
		MinCount:          mp.MinCount,
		MaxCount:          mp.MaxCount,
		Pattern:           mp.Pattern,
		MinLength:         mp.MinLength,
		MinInclusive:      mp.MinInclusive,
		MaxInclusive:      mp.MaxInclusive,
		QualifiedMinCount: mp.QualifiedMinCount,
		Severity:          sev,
		Message:           mp.Message,
	}

	if mp.Datatype != "" {
		dt, err := expandIRI(mp.Datatype, prefixes)
		if err != nil {
			return PropertyShape{}, fmt.Errorf("datatype: %w", err)
		}
		p.Datatype = &dt
	}
	if mp.Class != "" {
		cls, err := expandIRI(mp.Class, prefixes)
		if err != nil {
			return PropertyShape{}, fmt.Errorf("class: %w", err)
		}
		p.Class = &cls
	}
	if mp.QualifiedClass != "" {
		qc, err := expandIRI(mp.QualifiedClass, prefixes)
		if err != nil {
			return PropertyShape{}, fmt.Errorf("qualified_class: %w", err)
		}
		p.QualifiedClass = &qc
	}
	for _, raw := range mp.In {
		p.In = append(p.In, termFromManifest(raw, prefixes))
	}
	if mp.HasValue != "" {
		p.HasValue = termFromManifest(mp.HasValue, prefixes)
	}

	return p, nil
}

// expandIRI resolves a prefixed name against the manifest's prefix table.
// Values containing :// are taken as full IRIs.
func expandIRI(s string, prefixes map[string]string) (rdf.IRI, error) {
	if s == "" {
		return "", fmt.Errorf("missing IRI")
	}
	if strings.Contains(s, "://") {
		return rdf.IRI(s), nil
	}
	prefix, local, found := strings.Cut(s, ":")
	if !found {
		return "", fmt.Errorf("%q is neither a full IRI nor a prefixed name", s)
	}
	base, ok := prefixes[prefix]
	if !ok {
		return "", fmt.Errorf("undeclared prefix %q", prefix)
	}
	return rdf.IRI(base + local), nil
}

// termFromManifest interprets a manifest value: prefixed names and full
// IRIs become IRI terms, everything else a string literal.
func termFromManifest(s string, prefixes map[string]string) rdf.Term {
	if iri, err := expandIRI(s, prefixes); err == nil {
		if strings.Contains(s, "://") || knownPrefix(s, prefixes) {
			return iri
		}
	}
	return rdf.Str(s)
}

func knownPrefix(s string, prefixes map[string]string) bool {
	prefix, _, found := strings.Cut(s, ":")
	if !found {
		return false
	}
	_, ok := prefixes[prefix]
	return ok
}

func parseSeverity(s string) (Severity, error) {
	switch s {
	case "":
		return "", nil
	case string(SeverityViolation):
		return SeverityViolation, nil
	case string(SeverityWarning):
		return SeverityWarning, nil
	case string(SeverityInfo):
		return SeverityInfo, nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}
