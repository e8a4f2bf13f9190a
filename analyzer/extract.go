package analyzer

import (
	"strings"

	"github.com/c360studio/semlix/fact"
	"github.com/c360studio/semlix/sourcetree"
)

// ExtractFile decodes every module defined in the tree into fact records.
// Nested modules surface as separate records with concatenated name
// segments; a file with no module definitions yields an empty record set,
// which is not an error.
func ExtractFile(root sourcetree.Node, path string) fact.File {
	f := fact.File{Path: path}

	modules := sourcetree.FindAll(root, isModuleLike)
	contexts := moduleContexts(root)

	for _, n := range modules {
		call := n.(*sourcetree.Composite)
		m, ok := extractModule(call, contexts[call])
		if !ok {
			continue
		}
		f.Modules = append(f.Modules, m)
	}
	return f
}

// moduleContexts records, for every module-like node, the segments of its
// enclosing modules in outermost-first order. Nested defmodule concatenates
// onto the enclosing name.
func moduleContexts(root sourcetree.Node) map[*sourcetree.Composite][]string {
	out := make(map[*sourcetree.Composite][]string)
	sourcetree.Walk(root, struct{}{}, sourcetree.Visitor[struct{}]{
		Pre: func(n sourcetree.Node, ctx sourcetree.Context, acc struct{}) sourcetree.Step[struct{}] {
			if !isModuleLike(n) {
				return sourcetree.Continue(acc)
			}
			call := n.(*sourcetree.Composite)
			var prefix []string
			// Parents are nearest-first; walk them outermost-first.
			for i := len(ctx.Parents) - 1; i >= 0; i-- {
				if !isModuleLike(ctx.Parents[i]) {
					continue
				}
				if segs, ok := moduleAlias(ctx.Parents[i].(*sourcetree.Composite)); ok {
					prefix = append(prefix, segs...)
				}
			}
			out[call] = prefix
			return sourcetree.Continue(acc)
		},
	})
	return out
}

func extractModule(call *sourcetree.Composite, prefix []string) (fact.Module, bool) {
	own, ok := moduleAlias(call)
	if !ok {
		return fact.Module{}, false
	}

	m := fact.Module{
		Segments: append(append([]string(nil), prefix...), own...),
		Loc:      locOf(call),
	}

	switch {
	case IsProtocolDef(call):
		m.Protocol = joinDots(own)
	case IsProtocolImpl(call):
		// defimpl Proto, for: Type defines module Proto.Type.
		m.ImplFor = joinDots(own)
		if forSegs, ok := implForType(call); ok {
			m.Segments = append(m.Segments, forSegs...)
		}
	}

	body := callDoBlock(call)
	if body == nil {
		return m, true
	}

	extractBody(body, &m)
	extractNested(body, &m)
	return m, true
}

// implForType reads the for: option of a defimpl call.
func implForType(call *sourcetree.Composite) ([]string, bool) {
	args := callArguments(call)
	if args == nil {
		return nil, false
	}
	for _, n := range args.Children {
		kw, ok := n.(*sourcetree.Composite)
		if !ok || kw.Tag != "keywords" {
			continue
		}
		for _, pn := range kw.Children {
			pair, ok := pn.(*sourcetree.Composite)
			if !ok || pair.Tag != "pair" || len(pair.Children) != 2 {
				continue
			}
			key, kok := pair.Children[0].(*sourcetree.Leaf)
			val, vok := pair.Children[1].(*sourcetree.Leaf)
			if kok && vok && key.Atom == "for" && val.Kind == sourcetree.LeafAtom {
				return splitDots(val.Atom), true
			}
		}
	}
	return nil, false
}

// extractBody walks the module body's top-level statements in order:
// attributes, function definitions, and defstruct. A pending @doc attaches
// to the next function definition, matching compiler behavior.
func extractBody(body *sourcetree.Composite, m *fact.Module) {
	var pendingDoc string
	// Functions are grouped by name and arity; clauses of the same head
	// get consecutive 0-based indices in source order.
	type fnKey struct {
		name  string
		arity int
	}
	index := make(map[fnKey]int)

	for _, stmt := range body.Children {
		if name, args, ok := attribute(stmt); ok {
			switch name {
			case "moduledoc":
				if s, ok := stringArg(args); ok {
					m.Doc = s
				}
			case "doc":
				pendingDoc, _ = stringArg(args)
			case "behaviour", "behavior":
				if len(args) > 0 {
					if leaf, ok := args[0].(*sourcetree.Leaf); ok && leaf.Kind == sourcetree.LeafAtom {
						m.Behaviours = append(m.Behaviours, leaf.Atom)
					}
				}
			}
			continue
		}

		target, call, ok := callTarget(stmt)
		if !ok {
			continue
		}

		if kind, isDef := functionKind(target); isDef {
			name, arity, guarded, ok := functionHead(call)
			if !ok {
				continue
			}
			key := fnKey{name: name, arity: arity}
			clause := fact.Clause{HasGuard: guarded, Loc: locOf(call)}

			if at, exists := index[key]; exists {
				fn := &m.Functions[at]
				clause.Index = len(fn.Clauses)
				fn.Clauses = append(fn.Clauses, clause)
			} else {
				index[key] = len(m.Functions)
				m.Functions = append(m.Functions, fact.Function{
					Name:    name,
					Arity:   arity,
					Kind:    kind,
					Doc:     pendingDoc,
					Clauses: []fact.Clause{clause},
					Loc:     locOf(call),
				})
			}
			pendingDoc = ""
			continue
		}

		if target == "defstruct" {
			m.Fields = append(m.Fields, structFields(call)...)
		}
	}
}

// extractNested deep-walks the module body for constructs that may appear
// at any depth: anonymous functions, quote blocks, and supervisor child
// lists. Nested module definitions are pruned; their contents belong to
// their own records.
func extractNested(body *sourcetree.Composite, m *fact.Module) {
	type state struct{}
	sourcetree.Walk[state](body, state{}, sourcetree.Visitor[state]{
		Pre: func(n sourcetree.Node, _ sourcetree.Context, acc state) sourcetree.Step[state] {
			if isModuleLike(n) {
				return sourcetree.Skip(acc)
			}

			if IsAnonFunction(n) {
				c := n.(*sourcetree.Composite)
				m.Anons = append(m.Anons, extractAnon(c, len(m.Anons)))
				return sourcetree.Continue(acc)
			}

			if IsQuote(n) {
				c := n.(*sourcetree.Composite)
				m.Quoted = append(m.Quoted, extractQuoted(c, len(m.Quoted)))
				// Escapes inside this quote are counted by extractQuoted;
				// do not double-count them here.
				return sourcetree.Skip(acc)
			}

			if call, ok := supervisorCall(n); ok && m.Supervisor == nil {
				if sup, ok := extractSupervisor(call); ok {
					m.Supervisor = &sup
				}
			}
			return sourcetree.Continue(acc)
		},
	})
}

func extractAnon(c *sourcetree.Composite, index int) fact.AnonFunction {
	anon := fact.AnonFunction{Index: index, Loc: locOf(c)}
	for i, clause := range stabClauses(c) {
		arity, guarded := stabArity(clause)
		if i == 0 {
			anon.Arity = arity
		}
		anon.Clauses = append(anon.Clauses, fact.Clause{
			Index:    i,
			HasGuard: guarded,
			Loc:      locOf(clause),
		})
	}
	return anon
}

func extractQuoted(c *sourcetree.Composite, index int) fact.Quoted {
	q := fact.Quoted{Index: index, Loc: locOf(c)}
	body := callDoBlock(c)
	if body == nil {
		return q
	}
	type state struct{}
	sourcetree.Walk[state](body, state{}, sourcetree.Visitor[state]{
		Pre: func(n sourcetree.Node, _ sourcetree.Context, acc state) sourcetree.Step[state] {
			switch {
			case IsUnquoteSplicing(n):
				q.SpliceCount++
			case IsUnquote(n):
				q.UnquoteCount++
			default:
				if v, ok := hygieneEscape(n); ok {
					q.HygieneViolations = append(q.HygieneViolations, v)
				}
			}
			return sourcetree.Continue(acc)
		},
	})
	return q
}

// extractSupervisor decodes a Supervisor.start_link/init call: the first
// argument is the ordered child list, the strategy rides in the trailing
// keyword options.
func extractSupervisor(call *sourcetree.Composite) (fact.Supervisor, bool) {
	args := callArguments(call)
	if args == nil || len(args.Children) == 0 {
		return fact.Supervisor{}, false
	}

	sup := fact.Supervisor{Loc: locOf(call)}

	list, ok := args.Children[0].(*sourcetree.Composite)
	if !ok || list.Tag != "list" {
		return fact.Supervisor{}, false
	}
	for i, item := range list.Children {
		if spec, ok := childSpec(item, i); ok {
			sup.Children = append(sup.Children, spec)
		}
	}

	for _, n := range args.Children[1:] {
		kw, ok := n.(*sourcetree.Composite)
		if !ok || kw.Tag != "keywords" {
			continue
		}
		for _, pn := range kw.Children {
			pair, ok := pn.(*sourcetree.Composite)
			if !ok || pair.Tag != "pair" || len(pair.Children) != 2 {
				continue
			}
			key, kok := pair.Children[0].(*sourcetree.Leaf)
			val, vok := pair.Children[1].(*sourcetree.Leaf)
			if kok && vok && key.Atom == "strategy" && val.Kind == sourcetree.LeafAtom {
				sup.Strategy = val.Atom
			}
		}
	}
	return sup, true
}

// childSpec decodes one child list entry. Supported forms: a bare module
// alias, a {Module, args} tuple, and a child spec map with an id key.
func childSpec(n sourcetree.Node, position int) (fact.ChildSpec, bool) {
	switch v := n.(type) {
	case *sourcetree.Leaf:
		if v.Kind == sourcetree.LeafAtom && v.Atom != "" {
			return fact.ChildSpec{ID: v.Atom, StartModule: v.Atom, Position: position}, true
		}
	case *sourcetree.Composite:
		switch v.Tag {
		case "tuple":
			if len(v.Children) > 0 {
				if leaf, ok := v.Children[0].(*sourcetree.Leaf); ok && leaf.Kind == sourcetree.LeafAtom {
					return fact.ChildSpec{ID: leaf.Atom, StartModule: leaf.Atom, Position: position}, true
				}
			}
		case "map":
			if id, start, ok := specMap(v); ok {
				return fact.ChildSpec{ID: id, StartModule: start, Position: position}, true
			}
		}
	}
	return fact.ChildSpec{}, false
}

// specMap reads id: and start: out of a %{...} child spec.
func specMap(m *sourcetree.Composite) (id, start string, ok bool) {
	var pairs []*sourcetree.Composite
	sourcetree.Walk[struct{}](m, struct{}{}, sourcetree.Visitor[struct{}]{
		Pre: func(n sourcetree.Node, _ sourcetree.Context, acc struct{}) sourcetree.Step[struct{}] {
			if c, isComp := n.(*sourcetree.Composite); isComp && c.Tag == "pair" {
				pairs = append(pairs, c)
				return sourcetree.Skip(acc)
			}
			return sourcetree.Continue(acc)
		},
	})
	for _, pair := range pairs {
		if len(pair.Children) != 2 {
			continue
		}
		key, kok := pair.Children[0].(*sourcetree.Leaf)
		if !kok || key.Kind != sourcetree.LeafAtom {
			continue
		}
		val, vok := pair.Children[1].(*sourcetree.Leaf)
		if !vok || val.Kind != sourcetree.LeafAtom {
			continue
		}
		switch key.Atom {
		case "id":
			id = val.Atom
		case "start":
			start = val.Atom
		}
	}
	return id, start, id != ""
}

// structFields decodes defstruct's argument: a list of bare atoms (no
// default) and keyword pairs (field with default). Duplicate names keep the
// first occurrence, mirroring compile-time uniqueness.
func structFields(call *sourcetree.Composite) []fact.Field {
	args := callArguments(call)
	if args == nil || len(args.Children) == 0 {
		return nil
	}

	var items []sourcetree.Node
	if list, ok := args.Children[0].(*sourcetree.Composite); ok && list.Tag == "list" {
		items = list.Children
	} else {
		items = args.Children
	}

	seen := make(map[string]struct{})
	var out []fact.Field
	add := func(f fact.Field) {
		if _, dup := seen[f.Name]; dup {
			return
		}
		seen[f.Name] = struct{}{}
		out = append(out, f)
	}

	for _, item := range items {
		switch v := item.(type) {
		case *sourcetree.Leaf:
			if v.Kind == sourcetree.LeafAtom && v.Atom != "" {
				add(fact.Field{Name: v.Atom})
			}
		case *sourcetree.Composite:
			if v.Tag != "keywords" {
				continue
			}
			for _, pn := range v.Children {
				pair, ok := pn.(*sourcetree.Composite)
				if !ok || pair.Tag != "pair" || len(pair.Children) != 2 {
					continue
				}
				key, kok := pair.Children[0].(*sourcetree.Leaf)
				if !kok || key.Kind != sourcetree.LeafAtom {
					continue
				}
				add(fact.Field{
					Name:       key.Atom,
					HasDefault: true,
					Default:    defaultText(pair.Children[1]),
				})
			}
		}
	}
	return out
}

// defaultText renders a default value as source-like text for the
// fieldDefault attribute. Composites render as their tag; exact
// reconstruction is not attempted.
func defaultText(n sourcetree.Node) string {
	switch v := n.(type) {
	case *sourcetree.Leaf:
		return v.Text()
	case *sourcetree.Composite:
		return v.Tag
	}
	return ""
}

func joinDots(segments []string) string { return strings.Join(segments, ".") }

func splitDots(s string) []string { return strings.Split(s, ".") }
