package sourcetree

// Context carries the traversal position handed to every visitor callback.
// A fresh value is produced on each descent; contexts are never mutated in
// place, so callbacks may retain them safely.
//
// Invariant: Depth == len(Parents). At the root Depth is 0, Parent is nil,
// and Parents is empty. Parents lists ancestors nearest-first, so
// Parents[0] == Parent whenever Depth > 0.
type Context struct {
	Depth   int
	Parent  Node
	Parents []Node
}

// RootContext returns the context for a traversal's root node.
func RootContext() Context { return Context{} }

// Descend returns the context for a child of current. The child's depth is
// one greater, its parent is current, and current is prepended to the
// ancestor list.
func (c Context) Descend(current Node) Context {
	parents := make([]Node, 0, len(c.Parents)+1)
	parents = append(parents, current)
	parents = append(parents, c.Parents...)
	return Context{
		Depth:   c.Depth + 1,
		Parent:  current,
		Parents: parents,
	}
}

// Ancestor returns the n-th ancestor (0 is the immediate parent).
func (c Context) Ancestor(n int) (Node, bool) {
	if n < 0 || n >= len(c.Parents) {
		return nil, false
	}
	return c.Parents[n], true
}
