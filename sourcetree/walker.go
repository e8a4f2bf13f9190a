package sourcetree

// Action is the control-flow verdict returned by a visitor callback.
type Action int

const (
	// ActionContinue proceeds normally: descend into children after Pre,
	// then run Post.
	ActionContinue Action = iota

	// ActionSkip suppresses descent into the current node's children.
	// Skip is honoured from Pre only. The skipped node's own Post callback
	// is not invoked either: skip means the node's subtree is not processed
	// in either phase. This rule is deliberate and regression-tested; see
	// TestWalkSkipSuppressesPost.
	ActionSkip

	// ActionHalt stops the entire walk immediately. No further nodes are
	// visited, including pending Post callbacks of already-entered
	// ancestors. The accumulator carried by the halting step is the final
	// result.
	ActionHalt
)

// Step pairs an Action with the accumulator value threaded through the walk.
type Step[A any] struct {
	action Action
	acc    A
}

// Continue proceeds with traversal, carrying acc forward.
func Continue[A any](acc A) Step[A] { return Step[A]{action: ActionContinue, acc: acc} }

// Skip prunes the current node's subtree, carrying acc forward.
func Skip[A any](acc A) Step[A] { return Step[A]{action: ActionSkip, acc: acc} }

// Halt stops the whole walk; acc becomes the walk's final accumulator.
func Halt[A any](acc A) Step[A] { return Step[A]{action: ActionHalt, acc: acc} }

// VisitFunc is invoked with the node, its traversal context, and the
// accumulator, and returns the next step.
type VisitFunc[A any] func(n Node, ctx Context, acc A) Step[A]

// Visitor supplies the callbacks for a walk. At least one of Pre or Post
// must be set.
type Visitor[A any] struct {
	Pre  VisitFunc[A]
	Post VisitFunc[A]
}

// ConfigurationError reports caller misuse of the traversal API, such as a
// walk with neither Pre nor Post. It is always fatal to the single call and
// never retried.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "sourcetree: " + e.Reason
}

// Walk traverses the tree rooted at root in strict pre/post depth-first
// order: Pre fires before any child of a composite is visited, each child
// subtree is fully visited left to right, and Post fires after all children.
// For a leaf, Pre and Post fire back to back.
//
// The accumulator is threaded through every callback in fold fashion; the
// value carried by the last executed step is returned. For the same tree and
// visitor the sequence of (node, context) pairs presented is always
// identical.
func Walk[A any](root Node, acc A, v Visitor[A]) (A, error) {
	if v.Pre == nil && v.Post == nil {
		return acc, &ConfigurationError{Reason: "walk requires at least one of Pre or Post"}
	}
	acc, _ = walk(root, RootContext(), acc, v)
	return acc, nil
}

// walk returns the threaded accumulator and whether the walk was halted.
func walk[A any](n Node, ctx Context, acc A, v Visitor[A]) (A, bool) {
	if v.Pre != nil {
		step := v.Pre(n, ctx, acc)
		acc = step.acc
		switch step.action {
		case ActionHalt:
			return acc, true
		case ActionSkip:
			return acc, false
		}
	}

	if c, ok := n.(*Composite); ok {
		childCtx := ctx.Descend(n)
		for _, child := range c.Children {
			var halted bool
			acc, halted = walk(child, childCtx, acc, v)
			if halted {
				return acc, true
			}
		}
	}

	if v.Post != nil {
		step := v.Post(n, ctx, acc)
		acc = step.acc
		if step.action == ActionHalt {
			return acc, true
		}
		// Skip returned from Post has nothing left to prune; treated as
		// Continue.
	}

	return acc, false
}

// Predicate reports whether a node matches.
type Predicate func(n Node) bool

// ContextPredicate reports whether a node matches given its context.
type ContextPredicate func(n Node, ctx Context) bool

// FindAll collects, in pre-order, every node for which pred returns true.
// Matches do not prune descent: nested matches (a module defined inside a
// module, say) are all returned.
func FindAll(root Node, pred Predicate) []Node {
	return FindAllCtx(root, func(n Node, _ Context) bool { return pred(n) })
}

// FindAllCtx is FindAll with a context-aware predicate.
func FindAllCtx(root Node, pred ContextPredicate) []Node {
	matches, _ := Walk(root, []Node(nil), Visitor[[]Node]{
		Pre: func(n Node, ctx Context, acc []Node) Step[[]Node] {
			if pred(n, ctx) {
				acc = append(acc, n)
			}
			return Continue(acc)
		},
	})
	return matches
}

// Collect applies transform to every node matching pred, in pre-order.
func Collect[T any](root Node, pred Predicate, transform func(n Node) T) []T {
	var out []T
	for _, n := range FindAll(root, pred) {
		out = append(out, transform(n))
	}
	return out
}

// DepthOf returns the depth at which target is first encountered in
// pre-order, comparing nodes by identity. The root itself is depth 0.
func DepthOf(root, target Node) (int, bool) {
	type state struct {
		depth int
		found bool
	}
	res, _ := Walk(root, state{}, Visitor[state]{
		Pre: func(n Node, ctx Context, acc state) Step[state] {
			if n == target {
				return Halt(state{depth: ctx.Depth, found: true})
			}
			return Continue(acc)
		},
	})
	if !res.found {
		return 0, false
	}
	return res.depth, true
}

// CountNodes returns the total number of nodes in the tree.
func CountNodes(root Node) int {
	n, _ := Walk(root, 0, Visitor[int]{
		Pre: func(_ Node, _ Context, acc int) Step[int] { return Continue(acc + 1) },
	})
	return n
}

// MaxDepth returns the greatest depth reached in the tree. A single leaf
// has depth 0.
func MaxDepth(root Node) int {
	max, _ := Walk(root, 0, Visitor[int]{
		Pre: func(_ Node, ctx Context, acc int) Step[int] {
			if ctx.Depth > acc {
				return Continue(ctx.Depth)
			}
			return Continue(acc)
		},
	})
	return max
}
