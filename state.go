package hsm

// State is a node in the state hierarchy. It is an immutable marker created
// once by the embedding application via NewState and then referenced; the
// engine never allocates or destroys states. A state with a nil parent is a
// root state.
type State struct {
	name    string
	parent  *State
	actions []Action // owned ordered action list, populated at link time
}

// NewState creates a state with the given parent. Pass nil for a root state.
// The name carries no engine semantics; it exists for tracing and
// visualization.
func NewState(name string, parent *State) *State {
	return &State{name: name, parent: parent}
}

// Name returns the state's name.
func (s *State) Name() string { return s.name }

// Parent returns the parent state, or nil for a root state.
func (s *State) Parent() *State { return s.parent }

// depth is the number of steps from a state up to the top. The absence of a
// state counts as depth 0, so a root state has depth 1.
func depth(s *State) int {
	d := 0
	for ; s != nil; s = s.parent {
		d++
	}
	return d
}

// parentOf steps one level up, treating nil as the virtual super-root above
// every real root.
func parentOf(s *State) *State {
	if s == nil {
		return nil
	}
	return s.parent
}

// commonAncestor computes the nearest common ancestor of two states. The
// virtual super-root (nil) sits above all real roots, so the NCA of a state
// and nil is nil, and the NCA of states in different trees is nil too.
func commonAncestor(a, b *State) *State {
	diff := depth(a) - depth(b)
	for ; diff > 0; diff-- {
		a = a.parent
	}
	for ; diff < 0; diff++ {
		b = b.parent
	}
	for a != b {
		a = a.parent
		b = b.parent
	}
	return a
}

// childToward finds the unique child of s that is an ancestor of (or equal
// to) target, which must lie strictly below s. With s == nil it yields the
// root ancestor of target.
func childToward(s, target *State) *State {
	for target != nil {
		if target.parent == s {
			return target
		}
		target = target.parent
	}
	return nil
}

// isAncestor reports whether a is a strict ancestor of s. A nil a is the
// virtual super-root and is an ancestor of every state.
func isAncestor(a, s *State) bool {
	if s == nil {
		return false
	}
	for s = s.parent; s != nil; s = s.parent {
		if s == a {
			return true
		}
	}
	return a == nil
}
