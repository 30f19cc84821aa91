// Package hsm implements a hierarchical state machine engine: a tree of
// states with event-driven transitions, Entry/Exit/Init lifecycle callbacks,
// and bubbling of unhandled events to ancestor states.
//
// The embedding application builds the state tree and an action table before
// the machine starts; Start transitions from "no state" into the initial
// state and resolves Init default-child redirections down to a leaf; Send
// dispatches a user event by walking from the current state up the ancestor
// chain until some state's actions claim it.
//
// The engine is fully single-threaded and synchronous. Handlers execute to
// completion before dispatch continues; callers sharing a machine across
// goroutines must serialize all calls externally.
package hsm

import (
	"strconv"

	"go.uber.org/zap"
)

// Machine is a hierarchical state machine engine. It owns the registered
// action table, the current active state, and the pending-target slot written
// by Transition. The zero value is not usable; create machines with New.
type Machine struct {
	table   []Action
	current *State
	pending *State // transition request slot, written by Transition
	linked  bool
	log     *zap.Logger
	names   map[Event]string
}

// New creates a machine with no registered actions.
func New(opts ...Option) *Machine {
	m := &Machine{log: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add registers actions with the machine. Actions are linked into their
// owner states' lists when the machine first starts; actions added after
// that are never linked, so registration must complete before Start.
func (m *Machine) Add(actions ...Action) {
	m.table = append(m.table, actions...)
}

// Start links the registered actions and transitions the machine from "no
// state" into initial, firing Entry for every ancestor of initial down to
// initial itself and then resolving the Init default-child chain to a leaf.
//
// Start panics if the machine is already started or initial is not a root
// state. A machine stopped via the Stop event may be started again.
func (m *Machine) Start(initial *State) {
	if m.current != nil {
		panic("hsm: machine already started")
	}
	if initial == nil || initial.parent != nil {
		panic("hsm: initial state must be a root state")
	}
	m.link()
	m.log.Debug("machine starting", zap.String("initial", initial.name))
	m.transition(initial, Message{})
}

// Send dispatches a message. The event must be Stop or a user event (>=
// User); Send panics otherwise, and panics if the machine is not started.
//
// Stop transitions to "no state", firing Exit for every ancestor of the
// current state root-ward, and leaves the machine stopped. A user event is
// offered to the current state and then to successively higher ancestors
// until one claims it; an event no state claims is silently dropped.
func (m *Machine) Send(msg Message) {
	if m.current == nil {
		panic("hsm: machine not started")
	}
	if msg.Event != Stop && msg.Event < User {
		panic("hsm: event " + m.eventName(msg.Event) + " is reserved")
	}

	if msg.Event == Stop {
		m.log.Debug("machine stopping", zap.String("from", m.current.name))
		m.transition(nil, Message{})
		return
	}

	for s := m.current; s != nil; s = s.parent {
		if m.dispatch(s, msg) {
			return
		}
	}
	m.log.Debug("event unhandled",
		zap.String("event", m.eventName(msg.Event)),
		zap.String("state", m.current.name))
}

// Transition requests a transition to target. It is meaningful only when
// called from within a handler during Send processing: it writes the
// machine's pending-target slot, which the dispatch logic reads back
// immediately after the handler returns. Exit handlers cannot redirect the
// transition in progress; their requests are discarded.
func (m *Machine) Transition(target *State) {
	if target == nil {
		panic("hsm: transition target must not be nil")
	}
	m.pending = target
}

// Current returns the active state, or nil before Start and after a stop.
func (m *Machine) Current() *State { return m.current }

// Running reports whether the machine has an active state.
func (m *Machine) Running() bool { return m.current != nil }

// link copies every registered action into its owner state's list. Linking
// happens once; repeated starts do not relink.
func (m *Machine) link() {
	if m.linked {
		return
	}
	for _, a := range m.table {
		a.owner.actions = append(a.owner.actions, a)
	}
	m.linked = true
}

// transition moves the machine to next (nil meaning stop). Exit fires for
// every state from current up to, excluding, the nearest common ancestor;
// Entry fires for every state from below the NCA down to next; then the Init
// pseudo-event is dispatched at next, recursing while it redirects to a
// default child. States on or above the NCA are never exited or re-entered.
func (m *Machine) transition(next *State, msg Message) {
	nca := commonAncestor(m.current, next)

	for m.current != nca {
		m.log.Debug("exit state", zap.String("state", m.current.name))
		m.fire(m.current, Exit, msg)
		m.current = m.current.parent
	}

	for m.current != next {
		m.current = childToward(m.current, next)
		m.log.Debug("enter state", zap.String("state", m.current.name))
		m.fire(m.current, Entry, msg)
	}

	if m.current != nil {
		m.dispatch(m.current, Message{Event: Init, Payload: msg.Payload})
	}
}

// fire dispatches a system event the fire-and-forget way: the pending-target
// slot is never consulted, so Exit and Entry callbacks cannot redirect a
// transition in progress. A direct-target payload bound to these events is
// tolerated; its target is discarded.
func (m *Machine) fire(s *State, event Event, msg Message) {
	a, ok := s.lookup(event)
	if !ok {
		return
	}
	if p, ok := a.payload.(handlerPayload); ok {
		p.fn(Message{Event: event, Payload: msg.Payload})
	}
}

// dispatch offers msg to s through the handled-action path. It reports false
// when s has no matching action, leaving the caller to bubble the event to
// the parent. When a matching action resolves to a destination other than s,
// dispatch performs the full transition; resolving to s itself means
// "handled, no state change".
func (m *Machine) dispatch(s *State, msg Message) bool {
	a, ok := s.lookup(msg.Event)
	if !ok {
		return false
	}

	m.pending = s
	var dest *State
	switch p := a.payload.(type) {
	case targetPayload:
		dest = p.state
	case handlerPayload:
		p.fn(msg)
		dest = m.pending
	}

	if dest == s {
		return true
	}
	if dest == nil {
		panic("hsm: action at " + s.name + " has no target state")
	}
	if msg.Event < User && dest.parent != s {
		panic("hsm: init action at " + s.name + " must resolve to a direct child")
	}

	m.log.Debug("transition",
		zap.String("event", m.eventName(msg.Event)),
		zap.String("from", m.current.name),
		zap.String("to", dest.name))
	m.transition(dest, msg)
	return true
}

// eventName renders an event for log output using the registered name table,
// falling back to the reserved names and then the numeric value.
func (m *Machine) eventName(e Event) string {
	if n, ok := m.names[e]; ok {
		return n
	}
	switch e {
	case All:
		return "all"
	case Stop:
		return "stop"
	case Exit:
		return "exit"
	case Entry:
		return "entry"
	case Init:
		return "init"
	}
	return strconv.FormatUint(uint64(e), 10)
}
