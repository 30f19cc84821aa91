package hsm

import (
	"fmt"
	"strings"
)

// Chart provides a fluent API for constructing a state tree and its action
// table using hierarchical string paths instead of manual State wiring.
// Dot notation nests states: "idle.stop" is a child of "idle", and parents
// are auto-created on first reference.
type Chart struct {
	name   string
	states map[string]*chartState
	order  []string
	events map[string]Event
	names  map[Event]string
}

// StateBuilder configures a single state within a Chart.
type StateBuilder struct {
	cs *chartState
}

type chartState struct {
	path     string
	state    *State
	entry    Handler
	exit     Handler
	init     string // default child path, resolved by the Init pseudo-event
	bindings []chartBinding
}

type chartBinding struct {
	event  Event
	target string // direct transition target path; empty for handler bindings
	fn     Handler
}

// NewChart creates an empty chart.
func NewChart(name string) *Chart {
	return &Chart{
		name:   name,
		states: make(map[string]*chartState),
		events: make(map[string]Event),
		names:  make(map[Event]string),
	}
}

// Name returns the chart name.
func (c *Chart) Name() string { return c.name }

// Event registers a symbolic name for a user event and returns its value.
// Names feed the machine's log output; validity (value >= User, no
// duplicates) is checked by Build.
func (c *Chart) Event(name string, id Event) Event {
	c.events[name] = id
	c.names[id] = name
	return id
}

// State creates or retrieves a state by path, auto-creating missing
// ancestors as plain states.
func (c *Chart) State(path string) *StateBuilder {
	return &StateBuilder{cs: c.get(path)}
}

// Lookup returns the built State for a path, or nil if the path was never
// referenced.
func (c *Chart) Lookup(path string) *State {
	cs, ok := c.states[path]
	if !ok {
		return nil
	}
	return cs.state
}

func (c *Chart) get(path string) *chartState {
	if cs, ok := c.states[path]; ok {
		return cs
	}
	var parent *State
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		parent = c.get(path[:idx]).state
	}
	cs := &chartState{path: path, state: NewState(path, parent)}
	c.states[path] = cs
	c.order = append(c.order, path)
	return cs
}

// Entry sets the state's Entry callback, fired when a transition enters the
// state.
func (sb *StateBuilder) Entry(fn Handler) *StateBuilder {
	sb.cs.entry = fn
	return sb
}

// Exit sets the state's Exit callback, fired when a transition leaves the
// state.
func (sb *StateBuilder) Exit(fn Handler) *StateBuilder {
	sb.cs.exit = fn
	return sb
}

// Init names the default child the state redirects to after being entered as
// a transition target. The path must refer to a direct child.
func (sb *StateBuilder) Init(childPath string) *StateBuilder {
	sb.cs.init = childPath
	return sb
}

// On binds a user event to a direct transition toward the target path, with
// no user code executed.
func (sb *StateBuilder) On(event Event, targetPath string) *StateBuilder {
	sb.cs.bindings = append(sb.cs.bindings, chartBinding{event: event, target: targetPath})
	return sb
}

// Handle binds a user event (or the All wildcard) to a handler closure.
func (sb *StateBuilder) Handle(event Event, fn Handler) *StateBuilder {
	sb.cs.bindings = append(sb.cs.bindings, chartBinding{event: event, fn: fn})
	return sb
}

// Build validates the chart and assembles a machine with the full action
// table registered. The returned machine has not been started. Build-time
// problems (unknown target paths, Init naming a non-child, reserved event
// values in bindings) are reported as errors.
func (c *Chart) Build(opts ...Option) (*Machine, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	opts = append(opts, WithEventNames(c.names))
	m := New(opts...)
	for _, path := range c.order {
		cs := c.states[path]
		if cs.entry != nil {
			m.Add(Handle(cs.state, Entry, cs.entry))
		}
		if cs.exit != nil {
			m.Add(Handle(cs.state, Exit, cs.exit))
		}
		if cs.init != "" {
			m.Add(Target(cs.state, Init, c.states[cs.init].state))
		}
		for _, b := range cs.bindings {
			if b.fn != nil {
				m.Add(Handle(cs.state, b.event, b.fn))
			} else {
				m.Add(Target(cs.state, b.event, c.states[b.target].state))
			}
		}
	}
	return m, nil
}

func (c *Chart) validate() error {
	for name, id := range c.events {
		if id < User {
			return fmt.Errorf("chart %s: event %q uses reserved value %d", c.name, name, id)
		}
	}
	for _, path := range c.order {
		cs := c.states[path]
		if cs.init != "" {
			child, ok := c.states[cs.init]
			if !ok {
				return fmt.Errorf("chart %s: state %s: init target %q does not exist", c.name, path, cs.init)
			}
			if child.state.parent != cs.state {
				return fmt.Errorf("chart %s: state %s: init target %q is not a direct child", c.name, path, cs.init)
			}
		}
		for _, b := range cs.bindings {
			if b.event < User && b.event != All {
				return fmt.Errorf("chart %s: state %s: event %d is reserved, use Entry/Exit/Init", c.name, path, b.event)
			}
			if b.fn == nil {
				if _, ok := c.states[b.target]; !ok {
					return fmt.Errorf("chart %s: state %s: transition target %q does not exist", c.name, path, b.target)
				}
			}
		}
	}
	return nil
}
