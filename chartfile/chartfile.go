// Package chartfile loads declarative state chart definitions from YAML and
// instantiates them as hsm charts, resolving handler references by name from
// a bindings table supplied by the application.
package chartfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/statomic/hsm"
)

// Definition is the serializable form of a state chart.
type Definition struct {
	Name   string            `yaml:"name" json:"name"`
	Events map[string]uint32 `yaml:"events,omitempty" json:"events,omitempty"`
	States []StateDef        `yaml:"states" json:"states"`
}

// StateDef defines a state, supporting hierarchical nesting. Init names a
// direct child (relative to this state) entered by default when the state is
// a transition target. Entry and Exit reference handlers by binding name.
type StateDef struct {
	Name     string          `yaml:"name" json:"name"`
	Init     string          `yaml:"init,omitempty" json:"init,omitempty"`
	Entry    string          `yaml:"entry,omitempty" json:"entry,omitempty"`
	Exit     string          `yaml:"exit,omitempty" json:"exit,omitempty"`
	On       []TransitionDef `yaml:"on,omitempty" json:"on,omitempty"`
	Children []StateDef      `yaml:"children,omitempty" json:"children,omitempty"`
}

// TransitionDef binds an event to either a direct transition target (an
// absolute dotted state path) or a named handler. Exactly one of Target and
// Handler must be set.
type TransitionDef struct {
	Event   string `yaml:"event" json:"event"`
	Target  string `yaml:"target,omitempty" json:"target,omitempty"`
	Handler string `yaml:"handler,omitempty" json:"handler,omitempty"`
}

// Bindings maps handler reference names to handlers.
type Bindings map[string]hsm.Handler

// Parse decodes a YAML chart definition and validates it.
func Parse(data []byte) (*Definition, error) {
	var d Definition
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Load reads and parses a chart definition file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data)
}

// Marshal encodes the definition back to YAML.
func (d *Definition) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("yaml marshal: %w", err)
	}
	return data, nil
}

// Validate checks structural soundness: non-empty state names, user event
// values outside the reserved range, and transitions naming exactly one of
// target or handler.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("chart definition has no name")
	}
	for name, id := range d.Events {
		if hsm.Event(id) < hsm.User {
			return fmt.Errorf("event %q: value %d is reserved (user events start at %d)", name, id, hsm.User)
		}
	}
	seen := make(map[string]bool)
	for i := range d.States {
		if err := validateState(&d.States[i], "", seen); err != nil {
			return err
		}
	}
	return nil
}

func validateState(s *StateDef, prefix string, seen map[string]bool) error {
	if s.Name == "" {
		return fmt.Errorf("state under %q has no name", prefix)
	}
	path := join(prefix, s.Name)
	if seen[path] {
		return fmt.Errorf("duplicate state path %q", path)
	}
	seen[path] = true
	for _, t := range s.On {
		if t.Event == "" {
			return fmt.Errorf("state %s: transition has no event", path)
		}
		if (t.Target == "") == (t.Handler == "") {
			return fmt.Errorf("state %s: event %q must name exactly one of target or handler", path, t.Event)
		}
	}
	for i := range s.Children {
		if err := validateState(&s.Children[i], path, seen); err != nil {
			return err
		}
	}
	return nil
}

// Chart instantiates the definition as a buildable chart, resolving event
// names and handler references. Unresolved references are errors.
func (d *Definition) Chart(bindings Bindings) (*hsm.Chart, error) {
	c := hsm.NewChart(d.Name)
	for name, id := range d.Events {
		c.Event(name, hsm.Event(id))
	}
	for i := range d.States {
		if err := buildState(c, &d.States[i], "", d.Events, bindings); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func buildState(c *hsm.Chart, s *StateDef, prefix string, events map[string]uint32, bindings Bindings) error {
	path := join(prefix, s.Name)
	sb := c.State(path)

	if s.Entry != "" {
		fn, ok := bindings[s.Entry]
		if !ok {
			return fmt.Errorf("state %s: entry handler %q is not bound", path, s.Entry)
		}
		sb.Entry(fn)
	}
	if s.Exit != "" {
		fn, ok := bindings[s.Exit]
		if !ok {
			return fmt.Errorf("state %s: exit handler %q is not bound", path, s.Exit)
		}
		sb.Exit(fn)
	}
	if s.Init != "" {
		sb.Init(join(path, s.Init))
	}

	for _, t := range s.On {
		id, ok := events[t.Event]
		if !ok {
			return fmt.Errorf("state %s: event %q is not declared", path, t.Event)
		}
		if t.Target != "" {
			sb.On(hsm.Event(id), t.Target)
		} else {
			fn, ok := bindings[t.Handler]
			if !ok {
				return fmt.Errorf("state %s: handler %q for event %q is not bound", path, t.Handler, t.Event)
			}
			sb.Handle(hsm.Event(id), fn)
		}
	}

	for i := range s.Children {
		if err := buildState(c, &s.Children[i], path, events, bindings); err != nil {
			return err
		}
	}
	return nil
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
