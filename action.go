package hsm

// Event identifies a message delivered to the machine. Values below User are
// reserved for the engine; applications define their own events starting at
// User.
type Event uint32

// Reserved event values.
const (
	All   Event = iota // wildcard: the action applies to every event
	Stop               // stop the state machine
	Exit               // exit from a state during a transition
	Entry              // entry to a state during a transition
	Init               // init a state after a transition
	User               // first value available for application events
)

// Message is a delivered event plus an optional application payload.
type Message struct {
	Event   Event
	Payload any
}

// Handler is a behavior closure bound to a state and event. It runs
// synchronously during dispatch and may call Machine.Transition to request a
// state change.
type Handler func(msg Message)

// payload is the two-variant action payload: either a direct transition
// target or a behavior closure.
type payload interface{ isPayload() }

type targetPayload struct{ state *State }

type handlerPayload struct{ fn Handler }

func (targetPayload) isPayload()  {}
func (handlerPayload) isPayload() {}

// Action binds an event on an owner state to either a direct transition
// target or a handler. Actions are registered with Machine.Add and linked
// into their owner's action list when the machine starts.
type Action struct {
	owner   *State
	event   Event
	payload payload
}

// Target creates an action that transitions directly to target when event is
// dispatched at owner, with no user code executed. This is the idiom for
// simple unconditional transitions, including Init default-child bindings on
// composite states.
func Target(owner *State, event Event, target *State) Action {
	return Action{owner: owner, event: event, payload: targetPayload{state: target}}
}

// Handle creates an action that invokes fn when event is dispatched at owner.
func Handle(owner *State, event Event, fn Handler) Action {
	return Action{owner: owner, event: event, payload: handlerPayload{fn: fn}}
}

// Owner returns the state the action is bound to.
func (a Action) Owner() *State { return a.owner }

// Event returns the event the action is bound to.
func (a Action) Event() Event { return a.event }

// lookup scans the state's action list for the given event. An exact match
// always wins over a wildcard match; among bindings of equal kind the most
// recently registered wins. Returns false when nothing matches, which is the
// normal "unhandled here" outcome.
func (s *State) lookup(event Event) (Action, bool) {
	wild := -1
	for i := len(s.actions) - 1; i >= 0; i-- {
		if s.actions[i].event == event {
			return s.actions[i], true
		}
		if wild < 0 && s.actions[i].event == All {
			wild = i
		}
	}
	if wild >= 0 {
		return s.actions[wild], true
	}
	return Action{}, false
}
