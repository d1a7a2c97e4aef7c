package statemachine

// State represents a state in the state machine.
type State interface {
	Name() string
}

// Event represents an event that can trigger a state transition.
type Event interface {
	Name() string
}

// Transition defines a state change triggered by an event.
type Transition struct {
	From  State
	To    State
	Event Event
}

// StringState provides a simple string-based state implementation.
type StringState string

func (s StringState) Name() string {
	return string(s)
}

// StringEvent provides a simple string-based event implementation.
type StringEvent string

func (e StringEvent) Name() string {
	return string(e)
}

type transitionKey struct {
	from  string
	event string
}

// Rules is a stateless transition table. Unlike a classic state machine it
// holds no current state; callers pass the current state on every query. This
// fits domains where state lives elsewhere (a database row) and the rules
// only answer whether a transition is legal and where it leads.
type Rules struct {
	transitions map[transitionKey]State
}

// NewRules builds a transition table from the given transitions. Duplicate
// (from, event) pairs or transitions with nil fields return an error.
func NewRules(transitions ...Transition) (*Rules, error) {
	r := &Rules{transitions: make(map[transitionKey]State, len(transitions))}
	for _, t := range transitions {
		if t.From == nil || t.To == nil || t.Event == nil {
			return nil, ErrInvalidTransition
		}
		key := transitionKey{from: t.From.Name(), event: t.Event.Name()}
		if _, exists := r.transitions[key]; exists {
			return nil, NewErrDuplicateTransition(t.From.Name(), t.Event.Name())
		}
		r.transitions[key] = t.To
	}
	return r, nil
}

// MustRules is like NewRules but panics on error. Intended for package-level
// rule tables that are fixed at compile time.
func MustRules(transitions ...Transition) *Rules {
	r, err := NewRules(transitions...)
	if err != nil {
		panic(err)
	}
	return r
}

// Can reports whether event is permitted in the given state.
func (r *Rules) Can(from State, event Event) bool {
	if from == nil || event == nil {
		return false
	}
	_, ok := r.transitions[transitionKey{from: from.Name(), event: event.Name()}]
	return ok
}

// Target returns the state reached by firing event in the given state.
// Returns ErrNoTransitionAvailable when the event is not permitted.
func (r *Rules) Target(from State, event Event) (State, error) {
	if from == nil || event == nil {
		return nil, ErrInvalidTransition
	}
	to, ok := r.transitions[transitionKey{from: from.Name(), event: event.Name()}]
	if !ok {
		return nil, NewErrNoTransitionAvailable(from.Name(), event.Name())
	}
	return to, nil
}
