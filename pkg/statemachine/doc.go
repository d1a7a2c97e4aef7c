// Package statemachine provides a stateless finite state transition table.
//
// Rules answers two questions: is an event legal in a given state, and which
// state does it lead to. State itself is owned by the caller, which makes the
// table safe to share across goroutines and entities.
package statemachine
