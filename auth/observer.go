package auth

import "time"

// Outcome classifies a finished action.
type Outcome string

const (
	OutcomeSuccess    Outcome = "success"
	OutcomeFailure    Outcome = "failure"
	OutcomeSuperseded Outcome = "superseded"
)

// Event describes one finished session action.
type Event struct {
	Op      string
	Outcome Outcome
	UserID  string
	// Err is the *Error returned to the caller, nil on success.
	Err      error
	Duration time.Duration
}

// Observer receives an Event after every session action. Observe runs on
// the caller's goroutine and must not block.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }
