// Package session holds the state of one analysis display: the submitted
// prompt, whether a request is in flight, and the latest result or error.
package session

// Ticket identifies one submitted request. Only the newest ticket may change
// the state.
type Ticket uint64

// State is owned by a single view. The zero value is an idle, empty session.
// T is the result type, so the same guard serves full analyses and live
// detection.
type State[T any] struct {
	prompt  string
	loading bool
	result  *T
	err     string
	seq     Ticket
}

// Begin records a new submission and returns its ticket. The previous error
// is cleared; the previous result stays visible until a newer one lands.
func (s *State[T]) Begin(prompt string) Ticket {
	s.seq++
	s.prompt = prompt
	s.loading = true
	s.err = ""
	return s.seq
}

// Complete applies a result if t is still the latest ticket. It returns false
// for stale responses, which are dropped.
func (s *State[T]) Complete(t Ticket, result *T) bool {
	if !s.Current(t) {
		return false
	}
	s.loading = false
	s.result = result
	s.err = ""
	return true
}

// Fail applies an error message if t is still the latest ticket. A failure
// clears the result so an error is never shown next to stale data.
func (s *State[T]) Fail(t Ticket, msg string) bool {
	if !s.Current(t) {
		return false
	}
	s.loading = false
	s.result = nil
	s.err = msg
	return true
}

// Current reports whether t is the newest ticket.
func (s *State[T]) Current(t Ticket) bool {
	return t != 0 && t == s.seq
}

// Reset drops everything. Responses to tickets issued before Reset are
// treated as stale.
func (s *State[T]) Reset() {
	s.seq++
	s.prompt = ""
	s.loading = false
	s.result = nil
	s.err = ""
}

// Prompt returns the prompt of the latest submission.
func (s *State[T]) Prompt() string { return s.prompt }

// Loading reports whether the latest submission is still in flight.
func (s *State[T]) Loading() bool { return s.loading }

// Result returns the latest applied result, or nil.
func (s *State[T]) Result() *T { return s.result }

// Err returns the latest applied error message, or "".
func (s *State[T]) Err() string { return s.err }
