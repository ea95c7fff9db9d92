package poller

import "sync/atomic"

// InitialAddress is the sentinel the last-address cell starts from, so
// the very first successful resolution is reported as a change.
const InitialAddress = "N/A (Initial)"

// State is shared by every worker: the cumulative call counter, the most
// recently observed address string, and the consecutive failure count.
// The counter and failure count are plain atomics; the address cell uses
// compare-and-swap so exactly one worker wins any given transition.
type State struct {
	calls    atomic.Int64
	failures atomic.Int64
	last     atomic.Pointer[string]
}

func NewState() *State {
	s := &State{}
	initial := InitialAddress
	s.last.Store(&initial)
	return s
}

// NextCall increments the call counter and returns the new value.
func (s *State) NextCall() int64 {
	return s.calls.Add(1)
}

func (s *State) Calls() int64 {
	return s.calls.Load()
}

func (s *State) LastAddress() string {
	return *s.last.Load()
}

// RecordResult compares current against the stored address and swaps it
// in when it differs. Returns the previous value and whether this caller
// performed the swap. When two workers race on the same transition only
// one of them observes changed == true.
func (s *State) RecordResult(current string) (previous string, changed bool) {
	for {
		prev := s.last.Load()
		if *prev == current {
			return *prev, false
		}
		if s.last.CompareAndSwap(prev, &current) {
			return *prev, true
		}
	}
}

// RecordFailure bumps the consecutive failure count. The last-address
// cell is deliberately left untouched.
func (s *State) RecordFailure() int64 {
	return s.failures.Add(1)
}

func (s *State) ResetFailures() {
	s.failures.Store(0)
}

func (s *State) Failures() int64 {
	return s.failures.Load()
}
