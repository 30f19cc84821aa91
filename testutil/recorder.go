// Package testutil provides helpers shared by the engine, builder, and
// chartfile test suites.
package testutil

import "github.com/statomic/hsm"

// Recorder collects a chronological trace of callback firings, so tests can
// assert exact Exit/Entry/Init ordering across transitions.
type Recorder struct {
	trace []string
}

// Entry returns a handler that records "entry:<name>" when fired.
func (r *Recorder) Entry(name string) hsm.Handler {
	return r.Note("entry:" + name)
}

// Exit returns a handler that records "exit:<name>" when fired.
func (r *Recorder) Exit(name string) hsm.Handler {
	return r.Note("exit:" + name)
}

// Note returns a handler that records label when fired.
func (r *Recorder) Note(label string) hsm.Handler {
	return func(hsm.Message) { r.Record(label) }
}

// Record appends label to the trace.
func (r *Recorder) Record(label string) {
	r.trace = append(r.trace, label)
}

// Trace returns the recorded labels in firing order.
func (r *Recorder) Trace() []string {
	return append([]string(nil), r.trace...)
}

// Reset clears the trace.
func (r *Recorder) Reset() {
	r.trace = nil
}
