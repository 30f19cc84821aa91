package hsm

import "go.uber.org/zap"

// Option applies configuration to a Machine via the functional options
// pattern.
type Option func(*Machine)

// WithLogger sets the logger the machine traces lifecycle activity to at
// debug level: starts, stops, state exits and entries, transitions, and
// dropped events. The default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(m *Machine) {
		if log != nil {
			m.log = log
		}
	}
}

// WithEventNames registers human-readable names for user events, used in log
// output in place of raw numeric values. The map is copied.
func WithEventNames(names map[Event]string) Option {
	return func(m *Machine) {
		if m.names == nil {
			m.names = make(map[Event]string, len(names))
		}
		for e, n := range names {
			m.names[e] = n
		}
	}
}
