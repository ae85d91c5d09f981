package engine

// InvariantError marks an internal invariant violation: a code path the
// engine's own design assumes can't happen (e.g. a graph node referenced
// by path that was never seeded). Fatal, like resolve.ConfigError -
// callers should treat it as a bug report, not a recoverable condition.
type InvariantError struct {
	Detail string
}

func (e *InvariantError) Error() string {
	return "internal invariant violation: " + e.Detail
}
