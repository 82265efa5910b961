package raster

import "log"

// Log is the diagnostics sink the scheduler writes to. It wraps a
// standard logger so callers can point it anywhere; a nil *Log (or nil
// inner logger) silently discards everything, keeping the hot path free
// of conditionals at call sites.
type Log struct {
	Logger *log.Logger
}

func (l *Log) Printf(format string, args ...any) {
	if l == nil || l.Logger == nil {
		return
	}
	l.Logger.Printf(format, args...)
}
