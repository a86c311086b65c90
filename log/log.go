// Copyright (C) 2017 Michał Matczuk
// Use of this source code is governed by an AGPL-style
// license that can be found in the LICENSE file.

package log

//go:generate mockgen -package h1countermock -destination ../h1countermock/logger.go github.com/hons82/h1counter/log Logger

// Logger is the fundamental interface for all log operations. Log creates a
// log event from keyvals, a variadic sequence of alternating keys and values.
// Implementations must be safe for concurrent use by multiple goroutines. In
// particular, any implementation of Logger that appends to keyvals or
// modifies any of its elements must make a copy first.
//
// By convention keyvals carry a "level" key with an int value, see the Level
// constants.
type Logger interface {
	Log(keyvals ...interface{}) error
}

// Levels understood by NewFilterLogger and the zap sink.
const (
	LevelError = 0
	LevelInfo  = 1
	LevelDebug = 2
	LevelTrace = 3
)

// Enabled reports whether logger may emit events of level. Loggers that do not
// know their threshold are assumed to emit everything.
func Enabled(logger Logger, level int) bool {
	if l, ok := logger.(interface{ Enabled(int) bool }); ok {
		return l.Enabled(level)
	}
	return true
}
