// Copyright (C) 2017 Michał Matczuk
// Use of this source code is governed by an AGPL-style
// license that can be found in the LICENSE file.

package log

type filterLogger struct {
	level  int
	logger Logger
}

// NewFilterLogger returns a Logger that accepts only log messages with
// "level" value <= level. Currently there are four levels 0 - error, 1 - info,
// 2 - debug, 3 - trace. Messages without a level are always accepted.
func NewFilterLogger(logger Logger, level int) Logger {
	return filterLogger{
		level:  level,
		logger: logger,
	}
}

func (p filterLogger) Log(keyvals ...interface{}) error {
	if level, ok := levelOf(keyvals); ok && level > p.level {
		return nil
	}
	return p.logger.Log(keyvals...)
}

func (p filterLogger) Enabled(level int) bool {
	return level <= p.level && Enabled(p.logger, level)
}

// levelOf returns value of the first "level" key if it's an int.
func levelOf(keyvals []interface{}) (int, bool) {
	for i := 0; i+1 < len(keyvals); i += 2 {
		if s, ok := keyvals[i].(string); !ok || s != "level" {
			continue
		}
		level, ok := keyvals[i+1].(int)
		return level, ok
	}
	return 0, false
}
