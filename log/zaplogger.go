// Copyright (C) 2017 Michał Matczuk
// Use of this source code is governed by an AGPL-style
// license that can be found in the LICENSE file.

package log

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type zapLogger struct {
	logger *zap.SugaredLogger
}

// NewZapLogger returns a Logger writing key-value events to logger. The "level"
// key selects zap level: 0 - error, 1 - info, 2 and 3 - debug. The "msg" key
// becomes the entry message, remaining pairs become fields.
func NewZapLogger(logger *zap.Logger) Logger {
	return zapLogger{
		logger: logger.Sugar(),
	}
}

func (p zapLogger) Log(keyvals ...interface{}) error {
	var (
		level  = LevelInfo
		msg    string
		fields = make([]interface{}, 0, len(keyvals)+1)
	)

	for i := 0; i < len(keyvals); i += 2 {
		k := keyvals[i]
		if i+1 >= len(keyvals) {
			fields = append(fields, fmt.Sprint(k), "(MISSING)")
			break
		}
		v := keyvals[i+1]

		switch k {
		case "level":
			if l, ok := v.(int); ok {
				level = l
				continue
			}
		case "msg":
			if s, ok := v.(string); ok {
				msg = s
				continue
			}
		}

		fields = append(fields, fmt.Sprint(k), v)
	}

	switch {
	case level <= LevelError:
		p.logger.Errorw(msg, fields...)
	case level == LevelInfo:
		p.logger.Infow(msg, fields...)
	default:
		p.logger.Debugw(msg, fields...)
	}

	return nil
}

// NewLogger returns JSON based logger writing to "stdout", "stderr", a file
// name or nothing for "none", printing messages up to log level level.
func NewLogger(to string, level int) (Logger, error) {
	var w io.Writer

	switch to {
	case "none":
		return NewNopLogger(), nil
	case "stdout":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		f, err := os.Create(to)
		if err != nil {
			return nil, err
		}
		w = f
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.Lock(zapcore.AddSync(w)),
		zapcore.DebugLevel,
	)

	return NewFilterLogger(NewZapLogger(zap.New(core)), level), nil
}
