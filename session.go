// Copyright (C) 2017 Michał Matczuk
// Use of this source code is governed by an AGPL-style
// license that can be found in the LICENSE file.

package h1counter

import (
	"context"
	"sync"

	"github.com/hons82/h1counter/id"
	"github.com/hons82/h1counter/log"
	"github.com/hons82/h1counter/proto"
)

// State is a state of the session state machine.
type State int

// Session states.
const (
	Connected State = iota
	RequestSent
	Reading
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	case RequestSent:
		return "request sent"
	case Reading:
		return "reading"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// SessionConfig is configuration of a Session.
type SessionConfig struct {
	// ChunkSize specifies the number of bytes scanned at once, it must be in
	// range [1, MaxChunkSize].
	ChunkSize int
	// Request specifies the bytes sent before reading. If nil
	// proto.DefaultRequest is used.
	Request []byte
	// Marker specifies the literal counted in each chunk. If nil
	// proto.DefaultMarker is used.
	Marker []byte
	// ID identifies the session in logs and in the Result.
	ID id.ID
	// Logger is optional logger. If nil logging is disabled.
	Logger log.Logger
}

// Result holds the final totals of a completed session.
type Result struct {
	ID      id.ID
	Markers int
	Bytes   int
	Chunks  int
}

// Session drives a single request/response cycle over a Stream.
type Session struct {
	config  *SessionConfig
	request []byte
	marker  []byte
	logger  log.Logger
	trace   bool
}

// NewSession validates config and creates a Session. Invalid configuration is
// reported as ConfigError.
func NewSession(config *SessionConfig) (*Session, error) {
	if config.ChunkSize < 1 || config.ChunkSize > MaxChunkSize {
		return nil, configError("chunk size must be between 1 and %d, got %d", MaxChunkSize, config.ChunkSize)
	}

	request := config.Request
	if request == nil {
		request = proto.DefaultRequest()
	}
	marker := config.Marker
	if marker == nil {
		marker = []byte(proto.DefaultMarker)
	}
	if len(marker) == 0 {
		return nil, configError("empty marker")
	}

	var logger log.Logger = log.NewNopLogger()
	if config.Logger != nil {
		logger = config.Logger
	}

	return &Session{
		config:  config,
		request: request,
		marker:  marker,
		logger:  log.NewContext(logger).WithPrefix("session", config.ID),
		trace:   log.Enabled(logger, log.LevelTrace),
	}, nil
}

// Run sends the request to stream, then reads the response chunk by chunk
// counting markers in each chunk independently. Stream is closed exactly once
// before Run returns. If ctx is done before the session finishes stream is
// closed so blocked reads and writes fail.
//
// On failure no result is returned, the error is a RequestSendError or a
// ReceiveError.
func (s *Session) Run(ctx context.Context, stream Stream) (*Result, error) {
	var once sync.Once
	release := func() {
		once.Do(func() {
			if err := stream.Close(); err != nil {
				s.logger.Log(
					"level", 2,
					"msg", "close failed",
					"err", err,
				)
			}
		})
	}
	defer release()

	stop := context.AfterFunc(ctx, release)
	defer stop()

	state := Connected
	s.transition(&state, Connected)

	if err := SendAll(stream, s.request); err != nil {
		return nil, s.fail(ctx, &state, RequestSendError, "send request", err)
	}
	s.transition(&state, RequestSent)

	var (
		buf    = make([]byte, s.config.ChunkSize)
		result = &Result{ID: s.config.ID}
	)

	s.transition(&state, Reading)
	for state == Reading {
		n, err := FillChunk(stream, buf)
		if err != nil {
			return nil, s.fail(ctx, &state, ReceiveError, "receive", err)
		}
		if n == 0 {
			s.transition(&state, Done)
			break
		}

		markers := CountMarker(buf[:n], s.marker)
		result.Markers += markers
		result.Bytes += n
		result.Chunks++

		if s.trace {
			s.logger.Log(
				"level", log.LevelTrace,
				"action", "chunk",
				"size", n,
				"markers", markers,
				"total_markers", result.Markers,
				"total_bytes", result.Bytes,
			)
		}

		if n < len(buf) {
			s.transition(&state, Done)
		}
	}

	s.logger.Log(
		"level", 1,
		"action", "done",
		"markers", result.Markers,
		"bytes", result.Bytes,
		"chunks", result.Chunks,
	)

	return result, nil
}

func (s *Session) transition(state *State, next State) {
	*state = next
	s.logger.Log(
		"level", 2,
		"action", "state",
		"state", next,
	)
}

func (s *Session) fail(ctx context.Context, state *State, kind Kind, op string, err error) error {
	s.transition(state, Failed)

	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	s.logger.Log(
		"level", 0,
		"msg", op+" failed",
		"err", err,
	)

	return newError(kind, op, err)
}
