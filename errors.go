// Copyright (C) 2017 Michał Matczuk
// Use of this source code is governed by an AGPL-style
// license that can be found in the LICENSE file.

package h1counter

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies failures surfaced by the counter.
type Kind int

// Known error kinds.
const (
	// Unknown is returned by KindOf for errors not produced by this package.
	Unknown Kind = iota
	// ConfigError reports invalid configuration, it is fatal at startup.
	ConfigError
	// ResolutionError reports a failed server name lookup.
	ResolutionError
	// ConnectError reports a failed connection establishment.
	ConnectError
	// RequestSendError reports that the request could not be transmitted.
	RequestSendError
	// ReceiveError reports a permanent read failure mid-session.
	ReceiveError
	// IoError reports a permanent failure of a single write or read loop.
	IoError
)

func (k Kind) String() string {
	switch k {
	case ConfigError:
		return "config error"
	case ResolutionError:
		return "resolution error"
	case ConnectError:
		return "connect error"
	case RequestSendError:
		return "request send error"
	case ReceiveError:
		return "receive error"
	case IoError:
		return "io error"
	default:
		return "unknown error"
	}
}

// Error is the error type returned by all operations of this package.
type Error struct {
	Kind Kind
	// Op names the operation that failed, may be empty.
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Cause returns the underlying cause, it makes Error play along with
// errors.Cause from github.com/pkg/errors.
func (e *Error) Cause() error { return e.Err }

func newError(kind Kind, op string, err error) *Error {
	return &Error{
		Kind: kind,
		Op:   op,
		Err:  err,
	}
}

func configError(format string, a ...interface{}) *Error {
	return newError(ConfigError, "", errors.Errorf(format, a...))
}

// KindOf returns the kind of the outermost Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// IsKind reports whether err is an Error of kind k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

var (
	errInvalidRead  = errors.New("invalid read result")
	errInvalidWrite = errors.New("invalid write result")
)
