// Copyright (C) 2017 Michał Matczuk
// Use of this source code is governed by an AGPL-style
// license that can be found in the LICENSE file.

package h1counter

import (
	"io"
	"syscall"

	"github.com/pkg/errors"
)

// Stream is the connection handle a session reads from and writes to. It is
// exclusively owned by one session and closed exactly once when the session
// finishes. net.Conn satisfies Stream.
type Stream interface {
	io.Reader
	io.Writer
	io.Closer
}

// transient reports if err is an interrupted call that made no decision and
// must be retried as is.
func transient(err error) bool {
	return errors.Is(err, syscall.EINTR)
}

// SendAll writes every byte of data to w exactly once and in order. Partial
// writes continue with the unsent suffix, interrupted writes are retried.
// Empty data is a no-op. Any other failure is returned as IoError.
func SendAll(w io.Writer, data []byte) error {
	sent := 0
	for sent < len(data) {
		n, err := w.Write(data[sent:])
		if n < 0 || n > len(data)-sent {
			return newError(IoError, "write", errInvalidWrite)
		}
		sent += n

		if err != nil {
			if transient(err) {
				continue
			}
			return newError(IoError, "write", err)
		}
		if n == 0 {
			return newError(IoError, "write", io.ErrShortWrite)
		}
	}

	return nil
}

// FillChunk reads from r until buf is full or the stream ends. It returns the
// number of bytes placed in buf, which is less than len(buf) only when the
// stream ended before the chunk was filled. A read returning no bytes and no
// error is treated as end of stream. Interrupted reads are retried without
// losing progress.
//
// On any other failure FillChunk returns 0 and an IoError; bytes read by that
// call must be discarded by the caller.
func FillChunk(r io.Reader, buf []byte) (int, error) {
	want := len(buf)
	total := 0
	for total < want {
		n, err := r.Read(buf[total:])
		if n < 0 || n > want-total {
			return 0, newError(IoError, "read", errInvalidRead)
		}
		total += n

		if err != nil {
			if err == io.EOF {
				break
			}
			if transient(err) {
				continue
			}
			return 0, newError(IoError, "read", err)
		}
		if n == 0 {
			// peer closed
			break
		}
	}

	return total, nil
}
