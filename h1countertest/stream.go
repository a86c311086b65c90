// Package h1countertest contains common testing tools shared by unit tests
// and third party tests.
package h1countertest

import (
	"bytes"
	"io"
	"net"
	"sync"
)

// Read is a scripted result of a single Stream Read call. Data longer than
// the read buffer is delivered over consecutive calls, Err is returned by the
// call that delivers the last byte of Data, or alone if Data is empty.
type Read struct {
	Data []byte
	Err  error
}

// Fragments returns reads delivering each part in a separate call.
func Fragments(parts ...string) []Read {
	reads := make([]Read, 0, len(parts))
	for _, p := range parts {
		reads = append(reads, Read{Data: []byte(p)})
	}
	return reads
}

// Split returns reads delivering payload in pieces of at most size bytes.
func Split(payload []byte, size int) []Read {
	var reads []Read
	for len(payload) > size {
		reads = append(reads, Read{Data: payload[:size]})
		payload = payload[size:]
	}
	if len(payload) > 0 {
		reads = append(reads, Read{Data: payload})
	}
	return reads
}

// Stream is an in-memory connection with scripted reads. Once all reads are
// consumed Read returns io.EOF, or blocks until Close if Hold is set. Writes
// are recorded, WriteLimit caps the number of bytes accepted per Write call
// without reporting an error, like a raw socket send would.
type Stream struct {
	// WriteLimit specifies maximal number of bytes accepted by a single
	// Write, zero means no limit.
	WriteLimit int
	// WriteErrs are returned by consecutive Write calls, one per call,
	// before any data is accepted.
	WriteErrs []error
	// Hold makes Read block after the script is consumed until Close.
	Hold bool

	mu        sync.Mutex
	reads     []Read
	written   bytes.Buffer
	readCalls int
	closes    int
	closed    chan struct{}
}

// NewStream creates a Stream delivering reads in order.
func NewStream(reads ...Read) *Stream {
	return &Stream{
		reads:  reads,
		closed: make(chan struct{}),
	}
}

// Read implements io.Reader.
func (s *Stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	s.readCalls++

	if s.closes > 0 {
		s.mu.Unlock()
		return 0, net.ErrClosed
	}

	if len(s.reads) == 0 {
		hold := s.Hold
		s.mu.Unlock()

		if !hold {
			return 0, io.EOF
		}
		<-s.closed
		return 0, net.ErrClosed
	}
	defer s.mu.Unlock()

	r := &s.reads[0]
	n := copy(p, r.Data)
	r.Data = r.Data[n:]
	if len(r.Data) > 0 {
		return n, nil
	}

	err := r.Err
	s.reads = s.reads[1:]
	return n, err
}

// Write implements io.Writer.
func (s *Stream) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closes > 0 {
		return 0, net.ErrClosed
	}

	if len(s.WriteErrs) > 0 {
		err := s.WriteErrs[0]
		s.WriteErrs = s.WriteErrs[1:]
		return 0, err
	}

	if s.WriteLimit > 0 && len(p) > s.WriteLimit {
		p = p[:s.WriteLimit]
	}
	return s.written.Write(p)
}

// Close implements io.Closer, it unblocks a held Read.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closes++
	if s.closes == 1 {
		close(s.closed)
	}
	return nil
}

// Written returns all bytes accepted by Write.
func (s *Stream) Written() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.written.Bytes()...)
}

// ReadCalls returns number of Read calls.
func (s *Stream) ReadCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readCalls
}

// Closes returns number of Close calls.
func (s *Stream) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}
