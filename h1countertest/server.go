package h1countertest

import (
	"bytes"
	"net"
	"sync"
	"time"
)

// Server is a loopback TCP server that answers every connection with a fixed
// payload and closes it, the way an HTTP/1.0 server does. Request bytes up to
// and including the first empty line are recorded.
type Server struct {
	// Fragment specifies the size of writes the payload is sent in, zero
	// sends it at once.
	Fragment int
	// Delay specifies a pause between fragments.
	Delay time.Duration

	listener net.Listener
	payload  []byte

	mu       sync.Mutex
	requests [][]byte
	wg       sync.WaitGroup
}

// NewServer starts a Server listening on a random loopback port.
func NewServer(payload []byte) (*Server, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: l,
		payload:  payload,
	}, nil
}

// Start starts accepting connections in background.
func (s *Server) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.serve()
	}()
}

// Addr returns address the server listens on.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Requests returns requests received so far.
func (s *Server) Requests() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.requests...)
}

// Close stops the server and waits for all connections to finish.
func (s *Server) Close() error {
	err := s.listener.Close()
	s.wg.Wait()
	return err
}

func (s *Server) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn)
		}()
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	req, err := readRequest(conn)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	fragment := s.Fragment
	if fragment <= 0 {
		fragment = len(s.payload)
	}
	for p := s.payload; len(p) > 0; {
		n := fragment
		if n > len(p) {
			n = len(p)
		}
		if _, err := conn.Write(p[:n]); err != nil {
			return
		}
		p = p[n:]
		if s.Delay > 0 && len(p) > 0 {
			time.Sleep(s.Delay)
		}
	}
}

var endOfRequest = []byte("\r\n\r\n")

func readRequest(conn net.Conn) ([]byte, error) {
	var (
		req []byte
		buf = make([]byte, 64)
	)
	for !bytes.Contains(req, endOfRequest) {
		n, err := conn.Read(buf)
		req = append(req, buf[:n]...)
		if err != nil {
			return nil, err
		}
	}
	return req, nil
}
