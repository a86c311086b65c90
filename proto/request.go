// Copyright (C) 2017 Michał Matczuk
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package proto

import (
	"fmt"
	"strings"
)

// Default resource location.
const (
	DefaultHost = "www.ecst.csuchico.edu"
	DefaultPort = "80"
	DefaultPath = "/~kkredo/file.html"
)

// DefaultMarker is the literal counted in response chunks.
const DefaultMarker = "<h1>"

// Version is the protocol version sent in the request line. HTTP/1.0 makes
// the server close the connection after the response, which is how the end
// of the body is detected.
const Version = "HTTP/1.0"

// NewRequest returns the request bytes for path: a GET request line followed
// by an empty line, no headers and no body.
func NewRequest(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("path: missing")
	}
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("path: must start with '/'")
	}
	for i := 0; i < len(path); i++ {
		if c := path[i]; c <= ' ' || c == 0x7f {
			return nil, fmt.Errorf("path: invalid character %q at %d", c, i)
		}
	}

	return []byte("GET " + path + " " + Version + "\r\n\r\n"), nil
}

// DefaultRequest returns a fresh copy of the request for DefaultPath.
func DefaultRequest() []byte {
	b, err := NewRequest(DefaultPath)
	if err != nil {
		// Should never happen
		panic(err)
	}
	return b
}
