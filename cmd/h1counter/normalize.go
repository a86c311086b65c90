// Copyright (C) 2017 Michał Matczuk
// Use of this source code is governed by an AGPL-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"net"
	"strconv"

	"github.com/hons82/h1counter/proto"
)

// normalizeAddress accepts host:port, :port, a bare port or a bare host name.
// Missing host defaults to 127.0.0.1, missing port to the HTTP port.
func normalizeAddress(addr string) (string, error) {
	// normalize port to addr
	if _, err := strconv.Atoi(addr); err == nil {
		addr = ":" + addr
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		// bare host name
		if net.ParseIP(addr) != nil || isHostName(addr) {
			host, port = addr, proto.DefaultPort
		} else {
			return "", err
		}
	}

	if host == "" {
		host = "127.0.0.1"
	}
	if p, err := strconv.Atoi(port); err != nil || p < 1 || p > 65535 {
		return "", fmt.Errorf("invalid port %q", port)
	}

	return net.JoinHostPort(host, port), nil
}

func isHostName(s string) bool {
	if s == "" || len(s) > 253 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '.':
		default:
			return false
		}
	}
	return true
}
