// Copyright (C) 2017 Michał Matczuk
// Use of this source code is governed by an AGPL-style
// license that can be found in the LICENSE file.

package main

import "testing"

func TestNormalizeAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		addr     string
		expected string
		error    bool
	}{
		{addr: "22", expected: "127.0.0.1:22"},
		{addr: ":22", expected: "127.0.0.1:22"},
		{addr: "0.0.0.0:22", expected: "0.0.0.0:22"},
		{addr: "www.ecst.csuchico.edu", expected: "www.ecst.csuchico.edu:80"},
		{addr: "www.ecst.csuchico.edu:8080", expected: "www.ecst.csuchico.edu:8080"},
		{addr: "::1", expected: "[::1]:80"},
		{addr: "[::1]:8080", expected: "[::1]:8080"},
		{addr: "localhost:0", error: true},
		{addr: "localhost:http", error: true},
		{addr: "local host", error: true},
		{addr: "", error: true},
	}

	for i, tt := range tests {
		actual, err := normalizeAddress(tt.addr)
		if tt.error {
			if err == nil {
				t.Errorf("[%d] expected error for %q got %q", i, tt.addr, actual)
			}
			continue
		}
		if err != nil {
			t.Errorf("[%d] unexpected error %s", i, err)
			continue
		}
		if actual != tt.expected {
			t.Errorf("[%d] expected %q got %q", i, tt.expected, actual)
		}
	}
}
