// Copyright (C) 2017 Michał Matczuk
// Use of this source code is governed by an AGPL-style
// license that can be found in the LICENSE file.

package h1counter

import "bytes"

// CountMarker returns the number of non-overlapping occurrences of marker
// wholly contained in chunk, scanning left to right and resuming after each
// match. It sees one chunk only, so an occurrence split between two chunks is
// never counted. marker must not be empty.
func CountMarker(chunk, marker []byte) int {
	count := 0
	for {
		i := bytes.Index(chunk, marker)
		if i < 0 {
			return count
		}
		count++
		chunk = chunk[i+len(marker):]
	}
}
