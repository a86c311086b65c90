// Copyright (C) 2017 Michał Matczuk
// Use of this source code is governed by an AGPL-style
// license that can be found in the LICENSE file.

// Package h1counter fetches a single resource over a raw TCP connection using
// a hand-built HTTP/1.0 request and counts occurrences of a literal marker in
// the response. The response is read in fixed-size chunks and every chunk is
// scanned on its own, a marker split between two chunks is not counted.
package h1counter
