// Copyright (C) 2017 Michał Matczuk
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package h1counter

import "time"

// MaxChunkSize is the largest chunk size accepted by a Session.
const MaxChunkSize = 1000

var (
	// DefaultTimeout specifies the dial timeout used when ClientConfig has
	// none.
	DefaultTimeout = 10 * time.Second
)
