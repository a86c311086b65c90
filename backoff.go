// Copyright (C) 2017 Michał Matczuk
// Use of this source code is governed by an AGPL-style
// license that can be found in the LICENSE file.

package h1counter

import "time"

//go:generate mockgen -package h1countermock -destination h1countermock/backoff.go github.com/hons82/h1counter Backoff
//go:generate mockgen -package h1countermock -destination h1countermock/stream.go github.com/hons82/h1counter Stream

// Backoff defines behavior of staggering dial retries.
type Backoff interface {
	// NextBackOff returns the duration to sleep before retrying to dial.
	// If the returned value is negative, the retry is aborted.
	NextBackOff() time.Duration

	// Reset is used to signal a dial was successful and next call to
	// NextBackOff should return desired time duration for 1st retry.
	Reset()
}
