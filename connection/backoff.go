// Copyright (C) 2017 Michał Matczuk
// Use of this source code is governed by an AGPL-style
// license that can be found in the LICENSE file.

package connection

import (
	"time"

	"github.com/cenkalti/backoff"
)

// Default backoff configuration.
const (
	DefaultBackoffInterval    = 500 * time.Millisecond
	DefaultBackoffMultiplier  = 1.5
	DefaultBackoffMaxInterval = 10 * time.Second
	DefaultBackoffMaxTime     = time.Minute
)

// BackoffConfig defines behavior of staggering dial retries.
type BackoffConfig struct {
	Interval    time.Duration `yaml:"interval,omitempty"`
	Multiplier  float64       `yaml:"multiplier,omitempty"`
	MaxInterval time.Duration `yaml:"max_interval,omitempty"`
	MaxTime     time.Duration `yaml:"max_time,omitempty"`
}

// NewDefaultBackoffConfig returns BackoffConfig with default values.
func NewDefaultBackoffConfig() *BackoffConfig {
	return &BackoffConfig{
		Interval:    DefaultBackoffInterval,
		Multiplier:  DefaultBackoffMultiplier,
		MaxInterval: DefaultBackoffMaxInterval,
		MaxTime:     DefaultBackoffMaxTime,
	}
}

// SetDefaults fills zero fields with default values.
func (c *BackoffConfig) SetDefaults() {
	if c.Interval == 0 {
		c.Interval = DefaultBackoffInterval
	}
	if c.Multiplier == 0 {
		c.Multiplier = DefaultBackoffMultiplier
	}
	if c.MaxInterval == 0 {
		c.MaxInterval = DefaultBackoffMaxInterval
	}
	if c.MaxTime == 0 {
		c.MaxTime = DefaultBackoffMaxTime
	}
}

// NewBackoff returns exponential backoff policy. Once MaxTime elapses
// NextBackOff returns backoff.Stop which aborts retries.
func (c *BackoffConfig) NewBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.Interval
	b.Multiplier = c.Multiplier
	b.MaxInterval = c.MaxInterval
	b.MaxElapsedTime = c.MaxTime
	b.Reset()

	return b
}
