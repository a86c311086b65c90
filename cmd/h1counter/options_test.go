// Copyright (C) 2017 Michał Matczuk
// Use of this source code is governed by an AGPL-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hons82/h1counter"
)

func TestParseArgs(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	opts, err := parseArgs([]string{"-debug", "-timeout", "5s", "-sessions", "3", "10"}, &out)
	require.NoError(t, err)
	assert.Empty(t, out.String())

	assert.True(t, opts.debug)
	assert.Equal(t, 5*time.Second, opts.timeout)
	assert.Equal(t, 3, opts.sessions)
	assert.Equal(t, 10, opts.chunkSize)
	assert.Equal(t, "none", opts.logTo)
	assert.Equal(t, "", opts.config)
}

func TestParseArgsVersion(t *testing.T) {
	t.Parallel()

	opts, err := parseArgs([]string{"-version"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.True(t, opts.version)
}

func TestParseArgsErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args  []string
		error string
	}{
		{args: nil, error: "expected exactly one argument"},
		{args: []string{"10", "20"}, error: "expected exactly one argument"},
		{args: []string{"abc"}, error: "not an integer"},
		{args: []string{"10abc"}, error: "not an integer"},
		{args: []string{" 10"}, error: "not an integer"},
		{args: []string{"0"}, error: "between 1 and 1000"},
		{args: []string{"--", "-5"}, error: "between 1 and 1000"},
		{args: []string{"1001"}, error: "between 1 and 1000"},
		{args: []string{"-timeout", "-1s", "10"}, error: "negative timeout"},
		{args: []string{"-sessions", "-1", "10"}, error: "negative number of sessions"},
	}

	for i, tt := range tests {
		var out bytes.Buffer
		_, err := parseArgs(tt.args, &out)
		if err == nil || !strings.Contains(err.Error(), tt.error) {
			t.Errorf("[%d] expected error contains %q, got %v", i, tt.error, err)
			continue
		}
		if !h1counter.IsKind(err, h1counter.ConfigError) {
			t.Errorf("[%d] expected config error got %s", i, h1counter.KindOf(err))
		}
		if !strings.HasPrefix(out.String(), "Usage: h1counter") {
			t.Errorf("[%d] expected usage got %q", i, out.String())
		}
	}
}

func TestParseArgsUnknownFlag(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	_, err := parseArgs([]string{"-foo", "10"}, &out)
	require.Error(t, err)
	assert.Contains(t, out.String(), "Usage: h1counter")
}

func TestParseChunkSize(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"1", "4", "999", "1000"} {
		n, err := parseChunkSize(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, strconv.Itoa(n))
	}
}
