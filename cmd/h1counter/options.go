// Copyright (C) 2017 Michał Matczuk
// Use of this source code is governed by an AGPL-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/hons82/h1counter"
)

const version = "1.0.0"

const usage1 string = `Usage: h1counter [OPTIONS] <chunk_size>
Fetches a web page over HTTP/1.0 and counts <h1> tags found within each
chunk_size bytes chunk of the response, chunk_size must be between 1 and 1000.

options:
`

const usage2 string = `
Examples:
	h1counter 10
	h1counter -debug 4
	h1counter -config=config.yaml -log=stderr -log-level 2 -sessions 4 100

config.yaml:
	server_addr: www.ecst.csuchico.edu:80
	path: /~kkredo/file.html
	marker: <h1>
	timeout: 10s
	proxy: socks5://127.0.0.1:1080
	backoff:
	  interval: 500ms
	  max_time: 1m
	keep_alive:
	  interval: 25s
`

func usage(fs *flag.FlagSet) {
	fmt.Fprint(fs.Output(), usage1)
	fs.PrintDefaults()
	fmt.Fprint(fs.Output(), usage2)
}

type options struct {
	debug     bool
	config    string
	logTo     string
	logLevel  int
	timeout   time.Duration
	sessions  int
	version   bool
	chunkSize int
}

// parseArgs parses command line arguments, on failure usage is written to out.
func parseArgs(args []string, out io.Writer) (opts *options, err error) {
	flags := flag.NewFlagSet("h1counter", flag.ContinueOnError)
	flags.SetOutput(out)
	flags.Usage = func() {}
	defer func() {
		if err != nil {
			usage(flags)
		}
	}()

	debug := flags.Bool("debug", false, "Reports every chunk to stderr, overrides -log and -log-level")
	config := flags.String("config", "", "Path to optional configuration file")
	logTo := flags.String("log", "none", "Write log messages to this file, file name or 'stdout', 'stderr', 'none'")
	logLevel := flags.Int("log-level", 1, "Level of messages to log, 0-3")
	timeout := flags.Duration("timeout", 0, "Abort the run after this duration, 0 waits forever")
	sessions := flags.Int("sessions", 0, "Number of concurrent sessions to run")
	version := flags.Bool("version", false, "Prints h1counter version")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	opts = &options{
		debug:    *debug,
		config:   *config,
		logTo:    *logTo,
		logLevel: *logLevel,
		timeout:  *timeout,
		sessions: *sessions,
		version:  *version,
	}

	if opts.version {
		return opts, nil
	}

	if opts.timeout < 0 {
		return nil, configError("negative timeout %s", opts.timeout)
	}
	if opts.sessions < 0 {
		return nil, configError("negative number of sessions %d", opts.sessions)
	}

	if flags.NArg() != 1 {
		return nil, configError("expected exactly one argument <chunk_size>")
	}

	n, err := parseChunkSize(flags.Arg(0))
	if err != nil {
		return nil, err
	}
	opts.chunkSize = n

	return opts, nil
}

func parseChunkSize(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, configError("chunk_size %q is not an integer", s)
	}
	if n < 1 || n > h1counter.MaxChunkSize {
		return 0, configError("chunk_size must be between 1 and %d, got %d", h1counter.MaxChunkSize, n)
	}
	return n, nil
}

func configError(format string, a ...interface{}) error {
	return &h1counter.Error{
		Kind: h1counter.ConfigError,
		Err:  errors.Errorf(format, a...),
	}
}
