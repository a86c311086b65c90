// Copyright (C) 2017 Michał Matczuk
// Use of this source code is governed by an AGPL-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v2"

	"github.com/hons82/h1counter"
	"github.com/hons82/h1counter/log"
	"github.com/hons82/h1counter/proto"
)

func main() {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		fatal("%s", err)
	}

	if opts.version {
		fmt.Println(version)
		return
	}

	if opts.debug {
		opts.logTo = "stderr"
		opts.logLevel = log.LevelTrace
	}

	logger, err := log.NewLogger(opts.logTo, opts.logLevel)
	if err != nil {
		fatal("failed to init logger: %s", err)
	}

	// read configuration file
	c, err := loadConfiguration(opts.config)
	if err != nil {
		fatal("configuration error: %s", err)
	}
	if opts.timeout > 0 {
		c.Timeout = opts.timeout
	}
	if opts.sessions > 0 {
		c.Sessions = opts.sessions
	}

	b, err := yaml.Marshal(c)
	if err != nil {
		fatal("failed to dump config: %s", err)
	}
	logger.Log("level", log.LevelDebug, "config", string(b))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, c, opts.chunkSize, logger, os.Stdout); err != nil {
		stop()
		fatal("%s", err)
	}
}

// run fetches the configured resource c.Sessions times and prints the totals
// to w. Nothing is printed on failure.
func run(ctx context.Context, c *Config, chunkSize int, logger log.Logger, w io.Writer) error {
	request, err := proto.NewRequest(c.Path)
	if err != nil {
		return &h1counter.Error{Kind: h1counter.ConfigError, Op: "path", Err: err}
	}

	config := &h1counter.ClientConfig{
		ServerAddr: c.ServerAddr,
		Request:    request,
		Marker:     []byte(c.Marker),
		ChunkSize:  chunkSize,
		Timeout:    c.Timeout,
		Proxy:      c.Proxy,
		KeepAlive:  c.KeepAlive,
		Logger:     logger,
	}
	if c.Backoff != nil {
		config.Backoff = c.Backoff.NewBackoff()
	}

	client, err := h1counter.NewClient(config)
	if err != nil {
		return err
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	if c.Sessions <= 1 {
		r, err := client.Fetch(ctx)
		if err != nil {
			return err
		}
		printResult(w, c.Marker, r)
		return nil
	}

	results, err := client.FetchAll(ctx, c.Sessions)
	if err != nil {
		return err
	}
	for i, r := range results {
		fmt.Fprintf(w, "Session %d (%s):\n", i+1, r.ID)
		printResult(w, c.Marker, r)
	}

	return nil
}

func printResult(w io.Writer, marker string, r *h1counter.Result) {
	fmt.Fprintf(w, "Number of %s tags: %d\n", marker, r.Markers)
	fmt.Fprintf(w, "Number of bytes: %d\n", r.Bytes)
}

func fatal(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, format, a...)
	fmt.Fprint(os.Stderr, "\n")
	os.Exit(1)
}
