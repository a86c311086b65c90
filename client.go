// Copyright (C) 2017 Michał Matczuk
// Use of this source code is governed by an AGPL-style
// license that can be found in the LICENSE file.

package h1counter

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/proxy"
	"golang.org/x/sync/errgroup"

	"github.com/hons82/h1counter/connection"
	"github.com/hons82/h1counter/id"
	"github.com/hons82/h1counter/log"
)

// ClientConfig is configuration of the Client.
type ClientConfig struct {
	// ServerAddr specifies TCP address of the server in host:port form.
	ServerAddr string
	// Request specifies the bytes sent to the server. If nil
	// proto.DefaultRequest is used.
	Request []byte
	// Marker specifies the literal to count. If nil proto.DefaultMarker is
	// used.
	Marker []byte
	// ChunkSize specifies the size of chunks the response is scanned in.
	ChunkSize int
	// Timeout specifies the dial timeout. If zero DefaultTimeout is used.
	Timeout time.Duration
	// Proxy specifies an optional proxy URL, i.e. socks5://127.0.0.1:1080.
	// When set the proxy resolves the server name.
	Proxy string
	// KeepAlive specifies optional TCP keepalive for the server connection.
	KeepAlive *connection.KeepAliveConfig
	// Backoff specifies backoff policy on dial retry. If nil when dial fails
	// it will not be retried.
	Backoff Backoff
	// Dial specifies an optional dial function that creates a connection to
	// the server. If Dial is nil the server name is resolved and every
	// address is tried in order.
	Dial func(ctx context.Context, network, addr string) (net.Conn, error)
	// Resolver specifies an optional resolver. If nil net.DefaultResolver is
	// used.
	Resolver *net.Resolver
	// Logger is optional logger. If nil logging is disabled.
	Logger log.Logger
}

// Client fetches the configured resource and counts markers in it. Every
// fetch uses its own connection and Session, so a Client is safe for
// concurrent use.
type Client struct {
	config *ClientConfig
	proxy  proxy.Dialer
	seq    uint64
	logger log.Logger
}

// NewClient creates a new Client based on configuration.
func NewClient(config *ClientConfig) (*Client, error) {
	if config.ServerAddr == "" {
		return nil, configError("missing ServerAddr")
	}
	if _, _, err := net.SplitHostPort(config.ServerAddr); err != nil {
		return nil, newError(ConfigError, "server address", err)
	}
	if config.Request != nil && len(config.Request) == 0 {
		return nil, configError("empty Request")
	}

	// validate session parameters early
	if _, err := NewSession(&SessionConfig{
		ChunkSize: config.ChunkSize,
		Request:   config.Request,
		Marker:    config.Marker,
	}); err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}

	c := &Client{
		config: config,
		logger: logger,
	}

	if config.Proxy != "" {
		u, err := url.Parse(config.Proxy)
		if err != nil {
			return nil, newError(ConfigError, "proxy", err)
		}
		p, err := proxy.FromURL(u, c.netDialer())
		if err != nil {
			return nil, newError(ConfigError, "proxy", err)
		}
		c.proxy = p
	}

	return c, nil
}

// Fetch connects to the server and runs one Session.
func (c *Client) Fetch(ctx context.Context) (*Result, error) {
	seq := atomic.AddUint64(&c.seq, 1)
	sid := id.New([]byte(fmt.Sprintf("%s/%d/%d", c.config.ServerAddr, seq, time.Now().UnixNano())))

	logger := log.NewContext(c.logger).With("session", sid)
	logger.Log(
		"level", 1,
		"action", "start",
		"addr", c.config.ServerAddr,
	)

	s, err := NewSession(&SessionConfig{
		ChunkSize: c.config.ChunkSize,
		Request:   c.config.Request,
		Marker:    c.config.Marker,
		ID:        sid,
		Logger:    c.logger,
	})
	if err != nil {
		return nil, err
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}

	return s.Run(ctx, conn)
}

// FetchAll runs n independent sessions concurrently, results are returned in
// order. The first failure cancels the remaining sessions and is returned
// alone, no partial results are reported.
func (c *Client) FetchAll(ctx context.Context, n int) ([]*Result, error) {
	if n < 1 {
		return nil, configError("number of sessions must be positive, got %d", n)
	}

	results := make([]*Result, n)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			r, err := c.Fetch(ctx)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (c *Client) netDialer() *net.Dialer {
	timeout := c.config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &net.Dialer{
		Timeout:  timeout,
		Resolver: c.config.Resolver,
	}
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	var (
		network = "tcp"
		addr    = c.config.ServerAddr
	)

	doDial := func() (conn net.Conn, err error) {
		c.logger.Log(
			"level", 1,
			"action", "dial",
			"network", network,
			"addr", addr,
		)

		switch {
		case c.config.Dial != nil:
			conn, err = c.config.Dial(ctx, network, addr)
			if err != nil {
				err = newError(ConnectError, "dial", err)
			}
		case c.proxy != nil:
			conn, err = c.dialProxy(ctx, network, addr)
		default:
			conn, err = c.dialDirect(ctx, network, addr)
		}

		if err == nil && c.config.KeepAlive != nil {
			if kerr := c.config.KeepAlive.Set(conn); kerr != nil {
				c.logger.Log(
					"level", 1,
					"msg", "TCP keepalive for server connection failed",
					"addr", addr,
					"err", kerr,
				)
			}
		}

		if err != nil {
			if conn != nil {
				conn.Close()
				conn = nil
			}

			c.logger.Log(
				"level", 0,
				"msg", "dial failed",
				"network", network,
				"addr", addr,
				"err", err,
			)
		}

		return
	}

	b := c.config.Backoff
	if b == nil {
		return doDial()
	}

	for {
		conn, err := doDial()

		// success
		if err == nil {
			b.Reset()
			return conn, nil
		}

		// failure
		d := b.NextBackOff()
		if d < 0 {
			return nil, errors.Wrap(err, "backoff limit exceeded")
		}

		// backoff
		c.logger.Log(
			"level", 1,
			"action", "backoff",
			"sleep", d,
		)

		t := time.NewTimer(d)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return nil, newError(KindOf(err), "dial", ctx.Err())
		}
	}
}

// dialDirect resolves the host and tries every address in order until one
// connects.
func (c *Client) dialDirect(ctx context.Context, network, addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, newError(ResolutionError, "split host port", err)
	}

	resolver := c.config.Resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}

	ips, err := resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, newError(ResolutionError, "lookup "+host, err)
	}
	if len(ips) == 0 {
		return nil, newError(ResolutionError, "lookup "+host, errors.New("no addresses"))
	}

	d := c.netDialer()

	var lastErr error
	for _, ip := range ips {
		target := net.JoinHostPort(ip.String(), port)
		conn, err := d.DialContext(ctx, network, target)
		if err == nil {
			return conn, nil
		}

		c.logger.Log(
			"level", 2,
			"msg", "connect failed",
			"target", target,
			"err", err,
		)
		lastErr = err
	}

	return nil, newError(ConnectError, "connect "+addr, lastErr)
}

func (c *Client) dialProxy(ctx context.Context, network, addr string) (net.Conn, error) {
	var (
		conn net.Conn
		err  error
	)
	if cd, ok := c.proxy.(proxy.ContextDialer); ok {
		conn, err = cd.DialContext(ctx, network, addr)
	} else {
		conn, err = c.proxy.Dial(network, addr)
	}
	if err != nil {
		return nil, newError(ConnectError, "proxy dial "+addr, err)
	}
	return conn, nil
}
