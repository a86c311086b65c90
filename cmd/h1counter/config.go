// Copyright (C) 2017 Michał Matczuk
// Use of this source code is governed by an AGPL-style
// license that can be found in the LICENSE file.

package main

import (
	"net"
	"net/url"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/hons82/h1counter/connection"
	"github.com/hons82/h1counter/proto"
)

// Config is the optional configuration file. Missing values default to the
// proto package defaults.
type Config struct {
	ServerAddr string                      `yaml:"server_addr,omitempty"`
	Path       string                      `yaml:"path,omitempty"`
	Marker     string                      `yaml:"marker,omitempty"`
	Proxy      string                      `yaml:"proxy,omitempty"`
	Timeout    time.Duration               `yaml:"timeout,omitempty"`
	Sessions   int                         `yaml:"sessions,omitempty"`
	Backoff    *connection.BackoffConfig   `yaml:"backoff,omitempty"`
	KeepAlive  *connection.KeepAliveConfig `yaml:"keep_alive,omitempty"`
}

func defaultConfig() *Config {
	return &Config{
		ServerAddr: net.JoinHostPort(proto.DefaultHost, proto.DefaultPort),
		Path:       proto.DefaultPath,
		Marker:     proto.DefaultMarker,
		Sessions:   1,
	}
}

// loadConfiguration reads configuration from path, empty path returns the
// defaults.
func loadConfiguration(path string) (*Config, error) {
	if path == "" {
		return defaultConfig(), nil
	}

	configBuf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read file %q", path)
	}

	return parseConfiguration(configBuf)
}

func parseConfiguration(buf []byte) (*Config, error) {
	var (
		config Config
		err    error
	)

	// deserialize/parse the config
	if err = yaml.UnmarshalStrict(buf, &config); err != nil {
		return nil, errors.Wrap(err, "failed to parse")
	}

	// set default values
	d := defaultConfig()
	if config.ServerAddr == "" {
		config.ServerAddr = d.ServerAddr
	}
	if config.Path == "" {
		config.Path = d.Path
	}
	if config.Marker == "" {
		config.Marker = d.Marker
	}
	if config.Sessions == 0 {
		config.Sessions = d.Sessions
	}
	if config.Backoff != nil {
		config.Backoff.SetDefaults()
	}

	// validate and normalize configuration
	if config.ServerAddr, err = normalizeAddress(config.ServerAddr); err != nil {
		return nil, errors.Wrap(err, "server_addr")
	}
	if _, err = proto.NewRequest(config.Path); err != nil {
		return nil, errors.Wrap(err, "path")
	}
	if config.Proxy != "" {
		if err = validateProxy(config.Proxy); err != nil {
			return nil, errors.Wrap(err, "proxy")
		}
	}
	if config.Timeout < 0 {
		return nil, errors.Errorf("timeout: negative %s", config.Timeout)
	}
	if config.Sessions < 0 {
		return nil, errors.Errorf("sessions: negative %d", config.Sessions)
	}
	if config.KeepAlive != nil && config.KeepAlive.KeepAliveInterval < 0 {
		return nil, errors.Errorf("keep_alive: negative interval %s", config.KeepAlive.KeepAliveInterval)
	}

	return &config, nil
}

func validateProxy(rawurl string) error {
	u, err := url.Parse(rawurl)
	if err != nil {
		return err
	}

	switch u.Scheme {
	case "socks5", "socks5h":
	default:
		return errors.Errorf("unsupported url schema %q, choose 'socks5'", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("missing host")
	}

	return nil
}
