package beanstalk

import (
	"crypto/tls"
	"time"
)

// Config is used to configure a Client.
type Config struct {
	// ConnTimeout configures the read and write timeout of a single command.
	// This can be overridden by a context deadline if its value is lower.
	//
	// ReserveWithTimeout adds its timeout on top of ConnTimeout. Reserve does
	// not, so a Reserve that waits longer than ConnTimeout fails and closes
	// the connection. Use Reserve only with a ConnTimeout of 0, or pass a
	// context with a deadline and expect the connection to close when it
	// expires.
	//
	// The default is to have no timeout.
	ConnTimeout time.Duration
	// DialTimeout is the maximum amount of time Connect() waits for a
	// connection to be established.
	//
	// The default is 1 second.
	DialTimeout time.Duration
	// TLSConfig describes the configuration that is used when Connect() makes
	// a TLS connection.
	TLSConfig *tls.Config
	// InfoFunc is called to log informational messages.
	InfoFunc func(message string)
	// ErrorFunc is called to log error messages.
	ErrorFunc func(err error, message string)
	// DebugFunc is called with every chunk of data sent to (out is true) or
	// received from the server.
	DebugFunc func(out bool, data []byte)
}

func (config Config) normalize() Config {
	if config.ConnTimeout < 0 {
		config.ConnTimeout = 0
	}
	if config.DialTimeout <= 0 {
		config.DialTimeout = 1 * time.Second
	}
	if config.InfoFunc == nil {
		config.InfoFunc = func(string) {}
	}
	if config.ErrorFunc == nil {
		config.ErrorFunc = func(error, string) {}
	}

	return config
}
