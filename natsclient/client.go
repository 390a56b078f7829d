// Package natsclient provides a managed NATS connection for worker
// components, honoring the process-wide default network timeout.
package natsclient

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360/bootsteps/config"
	"github.com/c360/bootsteps/errors"
)

// Options configures a Client
type Options struct {
	URL           string
	Name          string
	Timeout       time.Duration // zero means the process-wide default network timeout
	MaxReconnects int
	ReconnectWait time.Duration
	DrainTimeout  time.Duration
	Logger        *slog.Logger
}

// Client manages a NATS connection
type Client struct {
	opts   Options
	logger *slog.Logger

	mu   sync.Mutex
	conn *nats.Conn
}

// New creates a client; no I/O happens until Connect
func New(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ReconnectWait == 0 {
		opts.ReconnectWait = 2 * time.Second
	}
	if opts.DrainTimeout == 0 {
		opts.DrainTimeout = 30 * time.Second
	}
	return &Client{opts: opts, logger: opts.Logger.With("component", "natsclient")}
}

// Connect establishes the NATS connection
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && c.conn.IsConnected() {
		return nil
	}

	timeout := c.opts.Timeout
	if timeout == 0 {
		timeout = config.DefaultNetTimeout()
	}
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	conn, err := nats.Connect(c.opts.URL,
		nats.Name(c.opts.Name),
		nats.Timeout(timeout),
		nats.MaxReconnects(c.opts.MaxReconnects),
		nats.ReconnectWait(c.opts.ReconnectWait),
		nats.DrainTimeout(c.opts.DrainTimeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			c.logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			c.logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			c.logger.Debug("NATS connection closed")
		}),
	)
	if err != nil {
		return errors.WrapTransient(err, "natsclient", "Connect", "connecting to "+c.opts.URL)
	}

	c.conn = conn
	c.logger.Info("NATS connected", "url", conn.ConnectedUrl())
	return nil
}

// Conn returns the underlying connection, nil before Connect
func (c *Client) Conn() *nats.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// IsConnected reports whether the connection is currently established
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil && c.conn.IsConnected()
}

// Drain flushes in-flight messages and closes the connection gracefully.
// The drain window is bounded by the process-wide default network timeout
// when it is lower than the configured drain timeout.
func (c *Client) Drain(ctx context.Context) error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil || conn.IsClosed() {
		return nil
	}

	done := make(chan struct{})
	prev := conn.Opts.ClosedCB
	conn.SetClosedHandler(func(nc *nats.Conn) {
		if prev != nil {
			prev(nc)
		}
		close(done)
	})

	if err := conn.Drain(); err != nil {
		conn.Close()
		return errors.WrapTransient(err, "natsclient", "Drain", "draining connection")
	}

	wait := config.DefaultNetTimeout()
	select {
	case <-done:
	case <-time.After(wait):
		c.logger.Warn("NATS drain timed out, closing", "timeout", wait)
		conn.Close()
	case <-ctx.Done():
		conn.Close()
	}
	return nil
}

// Close closes the connection immediately, discarding in-flight messages
func (c *Client) Close() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}
