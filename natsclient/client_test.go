package natsclient

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/bootsteps/errors"
)

func TestNewDefaults(t *testing.T) {
	c := New(Options{URL: "nats://localhost:4222", Name: "test"})

	assert.Nil(t, c.Conn(), "no connection before Connect")
	assert.False(t, c.IsConnected())
	assert.Equal(t, 2*time.Second, c.opts.ReconnectWait)
	assert.Equal(t, 30*time.Second, c.opts.DrainTimeout)
}

func TestConnectBadURL(t *testing.T) {
	c := New(Options{URL: "://not-a-url", Timeout: 100 * time.Millisecond})

	err := c.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err), "connection failures are transient")
	assert.False(t, c.IsConnected())
}

func TestDrainAndCloseWithoutConnection(t *testing.T) {
	c := New(Options{URL: "nats://localhost:4222"})

	require.NoError(t, c.Drain(context.Background()), "drain without a connection is a no-op")
	c.Close()
	assert.Nil(t, c.Conn())
}
