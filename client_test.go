package main

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientStartsInPassPhase(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	c := newClient(1, server, "127.0.0.1")
	assert.Equal(t, PhasePassNeeded, c.phase)
	assert.False(t, c.registered())
}

func TestMaybeAdvanceRegistrationRequiresBoth(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	c := newClient(1, server, "127.0.0.1")
	c.phase = PhaseNickUserNeeded

	c.nick = "alice"
	assert.False(t, c.maybeAdvanceRegistration())
	assert.False(t, c.registered())

	c.user = "alice"
	require.True(t, c.maybeAdvanceRegistration())
	assert.True(t, c.registered())
}

func TestMaybeAdvanceRegistrationIsIdempotent(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	c := newClient(1, server, "127.0.0.1")
	c.phase = PhaseRegistered
	c.nick = "alice"
	c.user = "alice"

	assert.False(t, c.maybeAdvanceRegistration())
}

func TestUhostFormat(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	c := newClient(1, server, "127.0.0.1")
	c.nick = "alice"
	c.user = "alice"
	assert.Equal(t, "alice!alice@127.0.0.1", c.uhost())
}
