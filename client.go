package main

import (
	"fmt"
	"net"
)

// Phase is a client's registration phase. It advances monotonically:
// PhasePassNeeded -> PhaseNickUserNeeded -> PhaseRegistered.
type Phase int

const (
	PhasePassNeeded Phase = iota
	PhaseNickUserNeeded
	PhaseRegistered
)

// Client holds state about a single live TCP connection.
type Client struct {
	// handle identifies this client's transport endpoint. It is stable for
	// the lifetime of the connection and is how Channel membership refers to
	// a Client without holding an owning pointer in both directions.
	handle uint64

	conn net.Conn

	// hostname is the presentation form of the peer address, captured at
	// accept time. Immutable.
	hostname string

	nick string
	user string

	phase      Phase
	passwordOK bool

	// recvBuf holds bytes read but not yet assembled into complete lines.
	// Only the central event-loop goroutine ever touches it (server.go).
	recvBuf []byte
}

func newClient(handle uint64, conn net.Conn, hostname string) *Client {
	return &Client{
		handle:   handle,
		conn:     conn,
		hostname: hostname,
		phase:    PhasePassNeeded,
	}
}

func (c *Client) String() string {
	return fmt.Sprintf("%d(%s!%s@%s)", c.handle, c.nick, c.user, c.hostname)
}

// registered reports whether the client has completed PASS/NICK/USER.
func (c *Client) registered() bool {
	return c.phase == PhaseRegistered
}

// uhost formats the nick!user@host triple used as a relayed message's
// source prefix.
func (c *Client) uhost() string {
	return fmt.Sprintf("%s!%s@%s", c.nick, c.user, c.hostname)
}

// maybeAdvanceRegistration promotes the client to PhaseRegistered once both
// nickname and username are known. Per spec.md §4.3 this check runs after
// either NICK or USER completes; it returns true exactly when it performed
// the transition, so the caller can send the welcome numeric.
func (c *Client) maybeAdvanceRegistration() bool {
	if c.phase == PhaseNickUserNeeded && c.nick != "" && c.user != "" {
		c.phase = PhaseRegistered
		return true
	}
	return false
}
