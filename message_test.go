package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLines(t *testing.T) {
	lines, rest := extractLines([]byte("NICK alice\r\nUSER a 0 * :A\r\nPAR"))
	require.Equal(t, []string{"NICK alice", "USER a 0 * :A"}, lines)
	assert.Equal(t, "PAR", string(rest))
}

func TestExtractLinesNoTrailingCR(t *testing.T) {
	lines, rest := extractLines([]byte("JOIN #room\n"))
	require.Equal(t, []string{"JOIN #room"}, lines)
	assert.Empty(t, rest)
}

func TestExtractLinesDropsEmpty(t *testing.T) {
	lines, _ := extractLines([]byte("\r\n\r\nNICK bob\r\n\r\n"))
	assert.Equal(t, []string{"NICK bob"}, lines)
}

func TestExtractLinesNoLFYieldsNoLines(t *testing.T) {
	lines, rest := extractLines([]byte("NICK alice"))
	assert.Nil(t, lines)
	assert.Equal(t, "NICK alice", string(rest))
}

func TestParseMessageBasic(t *testing.T) {
	m := parseMessage("nick alice")
	assert.Equal(t, "NICK", m.Command)
	assert.Equal(t, []string{"alice"}, m.Params)
}

func TestParseMessageTrailing(t *testing.T) {
	m := parseMessage("USER alice 0 * :Alice Example")
	assert.Equal(t, "USER", m.Command)
	assert.Equal(t, []string{"alice", "0", "*", "Alice Example"}, m.Params)
}

func TestParseMessageEmptyLine(t *testing.T) {
	m := parseMessage("")
	assert.Empty(t, m.Command)
	assert.Nil(t, m.Params)
}

func TestParseMessageLeadingColonTolerated(t *testing.T) {
	m := parseMessage(":alice NICK bob")
	assert.Equal(t, "NICK", m.Command)
	assert.Equal(t, []string{"bob"}, m.Params)
}

func TestParseMessageCollapsesRepeatedSpaces(t *testing.T) {
	m := parseMessage("JOIN  #room")
	assert.Equal(t, "JOIN", m.Command)
	assert.Equal(t, []string{"#room"}, m.Params)
}

func TestEncodeNumericColonTrailing(t *testing.T) {
	line := encodeNumeric("irc.42.fr", replyNoTopic, "alice", true, "#room", "No topic is set")
	assert.Equal(t, ":irc.42.fr 331 alice #room :No topic is set\r\n", line)
}

func TestEncodeNumericNoColonTrailing(t *testing.T) {
	line := encodeNumeric("irc.42.fr", replyChannelMode, "alice", false, "#room", "+t")
	assert.Equal(t, ":irc.42.fr 324 alice #room +t\r\n", line)
}

func TestEncodeRelayedJoinAlwaysColonsSoleParam(t *testing.T) {
	line := encodeRelayed("alice!alice@127.0.0.1", "JOIN", true, "#room")
	assert.Equal(t, ":alice!alice@127.0.0.1 JOIN :#room\r\n", line)
}

func TestEncodeRelayedModeBroadcastNeverColons(t *testing.T) {
	line := encodeRelayed("alice!alice@127.0.0.1", "MODE", false, "#room", "+o", "bob")
	assert.Equal(t, ":alice!alice@127.0.0.1 MODE #room +o bob\r\n", line)
}
