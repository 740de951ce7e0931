package main

import (
	"bytes"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn is a net.Conn whose Write never blocks, so command handlers can
// run synchronously in-process without a reader goroutine on the other
// end. Only Write/Close/addr methods are exercised by Server.send.
type fakeConn struct {
	net.Conn
	buf bytes.Buffer
}

func (f *fakeConn) Write(p []byte) (int, error) { return f.buf.Write(p) }
func (f *fakeConn) Close() error                { return nil }
func (f *fakeConn) RemoteAddr() net.Addr         { return fakeAddr("127.0.0.1:0") }

type fakeAddr string

func (a fakeAddr) Network() string { return "tcp" }
func (a fakeAddr) String() string  { return string(a) }

func (f *fakeConn) lines() []string {
	raw := f.buf.String()
	f.buf.Reset()
	var out []string
	for _, l := range strings.Split(raw, "\r\n") {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func newTestServer() *Server {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewServer(testConfig(), log)
}

func newHandledClient(t *testing.T, s *Server, handle uint64) (*Client, *fakeConn) {
	t.Helper()
	fc := &fakeConn{}
	c := newClient(handle, fc, "127.0.0.1")
	s.dir.addClient(c)
	return c, fc
}

func registerHandledClient(t *testing.T, s *Server, handle uint64, nick string) (*Client, *fakeConn) {
	t.Helper()
	c, fc := newHandledClient(t, s, handle)
	s.handle(c, parseMessage("PASS secret"))
	s.handle(c, parseMessage("NICK "+nick))
	s.handle(c, parseMessage("USER "+nick+" 0 * :"+nick))
	fc.lines() // discard the 001 welcome
	return c, fc
}

func TestCmdNickRejectsDuplicateInUse(t *testing.T) {
	s := newTestServer()
	_, _ = registerHandledClient(t, s, 1, "alice")
	c, fc := newHandledClient(t, s, 2)

	s.handle(c, parseMessage("PASS secret"))
	s.handle(c, parseMessage("NICK alice"))

	assert.Equal(t, []string{":irc.42.fr 433 * alice :Nickname is already in use"}, fc.lines())
}

func TestCmdJoinThenPartReturnsToPreJoinState(t *testing.T) {
	s := newTestServer()
	alice, fc := registerHandledClient(t, s, 1, "alice")

	s.handle(alice, parseMessage("JOIN #room"))
	require.NotNil(t, s.dir.channel("#room"))
	fc.lines()

	s.handle(alice, parseMessage("PART #room"))

	assert.Nil(t, s.dir.channel("#room"))
	assert.Equal(t, []string{":alice!alice@127.0.0.1 PART #room :Leaving"}, fc.lines())
}

func TestCmdJoinThenPartWithOthersLeavesChannelIntact(t *testing.T) {
	s := newTestServer()
	alice, _ := registerHandledClient(t, s, 1, "alice")
	bob, fcBob := registerHandledClient(t, s, 2, "bob")

	s.handle(alice, parseMessage("JOIN #room"))
	s.handle(bob, parseMessage("JOIN #room"))
	fcBob.lines()

	s.handle(alice, parseMessage("PART #room :bye all"))

	ch := s.dir.channel("#room")
	require.NotNil(t, ch)
	assert.False(t, ch.isMember(alice.handle))
	assert.True(t, ch.isMember(bob.handle))
	assert.Equal(t, []string{":alice!alice@127.0.0.1 PART #room :bye all"}, fcBob.lines())
}

func TestRegistrationGateBlocksChannelCommands(t *testing.T) {
	s := newTestServer()
	c, fc := newHandledClient(t, s, 1)

	s.handle(c, parseMessage("JOIN #room"))

	assert.Equal(t, []string{":irc.42.fr 451 * :You have not registered"}, fc.lines())
}

func TestCmdPrivmsgToChannelExcludesSender(t *testing.T) {
	s := newTestServer()
	alice, fcAlice := registerHandledClient(t, s, 1, "alice")
	bob, fcBob := registerHandledClient(t, s, 2, "bob")

	s.handle(alice, parseMessage("JOIN #room"))
	s.handle(bob, parseMessage("JOIN #room"))
	fcAlice.lines()
	fcBob.lines()

	s.handle(alice, parseMessage("PRIVMSG #room :hello"))

	assert.Empty(t, fcAlice.lines())
	assert.Equal(t, []string{":alice!alice@127.0.0.1 PRIVMSG #room :hello"}, fcBob.lines())
}

func TestApplyChannelModesEchoesAllConsumedArgs(t *testing.T) {
	s := newTestServer()
	alice, fcAlice := registerHandledClient(t, s, 1, "alice")
	bob, _ := registerHandledClient(t, s, 2, "bob")

	s.handle(alice, parseMessage("JOIN #room"))
	s.handle(bob, parseMessage("JOIN #room"))
	fcAlice.lines()

	s.handle(alice, parseMessage("MODE #room +ol bob 5"))

	assert.Equal(t, []string{":alice!alice@127.0.0.1 MODE #room +ol bob 5"}, fcAlice.lines())
	ch := s.dir.channel("#room")
	assert.True(t, ch.isOperator(bob.handle))
	assert.Equal(t, 5, ch.Limit)
}

func TestDisconnectClientBroadcastsQuitToChannelPeers(t *testing.T) {
	s := newTestServer()
	alice, fcAlice := registerHandledClient(t, s, 1, "alice")
	bob, fcBob := registerHandledClient(t, s, 2, "bob")

	s.handle(alice, parseMessage("JOIN #room"))
	s.handle(bob, parseMessage("JOIN #room"))
	fcAlice.lines()
	fcBob.lines()

	s.disconnectClient(bob, "Connection reset by peer")

	lines := fcAlice.lines()
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], ":bob!bob@127.0.0.1 QUIT :"))
	assert.Nil(t, s.dir.clients[bob.handle])
}

func TestDeadlineSanity(t *testing.T) {
	// Guards against accidentally writing a test above that blocks on a
	// real net.Pipe; fakeConn must never block.
	done := make(chan struct{})
	go func() {
		fc := &fakeConn{}
		_, _ = fc.Write([]byte("x"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("fakeConn.Write blocked")
	}
}
