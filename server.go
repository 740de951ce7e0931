package main

import (
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// readChunkSize is the size of each connection's read buffer: a single read
// takes at most this many bytes off the wire.
const readChunkSize = 4096

// clientEvent is what a client's reader goroutine hands to the central
// event loop: either bytes read off the wire, or notice that the
// connection is gone.
type clientEvent struct {
	client *Client
	data   []byte
	closed bool
	err    error
}

// Server owns all engine state. Only the goroutine running Run ever reads
// or writes dir, any Client, or any Channel — this is what lets command
// handlers run to completion atomically with respect to each other without
// a lock anywhere (spec.md §5), the idiomatic Go expression of the spec's
// single-threaded, readiness-based core.
type Server struct {
	dir *Directory
	log *logrus.Logger

	listener net.Listener
	events   chan clientEvent
	newConns chan net.Conn

	nextHandle uint64
}

// NewServer constructs a Server from its configuration. It does not yet
// bind a listener; call Run for that.
func NewServer(cfg Config, log *logrus.Logger) *Server {
	return &Server{
		dir:      newDirectory(cfg),
		log:      log,
		events:   make(chan clientEvent, 256),
		newConns: make(chan net.Conn, 16),
	}
}

// Run binds the listening socket and then processes events forever. It
// returns only when binding fails; accept errors after that are logged by
// acceptLoop and do not stop the server.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", net.JoinHostPort(s.dir.hostHint(), strconv.Itoa(s.dir.listenPort)))
	if err != nil {
		return errors.Wrap(err, "unable to listen")
	}
	s.listener = ln

	s.log.WithField("addr", ln.Addr()).Info("listening")

	go s.acceptLoop()

	for {
		select {
		case conn := <-s.newConns:
			s.onAccept(conn)

		case ev := <-s.events:
			s.onEvent(ev)
		}
	}
}

// acceptLoop accepts connections and hands them to the central loop.
// Accept errors are logged and we continue (spec.md §7: "listener
// failures: log and continue; do not terminate the server").
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.log.WithError(err).Warn("accept failed")
			continue
		}
		s.newConns <- conn
	}
}

func (s *Server) onAccept(conn net.Conn) {
	handle := s.nextHandle
	s.nextHandle++

	host := conn.RemoteAddr().String()
	if tcpAddr, ok := conn.RemoteAddr().(*net.TCPAddr); ok {
		host = tcpAddr.IP.String()
	}

	c := newClient(handle, conn, host)
	s.dir.addClient(c)

	s.log.WithFields(logrus.Fields{"client": c.handle, "host": host}).Info("accepted connection")

	go s.readLoop(c)
}

// readLoop is the only goroutine that touches conn.Read. It never touches
// Directory/Client/Channel state directly — it only ever hands bytes or a
// close notice to the central loop via s.events.
func (s *Server) readLoop(c *Client) {
	buf := make([]byte, readChunkSize)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			s.events <- clientEvent{client: c, data: chunk}
		}
		if err != nil {
			s.events <- clientEvent{client: c, closed: true, err: err}
			return
		}
	}
}

func (s *Server) onEvent(ev clientEvent) {
	// The client may already have been torn down by a prior event in the
	// same batch (e.g. a QUIT processed just before a closed-connection
	// event for the same socket arrives).
	if _, live := s.dir.clients[ev.client.handle]; !live {
		return
	}

	if ev.closed {
		s.disconnectClient(ev.client, errorToQuitMessage(ev.err))
		return
	}

	c := ev.client
	c.recvBuf = append(c.recvBuf, ev.data...)

	lines, rest := extractLines(c.recvBuf)
	c.recvBuf = rest

	for _, line := range lines {
		if _, live := s.dir.clients[c.handle]; !live {
			// A prior line in this same batch (e.g. QUIT) already disconnected
			// the client; stop processing its remaining buffered lines.
			return
		}
		s.handle(c, parseMessage(line))
	}
}

// send writes one CRLF-terminated line to c synchronously, best-effort, as
// spec.md §4.6 permits. A write failure disconnects the client the same
// way a read failure would.
func (s *Server) send(c *Client, line string) {
	if _, live := s.dir.clients[c.handle]; !live {
		return
	}
	if _, err := io.WriteString(c.conn, line); err != nil {
		s.disconnectClient(c, errorToQuitMessage(err))
	}
}

// disconnectClient implements spec.md §9's redesign flag: every
// disconnect — explicit QUIT or otherwise — broadcasts a QUIT to every
// channel the client belonged to, then tears it down.
func (s *Server) disconnectClient(c *Client, quitMessage string) {
	prefix := c.uhost()
	informed := map[uint64]struct{}{}

	for _, ch := range s.dir.clientChannels(c.handle) {
		for handle := range ch.members {
			if handle == c.handle {
				continue
			}
			if _, done := informed[handle]; done {
				continue
			}
			if member := s.dir.clients[handle]; member != nil {
				s.relayFromPrefix(prefix, member, "QUIT", true, quitMessage)
				informed[handle] = struct{}{}
			}
		}
	}

	s.dir.removeClientEverywhere(c.handle)

	_ = c.conn.Close()

	s.log.WithFields(logrus.Fields{"client": c.handle, "reason": quitMessage}).Info("disconnected")
}

// errorToQuitMessage turns a read/write error into the QUIT message text a
// disconnecting client's peers see.
func errorToQuitMessage(err error) string {
	if err == nil {
		return "I/O error"
	}

	msg := err.Error()
	switch {
	case err == io.EOF, strings.Contains(msg, "EOF"):
		return "Connection reset by peer"
	case strings.Contains(msg, "timeout"):
		return "Ping timeout"
	case strings.Contains(msg, "reset by peer"):
		return "Connection reset by peer"
	case msg == "":
		return "I/O error"
	default:
		return msg
	}
}

func (d *Directory) hostHint() string {
	if d.listenHost != "" {
		return d.listenHost
	}
	return "0.0.0.0"
}
