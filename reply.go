package main

// Numeric reply codes used by this server (spec.md §6).
const (
	replyWelcome     = "001"
	replyChannelMode = "324"
	replyNoTopic     = "331"
	replyTopic       = "332"
	replyInviting    = "341"
	replyNames       = "353"
	replyEndOfNames  = "366"
	errNoSuchNick    = "401"
	errNoSuchChannel = "403"
	errCannotSend    = "404"
	errUnknownCmd    = "421"
	errNoNick        = "431"
	errNickInUse     = "433"
	errUserNotInChannel = "441" // "they aren't on that channel" (KICK target)
	errNotOnChannel     = "442"
	errUserOnChannel = "443"
	errNotRegistered = "451"
	errNeedMoreParam = "461"
	errAlreadyReg    = "462"
	errPasswdMismatch = "464"
	errChannelFull   = "471"
	errInviteOnly    = "473"
	errBadKey        = "475"
	errNotOperator   = "482"
	errUModeUnknown  = "502"
)

// recipientNick returns the nick field used in a numeric reply: the
// client's nickname if it has one, else "*" (spec.md §4.5 tolerates either
// behavior; we follow the common ircd-ratbox convention of "*").
func recipientNick(c *Client) string {
	if c.nick == "" {
		return "*"
	}
	return c.nick
}

// numeric sends a single numeric reply to c. colonTrailing marks whether the
// last of params is free text that must be colon-prefixed; see
// encodeNumeric.
func (s *Server) numeric(c *Client, code string, colonTrailing bool, params ...string) {
	line := encodeNumeric(s.dir.serverName, code, recipientNick(c), colonTrailing, params...)
	s.send(c, line)
}

// relay sends a source-prefixed message (as though from sourceClient) to
// target.
func (s *Server) relay(sourceClient *Client, target *Client, verb string, colonTrailing bool, params ...string) {
	line := encodeRelayed(sourceClient.uhost(), verb, colonTrailing, params...)
	s.send(target, line)
}

// relayFromPrefix is like relay but takes an already-formatted source
// prefix, for cases like QUIT where the source client may already be torn
// down by the time some recipients are notified.
func (s *Server) relayFromPrefix(prefix string, target *Client, verb string, colonTrailing bool, params ...string) {
	line := encodeRelayed(prefix, verb, colonTrailing, params...)
	s.send(target, line)
}

// broadcastToChannel sends a relayed message to every member of ch,
// optionally excluding one handle (e.g. PRIVMSG's "sender does not echo").
func (s *Server) broadcastToChannel(ch *Channel, sourcePrefix, verb string, exclude uint64, hasExclude bool, colonTrailing bool, params ...string) {
	line := encodeRelayed(sourcePrefix, verb, colonTrailing, params...)
	for handle := range ch.members {
		if hasExclude && handle == exclude {
			continue
		}
		if c := s.dir.clients[handle]; c != nil {
			s.send(c, line)
		}
	}
}
