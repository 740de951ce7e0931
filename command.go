package main

import (
	"strconv"
	"strings"
)

// handle dispatches one parsed Message from c. It enforces the
// registration gate (spec.md §4.3) before handing off to a command
// handler. Command names are matched case-insensitively; parseMessage
// already uppercases the command token.
func (s *Server) handle(c *Client, m Message) {
	if m.Command == "" {
		return
	}

	switch m.Command {
	case "PASS":
		s.cmdPass(c, m)
		return
	case "NICK":
		s.cmdNick(c, m)
		return
	case "USER":
		s.cmdUser(c, m)
		return
	case "QUIT":
		s.cmdQuit(c, m)
		return
	}

	if !c.registered() {
		s.numeric(c, errNotRegistered, true, "You have not registered")
		return
	}

	switch m.Command {
	case "JOIN":
		s.cmdJoin(c, m)
	case "PART":
		s.cmdPart(c, m)
	case "TOPIC":
		s.cmdTopic(c, m)
	case "KICK":
		s.cmdKick(c, m)
	case "INVITE":
		s.cmdInvite(c, m)
	case "MODE":
		s.cmdMode(c, m)
	case "PRIVMSG":
		s.cmdPrivmsg(c, m)
	default:
		s.numeric(c, errUnknownCmd, true, m.Command, "Unknown command")
	}
}

// --- Registration commands ---

func (s *Server) cmdPass(c *Client, m Message) {
	if c.passwordOK {
		s.numeric(c, errAlreadyReg, true, "You may not reregister")
		return
	}

	if len(m.Params) == 0 {
		s.numeric(c, errNeedMoreParam, true, "PASS", "Not enough parameters")
		return
	}

	if m.Params[0] != s.dir.password {
		s.numeric(c, errPasswdMismatch, true, "Password incorrect")
		return
	}

	c.passwordOK = true
	if c.phase == PhasePassNeeded {
		c.phase = PhaseNickUserNeeded
	}
}

func (s *Server) cmdNick(c *Client, m Message) {
	if !c.passwordOK {
		s.numeric(c, errNotRegistered, true, "You have not registered (PASSWORD required)")
		return
	}

	if len(m.Params) == 0 || m.Params[0] == "" {
		s.numeric(c, errNoNick, true, "No nickname given")
		return
	}
	nick := m.Params[0]

	// max-nick-length is an ambient config knob carried from the teacher
	// (SPEC_FULL.md §3.1), not a spec.md error condition: an overlong
	// nickname is truncated rather than rejected.
	if len(nick) > s.dir.maxNickLength {
		nick = nick[:s.dir.maxNickLength]
	}

	if existing := s.dir.clientByNick(nick); existing != nil && existing.handle != c.handle {
		s.numeric(c, errNickInUse, true, nick, "Nickname is already in use")
		return
	}

	c.nick = nick

	if c.maybeAdvanceRegistration() {
		s.welcome(c)
	}
}

func (s *Server) cmdUser(c *Client, m Message) {
	if !c.passwordOK {
		s.numeric(c, errNotRegistered, true, "You have not registered (PASSWORD required)")
		return
	}

	if c.registered() {
		s.numeric(c, errAlreadyReg, true, "You may not reregister")
		return
	}

	if len(m.Params) < 4 {
		s.numeric(c, errNeedMoreParam, true, "USER", "Not enough parameters")
		return
	}

	c.user = m.Params[0]

	if c.maybeAdvanceRegistration() {
		s.welcome(c)
	}
}

func (s *Server) welcome(c *Client) {
	s.numeric(c, replyWelcome, true, "Welcome to the IRC Network "+c.nick)
}

func (s *Server) cmdQuit(c *Client, m Message) {
	msg := "Client Quit"
	if len(m.Params) > 0 {
		msg = m.Params[0]
	}
	s.disconnectClient(c, "Quit: "+msg)
}

// --- Channel commands ---

func (s *Server) cmdJoin(c *Client, m Message) {
	if len(m.Params) == 0 {
		s.numeric(c, errNeedMoreParam, true, "JOIN", "Not enough parameters")
		return
	}

	name := m.Params[0]
	var key string
	if len(m.Params) > 1 {
		key = m.Params[1]
	}

	if !isValidChannel(name) {
		s.numeric(c, errNoSuchChannel, true, name, "No such channel")
		return
	}

	ch := s.dir.channel(name)
	if ch == nil {
		ch = newChannel(name, c.handle)
		s.dir.setChannel(ch)
	} else {
		switch {
		case ch.InviteOnly && !ch.isInvited(c.handle):
			s.numeric(c, errInviteOnly, true, name, "Cannot join channel (+i)")
			return
		case ch.Key != "" && key != ch.Key:
			s.numeric(c, errBadKey, true, name, "Cannot join channel (+k)")
			return
		case ch.Limit != 0 && ch.memberCount() >= ch.Limit:
			s.numeric(c, errChannelFull, true, name, "Cannot join channel (+l)")
			return
		}
		ch.addMember(c.handle)
	}

	s.broadcastToChannel(ch, c.uhost(), "JOIN", 0, false, true, name)

	if ch.Topic != "" {
		s.numeric(c, replyTopic, true, name, ch.Topic)
	} else {
		s.numeric(c, replyNoTopic, true, name, "No topic is set")
	}

	s.numeric(c, replyNames, true, "=", name, namesList(s.dir, ch))
	s.numeric(c, replyEndOfNames, true, name, "End of /NAMES list")
}

// namesList renders a channel's membership for RPL_NAMREPLY: operators
// prefixed with '@', members space-separated.
func namesList(dir *Directory, ch *Channel) string {
	var names []string
	for handle := range ch.members {
		member := dir.clients[handle]
		if member == nil {
			continue
		}
		if ch.isOperator(handle) {
			names = append(names, "@"+member.nick)
		} else {
			names = append(names, member.nick)
		}
	}
	return strings.Join(names, " ")
}

func (s *Server) cmdPart(c *Client, m Message) {
	if len(m.Params) == 0 {
		s.numeric(c, errNeedMoreParam, true, "PART", "Not enough parameters")
		return
	}
	name := m.Params[0]

	ch := s.dir.channel(name)
	if ch == nil {
		s.numeric(c, errNoSuchChannel, true, name, "No such channel")
		return
	}
	if !ch.isMember(c.handle) {
		s.numeric(c, errNotOnChannel, true, name, "You're not on that channel")
		return
	}

	reason := "Leaving"
	if len(m.Params) > 1 {
		reason = m.Params[1]
	}

	s.broadcastToChannel(ch, c.uhost(), "PART", 0, false, true, name, reason)
	ch.removeMember(c.handle)
	s.dir.deleteChannelIfEmpty(ch)
}

func (s *Server) cmdTopic(c *Client, m Message) {
	if len(m.Params) == 0 {
		s.numeric(c, errNeedMoreParam, true, "TOPIC", "Not enough parameters")
		return
	}
	name := m.Params[0]

	ch := s.dir.channel(name)
	if ch == nil {
		s.numeric(c, errNoSuchChannel, true, name, "No such channel")
		return
	}
	if !ch.isMember(c.handle) {
		s.numeric(c, errNotOnChannel, true, name, "You're not on that channel")
		return
	}

	if len(m.Params) == 1 {
		if ch.Topic != "" {
			s.numeric(c, replyTopic, true, name, ch.Topic)
		} else {
			s.numeric(c, replyNoTopic, true, name, "No topic is set")
		}
		return
	}

	if ch.TopicRestricted && !ch.isOperator(c.handle) {
		s.numeric(c, errNotOperator, true, name, "You're not channel operator")
		return
	}

	ch.Topic = m.Params[1]
	if len(ch.Topic) > maxTopicLength {
		ch.Topic = ch.Topic[:maxTopicLength]
	}

	s.broadcastToChannel(ch, c.uhost(), "TOPIC", 0, false, true, name, ch.Topic)
}

func (s *Server) cmdKick(c *Client, m Message) {
	if len(m.Params) < 2 {
		s.numeric(c, errNeedMoreParam, true, "KICK", "Not enough parameters")
		return
	}
	name := m.Params[0]
	targetNick := m.Params[1]

	ch := s.dir.channel(name)
	if ch == nil {
		s.numeric(c, errNoSuchChannel, true, name, "No such channel")
		return
	}
	if !ch.isOperator(c.handle) {
		s.numeric(c, errNotOperator, true, name, "You're not channel operator")
		return
	}

	target := s.dir.clientByNick(targetNick)
	if target == nil || !ch.isMember(target.handle) {
		s.numeric(c, errUserNotInChannel, true, targetNick, name, "They aren't on that channel")
		return
	}

	reason := "Kicked"
	if len(m.Params) > 2 {
		reason = m.Params[2]
	}

	s.broadcastToChannel(ch, c.uhost(), "KICK", 0, false, true, name, targetNick, reason)
	ch.removeMember(target.handle)
	s.dir.deleteChannelIfEmpty(ch)
}

func (s *Server) cmdInvite(c *Client, m Message) {
	if len(m.Params) < 2 {
		s.numeric(c, errNeedMoreParam, true, "INVITE", "Not enough parameters")
		return
	}
	targetNick := m.Params[0]
	name := m.Params[1]

	target := s.dir.clientByNick(targetNick)
	if target == nil {
		s.numeric(c, errNoSuchNick, true, targetNick, "No such nick/channel")
		return
	}

	ch := s.dir.channel(name)
	if ch == nil {
		s.numeric(c, errNoSuchChannel, true, name, "No such channel")
		return
	}

	if ch.InviteOnly && !ch.isOperator(c.handle) {
		s.numeric(c, errNotOperator, true, name, "You're not channel operator")
		return
	}

	if ch.isMember(target.handle) {
		s.numeric(c, errUserOnChannel, true, targetNick, name, "is already on channel")
		return
	}

	ch.invite(target.handle)

	s.numeric(c, replyInviting, false, name, targetNick)
	s.relay(c, target, "INVITE", true, targetNick, name)
}

func (s *Server) cmdMode(c *Client, m Message) {
	if len(m.Params) == 0 {
		s.numeric(c, errNeedMoreParam, true, "MODE", "Not enough parameters")
		return
	}
	target := m.Params[0]

	if !strings.HasPrefix(target, "#") {
		s.numeric(c, errUModeUnknown, true, "User modes are not supported")
		return
	}

	ch := s.dir.channel(target)
	if ch == nil {
		s.numeric(c, errNoSuchChannel, true, target, "No such channel")
		return
	}

	if len(m.Params) == 1 {
		s.numeric(c, replyChannelMode, false, target, ch.modeString())
		return
	}

	if !ch.isOperator(c.handle) {
		s.numeric(c, errNotOperator, true, target, "You're not channel operator")
		return
	}

	modestring := m.Params[1]
	extraArgs := m.Params[2:]
	consumed := applyChannelModes(s.dir, ch, modestring, extraArgs)

	params := []string{target, modestring}
	params = append(params, consumed...)
	s.broadcastToChannel(ch, c.uhost(), "MODE", 0, false, false, params...)
}

// applyChannelModes parses modestring left-to-right, tracking sign, and
// applies each recognized flag to ch. It returns every extra argument
// consumed, in order, for the caller to echo in the broadcast (spec.md §9
// redesign flag: echo all consumed arguments, not just the first).
func applyChannelModes(dir *Directory, ch *Channel, modestring string, args []string) []string {
	sign := byte('+')
	argIdx := 0
	var consumed []string

	nextArg := func() (string, bool) {
		if argIdx >= len(args) {
			return "", false
		}
		a := args[argIdx]
		argIdx++
		return a, true
	}

	for i := 0; i < len(modestring); i++ {
		flag := modestring[i]

		if flag == '+' || flag == '-' {
			sign = flag
			continue
		}

		switch flag {
		case 'i':
			ch.InviteOnly = sign == '+'
		case 't':
			ch.TopicRestricted = sign == '+'
		case 'k':
			if sign == '+' {
				if arg, ok := nextArg(); ok {
					ch.Key = arg
					consumed = append(consumed, arg)
				}
			} else {
				ch.Key = ""
			}
		case 'o':
			if arg, ok := nextArg(); ok {
				consumed = append(consumed, arg)
				if target := dir.clientByNick(arg); target != nil && ch.isMember(target.handle) {
					if sign == '+' {
						ch.promote(target.handle)
					} else {
						ch.demote(target.handle)
					}
				}
			}
		case 'l':
			if sign == '+' {
				if arg, ok := nextArg(); ok {
					consumed = append(consumed, arg)
					if n, err := strconv.Atoi(arg); err == nil && n >= 0 {
						ch.Limit = n
					}
				}
			} else {
				ch.Limit = 0
			}
		default:
			// Unknown flags are silently ignored.
		}
	}

	return consumed
}

func (s *Server) cmdPrivmsg(c *Client, m Message) {
	if len(m.Params) < 2 {
		s.numeric(c, errNeedMoreParam, true, "PRIVMSG", "Not enough parameters")
		return
	}
	target := m.Params[0]
	text := m.Params[1]

	if strings.HasPrefix(target, "#") {
		ch := s.dir.channel(target)
		if ch == nil {
			s.numeric(c, errNoSuchChannel, true, target, "No such channel")
			return
		}
		if !ch.isMember(c.handle) {
			s.numeric(c, errCannotSend, true, target, "Cannot send to channel")
			return
		}
		s.broadcastToChannel(ch, c.uhost(), "PRIVMSG", c.handle, true, true, target, text)
		return
	}

	dest := s.dir.clientByNick(target)
	if dest == nil {
		s.numeric(c, errNoSuchNick, true, target, "No such nick/channel")
		return
	}
	s.relay(c, dest, "PRIVMSG", true, target, text)
}
