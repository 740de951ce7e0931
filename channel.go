package main

// Channel holds everything to do with one chat room.
//
// Invariants (spec.md §3): operators is a subset of members; a Channel
// exists (in the Directory) iff members is non-empty; removing a client
// from members also removes it from operators and invites.
type Channel struct {
	// Name begins with '#', is case-sensitive, and is immutable.
	Name string

	// Members are referenced by Client handle, not by pointer, so that
	// membership never keeps a disconnected Client alive. See spec.md §9.
	members   map[uint64]struct{}
	operators map[uint64]struct{}
	invites   map[uint64]struct{}

	Topic string

	// Key is empty when no key is required (mode k unset).
	Key string

	// Limit is 0 when unlimited (mode l unset).
	Limit int

	InviteOnly     bool // mode i
	TopicRestricted bool // mode t
}

// newChannel creates a channel with creator as its sole member and
// operator. Mode checks are not applied to creation (spec.md §4.4 JOIN).
// Initial mode is t=on, i=off, k=unset, l=0.
func newChannel(name string, creator uint64) *Channel {
	ch := &Channel{
		Name:            name,
		members:         map[uint64]struct{}{creator: {}},
		operators:       map[uint64]struct{}{creator: {}},
		invites:         map[uint64]struct{}{},
		TopicRestricted: true,
	}
	return ch
}

func (ch *Channel) isMember(handle uint64) bool {
	_, ok := ch.members[handle]
	return ok
}

func (ch *Channel) isOperator(handle uint64) bool {
	_, ok := ch.operators[handle]
	return ok
}

func (ch *Channel) isInvited(handle uint64) bool {
	_, ok := ch.invites[handle]
	return ok
}

func (ch *Channel) memberCount() int {
	return len(ch.members)
}

func (ch *Channel) empty() bool {
	return len(ch.members) == 0
}

// addMember adds handle as a plain (non-operator) member and clears any
// pending invite for it, per spec.md §4.4 JOIN: "Regardless of new/existing:
// clear caller from the invite list."
func (ch *Channel) addMember(handle uint64) {
	ch.members[handle] = struct{}{}
	delete(ch.invites, handle)
}

// removeMember removes handle from members, operators, and invites
// (spec.md §3 invariant).
func (ch *Channel) removeMember(handle uint64) {
	delete(ch.members, handle)
	delete(ch.operators, handle)
	delete(ch.invites, handle)
}

func (ch *Channel) invite(handle uint64) {
	ch.invites[handle] = struct{}{}
}

func (ch *Channel) promote(handle uint64) {
	ch.operators[handle] = struct{}{}
}

func (ch *Channel) demote(handle uint64) {
	delete(ch.operators, handle)
}

// modeString renders the channel's current mode flags, e.g. "+itk" or "" if
// no flags are set (spec.md §4.4 MODE).
func (ch *Channel) modeString() string {
	s := ""
	if ch.InviteOnly {
		s += "i"
	}
	if ch.TopicRestricted {
		s += "t"
	}
	if ch.Key != "" {
		s += "k"
	}
	if ch.Limit != 0 {
		s += "l"
	}
	if s == "" {
		return ""
	}
	return "+" + s
}
