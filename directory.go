package main

import "time"

// Directory is the server-global index: every live Client by connection
// handle, every Channel by name, plus the handful of server-wide facts the
// dispatcher needs (spec.md §3 Directory).
//
// Nickname lookup is a linear scan over clients, per spec.md §9 ("the
// design does not require a secondary index"): this server is small enough
// that the simplicity is worth more than the O(1) lookup.
type Directory struct {
	clients  map[uint64]*Client
	channels map[string]*Channel

	startTime time.Time

	password      string
	listenHost    string
	listenPort    int
	serverName    string
	maxNickLength int
}

func newDirectory(cfg Config) *Directory {
	return &Directory{
		clients:       map[uint64]*Client{},
		channels:      map[string]*Channel{},
		startTime:     time.Now(),
		password:      cfg.Password,
		listenHost:    cfg.ListenHost,
		listenPort:    cfg.ListenPort,
		serverName:    cfg.ServerName,
		maxNickLength: cfg.MaxNickLength,
	}
}

func (d *Directory) addClient(c *Client) {
	d.clients[c.handle] = c
}

func (d *Directory) removeClient(handle uint64) {
	delete(d.clients, handle)
}

// clientByNick performs the linear scan spec.md §3/§9 calls for, matching
// only clients that have completed registration.
func (d *Directory) clientByNick(nick string) *Client {
	for _, c := range d.clients {
		if c.registered() && c.nick == nick {
			return c
		}
	}
	return nil
}

func (d *Directory) channel(name string) *Channel {
	return d.channels[name]
}

func (d *Directory) setChannel(ch *Channel) {
	d.channels[ch.Name] = ch
}

func (d *Directory) deleteChannelIfEmpty(ch *Channel) {
	if ch.empty() {
		delete(d.channels, ch.Name)
	}
}

// clientChannels returns every channel handle belongs to.
func (d *Directory) clientChannels(handle uint64) []*Channel {
	var out []*Channel
	for _, ch := range d.channels {
		if ch.isMember(handle) {
			out = append(out, ch)
		}
	}
	return out
}

// removeClientEverywhere removes handle from every channel it belongs to,
// deleting any channel left empty, then drops it from the client table.
// This is the cleanup spec.md §3/§4.4 QUIT requires on disconnection.
func (d *Directory) removeClientEverywhere(handle uint64) {
	for _, ch := range d.clientChannels(handle) {
		ch.removeMember(handle)
		d.deleteChannelIfEmpty(ch)
	}
	d.removeClient(handle)
}
