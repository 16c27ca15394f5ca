// Package transport moves the session credential between client and server.
// The core never touches cookies or metadata directly; it talks to
// Credentials, and each surface supplies its own implementation.
package transport

import "time"

// Credentials is the request-scoped credential channel.
//
// Get returns the value the client presented, or whatever Set/Delete changed
// it to earlier in the same request. Set asks the client to keep value for
// ttl. Delete asks the client to forget it.
type Credentials interface {
	Get() (string, bool)
	Set(value string, ttl time.Duration)
	Delete()
}

// pending remembers writes so later reads in the same request agree with them.
type pending struct {
	written bool
	value   string
}

func (p *pending) get(read func() (string, bool)) (string, bool) {
	if p.written {
		return p.value, p.value != ""
	}
	return read()
}
