package imap

import (
	"fmt"
	"sync"

	"github.com/emersion/go-imap/client"
	"github.com/sirupsen/logrus"
)

// poolKey identifies a session by the credentials that opened it.
type poolKey struct {
	username string
	password string
}

// Pool maintains at most one authenticated IMAP session per credential
// pair. Sessions are created lazily on first acquisition, probed with
// NOOP before reuse, and destroyed only on teardown or when the probe
// fails.
type Pool struct {
	server string
	useTLS bool
	log    *logrus.Logger

	mu       sync.Mutex
	sessions map[poolKey]*threadSafeClient
}

// NewPool creates a session pool for the given server.
func NewPool(server string, useTLS bool, log *logrus.Logger) *Pool {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pool{
		server:   server,
		useTLS:   useTLS,
		log:      log,
		sessions: make(map[poolKey]*threadSafeClient),
	}
}

// Acquire returns a locked session for the given credentials and a
// release function. The caller must invoke release when done; release
// unlocks the session but keeps it alive in the pool for reuse.
//
// A cached session is probed with NOOP before being handed out. If the
// probe fails the session is discarded and a fresh one is established.
func (p *Pool) Acquire(username, password string) (*client.Client, func(), error) {
	key := poolKey{username: username, password: password}

	p.mu.Lock()
	tsc, ok := p.sessions[key]
	p.mu.Unlock()

	if ok {
		tsc.Lock()
		if err := tsc.Client().Noop(); err != nil {
			p.log.WithError(err).WithField("username", username).
				Warn("cached session failed liveness probe, reconnecting")
			tsc.Unlock()
			p.remove(key, tsc)
			tsc = nil
		}
		if tsc != nil {
			tsc.UpdateLastUsed()
			return tsc.Client(), tsc.Unlock, nil
		}
	}

	fresh, err := p.connect(username, password)
	if err != nil {
		return nil, nil, err
	}

	p.mu.Lock()
	// Another goroutine may have connected for the same credentials
	// while we were dialing. Keep the existing session and discard ours.
	if existing, ok := p.sessions[key]; ok {
		p.mu.Unlock()
		if err := fresh.Logout(); err != nil {
			p.log.WithError(err).Debug("failed to log out duplicate session")
		}
		existing.Lock()
		existing.UpdateLastUsed()
		return existing.Client(), existing.Unlock, nil
	}
	tsc = &threadSafeClient{client: fresh}
	p.sessions[key] = tsc
	p.mu.Unlock()

	tsc.Lock()
	tsc.UpdateLastUsed()
	return tsc.Client(), tsc.Unlock, nil
}

// Evict removes and logs out the session for the given credentials, if
// one exists. Logout failures are logged and swallowed.
func (p *Pool) Evict(username, password string) {
	key := poolKey{username: username, password: password}

	p.mu.Lock()
	tsc, ok := p.sessions[key]
	if ok {
		delete(p.sessions, key)
	}
	p.mu.Unlock()

	if !ok {
		return
	}
	p.logout(tsc, username, "failed to log out evicted session")
}

// CloseAll logs out every pooled session. Used on teardown; logout
// failures are logged and swallowed.
func (p *Pool) CloseAll() {
	p.mu.Lock()
	sessions := p.sessions
	p.sessions = make(map[poolKey]*threadSafeClient)
	p.mu.Unlock()

	for key, tsc := range sessions {
		p.logout(tsc, key.username, "failed to log out session on close")
	}
}

// logout attempts a best-effort logout on a session already removed
// from the map. The per-session mutex is taken first: a borrower may
// still have a command in flight, and IMAP allows only one command per
// connection. A session that cannot be locked is left to die with the
// process.
func (p *Pool) logout(tsc *threadSafeClient, username, failMsg string) {
	if !tsc.TryLock() {
		p.log.WithField("username", username).
			Debug("session busy at logout, abandoning connection")
		return
	}
	defer tsc.Unlock()

	if err := tsc.Client().Logout(); err != nil {
		p.log.WithError(err).WithField("username", username).Debug(failMsg)
	}
}

// Len returns the number of pooled sessions.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// remove drops the session for key, but only if it is still the same
// session we observed failing. A concurrent Acquire may already have
// replaced it.
func (p *Pool) remove(key poolKey, tsc *threadSafeClient) {
	p.mu.Lock()
	if current, ok := p.sessions[key]; ok && current == tsc {
		delete(p.sessions, key)
	}
	p.mu.Unlock()

	p.logout(tsc, key.username, "failed to log out dead session")
}

// connect dials and authenticates a fresh session.
func (p *Pool) connect(username, password string) (*client.Client, error) {
	c, err := Connect(p.server, p.useTLS)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", p.server, err)
	}
	if err := Login(c, username, password); err != nil {
		if lerr := c.Logout(); lerr != nil {
			p.log.WithError(lerr).Debug("failed to close unauthenticated session")
		}
		return nil, err
	}
	p.log.WithField("username", username).Debug("established IMAP session")
	return c, nil
}
