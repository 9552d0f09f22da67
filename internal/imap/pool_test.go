package imap

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestNewPool(t *testing.T) {
	p := NewPool("imap.example.com:993", true, testLogger())
	assert.Equal(t, 0, p.Len())
}

func TestNewPoolNilLogger(t *testing.T) {
	p := NewPool("imap.example.com:993", true, nil)
	require.NotNil(t, p.log)
}

func TestPoolEvictMissing(t *testing.T) {
	p := NewPool("imap.example.com:993", true, testLogger())
	// Evicting credentials that were never pooled is a no-op.
	p.Evict("nobody@example.com", "secret")
	assert.Equal(t, 0, p.Len())
}

func TestPoolCloseAllEmpty(t *testing.T) {
	p := NewPool("imap.example.com:993", true, testLogger())
	p.CloseAll()
	assert.Equal(t, 0, p.Len())
}

func TestPoolCloseAllSkipsBusySession(t *testing.T) {
	p := NewPool("imap.example.com:993", true, testLogger())

	// A borrower holds the session lock mid-command. CloseAll must not
	// issue Logout on that connection: with the nil client here, doing
	// so would panic.
	busy := &threadSafeClient{}
	busy.Lock()
	p.sessions[poolKey{username: "user@example.com", password: "secret"}] = busy

	p.CloseAll()
	assert.Equal(t, 0, p.Len())
}

func TestPoolEvictSkipsBusySession(t *testing.T) {
	p := NewPool("imap.example.com:993", true, testLogger())

	busy := &threadSafeClient{}
	busy.Lock()
	p.sessions[poolKey{username: "user@example.com", password: "secret"}] = busy

	p.Evict("user@example.com", "secret")
	assert.Equal(t, 0, p.Len())
}

func TestPoolAcquireConnectionFailure(t *testing.T) {
	// Port 1 is never an IMAP server; the dial fails fast and the
	// pool must stay empty.
	p := NewPool("127.0.0.1:1", false, testLogger())

	_, _, err := p.Acquire("user@example.com", "secret")
	require.Error(t, err)
	assert.Equal(t, 0, p.Len())
}
