package live

import (
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/ashureev/kneeoa/internal/session"
)

type fakeConn struct {
	mu     sync.Mutex
	closed bool
	reason string
}

func (c *fakeConn) Close(_ websocket.StatusCode, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.reason = reason
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

var tab = session.Key{UserID: "anon_1", SessionID: "tab-1"}

func TestRegistryReplacesPreviousFeed(t *testing.T) {
	r := NewRegistry()
	first, second := &fakeConn{}, &fakeConn{}

	r.Register(tab, first)
	r.Register(tab, second)

	if !first.isClosed() {
		t.Fatal("expected first feed to be closed")
	}
	if first.reason != "feed replaced" {
		t.Errorf("unexpected close reason %q", first.reason)
	}
	if second.isClosed() {
		t.Fatal("second feed must stay open")
	}
	if got, _ := r.Active(tab); got != second {
		t.Fatal("expected second feed to be active")
	}

	// A late unregister from the replaced feed must not drop the new one.
	r.Unregister(tab, first)
	if r.Len() != 1 {
		t.Fatalf("expected 1 active feed, got %d", r.Len())
	}
	r.Unregister(tab, second)
	if r.Len() != 0 {
		t.Fatalf("expected no active feeds, got %d", r.Len())
	}
}

func TestRegistryCloseIsPerSession(t *testing.T) {
	r := NewRegistry()
	a, b := &fakeConn{}, &fakeConn{}
	other := session.Key{UserID: "anon_1", SessionID: "tab-2"}

	r.Register(tab, a)
	r.Register(other, b)
	r.Close(tab)

	if !a.isClosed() || a.reason != "session expired" {
		t.Fatalf("expected tab-1 feed closed as expired, got closed=%v reason=%q", a.closed, a.reason)
	}
	if b.isClosed() {
		t.Fatal("tab-2 feed must stay open")
	}
	if _, ok := r.Active(tab); ok {
		t.Fatal("closed feed still registered")
	}

	// Closing an unknown key is a no-op.
	r.Close(session.Key{UserID: "nobody", SessionID: "x"})
	if r.Len() != 1 {
		t.Fatalf("expected 1 active feed, got %d", r.Len())
	}
}

// slowConn blocks in Close until released, like a peer that never answers
// the close handshake.
type slowConn struct {
	entered chan struct{}
	release chan struct{}
}

func (c *slowConn) Close(websocket.StatusCode, string) error {
	close(c.entered)
	<-c.release
	return nil
}

func TestRegistryClosesOutsideLock(t *testing.T) {
	r := NewRegistry()
	slow := &slowConn{entered: make(chan struct{}), release: make(chan struct{})}
	defer close(slow.release)

	r.Register(tab, slow)
	go r.Register(tab, &fakeConn{})
	<-slow.entered

	done := make(chan struct{})
	go func() {
		r.Register(session.Key{UserID: "anon_2", SessionID: "tab-1"}, &fakeConn{})
		r.Close(session.Key{UserID: "nobody", SessionID: "x"})
		done <- struct{}{}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("registry blocked while a replaced feed was closing")
	}
	if r.Len() != 2 {
		t.Fatalf("expected 2 active feeds, got %d", r.Len())
	}
}
