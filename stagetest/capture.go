package stagetest

import (
	"net"
	"testing"
	"time"

	"github.com/stagekit/stage/stagehttp"
)

// ListenCapture returns a listener constructor that captures the bind
// address of a staged server.  The given channel receives
// net.Listener.Addr(), and the listener itself is not decorated.
//
// The typical use case is capturing the actual bind address of a server
// configured with an ephemeral port.
func ListenCapture(ch chan<- net.Addr) stagehttp.ListenerConstructor {
	return func(l net.Listener) net.Listener {
		ch <- l.Addr()
		return l
	}
}

// ListenReceive returns the first net.Addr received on a channel,
// typically previously passed to ListenCapture.  If timeout elapses,
// this function returns nil, false.
func ListenReceive(ch <-chan net.Addr, timeout time.Duration) (net.Addr, bool) {
	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case a := <-ch:
		return a, true
	case <-t.C:
		return nil, false
	}
}

// MustListenReceive is the test-failing variant of ListenReceive
func MustListenReceive(t testing.TB, ch <-chan net.Addr, timeout time.Duration) net.Addr {
	addr, ok := ListenReceive(ch, timeout)
	if !ok {
		t.Fatalf("no listen address received within %s", timeout)
	}

	return addr
}
