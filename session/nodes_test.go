package session

import "testing"

func TestSynthFailsWhileOffline(t *testing.T) {
	s := newOfflineSession()
	if _, err := s.Synth("sine", AddToHead, 1, nil); err != ErrNotRunning {
		t.Fatalf("err = %v, want ErrNotRunning", err)
	}
}

func TestGroupFailsWhileOffline(t *testing.T) {
	s := newOfflineSession()
	if _, err := s.Group(AddToHead, 0); err != ErrNotRunning {
		t.Fatalf("err = %v, want ErrNotRunning", err)
	}
}

func TestManagedSynthReleaseIsNoopWhenNotOnline(t *testing.T) {
	s := newOfflineSession()
	node := &NodeProxy{session: s, id: 1000}
	released := false
	release := func() {
		if released || s.State() != Online {
			return
		}
		released = true
		_ = node.Free()
	}

	// Session never left Offline, so release must not attempt to send.
	release()
	release()
	if released {
		t.Fatal("release should not have run its body while not online")
	}
}
