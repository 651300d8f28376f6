package session

import (
	"testing"
	"time"

	osc "github.com/hypebeast/go-osc/osc"

	"github.com/nanosynth/nanosynth/wire"
)

func newOfflineSession() *Session {
	return New(DefaultOptions())
}

func TestNewSessionStartsOffline(t *testing.T) {
	s := newOfflineSession()
	if s.State() != Offline {
		t.Fatalf("state = %s, want offline", s.State())
	}
}

func TestQuitFromOfflineIsNoop(t *testing.T) {
	s := newOfflineSession()
	if err := s.Quit(); err != nil {
		t.Fatalf("Quit from offline: %v", err)
	}
	if s.State() != Offline {
		t.Fatalf("state = %s, want offline", s.State())
	}
}

func TestBootFailsWhileBooting(t *testing.T) {
	s := newOfflineSession()
	s.mu.Lock()
	s.state = Booting
	s.mu.Unlock()
	if err := s.Boot(); err == nil {
		t.Fatal("expected error booting a session already booting")
	}
}

func TestBootFailsWhileQuitting(t *testing.T) {
	s := newOfflineSession()
	s.mu.Lock()
	s.state = Quitting
	s.mu.Unlock()
	if err := s.Boot(); err == nil {
		t.Fatal("expected error booting a session that is quitting")
	}
}

func TestDoubleBootFromOnlineIsNoop(t *testing.T) {
	s := newOfflineSession()
	s.mu.Lock()
	s.state = Online
	s.mu.Unlock()
	if err := s.Boot(); err != nil {
		t.Fatalf("double boot: %v", err)
	}
	if s.State() != Online {
		t.Fatalf("state = %s, want online", s.State())
	}
}

func TestSendWhileOfflineFails(t *testing.T) {
	s := newOfflineSession()
	if err := s.send(wire.Status()); err != ErrNotRunning {
		t.Fatalf("send while offline = %v, want ErrNotRunning", err)
	}
}

func TestSendWhileQuittingDropsSilently(t *testing.T) {
	s := newOfflineSession()
	s.mu.Lock()
	s.state = Quitting
	s.mu.Unlock()
	if err := s.send(wire.Status()); err != nil {
		t.Fatalf("send while quitting should drop silently, got %v", err)
	}
}

func TestNodeIDsStartAt1000AndIncrement(t *testing.T) {
	s := newOfflineSession()
	first := s.NextNodeID()
	if first != 1000 {
		t.Fatalf("first node id = %d, want 1000", first)
	}
	second := s.NextNodeID()
	if second != 1001 {
		t.Fatalf("second node id = %d, want 1001", second)
	}
}

func TestBufferIDsTrackAllocation(t *testing.T) {
	s := newOfflineSession()
	id := s.NextBufferID()
	if !s.buffers[id] {
		t.Fatal("buffer id should be marked allocated")
	}
	s.FreeBufferID(id)
	if s.buffers[id] {
		t.Fatal("buffer id should no longer be marked allocated after free")
	}
}

func TestOnReplyDatagramDispatchesToSubscriber(t *testing.T) {
	s := newOfflineSession()
	received := make(chan wire.Reply, 1)
	s.On("/n_go", func(r wire.Reply) { received <- r })

	m := osc.NewMessage("/n_go")
	m.Append(int32(1000))
	data, err := wire.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s.onReplyDatagram(data)

	select {
	case r := <-received:
		if r.Address != "/n_go" {
			t.Fatalf("address = %q, want /n_go", r.Address)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber was never invoked")
	}
}

func TestWaitForReplyTimesOutWithoutMatchingDatagram(t *testing.T) {
	s := newOfflineSession()
	_, err := s.WaitForReply("/done", 20*time.Millisecond)
	if err != ErrWaitTimeout {
		t.Fatalf("err = %v, want ErrWaitTimeout", err)
	}
}

func TestWaitForReplyCompletesOnMatchingDatagram(t *testing.T) {
	s := newOfflineSession()
	resultCh := make(chan wire.Reply, 1)
	errCh := make(chan error, 1)
	go func() {
		r, err := s.WaitForReply("/done", time.Second)
		resultCh <- r
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	doneData, err := wire.Marshal(osc.NewMessage("/done"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s.onReplyDatagram(doneData)

	if err := <-errCh; err != nil {
		t.Fatalf("WaitForReply: %v", err)
	}
	reply := <-resultCh
	if reply.Address != "/done" {
		t.Fatalf("address = %q, want /done", reply.Address)
	}
}
