// Package session implements the control-plane half of the embedding:
// boot/quit lifecycle, node and buffer ID allocation, the Wire Protocol
// reply pump, and scoped (managed) resource helpers, dispatched against
// an engine.World (spec §4.9).
package session

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	osc "github.com/hypebeast/go-osc/osc"

	"github.com/nanosynth/nanosynth/compiler"
	"github.com/nanosynth/nanosynth/engine"
	"github.com/nanosynth/nanosynth/wire"
)

// State is the session's boot lifecycle state (spec §4.9).
type State int

const (
	Offline State = iota
	Booting
	Online
	Quitting
)

func (s State) String() string {
	switch s {
	case Offline:
		return "offline"
	case Booting:
		return "booting"
	case Online:
		return "online"
	case Quitting:
		return "quitting"
	default:
		return "unknown"
	}
}

// ErrNotRunning is returned by sends attempted while the session is
// offline.
var ErrNotRunning = errors.New("session: not running")

const defaultNodeIDStart = 1000

// Session is the control-plane handle for one embedded Engine world. The
// zero value is not usable; construct one with New.
type Session struct {
	opts   Options
	logger *log.Logger

	mu    sync.Mutex
	state State
	world *engine.World

	nextNodeID   int32
	nextBufferID int32
	buffers      map[int32]bool

	subMu       sync.Mutex
	subscribers map[string][]func(wire.Reply)
	waiters     map[string][]chan wire.Reply
}

// New creates a Session against the given options. The session starts
// Offline; call Boot to create the Engine world.
func New(opts Options) *Session {
	return &Session{
		opts:        opts,
		logger:      log.New(os.Stderr, "session: ", log.LstdFlags),
		state:       Offline,
		nextNodeID:  defaultNodeIDStart,
		buffers:     make(map[int32]bool),
		subscribers: make(map[string][]func(wire.Reply)),
		waiters:     make(map[string][]chan wire.Reply),
	}
}

// State reports the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Boot creates the Engine world, installs the reply callback, and opens
// its transport. Booting an already-Online session is a no-op; booting
// from Booting or Quitting fails.
func (s *Session) Boot() error {
	s.mu.Lock()
	switch s.state {
	case Online:
		s.mu.Unlock()
		return nil
	case Booting, Quitting:
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("session: cannot boot while %s", state)
	}
	s.state = Booting
	s.mu.Unlock()

	world, err := engine.New(s.opts.engineOptions())
	if err != nil {
		s.mu.Lock()
		s.state = Offline
		s.mu.Unlock()
		return fmt.Errorf("session: boot failed: %w", err)
	}

	world.SetCallbacks(s.onReplyDatagram, s.onPrintLine)

	switch s.opts.Transport {
	case "tcp":
		err = world.OpenTCP(s.opts.BindAddress, s.opts.Port)
	default:
		err = world.OpenUDP(s.opts.BindAddress, s.opts.Port)
	}
	if err != nil {
		world.Cleanup(false)
		s.mu.Lock()
		s.state = Offline
		s.mu.Unlock()
		return fmt.Errorf("session: boot failed: %w", err)
	}

	s.mu.Lock()
	s.world = world
	s.state = Online
	s.mu.Unlock()

	s.logger.Printf("booted on %s %s:%d", s.opts.Transport, s.opts.BindAddress, s.opts.Port)
	return nil
}

// Quit sends /quit, waits briefly for the Engine to acknowledge, and
// releases its resources. Idempotent from Offline.
func (s *Session) Quit() error {
	s.mu.Lock()
	if s.state == Offline {
		s.mu.Unlock()
		return nil
	}
	world := s.world
	s.state = Quitting
	s.mu.Unlock()

	if world != nil {
		if err := world.SendPacket(mustMarshal(wire.Quit())); err != nil {
			s.logger.Printf("error sending /quit: %v", err)
		}
		done := make(chan struct{})
		go func() {
			world.WaitForQuit(false)
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			s.logger.Printf("timed out waiting for engine quit acknowledgment, forcing cleanup")
		}
		world.Cleanup(false)
	}

	s.mu.Lock()
	s.world = nil
	s.state = Offline
	s.mu.Unlock()
	s.logger.Printf("quit")
	return nil
}

func mustMarshal(m *osc.Message) []byte {
	data, err := wire.Marshal(m)
	if err != nil {
		// Every message built in the wire package marshals; a failure here
		// means a caller constructed a malformed *osc.Message by hand.
		panic(err)
	}
	return data
}

// send dispatches one already-built message. Sends while Offline return
// ErrNotRunning; sends during Quitting are dropped after logging.
func (s *Session) send(m *osc.Message) error {
	s.mu.Lock()
	state := s.state
	world := s.world
	s.mu.Unlock()

	switch state {
	case Offline, Booting:
		return ErrNotRunning
	case Quitting:
		s.logger.Printf("dropping %s: session is quitting", m.Address)
		return nil
	}

	data, err := wire.Marshal(m)
	if err != nil {
		return err
	}
	return world.SendPacket(data)
}

// SendSynthDef serializes def and installs it via /d_recv.
func (s *Session) SendSynthDef(def *compiler.SynthDef) error {
	blob, err := compiler.Emit(def)
	if err != nil {
		return fmt.Errorf("session: emitting SynthDef %q: %w", def.Name, err)
	}
	return s.send(wire.DRecv(blob, nil))
}

// NextNodeID returns a unique, monotonically increasing node ID.
func (s *Session) NextNodeID() int32 {
	return atomic.AddInt32(&s.nextNodeID, 1) - 1
}

// NextBufferID allocates and returns a unique, monotonically increasing
// buffer ID, tracking it as allocated.
func (s *Session) NextBufferID() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextBufferID
	s.nextBufferID++
	s.buffers[id] = true
	return id
}

// FreeBufferID removes id from the allocated-buffer set without sending
// any message (the caller is responsible for /b_free).
func (s *Session) FreeBufferID(id int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buffers, id)
}
