package session

import (
	"time"

	"github.com/nanosynth/nanosynth/wire"
)

// BufferProxy is a handle to an allocated buffer.
type BufferProxy struct {
	session *Session
	id      int32
}

// ID returns the buffer's allocated ID.
func (b *BufferProxy) ID() int32 { return b.id }

// allocTimeout bounds the synchronous wait for a buffer's /done reply.
// Allocation is disk I/O on the Engine's non-realtime thread and can take
// longer than a typical control round trip, especially for b_allocRead.
const allocTimeout = 10 * time.Second

// Buffer allocates a buffer of the given size and waits for the Engine's
// /done confirmation before returning.
func (s *Session) Buffer(frames, channels int32) (*BufferProxy, error) {
	id := s.NextBufferID()
	if _, err := s.SendMsgSync(wire.BAlloc(id, frames, channels, nil), "/done", allocTimeout); err != nil {
		s.FreeBufferID(id)
		return nil, err
	}
	return &BufferProxy{session: s, id: id}, nil
}

// ReadBuffer allocates a buffer and fills it from a sound file, waiting
// for the Engine's /done confirmation before returning.
func (s *Session) ReadBuffer(path string, startFrame, numFrames int32) (*BufferProxy, error) {
	id := s.NextBufferID()
	if _, err := s.SendMsgSync(wire.BAllocRead(id, path, startFrame, numFrames, nil), "/done", allocTimeout); err != nil {
		s.FreeBufferID(id)
		return nil, err
	}
	return &BufferProxy{session: s, id: id}, nil
}

// Free releases the buffer on the Engine and its local ID.
func (b *BufferProxy) Free() error {
	defer b.session.FreeBufferID(b.id)
	return b.session.send(wire.BFree(b.id))
}

// ManagedBuffer allocates a buffer and returns a release function that
// frees it, mirroring ManagedSynth.
func (s *Session) ManagedBuffer(frames, channels int32) (*BufferProxy, func(), error) {
	buf, err := s.Buffer(frames, channels)
	if err != nil {
		return nil, func() {}, err
	}
	released := false
	release := func() {
		if released || s.State() != Online {
			return
		}
		released = true
		_ = buf.Free()
	}
	return buf, release, nil
}

// ManagedReadBuffer allocates and reads a buffer from a sound file and
// returns a release function that frees it, mirroring ManagedSynth.
func (s *Session) ManagedReadBuffer(path string, startFrame, numFrames int32) (*BufferProxy, func(), error) {
	buf, err := s.ReadBuffer(path, startFrame, numFrames)
	if err != nil {
		return nil, func() {}, err
	}
	released := false
	release := func() {
		if released || s.State() != Online {
			return
		}
		released = true
		_ = buf.Free()
	}
	return buf, release, nil
}
