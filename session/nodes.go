package session

import "github.com/nanosynth/nanosynth/wire"

// Add actions for /s_new and /g_new (spec §4.8).
const (
	AddToHead    int32 = 0
	AddToTail    int32 = 1
	AddBefore    int32 = 2
	AddAfter     int32 = 3
	AddToReplace int32 = 4
)

// NodeProxy is a handle to a synth or group node running on the Engine.
// It carries no state beyond the node ID and a reference back to the
// session that created it, so it stays valid across the node's entire
// lifetime on the server.
type NodeProxy struct {
	session *Session
	id      int32
}

// ID returns the node's allocated ID.
func (n *NodeProxy) ID() int32 { return n.id }

// Synth instantiates a SynthDef as a new node. name must already have been
// installed via SendSynthDef.
func (s *Session) Synth(name string, target, action int32, controls []wire.KV) (*NodeProxy, error) {
	id := s.NextNodeID()
	if err := s.send(wire.SNew(name, id, action, target, controls)); err != nil {
		return nil, err
	}
	return &NodeProxy{session: s, id: id}, nil
}

// Group creates a new group node.
func (s *Session) Group(target, action int32) (*NodeProxy, error) {
	id := s.NextNodeID()
	if err := s.send(wire.GNew(id, action, target)); err != nil {
		return nil, err
	}
	return &NodeProxy{session: s, id: id}, nil
}

// Set changes one or more control values on the node.
func (n *NodeProxy) Set(controls []wire.KV) error {
	return n.session.send(wire.NSet(n.id, controls))
}

// Free frees the node.
func (n *NodeProxy) Free() error {
	return n.session.send(wire.NFree(n.id))
}

// ManagedSynth creates a synth node and returns a release function that
// frees it. The release function is safe to call more than once and is a
// no-op once the session has left Online (the Engine will have already
// torn down every node on the way out).
//
// Usage:
//
//	node, release, err := s.ManagedSynth("sine", 1, session.AddToHead, nil)
//	defer release()
func (s *Session) ManagedSynth(name string, target, action int32, controls []wire.KV) (*NodeProxy, func(), error) {
	node, err := s.Synth(name, target, action, controls)
	if err != nil {
		return nil, func() {}, err
	}
	released := false
	release := func() {
		if released || s.State() != Online {
			return
		}
		released = true
		_ = node.Free()
	}
	return node, release, nil
}

// ManagedGroup creates a group node and returns a release function that
// frees it, mirroring ManagedSynth.
func (s *Session) ManagedGroup(target, action int32) (*NodeProxy, func(), error) {
	node, err := s.Group(target, action)
	if err != nil {
		return nil, func() {}, err
	}
	released := false
	release := func() {
		if released || s.State() != Online {
			return
		}
		released = true
		_ = node.Free()
	}
	return node, release, nil
}
