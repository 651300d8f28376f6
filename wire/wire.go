// Package wire builds the Wire Protocol datagrams the Session dispatches
// to the Engine (spec §4.8): one constructor per command, built on top of
// github.com/hypebeast/go-osc's OSC message type.
package wire

import (
	"fmt"

	osc "github.com/hypebeast/go-osc/osc"
)

// KV is one control name/value pair for /s_new and /n_set's trailing
// [k,v…] argument list. Value may be an int32, float32, or string
// (control-bus mapping, spec's "a" prefix convention) -- the marshaling
// appends it according to its concrete Go type.
type KV struct {
	Name  string
	Value interface{}
}

func appendKVs(m *osc.Message, kvs []KV) {
	for _, kv := range kvs {
		m.Append(kv.Name)
		m.Append(kv.Value)
	}
}

// DRecv installs one or more SynthDefs from an SCgf blob. completionMsg,
// if non-nil, is itself sent back as a reply once the install finishes.
func DRecv(scgf []byte, completionMsg []byte) *osc.Message {
	m := osc.NewMessage("/d_recv")
	m.Append(scgf)
	if completionMsg != nil {
		m.Append(completionMsg)
	}
	return m
}

// SNew creates a synth from an installed SynthDef.
func SNew(defName string, nodeID int32, addAction int32, targetID int32, controls []KV) *osc.Message {
	m := osc.NewMessage("/s_new")
	m.Append(defName)
	m.Append(nodeID)
	m.Append(addAction)
	m.Append(targetID)
	appendKVs(m, controls)
	return m
}

// GNew creates a group.
func GNew(nodeID int32, addAction int32, targetID int32) *osc.Message {
	m := osc.NewMessage("/g_new")
	m.Append(nodeID)
	m.Append(addAction)
	m.Append(targetID)
	return m
}

// NFree frees one or more nodes.
func NFree(nodeIDs ...int32) *osc.Message {
	m := osc.NewMessage("/n_free")
	for _, id := range nodeIDs {
		m.Append(id)
	}
	return m
}

// NSet sets one or more controls on a running node.
func NSet(nodeID int32, controls []KV) *osc.Message {
	m := osc.NewMessage("/n_set")
	m.Append(nodeID)
	appendKVs(m, controls)
	return m
}

// BAlloc allocates a buffer. completionMsg may be nil.
func BAlloc(bufID int32, frames int32, channels int32, completionMsg []byte) *osc.Message {
	m := osc.NewMessage("/b_alloc")
	m.Append(bufID)
	m.Append(frames)
	m.Append(channels)
	if completionMsg != nil {
		m.Append(completionMsg)
	}
	return m
}

// BAllocRead allocates a buffer and fills it by reading a sound file.
func BAllocRead(bufID int32, path string, startFrame int32, numFrames int32, completionMsg []byte) *osc.Message {
	m := osc.NewMessage("/b_allocRead")
	m.Append(bufID)
	m.Append(path)
	m.Append(startFrame)
	m.Append(numFrames)
	if completionMsg != nil {
		m.Append(completionMsg)
	}
	return m
}

// BRead reads a sound file into an already-allocated buffer.
func BRead(bufID int32, path string, fileStartFrame int32, numFrames int32, bufStartFrame int32, leaveOpen bool) *osc.Message {
	m := osc.NewMessage("/b_read")
	m.Append(bufID)
	m.Append(path)
	m.Append(fileStartFrame)
	m.Append(numFrames)
	m.Append(bufStartFrame)
	m.Append(boolToInt32(leaveOpen))
	return m
}

// BWrite writes a buffer's contents to a sound file.
func BWrite(bufID int32, path string, headerFormat string, sampleFormat string, numFrames int32, startFrame int32, leaveOpen bool) *osc.Message {
	m := osc.NewMessage("/b_write")
	m.Append(bufID)
	m.Append(path)
	m.Append(headerFormat)
	m.Append(sampleFormat)
	m.Append(numFrames)
	m.Append(startFrame)
	m.Append(boolToInt32(leaveOpen))
	return m
}

// BZero zeros a buffer's contents.
func BZero(bufID int32) *osc.Message {
	m := osc.NewMessage("/b_zero")
	m.Append(bufID)
	return m
}

// BClose closes a buffer's associated file handle (used after streaming
// writes).
func BClose(bufID int32) *osc.Message {
	m := osc.NewMessage("/b_close")
	m.Append(bufID)
	return m
}

// BFree frees a buffer.
func BFree(bufID int32) *osc.Message {
	m := osc.NewMessage("/b_free")
	m.Append(bufID)
	return m
}

// Notify toggles whether this client receives node notifications
// (/n_go, /n_end, etc).
func Notify(on bool, clientID int32) *osc.Message {
	m := osc.NewMessage("/notify")
	m.Append(boolToInt32(on))
	m.Append(clientID)
	return m
}

// Status requests a /status.reply datagram.
func Status() *osc.Message {
	return osc.NewMessage("/status")
}

// Quit requests an orderly shutdown of the Engine.
func Quit() *osc.Message {
	return osc.NewMessage("/quit")
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// Marshal serializes an OSC message to the datagram bytes the Engine's
// world_send_packet expects.
func Marshal(m *osc.Message) ([]byte, error) {
	data, err := m.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("wire: marshaling %s: %w", m.Address, err)
	}
	return data, nil
}
