// Package engine is the cgo boundary over the native realtime audio
// engine: a five-call embedding surface (world_new, world_open_udp /
// world_open_tcp, world_send_packet, the reply/print callback setters,
// and world_cleanup / world_wait_for_quit). Everything the engine does
// once a packet reaches it -- graph execution, sample rendering -- is a
// black box on the other side of this boundary.
package engine

/*
#cgo CFLAGS: -I${SRCDIR}/../include
#cgo LDFLAGS: -L${SRCDIR}/../build -lnanosynthengine
#include <stdlib.h>
#include "nanosynth_engine.h"

extern void goReplyTrampoline(char *data, int len);
extern void goPrintTrampoline(char *msg);

static inline void nanosynth_install_callbacks(void) {
    nanosynth_set_reply_callback((NanosynthReplyFunc)goReplyTrampoline);
    nanosynth_set_print_callback((NanosynthPrintFunc)goPrintTrampoline);
}
*/
import "C"

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"
)

// Options configures a World at creation time, mirroring the
// NanosynthWorldOptions C struct.
type Options struct {
	NumAudioBusChannels   uint32
	NumInputBusChannels   uint32
	NumOutputBusChannels  uint32
	NumControlBusChannels uint32
	BlockSize             uint32
	NumBuffers            uint32
	MaxNodes              uint32
	MaxSynthDefs          uint32
	MaxWireBufs           uint32
	RealTime              bool
}

// DefaultOptions matches the session defaults (spec §6).
func DefaultOptions() Options {
	return Options{
		NumAudioBusChannels:   1024,
		NumInputBusChannels:   8,
		NumOutputBusChannels:  8,
		NumControlBusChannels: 16384,
		BlockSize:             64,
		NumBuffers:            1024,
		MaxNodes:              1024,
		MaxSynthDefs:          1024,
		MaxWireBufs:           64,
		RealTime:              true,
	}
}

// World is a single embedded instance of the native engine. The zero
// value is not usable; construct one with New.
type World struct {
	handle *C.NanosynthWorld
	mu     sync.Mutex
	opened bool
}

// callbackRegistry dispatches the process-wide C callbacks to the
// currently active World. The native ABI only supports one pair of
// global function pointers (set_reply_callback / set_print_callback are
// not per-World), so only one World may be open for replies/printing at
// a time; this mirrors the embedding's own single-process assumption.
var (
	registryMu sync.Mutex
	active     *World
	onReply    func(data []byte)
	onPrint    func(msg string)
)

// New creates a World with the given options. The world is not
// listening on any transport until Open is called.
func New(opts Options) (*World, error) {
	cOpts := C.NanosynthWorldOptions{
		num_audio_bus_channels:   C.uint32_t(opts.NumAudioBusChannels),
		num_input_bus_channels:   C.uint32_t(opts.NumInputBusChannels),
		num_output_bus_channels:  C.uint32_t(opts.NumOutputBusChannels),
		num_control_bus_channels: C.uint32_t(opts.NumControlBusChannels),
		block_size:               C.uint32_t(opts.BlockSize),
		num_buffers:              C.uint32_t(opts.NumBuffers),
		max_nodes:                C.uint32_t(opts.MaxNodes),
		max_graph_defs:           C.uint32_t(opts.MaxSynthDefs),
		max_wire_bufs:            C.uint32_t(opts.MaxWireBufs),
	}
	if opts.RealTime {
		cOpts.real_time = 1
	}
	handle := C.nanosynth_world_new(&cOpts)
	if handle == nil {
		return nil, errors.New("engine: world_new failed")
	}
	return &World{handle: handle}, nil
}

// OpenUDP binds the world's OSC-style listener to a UDP socket.
func (w *World) OpenUDP(bindAddress string, port int) error {
	return w.open(bindAddress, port, false)
}

// OpenTCP binds the world's OSC-style listener to a TCP socket.
func (w *World) OpenTCP(bindAddress string, port int) error {
	return w.open(bindAddress, port, true)
}

func (w *World) open(bindAddress string, port int, tcp bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	cAddr := C.CString(bindAddress)
	defer C.free(unsafe.Pointer(cAddr))
	var ok C.int
	if tcp {
		ok = C.nanosynth_world_open_tcp(w.handle, cAddr, C.int(port))
	} else {
		ok = C.nanosynth_world_open_udp(w.handle, cAddr, C.int(port))
	}
	if ok == 0 {
		return fmt.Errorf("engine: failed to open %s listener on %s:%d", transportName(tcp), bindAddress, port)
	}
	w.opened = true
	return nil
}

func transportName(tcp bool) string {
	if tcp {
		return "TCP"
	}
	return "UDP"
}

// SendPacket pushes one Wire Protocol datagram into the world.
func (w *World) SendPacket(data []byte) error {
	if len(data) == 0 {
		return errors.New("engine: empty packet")
	}
	cData := C.CBytes(data)
	defer C.free(cData)
	ok := C.nanosynth_world_send_packet(w.handle, (*C.char)(cData), C.int(len(data)))
	if ok == 0 {
		return errors.New("engine: world_send_packet rejected the datagram")
	}
	return nil
}

// SetCallbacks registers this World as the active recipient of reply and
// print callbacks from the native engine. Only one World can be active
// at a time (see callbackRegistry).
func (w *World) SetCallbacks(onReplyFn func(data []byte), onPrintFn func(msg string)) {
	registryMu.Lock()
	defer registryMu.Unlock()
	active = w
	onReply = onReplyFn
	onPrint = onPrintFn
	C.nanosynth_install_callbacks()
}

// WaitForQuit blocks until the world processes a /quit command (or the
// caller's context is otherwise torn down upstream), then optionally
// unloads plugins.
func (w *World) WaitForQuit(unloadPlugins bool) {
	var up C.int
	if unloadPlugins {
		up = 1
	}
	C.nanosynth_world_wait_for_quit(w.handle, up)
}

// Cleanup releases the world's native resources. Cleanup must not be
// called concurrently with SendPacket or WaitForQuit on the same World.
func (w *World) Cleanup(unloadPlugins bool) {
	registryMu.Lock()
	if active == w {
		active = nil
		onReply = nil
		onPrint = nil
	}
	registryMu.Unlock()

	var up C.int
	if unloadPlugins {
		up = 1
	}
	C.nanosynth_world_cleanup(w.handle, up)
}

//export goReplyTrampoline
func goReplyTrampoline(data *C.char, length C.int) {
	registryMu.Lock()
	fn := onReply
	registryMu.Unlock()
	if fn == nil {
		return
	}
	fn(C.GoBytes(unsafe.Pointer(data), length))
}

//export goPrintTrampoline
func goPrintTrampoline(msg *C.char) {
	registryMu.Lock()
	fn := onPrint
	registryMu.Unlock()
	if fn == nil {
		return
	}
	fn(C.GoString(msg))
}
