package session

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/nanosynth/nanosynth/engine"
)

// Options configures a Session's Engine world at boot (spec §6). Field
// names and defaults mirror the Engine's own WorldOptions plus the
// handful of session-level settings (address, port, transport).
type Options struct {
	NumAudioBusChannels   uint32 `yaml:"num_audio_bus_channels"`
	NumInputBusChannels   uint32 `yaml:"num_input_bus_channels"`
	NumOutputBusChannels  uint32 `yaml:"num_output_bus_channels"`
	NumControlBusChannels uint32 `yaml:"num_control_bus_channels"`
	BlockSize             uint32 `yaml:"block_size"`
	NumBuffers            uint32 `yaml:"num_buffers"`
	MaxNodes              uint32 `yaml:"max_nodes"`
	MaxSynthDefs          uint32 `yaml:"max_graph_defs"`
	MaxWireBufs           uint32 `yaml:"max_wire_bufs"`
	NumRGens              uint32 `yaml:"num_rgens"`
	RealtimeMemorySize    uint32 `yaml:"realtime_memory_size"` // kB
	PreferredSampleRate   uint32 `yaml:"preferred_sample_rate"`
	PreferredHWBufferSize uint32 `yaml:"preferred_hardware_buffer_size"`
	LoadSynthDefs         bool   `yaml:"load_graph_defs"`
	MemoryLocking         bool   `yaml:"memory_locking"`
	RealTime              bool   `yaml:"realtime"`
	Verbosity             int    `yaml:"verbosity"`

	UGenPluginsPath      string `yaml:"ugen_plugins_path"`
	RestrictedPath       string `yaml:"restricted_path"`
	Password             string `yaml:"password"`
	InDeviceName         string `yaml:"in_device_name"`
	OutDeviceName        string `yaml:"out_device_name"`
	InputStreamsEnabled  string `yaml:"input_streams_enabled"`
	OutputStreamsEnabled string `yaml:"output_streams_enabled"`

	SharedMemoryID      int32   `yaml:"shared_memory_id"`
	SafetyClipThreshold float32 `yaml:"safety_clip_threshold"`

	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`
	Transport   string `yaml:"transport"` // "udp" or "tcp"
}

// DefaultOptions returns the default Options per spec §6.
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
		NumRGens:              64,
		RealtimeMemorySize:    8192,
		LoadSynthDefs:         true,
		RealTime:              true,
		SafetyClipThreshold:   1.26,
		BindAddress:           "127.0.0.1",
		Port:                  57110,
		Transport:             "udp",
	}
}

// LoadOptions reads Options as YAML from r, starting from DefaultOptions
// so a config only needs to name the fields it overrides.
func LoadOptions(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	data, err := io.ReadAll(r)
	if err != nil {
		return Options{}, fmt.Errorf("session: reading options: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("session: parsing options: %w", err)
	}
	return opts, nil
}

func (o Options) engineOptions() engine.Options {
	return engine.Options{
		NumAudioBusChannels:   o.NumAudioBusChannels,
		NumInputBusChannels:   o.NumInputBusChannels,
		NumOutputBusChannels:  o.NumOutputBusChannels,
		NumControlBusChannels: o.NumControlBusChannels,
		BlockSize:             o.BlockSize,
		NumBuffers:            o.NumBuffers,
		MaxNodes:              o.MaxNodes,
		MaxSynthDefs:          o.MaxSynthDefs,
		MaxWireBufs:           o.MaxWireBufs,
		RealTime:              o.RealTime,
	}
}
