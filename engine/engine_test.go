package engine

import "testing"

func TestDefaultOptionsMatchSessionDefaults(t *testing.T) {
	opts := DefaultOptions()
	if opts.NumAudioBusChannels != 1024 {
		t.Fatalf("NumAudioBusChannels = %d, want 1024", opts.NumAudioBusChannels)
	}
	if opts.NumControlBusChannels != 16384 {
		t.Fatalf("NumControlBusChannels = %d, want 16384", opts.NumControlBusChannels)
	}
	if !opts.RealTime {
		t.Fatal("RealTime should default to true")
	}
}

func TestTransportName(t *testing.T) {
	if transportName(true) != "TCP" {
		t.Fatalf("transportName(true) = %q, want TCP", transportName(true))
	}
	if transportName(false) != "UDP" {
		t.Fatalf("transportName(false) = %q, want UDP", transportName(false))
	}
}
