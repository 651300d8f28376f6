package nanosynth

import (
	"reflect"
	"testing"
)

func TestPercussiveFlatten(t *testing.T) {
	env := Percussive(0.01, 1.0, 1.0, EnvelopeCurve{})
	if err := env.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	got := env.Flatten()
	want := []float32{0.0, 2, -99, -99, 1.0, 0.01, 1, 0.0, 0.0, 1.0, 1, 0.0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Flatten() = %v, want %v", got, want)
	}
}

func TestADSRReleaseNode(t *testing.T) {
	env := ADSR(0.01, 0.3, 0.5, 1.0, 1.0, EnvelopeCurve{})
	if err := env.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	flat := env.Flatten()
	if flat[2] != 2 {
		t.Fatalf("releaseNode = %v, want 2", flat[2])
	}
	if flat[3] != -99 {
		t.Fatalf("loopNode = %v, want -99 (absent)", flat[3])
	}
}

func TestEnvelopeCurveBroadcast(t *testing.T) {
	env := Envelope{
		Amplitudes: []float32{0, 1, 0.5, 0},
		Durations:  []float32{0.1, 0.1, 0.1},
		Curves:     []EnvelopeCurve{WelchCurve},
	}
	if err := env.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	flat := env.Flatten()
	// three segments, each 4 floats, starting at offset 4
	for seg := 0; seg < 3; seg++ {
		shapeCode := flat[4+seg*4+2]
		if shapeCode != WelchCurve.Shape.shapeCode() {
			t.Fatalf("segment %d shape = %v, want broadcast Welch shape %v", seg, shapeCode, WelchCurve.Shape.shapeCode())
		}
	}
}

func TestEnvelopeValidateDimensionMismatch(t *testing.T) {
	env := Envelope{
		Amplitudes: []float32{0, 1, 0},
		Durations:  []float32{0.1}, // wrong: needs 2 entries
	}
	if err := env.Validate(); err == nil {
		t.Fatal("expected a dimensionality error")
	}
}
