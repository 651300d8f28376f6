package nanosynth

import "testing"

func TestExpandScalarFastPath(t *testing.T) {
	calls := 0
	v, err := Expand([]Operable{Const(1), Const(2)}, nil, func(in []Operable) (Operable, error) {
		calls++
		return Const(in[0].(ConstantProxy).Value + in[1].(ConstantProxy).Value), nil
	})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if calls != 1 {
		t.Fatalf("construct called %d times, want 1", calls)
	}
	if _, ok := v.(UGenVector); ok {
		t.Fatal("scalar expansion should not wrap result in a UGenVector")
	}
}

func TestExpandBroadcastsAcrossVector(t *testing.T) {
	freqs := UGenVector{Const(440), Const(880), Const(220)}
	calls := 0
	v, err := Expand([]Operable{freqs, Const(0)}, nil, func(in []Operable) (Operable, error) {
		calls++
		return in[0], nil
	})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if calls != 3 {
		t.Fatalf("construct called %d times, want 3", calls)
	}
	out, ok := v.(UGenVector)
	if !ok || len(out) != 3 {
		t.Fatalf("expected a 3-channel UGenVector, got %#v", v)
	}
}

func TestExpandIncompatibleLengthsError(t *testing.T) {
	a := UGenVector{Const(1), Const(2)}
	b := UGenVector{Const(1), Const(2), Const(3)}
	_, err := Expand([]Operable{a, b}, nil, func(in []Operable) (Operable, error) {
		return in[0], nil
	})
	if err == nil {
		t.Fatal("expected an incompatible-length error")
	}
}

func TestExpandRespectsUnexpandedPositions(t *testing.T) {
	breakpoints := UGenVector{Const(1), Const(2), Const(3), Const(4)}
	calls := 0
	_, err := Expand([]Operable{Const(0), breakpoints}, map[int]bool{1: true}, func(in []Operable) (Operable, error) {
		calls++
		if _, ok := in[1].(UGenVector); !ok {
			t.Fatal("unexpanded input should be passed through unchanged")
		}
		return Const(0), nil
	})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if calls != 1 {
		t.Fatalf("construct called %d times, want 1 (unexpanded vector shouldn't drive broadcasting)", calls)
	}
}
