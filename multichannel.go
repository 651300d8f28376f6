package nanosynth

import "fmt"

// expandWidth returns the broadcast width across inputs, considering only
// positions not flagged unexpanded. Scalars (non-vectors) count as width
// 1. Returns an error if two list-shaped inputs disagree on length (and
// neither is length 1).
func expandWidth(inputs []Operable, unexpanded map[int]bool) (int, error) {
	width := 1
	for i, in := range inputs {
		if unexpanded != nil && unexpanded[i] {
			continue
		}
		v, ok := in.(UGenVector)
		if !ok {
			continue
		}
		n := broadcastLength(width, len(v))
		if n < 0 {
			return 0, fmt.Errorf("nanosynth: multichannel expansion: incompatible input lengths %d and %d", width, len(v))
		}
		width = n
	}
	return width, nil
}

// elementAt returns the i-th (mod-wrapped) element of in if in is a
// UGenVector on an expandable position, or in unchanged otherwise.
func elementAt(in Operable, i int, unexpanded bool) Operable {
	if unexpanded {
		return in
	}
	if v, ok := in.(UGenVector); ok {
		if len(v) == 0 {
			return in
		}
		return v[i%len(v)]
	}
	return in
}

// Expand broadcasts the construction of a UGen class across list-shaped
// inputs per spec §4.4: for the longest listable input (on a position not
// marked unexpanded) of length k, it invokes construct k times, each time
// with every listable input's corresponding element (length-1 inputs are
// reused). construct is called once per channel with the fully scalarized
// input slice and returns the Operable for that channel (an OutputProxy
// for a single-output UGen; Construct returns a UGenVector of every
// output for a multi-output UGen).
//
// If no input is a vector, construct is invoked exactly once and its
// result returned directly (not wrapped in a length-1 UGenVector), so
// single-channel construction carries no vector overhead.
func Expand(inputs []Operable, unexpanded map[int]bool, construct func(scalarInputs []Operable) (Operable, error)) (Operable, error) {
	width, err := expandWidth(inputs, unexpanded)
	if err != nil {
		return nil, err
	}
	if width == 1 {
		allScalar := true
		for i, in := range inputs {
			if unexpanded != nil && unexpanded[i] {
				continue
			}
			if _, ok := in.(UGenVector); ok {
				allScalar = false
				break
			}
		}
		if allScalar {
			return construct(inputs)
		}
	}
	out := make(UGenVector, width)
	for ch := 0; ch < width; ch++ {
		scalar := make([]Operable, len(inputs))
		for i, in := range inputs {
			scalar[i] = elementAt(in, ch, unexpanded != nil && unexpanded[i])
		}
		v, err := construct(scalar)
		if err != nil {
			return nil, err
		}
		out[ch] = v
	}
	return out, nil
}
