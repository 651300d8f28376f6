// Package compiler turns a nanosynth.Builder scope into an immutable,
// sorted, optimized SynthDef and serializes it to the SCgf binary format
// the Engine consumes.
package compiler

import "github.com/nanosynth/nanosynth"

// InputSpec names where one UGen input comes from: either another UGen's
// output (UGenIndex >= 0) or the constant pool (UGenIndex == -1).
type InputSpec struct {
	UGenIndex int32
	Index     int32 // output index, or constant-pool index when UGenIndex == -1
}

// CompiledUGen is a single frozen UGen occurrence, post-sort and post-
// constant-interning.
type CompiledUGen struct {
	ClassName    string
	Rate         nanosynth.CalculationRate
	Inputs       []InputSpec
	OutputRates  []nanosynth.CalculationRate
	SpecialIndex int16
}

// ParamName records where a named parameter's initial value lives in a
// SynthDef's flat ParameterValues array.
type ParamName struct {
	Name  string
	Index int32
}

// SynthDef is the immutable, compiled form of a builder scope: spec's
// "Freeze" step. Every field is populated by Compile and never mutated
// afterward.
type SynthDef struct {
	Name            string
	Constants       []float32
	ParameterValues []float32
	ParameterNames  []ParamName
	UGens           []CompiledUGen
}
