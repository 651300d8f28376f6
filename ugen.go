package nanosynth

import "fmt"

// Operable is the union of signal-valued things that can appear as a UGen
// input or be combined by an operator: a UGen output, a constant, a vector
// of signals (from multichannel expansion), or a not-yet-materialized
// SynthDef parameter.
type Operable interface {
	// rate reports the calculation rate this Operable would present when
	// resolved to a concrete scalar signal.
	rate() CalculationRate
}

// OutputProxy is a typed reference to one output channel of a UGen.
type OutputProxy struct {
	UGen        *UGen
	OutputIndex int
}

func (o OutputProxy) rate() CalculationRate {
	if o.OutputIndex < 0 || o.OutputIndex >= len(o.UGen.OutputRates) {
		return ScalarRate
	}
	return o.UGen.OutputRates[o.OutputIndex]
}

// Equal reports whether two OutputProxy values name the same UGen instance
// and output index.
func (o OutputProxy) Equal(other OutputProxy) bool {
	return o.UGen == other.UGen && o.OutputIndex == other.OutputIndex
}

// ConstantProxy wraps a concrete numeric value. SynthDef constants are
// IEEE-754 32-bit floats, so the value is stored and folded in float32.
type ConstantProxy struct {
	Value float32
}

func (c ConstantProxy) rate() CalculationRate { return ScalarRate }

// Const is a convenience constructor for ConstantProxy.
func Const(v float32) ConstantProxy { return ConstantProxy{Value: v} }

// UGenVector is an ordered list of signals, produced by multichannel
// expansion or an explicit list argument. Operators on vectors broadcast
// element-wise per spec §4.4.
type UGenVector []Operable

func (v UGenVector) rate() CalculationRate {
	r := ScalarRate
	for _, o := range v {
		r = r.Max(o.rate())
	}
	return r
}

// Len returns the channel count of the vector.
func (v UGenVector) Len() int { return len(v) }

// UGen is a single occurrence in the graph: a DSP node with an ordered
// input list, an output-rate list, and a special-index side channel used by
// operator UGens to carry their operator code.
type UGen struct {
	ClassName    string
	Rate         CalculationRate
	Inputs       []Operable
	OutputRates  []CalculationRate
	SpecialIndex int16

	// IsWidthFirst controls topological sort priority: width-first UGens
	// (and their descendants) are hoisted to their earliest legal position.
	IsWidthFirst bool

	// Unexpanded holds the input positions exempt from multichannel
	// broadcasting (e.g. the level array of an envelope generator).
	Unexpanded map[int]bool

	// owner is the builder this UGen was registered into, used to detect
	// cross-scope wiring. Nil for UGens built outside any builder (allowed
	// for pure expression construction, but such UGens are not compilable).
	owner *Builder

	// insertionIndex is the order in which this UGen was appended to its
	// builder's ugen list; it is the tie-break key for the topological
	// sort (spec §4.5 step 4, and the Open Question in spec §9).
	insertionIndex int

	// hasSideEffects marks UGens the dead-code pass must never eliminate
	// even with no consumers (Out-family, Done/Free/Pause, SendTrig/
	// SendReply/Poll, RecordBuf, DiskOut, ScopeOut, LocalOut).
	hasSideEffects bool
}

func (u *UGen) rate() CalculationRate { return u.Rate }

// Output returns an OutputProxy for the given output channel of u.
func (u *UGen) Output(index int) OutputProxy {
	return OutputProxy{UGen: u, OutputIndex: index}
}

// NumOutputs reports how many outputs u has.
func (u *UGen) NumOutputs() int { return len(u.OutputRates) }

// isUnexpanded reports whether input position i is exempt from
// multichannel broadcasting.
func (u *UGen) isUnexpanded(i int) bool {
	return u.Unexpanded != nil && u.Unexpanded[i]
}

// InsertionIndex is the order in which this UGen was constructed within
// its builder, used by the compiler as the topological sort's tie-break
// key.
func (u *UGen) InsertionIndex() int { return u.insertionIndex }

// HasSideEffects reports whether this UGen instance must survive
// dead-code elimination even with no consumers.
func (u *UGen) HasSideEffects() bool { return u.hasSideEffects }

// Parameter is a named, rate-tagged initial-value cell belonging to a
// SynthDef being built.
type Parameter struct {
	Name  string
	Value []float32 // one element for scalar parameters, more for multivalued ones
	Rate  ParameterRate
	Lag   float32

	builder *Builder
	index   int // position within the builder's parameter list at registration time
}

func (p *Parameter) rate() CalculationRate { return p.Rate.calculationRate() }

// ScalarValue returns the first value of a (possibly multivalued)
// parameter; most parameters are single-valued.
func (p *Parameter) ScalarValue() float32 {
	if len(p.Value) == 0 {
		return 0
	}
	return p.Value[0]
}

// errCrossScope reports a UGen construction that references an OutputProxy
// owned by a different builder than the one currently constructing.
func errCrossScope(class string) error {
	return fmt.Errorf("nanosynth: cross-scope wiring while constructing %q: an input belongs to a different SynthDefBuilder", class)
}
