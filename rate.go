package nanosynth

// CalculationRate is the per-block classification of a signal. Rates are
// ordered: a higher rate dominates when two inputs of different rates are
// combined by an operator.
type CalculationRate int

const (
	ScalarRate CalculationRate = iota
	ControlRate
	AudioRate
	DemandRate
)

func (r CalculationRate) String() string {
	switch r {
	case ScalarRate:
		return "scalar"
	case ControlRate:
		return "control"
	case AudioRate:
		return "audio"
	case DemandRate:
		return "demand"
	default:
		return "unknown"
	}
}

// byte is the SCgf on-disk encoding of a calculation rate: ir=0, kr=1,
// ar=2, dr=3, matching the order the rates are declared in above.
func (r CalculationRate) byte() byte {
	return byte(r)
}

// Byte is the exported form of byte, used by the compiler package's SCgf
// emitter.
func (r CalculationRate) Byte() byte { return r.byte() }

// Max returns the dominating rate between r and other under the ordering
// SCALAR < CONTROL < AUDIO < DEMAND.
func (r CalculationRate) Max(other CalculationRate) CalculationRate {
	if other > r {
		return other
	}
	return r
}

// ParameterRate is the rate at which a SynthDef parameter is exposed.
type ParameterRate int

const (
	ScalarParameterRate ParameterRate = iota // initialization-only, baked into the def, not a Control output
	ControlParameterRate
	TriggerParameterRate
	AudioParameterRate
)

func (r ParameterRate) String() string {
	switch r {
	case ScalarParameterRate:
		return "scalar"
	case ControlParameterRate:
		return "control"
	case TriggerParameterRate:
		return "trigger"
	case AudioParameterRate:
		return "audio"
	default:
		return "unknown"
	}
}

// controlClassName names the synthetic UGen that materializes all
// parameters of this rate class, or "" for ScalarParameterRate which never
// gets a Control UGen (scalar parameters are baked in as constants).
func (r ParameterRate) controlClassName() string {
	switch r {
	case ControlParameterRate:
		return "Control"
	case TriggerParameterRate:
		return "TrigControl"
	case AudioParameterRate:
		return "AudioControl"
	default:
		return ""
	}
}

// calculationRate is the rate a materialized Control-family UGen runs at.
func (r ParameterRate) calculationRate() CalculationRate {
	switch r {
	case AudioParameterRate:
		return AudioRate
	default:
		return ControlRate
	}
}

// ControlUGenClassName is the exported form of controlClassName, used by
// the compiler package to materialize parameters into Control-family
// UGens.
func (r ParameterRate) ControlUGenClassName() string { return r.controlClassName() }

// CalculationRate is the exported form of calculationRate, used by the
// compiler package to pick a materialized Control UGen's output rate.
func (r ParameterRate) CalculationRate() CalculationRate { return r.calculationRate() }

// DoneAction is the action a UGen (typically an envelope or line generator)
// takes on its enclosing synth/node when it finishes.
type DoneAction int

const (
	DoNothing DoneAction = 0
	DoPauseSynth DoneAction = 1
	DoFreeSynth DoneAction = 2
	DoFreeSynthAndPrecedingNode DoneAction = 3
	DoFreeSynthAndFollowingNode DoneAction = 4
	DoFreeSynthAndFreeAllInPrecedingGroup DoneAction = 5
	DoFreeSynthAndFreeAllInFollowingGroup DoneAction = 6
	DoFreeSynthAndFreeAllInPrecedingGroupAndPausePreceding DoneAction = 7
	DoFreeSynthAndDeepFreeAllInPrecedingGroup DoneAction = 8
	DoFreeSynthAndDeepFreeAllInFollowingGroup DoneAction = 9
	DoFreeSynthAndAllInGroup DoneAction = 10
	DoFreeUpToSynthAndIncludingGroup DoneAction = 11
	DoFreeSynthAndDeepFreeAllInFollowingGroupUpTo DoneAction = 12
	DoFreeSynthAndDeepFreeAllInPrecedingGroupUpTo DoneAction = 13
	DoFreeSynthAndAllInAndPause DoneAction = 14
)

// AddAction selects where a new node is placed relative to its target when
// it is created.
type AddAction int

const (
	AddToHead AddAction = 0
	AddToTail AddAction = 1
	AddBefore AddAction = 2
	AddAfter  AddAction = 3
	AddReplace AddAction = 4
)

// EnvelopeShape is the symbolic curve type of one Envelope segment.
type EnvelopeShape int

const (
	ShapeStep EnvelopeShape = iota
	ShapeLinear
	ShapeExponential
	ShapeSine
	ShapeWelch
	ShapeCurve
	ShapeSquared
	ShapeCubed
	ShapeHold
	ShapeNumericCurve
)

// shapeCode is the integer code consumed by EnvGen for this shape, per the
// flattening rule in spec §4.7. ShapeCurve with an explicit numeric
// curvature value also maps to ShapeNumericCurve's code.
func (s EnvelopeShape) shapeCode() float32 {
	switch s {
	case ShapeStep:
		return 0
	case ShapeLinear:
		return 1
	case ShapeExponential:
		return 2
	case ShapeSine:
		return 3
	case ShapeWelch:
		return 4
	case ShapeCurve, ShapeNumericCurve:
		return 5
	case ShapeSquared:
		return 6
	case ShapeCubed:
		return 7
	case ShapeHold:
		return 8
	default:
		return 1
	}
}
