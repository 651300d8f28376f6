package nanosynth

// The specs below are the per-class declarations required by spec §4.3.
// This is a representative subset of the canonical UGen library, not an
// exhaustive port: the point of the core is the compiler pipeline, not a
// complete DSP catalogue, and new classes follow the same Construct/spec
// shape shown here.

var sinOscSpec = &UGenSpec{
	ClassName:      "SinOsc",
	SupportedRates: []CalculationRate{ControlRate, AudioRate},
	Params: []ParamDecl{
		{Name: "freq", Default: ParamDefault{Const: 440}},
		{Name: "phase", Default: ParamDefault{Const: 0}},
	},
}

// SinOsc constructs a sine oscillator at the given rate.
func (b *Builder) SinOsc(rate CalculationRate, freq, phase Operable) (Operable, error) {
	return b.Construct(sinOscSpec, rate, map[string]Operable{"freq": freq, "phase": phase})
}

var sawSpec = &UGenSpec{
	ClassName:      "Saw",
	SupportedRates: []CalculationRate{ControlRate, AudioRate},
	Params: []ParamDecl{
		{Name: "freq", Default: ParamDefault{Const: 440}},
	},
}

func (b *Builder) Saw(rate CalculationRate, freq Operable) (Operable, error) {
	return b.Construct(sawSpec, rate, map[string]Operable{"freq": freq})
}

var pulseSpec = &UGenSpec{
	ClassName:      "Pulse",
	SupportedRates: []CalculationRate{ControlRate, AudioRate},
	Params: []ParamDecl{
		{Name: "freq", Default: ParamDefault{Const: 440}},
		{Name: "width", Default: ParamDefault{Const: 0.5}},
	},
}

func (b *Builder) Pulse(rate CalculationRate, freq, width Operable) (Operable, error) {
	return b.Construct(pulseSpec, rate, map[string]Operable{"freq": freq, "width": width})
}

var whiteNoiseSpec = &UGenSpec{
	ClassName:      "WhiteNoise",
	SupportedRates: []CalculationRate{ControlRate, AudioRate},
}

func (b *Builder) WhiteNoise(rate CalculationRate) (Operable, error) {
	return b.Construct(whiteNoiseSpec, rate, nil)
}

var lfNoise0Spec = &UGenSpec{
	ClassName:      "LFNoise0",
	SupportedRates: []CalculationRate{ControlRate, AudioRate},
	Params: []ParamDecl{
		{Name: "freq", Default: ParamDefault{Const: 500}},
	},
}

func (b *Builder) LFNoise0(rate CalculationRate, freq Operable) (Operable, error) {
	return b.Construct(lfNoise0Spec, rate, map[string]Operable{"freq": freq})
}

var lpfSpec = &UGenSpec{
	ClassName:      "LPF",
	SupportedRates: []CalculationRate{ControlRate, AudioRate},
	Params: []ParamDecl{
		{Name: "in", Default: ParamDefault{Const: 0}},
		{Name: "freq", Default: ParamDefault{Const: 440}},
	},
}

func (b *Builder) LPF(rate CalculationRate, in, freq Operable) (Operable, error) {
	return b.Construct(lpfSpec, rate, map[string]Operable{"in": in, "freq": freq})
}

var hpfSpec = &UGenSpec{
	ClassName:      "HPF",
	SupportedRates: []CalculationRate{ControlRate, AudioRate},
	Params: []ParamDecl{
		{Name: "in", Default: ParamDefault{Const: 0}},
		{Name: "freq", Default: ParamDefault{Const: 440}},
	},
}

func (b *Builder) HPF(rate CalculationRate, in, freq Operable) (Operable, error) {
	return b.Construct(hpfSpec, rate, map[string]Operable{"in": in, "freq": freq})
}

var resonzSpec = &UGenSpec{
	ClassName:      "Resonz",
	SupportedRates: []CalculationRate{ControlRate, AudioRate},
	Params: []ParamDecl{
		{Name: "in", Default: ParamDefault{Const: 0}},
		{Name: "freq", Default: ParamDefault{Const: 440}},
		{Name: "bwr", Default: ParamDefault{Const: 1}},
	},
}

func (b *Builder) Resonz(rate CalculationRate, in, freq, bwr Operable) (Operable, error) {
	return b.Construct(resonzSpec, rate, map[string]Operable{"in": in, "freq": freq, "bwr": bwr})
}

var lineSpec = &UGenSpec{
	ClassName:      "Line",
	SupportedRates: []CalculationRate{ScalarRate, ControlRate, AudioRate},
	Params: []ParamDecl{
		{Name: "start", Default: ParamDefault{Const: 0}},
		{Name: "end", Default: ParamDefault{Const: 1}},
		{Name: "dur", Default: ParamDefault{Const: 1}},
		{Name: "doneAction", Default: ParamDefault{Const: float32(DoNothing)}},
	},
}

func (b *Builder) Line(rate CalculationRate, start, end, dur, doneAction Operable) (Operable, error) {
	return b.Construct(lineSpec, rate, map[string]Operable{"start": start, "end": end, "dur": dur, "doneAction": doneAction})
}

var pan2Spec = &UGenSpec{
	ClassName:      "Pan2",
	SupportedRates: []CalculationRate{ControlRate, AudioRate},
	NumOutputs:     2,
	Params: []ParamDecl{
		{Name: "in", Default: ParamDefault{Const: 0}},
		{Name: "pos", Default: ParamDefault{Const: 0}},
		{Name: "level", Default: ParamDefault{Const: 1}},
	},
}

// Pan2 equal-power-pans a single channel into a stereo UGenVector.
func (b *Builder) Pan2(rate CalculationRate, in, pos, level Operable) (Operable, error) {
	return b.Construct(pan2Spec, rate, map[string]Operable{"in": in, "pos": pos, "level": level})
}

var inSpec = &UGenSpec{
	ClassName:      "In",
	SupportedRates: []CalculationRate{ControlRate, AudioRate},
	Params: []ParamDecl{
		{Name: "bus", Default: ParamDefault{Const: 0}},
	},
}

func (b *Builder) In(rate CalculationRate, bus Operable) (Operable, error) {
	return b.Construct(inSpec, rate, map[string]Operable{"bus": bus})
}

// Out writes channels (a slice of Operables, one per bus channel) to bus,
// starting at the given output bus index. Out has a side effect (it is
// the entire reason a SynthDef produces sound) and its channel list is
// exempt from multichannel broadcasting: each element becomes one of
// Out's own unexpanded, variadic inputs rather than triggering replication
// of the whole Out UGen.
func (b *Builder) Out(rate CalculationRate, bus Operable, channels ...Operable) (Operable, error) {
	inputs := []Operable{bus}
	for _, c := range channels {
		if vec, ok := c.(UGenVector); ok {
			inputs = append(inputs, vec...)
		} else {
			inputs = append(inputs, c)
		}
	}
	outputRates := []CalculationRate{} // Out has no outputs
	u, err := b.NewUGen("Out", rate, inputs, outputRates, 0, false, allPositionsExcept(0, len(inputs)))
	if err != nil {
		return nil, err
	}
	markSideEffect(u)
	return nil, nil
}

func allPositionsExcept(skip, n int) map[int]bool {
	m := make(map[int]bool, n)
	for i := 0; i < n; i++ {
		if i != skip {
			m[i] = true
		}
	}
	return m
}

// EnvGen constructs an envelope generator. envelope's Flatten() tuple
// becomes EnvGen's trailing variadic, unexpanded input list (spec §4.7):
// the breakpoint values must never be broadcast across multichannel
// expansion the way freq/gate would be.
func (b *Builder) EnvGen(rate CalculationRate, gate Operable, levelScale, levelBias, timeScale Operable, doneAction DoneAction, envelope Envelope) (Operable, error) {
	if err := envelope.Validate(); err != nil {
		return nil, err
	}
	flat := envelope.Flatten()
	inputs := []Operable{gate, levelScale, levelBias, timeScale, ConstantProxy{Value: float32(doneAction)}}
	base := len(inputs)
	for _, v := range flat {
		inputs = append(inputs, ConstantProxy{Value: v})
	}
	unexpanded := make(map[int]bool, len(inputs)-base)
	for i := base; i < len(inputs); i++ {
		unexpanded[i] = true
	}
	u, err := b.NewUGen("EnvGen", rate, inputs, []CalculationRate{rate}, 0, false, unexpanded)
	if err != nil {
		return nil, err
	}
	markSideEffect(u) // a gated EnvGen's doneAction can free the enclosing synth
	return u.Output(0), nil
}

var maxLocalBufsSpec = &UGenSpec{
	ClassName:      "MaxLocalBufs",
	SupportedRates: []CalculationRate{ScalarRate},
	Params: []ParamDecl{
		{Name: "count", Default: ParamDefault{Const: 0}},
	},
	IsWidthFirst: true,
}

// MaxLocalBufs declares how many LocalBuf instances a SynthDef will
// allocate; spec §4.5 step 3 inserts one automatically if any LocalBuf
// appears without one.
func (b *Builder) MaxLocalBufs(count Operable) (Operable, error) {
	return b.Construct(maxLocalBufsSpec, ScalarRate, map[string]Operable{"count": count})
}

var localBufSpec = &UGenSpec{
	ClassName:      "LocalBuf",
	SupportedRates: []CalculationRate{ScalarRate},
	Params: []ParamDecl{
		{Name: "numFrames", Default: ParamDefault{Const: 1}},
		{Name: "numChannels", Default: ParamDefault{Const: 1}},
	},
	IsWidthFirst: true,
}

func (b *Builder) LocalBuf(numFrames, numChannels Operable) (Operable, error) {
	return b.Construct(localBufSpec, ScalarRate, map[string]Operable{"numFrames": numFrames, "numChannels": numChannels})
}

var freeSpec = &UGenSpec{
	ClassName:      "Free",
	SupportedRates: []CalculationRate{ControlRate},
	Params: []ParamDecl{
		{Name: "trig", Default: ParamDefault{Const: 0}},
		{Name: "id", Default: ParamDefault{Const: -1}},
	},
	HasSideEffects: true,
}

// Free frees the node named by id (or the enclosing synth when id is the
// default -1) whenever trig crosses from non-positive to positive.
func (b *Builder) Free(trig, id Operable) (Operable, error) {
	return b.Construct(freeSpec, ControlRate, map[string]Operable{"trig": trig, "id": id})
}

// --- PseudoUGens (spec §4.3): non-emitting, expand into a sub-graph at
// construction time and return a representative Operable. ---

// Mix sums a UGenVector down to a single channel using a left-balanced
// binary tree of BinaryOpUGen adds, matching the canonical Mix.ar
// expansion strategy (keeps the add chain shallow for wide inputs).
func (b *Builder) Mix(channels UGenVector) (Operable, error) {
	if len(channels) == 0 {
		return ConstantProxy{Value: 0}, nil
	}
	level := append(UGenVector(nil), channels...)
	for len(level) > 1 {
		next := make(UGenVector, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				sum, err := b.BinaryExpr(OpAdd, level[i], level[i+1])
				if err != nil {
					return nil, err
				}
				next = append(next, sum)
			} else {
				next = append(next, level[i])
			}
		}
		level = next
	}
	return level[0], nil
}

// Splay pans an array of channels evenly across the stereo field and sums
// the result, the way Splay.ar does: channel i gets position
// -spread..spread linearly, scaled by level/sqrt(n) and mixed through
// Pan2 + Mix. spread and level are read only when they are constants; any
// other Operable is replaced by 1.
func (b *Builder) Splay(rate CalculationRate, channels UGenVector, spread, level Operable) (Operable, error) {
	n := len(channels)
	if n == 0 {
		return UGenVector{ConstantProxy{Value: 0}, ConstantProxy{Value: 0}}, nil
	}
	spreadC, spreadIsConst := spread.(ConstantProxy)
	levelC, levelIsConst := level.(ConstantProxy)
	if !spreadIsConst {
		spreadC = ConstantProxy{Value: 1}
	}
	if !levelIsConst {
		levelC = ConstantProxy{Value: 1}
	}
	scaledLevel := levelC.Value
	if n > 1 {
		scaledLevel /= float32(sqrtApprox(float64(n)))
	}
	lefts := make(UGenVector, 0, n)
	rights := make(UGenVector, 0, n)
	for i := 0; i < n; i++ {
		pos := float32(-1)
		if n > 1 {
			pos = -1 + 2*float32(i)/float32(n-1)
		} else {
			pos = 0
		}
		pos *= spreadC.Value
		panned, err := b.Pan2(rate, channels[i], ConstantProxy{Value: pos}, ConstantProxy{Value: scaledLevel})
		if err != nil {
			return nil, err
		}
		vec := panned.(UGenVector)
		lefts = append(lefts, vec[0])
		rights = append(rights, vec[1])
	}
	left, err := b.Mix(lefts)
	if err != nil {
		return nil, err
	}
	right, err := b.Mix(rights)
	if err != nil {
		return nil, err
	}
	return UGenVector{left, right}, nil
}

func sqrtApprox(x float64) float64 {
	if x <= 0 {
		return 0
	}
	z := x
	for i := 0; i < 20; i++ {
		z -= (z*z - x) / (2 * z)
	}
	return z
}

// LinLin linearly maps in from the range [inMin, inMax] to [outMin, outMax]
// using the operator algebra directly: it never emits a UGen of its own,
// only the BinaryOpUGens its arithmetic produces (or a folded constant
// when every operand is constant).
func (b *Builder) LinLin(in, inMin, inMax, outMin, outMax Operable) (Operable, error) {
	num, err := b.BinaryExpr(OpSub, in, inMin)
	if err != nil {
		return nil, err
	}
	span, err := b.BinaryExpr(OpSub, inMax, inMin)
	if err != nil {
		return nil, err
	}
	ratio, err := b.BinaryExpr(OpDiv, num, span)
	if err != nil {
		return nil, err
	}
	outSpan, err := b.BinaryExpr(OpSub, outMax, outMin)
	if err != nil {
		return nil, err
	}
	scaled, err := b.BinaryExpr(OpMul, ratio, outSpan)
	if err != nil {
		return nil, err
	}
	return b.BinaryExpr(OpAdd, scaled, outMin)
}

// Silence returns a constant-zero signal of the requested width, the way
// the pseudo UGen of the same name does: no UGen is emitted at all.
func (b *Builder) Silence(numChannels int) Operable {
	if numChannels <= 1 {
		return ConstantProxy{Value: 0}
	}
	out := make(UGenVector, numChannels)
	for i := range out {
		out[i] = ConstantProxy{Value: 0}
	}
	return out
}

// Changed detects a change in in larger than threshold, emitting a
// control-rate trigger: abs(HPZ1(in)) > threshold. Matches the canonical
// Changed.kr expansion in terms of differencing plus a comparison.
func (b *Builder) Changed(in, threshold Operable) (Operable, error) {
	u, err := b.NewUGen("HPZ1", ControlRate, []Operable{in}, []CalculationRate{ControlRate}, 0, false, nil)
	if err != nil {
		return nil, err
	}
	diff, err := b.UnaryExpr(OpAbs, u.Output(0))
	if err != nil {
		return nil, err
	}
	return b.BinaryExpr(OpGT, diff, threshold)
}
