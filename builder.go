package nanosynth

import "fmt"

// Builder is the mutable, scope-bounded collector described in spec §3 as
// SynthDefBuilder. UGen and Parameter construction happens through methods
// on a *Builder rather than through an implicit thread-local scope stack:
// Go has no goroutine-local storage, so the builder a UGen belongs to is
// carried explicitly by the OutputProxy/Parameter values it returns, and
// cross-scope wiring is detected by comparing that owner against the
// receiver doing the constructing.
type Builder struct {
	name       string
	ugens      []*UGen
	parameters []*Parameter
	paramNames map[string]bool
	built      bool
}

// NewBuilder opens a new builder scope, equivalent to spec §3's
// SynthDefBuilder.open(). Parameters may be supplied positionally as
// ParameterSpec values; add more with AddParameter.
func NewBuilder(specs ...ParameterSpec) *Builder {
	b := &Builder{paramNames: make(map[string]bool)}
	for _, s := range specs {
		if err := b.AddParameter(s.Name, s.Rate, s.Value, s.Lag); err != nil {
			panic(err) // positional construction-time misuse, matching a fatal duplicate-name error
		}
	}
	return b
}

// ParameterSpec is the positional-construction form accepted by NewBuilder,
// mirroring the source's tuple/Default-value convenience constructors:
// value-only, (rate, value), or (rate, value, lag).
type ParameterSpec struct {
	Name  string
	Rate  ParameterRate
	Value []float32
	Lag   float32
}

// Control is the `control(value, rate, lag)` convenience form from spec
// §4.2.
func Control(name string, value float32, rate ParameterRate, lag float32) ParameterSpec {
	return ParameterSpec{Name: name, Rate: rate, Value: []float32{value}, Lag: lag}
}

// AddParameter registers a named parameter with this builder. Parameter
// names are unique per builder; a duplicate name is a fatal error per spec
// §4.2.
func (b *Builder) AddParameter(name string, rate ParameterRate, value []float32, lag float32) error {
	if b.built {
		return fmt.Errorf("nanosynth: cannot add parameter %q: builder already built", name)
	}
	if b.paramNames[name] {
		return fmt.Errorf("nanosynth: duplicate parameter name %q", name)
	}
	if len(value) == 0 {
		value = []float32{0}
	}
	p := &Parameter{
		Name:    name,
		Value:   append([]float32(nil), value...),
		Rate:    rate,
		Lag:     lag,
		builder: b,
		index:   len(b.parameters),
	}
	b.paramNames[name] = true
	b.parameters = append(b.parameters, p)
	return nil
}

// Parameter looks up a previously registered parameter by name.
func (b *Builder) Parameter(name string) (*Parameter, bool) {
	for _, p := range b.parameters {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Parameters returns the ordered list of parameters registered so far.
func (b *Builder) Parameters() []*Parameter {
	return b.parameters
}

// UGens returns the ordered list of UGens constructed so far, in
// insertion order (pre-sort, pre-optimize).
func (b *Builder) UGens() []*UGen {
	return b.ugens
}

// Built reports whether Build has already consumed this builder.
func (b *Builder) Built() bool {
	return b.built
}

// MarkBuilt freezes the builder; subsequent construction is rejected. The
// compiler package calls this once compilation has finished.
func (b *Builder) MarkBuilt() {
	b.built = true
}

// NewUGen registers a new UGen with this builder and returns it. inputs
// must already be multichannel-expanded to scalar Operables (OutputProxy
// or ConstantProxy); callers needing broadcasting should go through
// Expand first. NewUGen validates that every OutputProxy input was
// produced by this same builder.
func (b *Builder) NewUGen(class string, rate CalculationRate, inputs []Operable, outputRates []CalculationRate, specialIndex int16, widthFirst bool, unexpanded map[int]bool) (*UGen, error) {
	if b.built {
		return nil, fmt.Errorf("nanosynth: cannot construct %q: builder already built", class)
	}
	for _, in := range inputs {
		if err := b.checkOwnership(in); err != nil {
			return nil, errCrossScope(class)
		}
	}
	u := &UGen{
		ClassName:      class,
		Rate:           rate,
		Inputs:         inputs,
		OutputRates:    outputRates,
		SpecialIndex:   specialIndex,
		IsWidthFirst:   widthFirst,
		Unexpanded:     unexpanded,
		owner:          b,
		insertionIndex: len(b.ugens),
	}
	b.ugens = append(b.ugens, u)
	return u, nil
}

// checkOwnership recurses into vectors/parameters to find any OutputProxy
// and confirms it belongs to b.
func (b *Builder) checkOwnership(o Operable) error {
	switch v := o.(type) {
	case OutputProxy:
		if v.UGen.owner != nil && v.UGen.owner != b {
			return errCrossScope(v.UGen.ClassName)
		}
	case UGenVector:
		for _, e := range v {
			if err := b.checkOwnership(e); err != nil {
				return err
			}
		}
	case *Parameter:
		if v.builder != nil && v.builder != b {
			return fmt.Errorf("nanosynth: cross-scope wiring: parameter %q belongs to a different builder", v.Name)
		}
	}
	return nil
}

// markSideEffect flags u as having an observable side effect, exempting it
// from the dead-code elimination pass.
func markSideEffect(u *UGen) *UGen {
	u.hasSideEffects = true
	return u
}
