package nanosynth

import "fmt"

// ParamDefault is the default value of a UGen parameter when the caller
// omits it. Exactly one of Const or Compute should be set; Compute lets a
// default be derived from an already-resolved earlier parameter (spec
// §4.3's "Default sentinel whose value is computed from another parameter
// at instantiation").
type ParamDefault struct {
	Const   float32
	Compute func(resolved map[string]Operable) Operable
}

func (d ParamDefault) resolve(resolved map[string]Operable) Operable {
	if d.Compute != nil {
		return d.Compute(resolved)
	}
	return ConstantProxy{Value: d.Const}
}

// ParamDecl is one declared parameter of a UGen class: its name and its
// default.
type ParamDecl struct {
	Name    string
	Default ParamDefault
}

// UGenSpec is the per-class declaration contract of spec §4.3: supported
// rates, parameter list with defaults, output shape, and the two sort/
// broadcast-exemption flags.
type UGenSpec struct {
	ClassName string
	Params    []ParamDecl

	// SupportedRates lists the calculation rates this class may be
	// constructed at; nil means "whatever the caller asks for".
	SupportedRates []CalculationRate

	// NumOutputs is the fixed output count; 0 defaults to 1.
	NumOutputs int

	// IsWidthFirst sets sort priority (spec §4.5 step 4).
	IsWidthFirst bool

	// Unexpanded names parameters exempt from multichannel broadcasting
	// (spec §4.4), e.g. the level array of an envelope generator.
	Unexpanded []string

	// HasSideEffects exempts every instance of this class from the
	// dead-code elimination pass (spec §4.5 step 5).
	HasSideEffects bool
}

func (s *UGenSpec) supportsRate(r CalculationRate) bool {
	if len(s.SupportedRates) == 0 {
		return true
	}
	for _, sr := range s.SupportedRates {
		if sr == r {
			return true
		}
	}
	return false
}

func (s *UGenSpec) unexpandedSet() map[int]bool {
	if len(s.Unexpanded) == 0 {
		return nil
	}
	set := make(map[int]bool, len(s.Unexpanded))
	for _, name := range s.Unexpanded {
		for i, p := range s.Params {
			if p.Name == name {
				set[i] = true
			}
		}
	}
	return set
}

// Construct builds one occurrence of spec's UGen class at rate, filling in
// declared defaults for any parameter missing from args, multichannel
// expanding across any list-shaped argument, and registering the result(s)
// with b.
func (b *Builder) Construct(spec *UGenSpec, rate CalculationRate, args map[string]Operable) (Operable, error) {
	if !spec.supportsRate(rate) {
		return nil, fmt.Errorf("nanosynth: %s does not support rate %s", spec.ClassName, rate)
	}
	inputs := make([]Operable, len(spec.Params))
	resolved := make(map[string]Operable, len(spec.Params))
	for i, p := range spec.Params {
		v, ok := args[p.Name]
		if !ok {
			v = p.Default.resolve(resolved)
		}
		inputs[i] = v
		resolved[p.Name] = v
	}
	numOut := spec.NumOutputs
	if numOut == 0 {
		numOut = 1
	}
	outputRates := make([]CalculationRate, numOut)
	for i := range outputRates {
		outputRates[i] = rate
	}
	unexpanded := spec.unexpandedSet()
	return Expand(inputs, unexpanded, func(scalar []Operable) (Operable, error) {
		u, err := b.NewUGen(spec.ClassName, rate, scalar, outputRates, 0, spec.IsWidthFirst, nil)
		if err != nil {
			return nil, err
		}
		if spec.HasSideEffects {
			markSideEffect(u)
		}
		if numOut == 1 {
			return u.Output(0), nil
		}
		out := make(UGenVector, numOut)
		for i := range out {
			out[i] = u.Output(i)
		}
		return out, nil
	})
}
