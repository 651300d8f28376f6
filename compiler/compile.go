package compiler

import (
	"fmt"
	"sort"

	"github.com/nanosynth/nanosynth"
)

// Compile performs spec's build(name) pipeline against a builder scope:
// parameter materialization, LocalBuf cleanup, topological sort,
// dead-code elimination, constant interning, and freeze. The builder is
// marked built on success; it must not already be built.
func Compile(b *nanosynth.Builder, name string) (*SynthDef, error) {
	if b.Built() {
		return nil, fmt.Errorf("compiler: builder already built")
	}

	paramValues, paramNames, err := materializeParameters(b)
	if err != nil {
		return nil, err
	}

	if err := ensureMaxLocalBufs(b); err != nil {
		return nil, err
	}

	order, err := topoSort(b.UGens())
	if err != nil {
		return nil, err
	}

	order = optimize(order)

	order = eliminateDeadCode(order)

	compiled, consts := internConstants(order)

	b.MarkBuilt()

	return &SynthDef{
		Name:            name,
		Constants:       consts,
		ParameterValues: paramValues,
		ParameterNames:  paramNames,
		UGens:           compiled,
	}, nil
}

// materializeParameters groups the builder's parameters by rate, emits one
// Control-family UGen per non-empty non-scalar group, and rewrites every
// *nanosynth.Parameter reference appearing in another UGen's inputs into
// an OutputProxy into the new Control UGen. Scalar-rate parameters have no
// Control UGen: their references are replaced by a baked-in constant.
func materializeParameters(b *nanosynth.Builder) (values []float32, names []ParamName, err error) {
	params := b.Parameters()
	if len(params) == 0 {
		return nil, nil, nil
	}

	groups := map[nanosynth.ParameterRate][]*nanosynth.Parameter{}
	for _, p := range params {
		groups[p.Rate] = append(groups[p.Rate], p)
	}

	replacement := make(map[*nanosynth.Parameter]nanosynth.Operable, len(params))

	// Process scalar parameters first: baked constants, no UGen, but still
	// occupy a slot in ParameterValues/ParameterNames so a session can
	// address them by name for introspection.
	for _, p := range groups[nanosynth.ScalarParameterRate] {
		replacement[p] = nanosynth.ConstantProxy{Value: p.ScalarValue()}
		names = append(names, ParamName{Name: p.Name, Index: int32(len(values))})
		values = append(values, p.ScalarValue())
	}

	for _, rate := range []nanosynth.ParameterRate{
		nanosynth.ControlParameterRate,
		nanosynth.TriggerParameterRate,
		nanosynth.AudioParameterRate,
	} {
		group := groups[rate]
		if len(group) == 0 {
			continue
		}
		outputRates := make([]nanosynth.CalculationRate, len(group))
		for i, p := range group {
			outputRates[i] = p.Rate.CalculationRate()
		}

		className := rate.ControlUGenClassName()
		var inputs []nanosynth.Operable
		var unexpanded map[int]bool
		// Only CONTROL-rate parameters ever materialize as LagControl;
		// TrigControl and AudioControl never carry a lag (synthdef.py's
		// _build_control_mapping only checks this branch for the plain
		// CONTROL rate).
		if rate == nanosynth.ControlParameterRate && anyLagged(group) {
			className = "LagControl"
			inputs = make([]nanosynth.Operable, len(group))
			for i, p := range group {
				inputs[i] = nanosynth.ConstantProxy{Value: p.Lag}
			}
			unexpanded = make(map[int]bool, len(group))
			for i := range group {
				unexpanded[i] = true
			}
		}

		u, err := b.NewUGen(className, outputRates[0], inputs, outputRates, 0, false, unexpanded)
		if err != nil {
			return nil, nil, err
		}
		for i, p := range group {
			replacement[p] = u.Output(i)
			names = append(names, ParamName{Name: p.Name, Index: int32(len(values))})
			values = append(values, p.ScalarValue())
		}
	}

	for _, u := range b.UGens() {
		for i, in := range u.Inputs {
			if p, ok := in.(*nanosynth.Parameter); ok {
				if r, ok := replacement[p]; ok {
					u.Inputs[i] = r
				}
			}
		}
	}
	return values, names, nil
}

// anyLagged reports whether any parameter in group has a nonzero lag,
// mirroring synthdef.py's `any(parameter.lag for parameter in
// filtered_parameters)` check that picks LagControl over plain Control.
func anyLagged(group []*nanosynth.Parameter) bool {
	for _, p := range group {
		if p.Lag != 0 {
			return true
		}
	}
	return false
}

// ensureMaxLocalBufs inserts a MaxLocalBufs UGen at the head of the scope
// if any LocalBuf appears without one already declaring a count (spec
// §4.5 step 3).
func ensureMaxLocalBufs(b *nanosynth.Builder) error {
	var localBufs, maxLocalBufs int
	for _, u := range b.UGens() {
		switch u.ClassName {
		case "LocalBuf":
			localBufs++
		case "MaxLocalBufs":
			maxLocalBufs++
		}
	}
	if localBufs > 0 && maxLocalBufs == 0 {
		m, err := b.MaxLocalBufs(nanosynth.Const(float32(localBufs)))
		if err != nil {
			return err
		}
		// Wire it into every LocalBuf so the sort places it ahead of them
		// and the dead-code pass keeps it.
		for _, u := range b.UGens() {
			if u.ClassName == "LocalBuf" {
				u.Inputs = append(u.Inputs, m)
			}
		}
	}
	return nil
}

// topoSort orders ugens so that every UGen appears after all UGens whose
// outputs it consumes, hoisting is_width_first UGens to the earliest
// position their dependencies allow, with original insertion index as the
// tie-break (spec §4.5 step 4).
func topoSort(ugens []*nanosynth.UGen) ([]*nanosynth.UGen, error) {
	indegree := make(map[*nanosynth.UGen]int, len(ugens))
	dependents := make(map[*nanosynth.UGen][]*nanosynth.UGen, len(ugens))
	known := make(map[*nanosynth.UGen]bool, len(ugens))
	for _, u := range ugens {
		known[u] = true
	}
	for _, u := range ugens {
		seen := map[*nanosynth.UGen]bool{}
		for _, in := range u.Inputs {
			if op, ok := in.(nanosynth.OutputProxy); ok && known[op.UGen] && !seen[op.UGen] {
				seen[op.UGen] = true
				indegree[u]++
				dependents[op.UGen] = append(dependents[op.UGen], u)
			}
		}
	}

	ready := make([]*nanosynth.UGen, 0, len(ugens))
	for _, u := range ugens {
		if indegree[u] == 0 {
			ready = append(ready, u)
		}
	}

	less := func(a, b *nanosynth.UGen) bool {
		if a.IsWidthFirst != b.IsWidthFirst {
			return a.IsWidthFirst
		}
		return a.InsertionIndex() < b.InsertionIndex()
	}

	order := make([]*nanosynth.UGen, 0, len(ugens))
	for len(ready) > 0 {
		sort.SliceStable(ready, func(i, j int) bool { return less(ready[i], ready[j]) })
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)
		for _, dep := range dependents[next] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(order) != len(ugens) {
		return nil, fmt.Errorf("compiler: cycle detected among %d unordered UGens", len(ugens)-len(order))
	}
	return order, nil
}

// isControlUGen reports whether class is one of the synthetic UGens
// materializeParameters emits. These always survive dead-code elimination
// even with no consumers: a declared-but-unused parameter must stay
// addressable by name via /n_set, so the name/value pair in
// ParameterNames/ParameterValues always has a live UGen backing it.
func isControlUGen(class string) bool {
	switch class {
	case "Control", "TrigControl", "AudioControl", "LagControl":
		return true
	default:
		return false
	}
}

// eliminateDeadCode removes UGens with no consumers unless they carry an
// observable side effect, cascading through the dependency chain: a UGen
// kept alive only by a now-dead consumer is itself eliminated. A single
// reverse pass over the topologically-sorted order suffices, since every
// dependent of u already appears (and has been classified) before u.
func eliminateDeadCode(order []*nanosynth.UGen) []*nanosynth.UGen {
	liveConsumers := make(map[*nanosynth.UGen]int, len(order))
	alive := make(map[*nanosynth.UGen]bool, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		u := order[i]
		if liveConsumers[u] > 0 || u.HasSideEffects() || isControlUGen(u.ClassName) {
			alive[u] = true
			seen := map[*nanosynth.UGen]bool{}
			for _, in := range u.Inputs {
				if op, ok := in.(nanosynth.OutputProxy); ok && !seen[op.UGen] {
					seen[op.UGen] = true
					liveConsumers[op.UGen]++
				}
			}
		}
	}
	out := make([]*nanosynth.UGen, 0, len(order))
	for _, u := range order {
		if alive[u] {
			out = append(out, u)
		}
	}
	return out
}

// internConstants walks the surviving, sorted order and compiles it into
// the final CompiledUGen list, deduplicating every constant value into a
// shared pool (spec §4.5 step 6).
func internConstants(order []*nanosynth.UGen) ([]CompiledUGen, []float32) {
	index := make(map[*nanosynth.UGen]int32, len(order))
	for i, u := range order {
		index[u] = int32(i)
	}
	pool := map[float32]int32{}
	var constants []float32
	internOne := func(v float32) int32 {
		if idx, ok := pool[v]; ok {
			return idx
		}
		idx := int32(len(constants))
		pool[v] = idx
		constants = append(constants, v)
		return idx
	}

	compiled := make([]CompiledUGen, len(order))
	for i, u := range order {
		inputs := make([]InputSpec, len(u.Inputs))
		for j, in := range u.Inputs {
			switch v := in.(type) {
			case nanosynth.OutputProxy:
				inputs[j] = InputSpec{UGenIndex: index[v.UGen], Index: int32(v.OutputIndex)}
			case nanosynth.ConstantProxy:
				inputs[j] = InputSpec{UGenIndex: -1, Index: internOne(v.Value)}
			default:
				// Any remaining reference (e.g. an unmaterialized
				// Parameter) is a compiler bug upstream; it is folded to
				// the constant 0 rather than panicking, and no error is
				// reported.
				inputs[j] = InputSpec{UGenIndex: -1, Index: internOne(0)}
			}
		}
		compiled[i] = CompiledUGen{
			ClassName:    u.ClassName,
			Rate:         u.Rate,
			Inputs:       inputs,
			OutputRates:  append([]nanosynth.CalculationRate(nil), u.OutputRates...),
			SpecialIndex: u.SpecialIndex,
		}
	}
	return compiled, constants
}
