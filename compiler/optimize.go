package compiler

import "github.com/nanosynth/nanosynth"

// classOptimizers holds post-sort, per-class rewrite rules (spec §4.5 step
// 5's "_optimize"). Most of the algebraic folding spec describes (constant
// folding, x+0/x*1/x*0 identities) already happens eagerly while the graph
// is built, in nanosynth.Builder.BinaryExpr/UnaryExpr, since it only ever
// needs to see the two operands being combined. This table is the hook for
// rewrites that instead need sorted-graph context (a UGen's position
// relative to its consumers); none of the core classes need one yet, so it
// starts empty and optimize is a pass-through.
var classOptimizers = map[string]func(u *nanosynth.UGen) bool{}

// optimize iteratively applies classOptimizers until no rewrite fires,
// matching spec's "iteratively apply UGen-class-specific _optimize
// rewrites" wording. Rewrites mutate UGens in place (e.g. swapping a
// SpecialIndex or dropping an input); they never change the order slice
// itself, so the dead-code pass must run after this to catch any input
// an optimizer rewrite made unreachable.
func optimize(order []*nanosynth.UGen) []*nanosynth.UGen {
	if len(classOptimizers) == 0 {
		return order
	}
	for changed := true; changed; {
		changed = false
		for _, u := range order {
			if fn, ok := classOptimizers[u.ClassName]; ok && fn(u) {
				changed = true
			}
		}
	}
	return order
}
