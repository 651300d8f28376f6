package compiler_test

import (
	"testing"

	"github.com/nanosynth/nanosynth"
	"github.com/nanosynth/nanosynth/compiler"
)

func buildSine(t *testing.T) *nanosynth.Builder {
	t.Helper()
	b := nanosynth.NewBuilder()
	osc, err := b.SinOsc(nanosynth.AudioRate, nanosynth.Const(440), nanosynth.Const(0))
	if err != nil {
		t.Fatalf("SinOsc: %v", err)
	}
	scaled, err := b.BinaryExpr(nanosynth.OpMul, osc, nanosynth.Const(0.3))
	if err != nil {
		t.Fatalf("BinaryExpr: %v", err)
	}
	panned, err := b.Pan2(nanosynth.AudioRate, scaled, nanosynth.Const(0), nanosynth.Const(1))
	if err != nil {
		t.Fatalf("Pan2: %v", err)
	}
	vec := panned.(nanosynth.UGenVector)
	if _, err := b.Out(nanosynth.AudioRate, nanosynth.Const(0), vec...); err != nil {
		t.Fatalf("Out: %v", err)
	}
	return b
}

func TestCompileSineSynthDef(t *testing.T) {
	b := buildSine(t)
	def, err := compiler.Compile(b, "sine")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if def.Name != "sine" {
		t.Fatalf("name = %q, want sine", def.Name)
	}
	var classes []string
	for _, u := range def.UGens {
		classes = append(classes, u.ClassName)
	}
	wantLast := "Out"
	if classes[len(classes)-1] != wantLast {
		t.Fatalf("last UGen = %s, want %s (inputs must sort before the UGen that reads them)", classes[len(classes)-1], wantLast)
	}
	if !b.Built() {
		t.Fatal("Compile should mark the builder built")
	}
}

func TestEmitSineSynthDefHeader(t *testing.T) {
	b := buildSine(t)
	def, err := compiler.Compile(b, "sine")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	bytes, err := compiler.Emit(def)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	want := []byte{'S', 'C', 'g', 'f', 0, 0, 0, 2, 0, 1, 4, 's', 'i', 'n', 'e'}
	if len(bytes) < len(want) {
		t.Fatalf("output too short: %d bytes", len(bytes))
	}
	for i, w := range want {
		if bytes[i] != w {
			t.Fatalf("byte %d = %#x, want %#x (header+name prefix mismatch)", i, bytes[i], w)
		}
	}
}

func TestCompileRejectsDoubleBuild(t *testing.T) {
	b := buildSine(t)
	if _, err := compiler.Compile(b, "sine"); err != nil {
		t.Fatalf("first Compile: %v", err)
	}
	if _, err := compiler.Compile(b, "sine"); err == nil {
		t.Fatal("expected an error compiling an already-built builder")
	}
}

func TestDeadCodeEliminationDropsUnusedUGen(t *testing.T) {
	b := nanosynth.NewBuilder()
	// an oscillator with no consumer and no side effect should be dropped
	if _, err := b.SinOsc(nanosynth.AudioRate, nanosynth.Const(220), nanosynth.Const(0)); err != nil {
		t.Fatalf("SinOsc: %v", err)
	}
	kept, err := b.SinOsc(nanosynth.AudioRate, nanosynth.Const(440), nanosynth.Const(0))
	if err != nil {
		t.Fatalf("SinOsc: %v", err)
	}
	if _, err := b.Out(nanosynth.AudioRate, nanosynth.Const(0), kept); err != nil {
		t.Fatalf("Out: %v", err)
	}
	def, err := compiler.Compile(b, "dce")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	count := 0
	for _, u := range def.UGens {
		if u.ClassName == "SinOsc" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 surviving SinOsc, got %d", count)
	}
}

func TestControlParameterMaterialization(t *testing.T) {
	b := nanosynth.NewBuilder(nanosynth.Control("freq", 440, nanosynth.ControlParameterRate, 0))
	freqParam, ok := b.Parameter("freq")
	if !ok {
		t.Fatal("expected freq parameter to be registered")
	}
	osc, err := b.SinOsc(nanosynth.AudioRate, freqParam, nanosynth.Const(0))
	if err != nil {
		t.Fatalf("SinOsc: %v", err)
	}
	if _, err := b.Out(nanosynth.AudioRate, nanosynth.Const(0), osc); err != nil {
		t.Fatalf("Out: %v", err)
	}
	def, err := compiler.Compile(b, "withparam")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	foundControl := false
	for _, u := range def.UGens {
		if u.ClassName == "Control" {
			foundControl = true
		}
	}
	if !foundControl {
		t.Fatal("expected a materialized Control UGen")
	}
	if len(def.ParameterNames) != 1 || def.ParameterNames[0].Name != "freq" {
		t.Fatalf("ParameterNames = %#v, want one entry named freq", def.ParameterNames)
	}
	if len(def.ParameterValues) != 1 || def.ParameterValues[0] != 440 {
		t.Fatalf("ParameterValues = %#v, want [440]", def.ParameterValues)
	}
}

func TestLaggedControlParameterMaterializesLagControl(t *testing.T) {
	b := nanosynth.NewBuilder(nanosynth.Control("freq", 440, nanosynth.ControlParameterRate, 0.1))
	freqParam, ok := b.Parameter("freq")
	if !ok {
		t.Fatal("expected freq parameter to be registered")
	}
	osc, err := b.SinOsc(nanosynth.AudioRate, freqParam, nanosynth.Const(0))
	if err != nil {
		t.Fatalf("SinOsc: %v", err)
	}
	if _, err := b.Out(nanosynth.AudioRate, nanosynth.Const(0), osc); err != nil {
		t.Fatalf("Out: %v", err)
	}
	def, err := compiler.Compile(b, "lagged")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	var control *compiler.CompiledUGen
	for i := range def.UGens {
		if def.UGens[i].ClassName == "LagControl" {
			control = &def.UGens[i]
		}
		if def.UGens[i].ClassName == "Control" {
			t.Fatal("a lagged control-rate parameter must not materialize as plain Control")
		}
	}
	if control == nil {
		t.Fatal("expected a materialized LagControl UGen")
	}
	if len(control.Inputs) != 1 {
		t.Fatalf("LagControl inputs = %#v, want one lag value", control.Inputs)
	}
	if got := def.Constants[control.Inputs[0].Index]; got != 0.1 {
		t.Fatalf("lag constant = %v, want 0.1", got)
	}
}

func TestUnlaggedControlParameterStillMaterializesPlainControl(t *testing.T) {
	b := nanosynth.NewBuilder(nanosynth.Control("freq", 440, nanosynth.ControlParameterRate, 0))
	freqParam, _ := b.Parameter("freq")
	osc, err := b.SinOsc(nanosynth.AudioRate, freqParam, nanosynth.Const(0))
	if err != nil {
		t.Fatalf("SinOsc: %v", err)
	}
	if _, err := b.Out(nanosynth.AudioRate, nanosynth.Const(0), osc); err != nil {
		t.Fatalf("Out: %v", err)
	}
	def, err := compiler.Compile(b, "unlagged")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, u := range def.UGens {
		if u.ClassName == "LagControl" {
			t.Fatal("a zero-lag control-rate parameter should not materialize as LagControl")
		}
	}
}

func TestUnreferencedControlParameterSurvivesDeadCodeElimination(t *testing.T) {
	b := nanosynth.NewBuilder(nanosynth.Control("unused", 1, nanosynth.ControlParameterRate, 0))
	osc, err := b.SinOsc(nanosynth.AudioRate, nanosynth.Const(440), nanosynth.Const(0))
	if err != nil {
		t.Fatalf("SinOsc: %v", err)
	}
	if _, err := b.Out(nanosynth.AudioRate, nanosynth.Const(0), osc); err != nil {
		t.Fatalf("Out: %v", err)
	}
	def, err := compiler.Compile(b, "unreferenced")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	found := false
	for _, u := range def.UGens {
		if u.ClassName == "Control" {
			found = true
		}
	}
	if !found {
		t.Fatal("a declared-but-unused parameter's Control UGen must survive dead-code elimination so it stays addressable by name")
	}
	if len(def.ParameterNames) != 1 || def.ParameterNames[0].Name != "unused" {
		t.Fatalf("ParameterNames = %#v, want one entry named unused", def.ParameterNames)
	}
}
