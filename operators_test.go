package nanosynth

import "testing"

func TestBinaryExprConstantFolding(t *testing.T) {
	b := NewBuilder()
	v, err := b.BinaryExpr(OpAdd, Const(2), Const(3))
	if err != nil {
		t.Fatalf("BinaryExpr: %v", err)
	}
	c, ok := v.(ConstantProxy)
	if !ok {
		t.Fatalf("expected ConstantProxy, got %T", v)
	}
	if c.Value != 5 {
		t.Fatalf("got %v, want 5", c.Value)
	}
	if len(b.UGens()) != 0 {
		t.Fatalf("constant folding should not emit a UGen, got %d", len(b.UGens()))
	}
}

func TestBinaryExprIdentitySimplification(t *testing.T) {
	b := NewBuilder()
	freq, err := b.SinOsc(AudioRate, Const(440), Const(0))
	if err != nil {
		t.Fatalf("SinOsc: %v", err)
	}

	cases := []struct {
		name string
		op   BinaryOp
		l, r Operable
	}{
		{"x+0", OpAdd, freq, Const(0)},
		{"0+x", OpAdd, Const(0), freq},
		{"x*1", OpMul, freq, Const(1)},
		{"1*x", OpMul, Const(1), freq},
		{"x*0", OpMul, freq, Const(0)},
		{"x**1", OpPow, freq, Const(1)},
		{"x**0", OpPow, freq, Const(0)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			before := len(b.UGens())
			v, err := b.BinaryExpr(c.op, c.l, c.r)
			if err != nil {
				t.Fatalf("BinaryExpr: %v", err)
			}
			if len(b.UGens()) != before {
				t.Fatalf("identity fold %s should not emit a UGen", c.name)
			}
			switch c.name {
			case "x*0":
				if cp, ok := v.(ConstantProxy); !ok || cp.Value != 0 {
					t.Fatalf("x*0 should fold to constant 0, got %#v", v)
				}
			case "x**0":
				if cp, ok := v.(ConstantProxy); !ok || cp.Value != 1 {
					t.Fatalf("x**0 should fold to constant 1, got %#v", v)
				}
			default:
				if op, ok := v.(OutputProxy); !ok || !op.Equal(freq.(OutputProxy)) {
					t.Fatalf("%s should return x unchanged, got %#v", c.name, v)
				}
			}
		})
	}
}

func TestBinaryExprEmitsUGenForNonConstant(t *testing.T) {
	b := NewBuilder()
	freq, _ := b.SinOsc(AudioRate, Const(440), Const(0))
	gain, _ := b.SinOsc(ControlRate, Const(2), Const(0))
	before := len(b.UGens())
	v, err := b.BinaryExpr(OpMul, freq, gain)
	if err != nil {
		t.Fatalf("BinaryExpr: %v", err)
	}
	if len(b.UGens()) != before+1 {
		t.Fatalf("expected one new BinaryOpUGen, got %d new", len(b.UGens())-before)
	}
	out, ok := v.(OutputProxy)
	if !ok {
		t.Fatalf("expected OutputProxy, got %T", v)
	}
	if out.UGen.ClassName != "BinaryOpUGen" {
		t.Fatalf("expected BinaryOpUGen, got %s", out.UGen.ClassName)
	}
	if out.UGen.SpecialIndex != int16(OpMul) {
		t.Fatalf("special index = %d, want %d", out.UGen.SpecialIndex, OpMul)
	}
	if out.UGen.Rate != AudioRate {
		t.Fatalf("rate = %s, want AudioRate (max of operands)", out.UGen.Rate)
	}
}

func TestBooleanContextRejectsOperable(t *testing.T) {
	b := NewBuilder()
	freq, _ := b.SinOsc(AudioRate, Const(440), Const(0))
	if err := BooleanContext(freq); err == nil {
		t.Fatal("expected an error using a signal in boolean context")
	}
	if err := BooleanContext(Const(1)); err == nil {
		t.Fatal("expected an error using a constant in boolean context too")
	}
}

func TestCrossScopeWiringRejected(t *testing.T) {
	a := NewBuilder()
	bb := NewBuilder()
	freqA, _ := a.SinOsc(AudioRate, Const(440), Const(0))
	if _, err := bb.BinaryExpr(OpAdd, freqA, Const(1)); err == nil {
		t.Fatal("expected a cross-scope wiring error")
	}
}
