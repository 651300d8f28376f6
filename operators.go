package nanosynth

import (
	"fmt"

	"github.com/chewxy/math32"
)

// BinaryOp is the closed enum of binary operators. Its integer value is
// the SCgf special-index serialized for a BinaryOpUGen, matching the
// canonical encoder's selector table.
type BinaryOp int16

const (
	OpAdd BinaryOp = 0
	OpSub BinaryOp = 1
	OpMul BinaryOp = 2
	OpIDiv BinaryOp = 3
	OpDiv BinaryOp = 4
	OpMod BinaryOp = 5
	OpEQ BinaryOp = 6
	OpNE BinaryOp = 7
	OpLT BinaryOp = 8
	OpGT BinaryOp = 9
	OpLE BinaryOp = 10
	OpGE BinaryOp = 11
	OpMin BinaryOp = 12
	OpMax BinaryOp = 13
	OpBitAnd BinaryOp = 14
	OpBitOr BinaryOp = 15
	OpBitXor BinaryOp = 16
	OpLCM BinaryOp = 17
	OpGCD BinaryOp = 18
	OpRound BinaryOp = 19
	OpRoundUp BinaryOp = 20
	OpTrunc BinaryOp = 21
	OpAtan2 BinaryOp = 22
	OpHypot BinaryOp = 23
	OpHypotApx BinaryOp = 24
	OpPow BinaryOp = 25
	OpShiftLeft BinaryOp = 26
	OpShiftRight BinaryOp = 27
	OpUnsignedShift BinaryOp = 28
	OpFill BinaryOp = 29
	OpRing1 BinaryOp = 30
	OpRing2 BinaryOp = 31
	OpRing3 BinaryOp = 32
	OpRing4 BinaryOp = 33
	OpDifSqr BinaryOp = 34
	OpSumSqr BinaryOp = 35
	OpSqrSum BinaryOp = 36
	OpSqrDif BinaryOp = 37
	OpAbsDif BinaryOp = 38
	OpThresh BinaryOp = 39
	OpAmClip BinaryOp = 40
	OpScaleNeg BinaryOp = 41
	OpClip2 BinaryOp = 42
	OpExcess BinaryOp = 43
	OpFold2 BinaryOp = 44
	OpWrap2 BinaryOp = 45
	OpFirstArg BinaryOp = 46
	OpRandRange BinaryOp = 47
	OpExpRandRange BinaryOp = 48
)

// UnaryOp is the closed enum of unary operators, serialized the same way
// as BinaryOp for a UnaryOpUGen.
type UnaryOp int16

const (
	OpNeg UnaryOp = 0
	OpNot UnaryOp = 1
	OpIsNil UnaryOp = 2
	OpNotNil UnaryOp = 3
	OpBitNot UnaryOp = 4
	OpAbs UnaryOp = 5
	OpAsFloat UnaryOp = 6
	OpAsInt UnaryOp = 7
	OpCeil UnaryOp = 8
	OpFloor UnaryOp = 9
	OpFrac UnaryOp = 10
	OpSign UnaryOp = 11
	OpSquared UnaryOp = 12
	OpCubed UnaryOp = 13
	OpSqrt UnaryOp = 14
	OpExp UnaryOp = 15
	OpRecip UnaryOp = 16
	OpMidiCPS UnaryOp = 17
	OpCPSMidi UnaryOp = 18
	OpMidiRatio UnaryOp = 19
	OpRatioMidi UnaryOp = 20
	OpDbAmp UnaryOp = 21
	OpAmpDb UnaryOp = 22
	OpOctCPS UnaryOp = 23
	OpCPSOct UnaryOp = 24
	OpLog UnaryOp = 25
	OpLog2 UnaryOp = 26
	OpLog10 UnaryOp = 27
	OpSin UnaryOp = 28
	OpCos UnaryOp = 29
	OpTan UnaryOp = 30
	OpArcSin UnaryOp = 31
	OpArcCos UnaryOp = 32
	OpArcTan UnaryOp = 33
	OpSinh UnaryOp = 34
	OpCosh UnaryOp = 35
	OpTanh UnaryOp = 36
	OpDistort UnaryOp = 42
	OpSoftClip UnaryOp = 43
)

// Bool reports that an Operable was used where a host-side boolean was
// expected. Comparison operators return Operables, not Go bools, so
// callers must never write `if x > 0` on a signal directly; Operable
// deliberately has no method that type-checks as a condition, which is
// how the boolean trap (spec §4.1) is enforced at compile time rather
// than at runtime for most misuse. BooleanContext exists for the one case
// (a host `if`/`switch` on a value obtained dynamically) where the trap
// must be raised explicitly.
func BooleanContext(o Operable) error {
	return fmt.Errorf("nanosynth: Operable used in a boolean context; comparison operators return signals, not host booleans")
}

// floatBinaryOps are the operators with defined float32 semantics, used to
// decide whether two scalar constants fold eagerly.
var floatBinaryOps = map[BinaryOp]func(a, b float32) float32{
	OpAdd:  func(a, b float32) float32 { return a + b },
	OpSub:  func(a, b float32) float32 { return a - b },
	OpMul:  func(a, b float32) float32 { return a * b },
	OpDiv:  func(a, b float32) float32 { return a / b },
	OpMod:  func(a, b float32) float32 { return math32.Mod(a, b) },
	OpEQ:   func(a, b float32) float32 { return boolF32(a == b) },
	OpNE:   func(a, b float32) float32 { return boolF32(a != b) },
	OpLT:   func(a, b float32) float32 { return boolF32(a < b) },
	OpGT:   func(a, b float32) float32 { return boolF32(a > b) },
	OpLE:   func(a, b float32) float32 { return boolF32(a <= b) },
	OpGE:   func(a, b float32) float32 { return boolF32(a >= b) },
	OpMin:  func(a, b float32) float32 { return math32.Min(a, b) },
	OpMax:  func(a, b float32) float32 { return math32.Max(a, b) },
	OpPow:  func(a, b float32) float32 { return math32.Pow(a, b) },
	OpAtan2: func(a, b float32) float32 { return math32.Atan2(a, b) },
	OpHypot: func(a, b float32) float32 { return math32.Hypot(a, b) },
	OpRing1: func(a, b float32) float32 { return a*b + a },
	OpRing2: func(a, b float32) float32 { return a*b + a + b },
	OpRing3: func(a, b float32) float32 { return a * a * b },
	OpRing4: func(a, b float32) float32 { return a*a*b - a*b*b },
	OpAbsDif: func(a, b float32) float32 { return math32.Abs(a - b) },
	OpScaleNeg: func(a, b float32) float32 {
		if a < 0 {
			return a * b
		}
		return a
	},
}

func boolF32(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

var floatUnaryOps = map[UnaryOp]func(float32) float32{
	OpNeg:    func(a float32) float32 { return -a },
	OpAbs:    math32.Abs,
	OpCeil:   math32.Ceil,
	OpFloor:  math32.Floor,
	OpFrac:   func(a float32) float32 { return a - math32.Floor(a) },
	OpSign: func(a float32) float32 {
		switch {
		case a > 0:
			return 1
		case a < 0:
			return -1
		default:
			return 0
		}
	},
	OpSquared: func(a float32) float32 { return a * a },
	OpCubed:   func(a float32) float32 { return a * a * a },
	OpSqrt: func(a float32) float32 {
		if a < 0 {
			return -math32.Sqrt(-a)
		}
		return math32.Sqrt(a)
	},
	OpExp:       math32.Exp,
	OpRecip:     func(a float32) float32 { return 1 / a },
	OpMidiCPS:   func(a float32) float32 { return 440 * math32.Pow(2, (a-69)/12) },
	OpCPSMidi:   func(a float32) float32 { return math32.Log2(a/440)*12 + 69 },
	OpDbAmp:     func(a float32) float32 { return math32.Pow(10, a/20) },
	OpAmpDb:     func(a float32) float32 { return math32.Log10(a) * 20 },
	OpLog:       math32.Log,
	OpLog2:      math32.Log2,
	OpLog10:     math32.Log10,
	OpSin:       math32.Sin,
	OpCos:       math32.Cos,
	OpTan:       math32.Tan,
	OpSinh:      math32.Sinh,
	OpCosh:      math32.Cosh,
	OpTanh:      math32.Tanh,
	OpSoftClip: func(a float32) float32 {
		if math32.Abs(a) <= 0.5 {
			return a
		}
		return (math32.Abs(a) - 0.25) / a
	},
}

// BinaryExpr builds a binary operator expression against b, applying
// constant folding, identity simplification, and rate promotion per spec
// §4.1. Vector operands broadcast element-wise.
func (b *Builder) BinaryExpr(op BinaryOp, left, right Operable) (Operable, error) {
	if lv, ok := left.(UGenVector); ok {
		return b.broadcastBinary(op, lv, right)
	}
	if rv, ok := right.(UGenVector); ok {
		return b.broadcastBinary(op, UGenVector{left}, rv)
	}

	if lc, ok := left.(ConstantProxy); ok {
		if rc, ok := right.(ConstantProxy); ok {
			if fn, ok := floatBinaryOps[op]; ok {
				return ConstantProxy{Value: fn(lc.Value, rc.Value)}, nil
			}
		}
	}

	if simplified, ok := binaryIdentity(op, left, right); ok {
		return simplified, nil
	}

	rate := left.rate().Max(right.rate())
	u, err := b.NewUGen("BinaryOpUGen", rate, []Operable{left, right}, []CalculationRate{rate}, int16(op), false, nil)
	if err != nil {
		return nil, err
	}
	return u.Output(0), nil
}

func (b *Builder) broadcastBinary(op BinaryOp, left UGenVector, right Operable) (Operable, error) {
	rightVec, rightIsVec := right.(UGenVector)
	n := len(left)
	if rightIsVec {
		n = broadcastLength(len(left), len(rightVec))
		if n < 0 {
			return nil, fmt.Errorf("nanosynth: cannot broadcast vectors of length %d and %d", len(left), len(rightVec))
		}
	}
	out := make(UGenVector, n)
	for i := 0; i < n; i++ {
		l := left[i%len(left)]
		var r Operable
		if rightIsVec {
			r = rightVec[i%len(rightVec)]
		} else {
			r = right
		}
		v, err := b.BinaryExpr(op, l, r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// broadcastLength returns the broadcast length of two list-shaped inputs
// of length a and b (one may be 1, reusing its single element), or -1 if
// they are incompatible.
func broadcastLength(a, b int) int {
	switch {
	case a == b:
		return a
	case a == 1:
		return b
	case b == 1:
		return a
	default:
		return -1
	}
}

// binaryIdentity applies the identity simplifications of spec §4.1:
// x+0->x, x*1->x, x*0->0, x**0->1, x**1->x, regardless of operand order
// where mathematically valid.
func binaryIdentity(op BinaryOp, left, right Operable) (Operable, bool) {
	lc, lIsConst := left.(ConstantProxy)
	rc, rIsConst := right.(ConstantProxy)
	switch op {
	case OpAdd:
		if rIsConst && rc.Value == 0 {
			return left, true
		}
		if lIsConst && lc.Value == 0 {
			return right, true
		}
	case OpMul:
		if rIsConst && rc.Value == 1 {
			return left, true
		}
		if lIsConst && lc.Value == 1 {
			return right, true
		}
		if (rIsConst && rc.Value == 0) || (lIsConst && lc.Value == 0) {
			return ConstantProxy{Value: 0}, true
		}
	case OpPow:
		if rIsConst && rc.Value == 0 {
			return ConstantProxy{Value: 1}, true
		}
		if rIsConst && rc.Value == 1 {
			return left, true
		}
	}
	return nil, false
}

// UnaryExpr builds a unary operator expression against operand, applying
// constant folding per spec §4.1.
func (b *Builder) UnaryExpr(op UnaryOp, operand Operable) (Operable, error) {
	if v, ok := operand.(UGenVector); ok {
		out := make(UGenVector, len(v))
		for i, e := range v {
			r, err := b.UnaryExpr(op, e)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	}
	if c, ok := operand.(ConstantProxy); ok {
		if fn, ok := floatUnaryOps[op]; ok {
			return ConstantProxy{Value: fn(c.Value)}, nil
		}
	}
	rate := operand.rate()
	u, err := b.NewUGen("UnaryOpUGen", rate, []Operable{operand}, []CalculationRate{rate}, int16(op), false, nil)
	if err != nil {
		return nil, err
	}
	return u.Output(0), nil
}
