package compiler

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

const (
	scgfMagic   = "SCgf"
	scgfVersion = 2
)

// Emit serializes one or more compiled SynthDefs into the SCgf binary
// format (spec §4.6): big-endian throughout, Pascal-style (single-byte
// length prefix) strings.
func Emit(defs ...*SynthDef) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(scgfMagic)
	if err := binary.Write(&buf, binary.BigEndian, uint32(scgfVersion)); err != nil {
		return nil, err
	}
	if len(defs) > 0xFFFF {
		return nil, fmt.Errorf("compiler: %d SynthDefs exceeds the 16-bit count field", len(defs))
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(defs))); err != nil {
		return nil, err
	}
	for _, d := range defs {
		if err := writeSynthDef(&buf, d); err != nil {
			return nil, fmt.Errorf("compiler: encoding SynthDef %q: %w", d.Name, err)
		}
	}
	return buf.Bytes(), nil
}

func writePString(buf *bytes.Buffer, s string) error {
	if len(s) > 0xFF {
		return fmt.Errorf("string %q exceeds the 255-byte pstring limit", s)
	}
	buf.WriteByte(byte(len(s)))
	buf.WriteString(s)
	return nil
}

func writeSynthDef(buf *bytes.Buffer, d *SynthDef) error {
	if err := writePString(buf, d.Name); err != nil {
		return err
	}

	if err := binary.Write(buf, binary.BigEndian, uint32(len(d.Constants))); err != nil {
		return err
	}
	for _, c := range d.Constants {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return fmt.Errorf("constant %v is not finite", c)
		}
		if err := binary.Write(buf, binary.BigEndian, c); err != nil {
			return err
		}
	}

	if err := binary.Write(buf, binary.BigEndian, uint32(len(d.ParameterValues))); err != nil {
		return err
	}
	for _, v := range d.ParameterValues {
		if err := binary.Write(buf, binary.BigEndian, v); err != nil {
			return err
		}
	}

	if err := binary.Write(buf, binary.BigEndian, uint32(len(d.ParameterNames))); err != nil {
		return err
	}
	for _, pn := range d.ParameterNames {
		if err := writePString(buf, pn.Name); err != nil {
			return err
		}
		if err := binary.Write(buf, binary.BigEndian, uint32(pn.Index)); err != nil {
			return err
		}
	}

	if err := binary.Write(buf, binary.BigEndian, uint32(len(d.UGens))); err != nil {
		return err
	}
	for _, u := range d.UGens {
		if err := writeUGen(buf, u); err != nil {
			return err
		}
	}

	// variant count: always 0 for the core format.
	return binary.Write(buf, binary.BigEndian, uint16(0))
}

func writeUGen(buf *bytes.Buffer, u CompiledUGen) error {
	if err := writePString(buf, u.ClassName); err != nil {
		return err
	}
	buf.WriteByte(u.Rate.Byte())
	if err := binary.Write(buf, binary.BigEndian, uint32(len(u.Inputs))); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.BigEndian, uint32(len(u.OutputRates))); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.BigEndian, u.SpecialIndex); err != nil {
		return err
	}
	for _, in := range u.Inputs {
		if err := binary.Write(buf, binary.BigEndian, in.UGenIndex); err != nil {
			return err
		}
		if err := binary.Write(buf, binary.BigEndian, in.Index); err != nil {
			return err
		}
	}
	for _, r := range u.OutputRates {
		buf.WriteByte(r.Byte())
	}
	return nil
}
