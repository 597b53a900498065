package disasm

import (
	"golang.org/x/arch/x86/x86asm"
)

// DecodeX86 linearly decodes code as x86 instructions of the given mode
// (32 or 64) starting at virtual address base. Bytes that fail to decode
// are skipped one at a time so a single bad byte cannot desync the whole
// sweep.
func DecodeX86(code []byte, base uint64, mode int) Stream {
	var out Stream
	for i := 0; i < len(code); {
		va := base + uint64(i)
		inst, err := x86asm.Decode(code[i:], mode)
		if err != nil || inst.Len == 0 {
			i++
			continue
		}
		out = append(out, liftX86(inst, va))
		i += inst.Len
	}
	return out
}

// liftX86 converts one decoded x86 instruction into the common tagged form.
func liftX86(inst x86asm.Inst, va uint64) Inst {
	d := Inst{
		VA:   va,
		Len:  inst.Len,
		Text: x86asm.GNUSyntax(inst, va, nil),
	}

	switch inst.Op {
	case x86asm.CALL, x86asm.LCALL:
		d.Class = ClassCall
	case x86asm.PUSH:
		d.Class = ClassPush
	case x86asm.JMP, x86asm.LJMP:
		d.Class = ClassJump
	case x86asm.RET, x86asm.LRET:
		d.Class = ClassRet
	}

	switch arg := inst.Args[0].(type) {
	case x86asm.Imm:
		d.Imm = uint64(arg)
		d.HasImm = true
	case x86asm.Rel:
		// PC-relative destinations are resolved against the end of the
		// instruction.
		abs := uint64(int64(va) + int64(inst.Len) + int64(arg))
		if d.Class == ClassCall || d.Class == ClassJump {
			d.Target = abs
			d.HasTarget = true
		}
	}

	return d
}
