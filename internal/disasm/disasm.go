// Package disasm defines a common decoded-instruction representation used
// across architecture-specific decoders.
package disasm

import "sort"

// Class tags an instruction with the operation kind the analysis passes
// pattern-match on. Anything irrelevant to call-site scanning is ClassOther.
type Class int

const (
	ClassOther Class = iota
	ClassCall
	ClassPush
	ClassJump
	ClassRet
)

func (c Class) String() string {
	switch c {
	case ClassCall:
		return "call"
	case ClassPush:
		return "push"
	case ClassJump:
		return "jump"
	case ClassRet:
		return "ret"
	default:
		return "other"
	}
}

// Inst is a simplified decoded instruction.
type Inst struct {
	VA        uint64 // virtual address of instruction
	Len       int    // encoded length in bytes
	Class     Class
	Imm       uint64 // constant source operand (valid when HasImm)
	HasImm    bool
	Target    uint64 // direct call/jump destination (valid when HasTarget)
	HasTarget bool
	Text      string // formatted disassembly string
}

// Stream is a linear sequence of instructions in ascending VA order.
type Stream []Inst

// IndexOf returns the position of the instruction starting at va, or -1 if
// no instruction in the stream starts there.
func (s Stream) IndexOf(va uint64) int {
	i := sort.Search(len(s), func(i int) bool { return s[i].VA >= va })
	if i < len(s) && s[i].VA == va {
		return i
	}
	return -1
}

// At returns the instruction starting at va.
func (s Stream) At(va uint64) (Inst, bool) {
	i := s.IndexOf(va)
	if i < 0 {
		return Inst{}, false
	}
	return s[i], true
}

// Before returns the instruction immediately preceding the one at va.
func (s Stream) Before(va uint64) (Inst, bool) {
	i := s.IndexOf(va)
	if i <= 0 {
		return Inst{}, false
	}
	return s[i-1], true
}
