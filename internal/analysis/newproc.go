package analysis

import (
	"fmt"
	"log/slog"

	"golabel/internal/disasm"
)

// NewprocSymbol is the renamed scheduler entry point that starts a new
// goroutine. The function rename pass must have run for it to exist.
const NewprocSymbol = "go.runtime.newproc"

// OperandRecovery recovers the goroutine function-pointer argument at a
// scheduler call site. Implementations are architecture- and
// calling-convention-specific.
type OperandRecovery interface {
	// RecoverPointer inspects the instructions preceding the call at callVA
	// and returns the constant believed to hold the function pointer.
	RecoverPointer(db Database, callVA uint64) (uint64, bool)
}

// PushPairRecovery implements the stack-argument heuristic: walking
// backward from the call, the two most recent instructions must both be
// pushes, and the function pointer is the constant source of the second
// one. This matches a push-based 32/64-bit x86 calling convention and is
// known not to hold on register-argument architectures.
type PushPairRecovery struct {
	// Lookback bounds the backward instruction walk from the call site.
	// Zero means the default bound.
	Lookback int
}

const defaultLookback = 7

func (p PushPairRecovery) RecoverPointer(db Database, callVA uint64) (uint64, bool) {
	lookback := p.Lookback
	if lookback <= 0 {
		lookback = defaultLookback
	}

	var pushes []disasm.Inst
	va := callVA
	for i := 0; i < lookback && len(pushes) < 2; i++ {
		inst, ok := db.InstructionBefore(va)
		if !ok {
			return 0, false
		}
		slog.Debug("instruction", "offset", -(i + 1), "text", inst.Text)
		if inst.Class != disasm.ClassPush {
			// An intervening non-push means the arguments were not set up
			// the way this heuristic expects.
			return 0, false
		}
		pushes = append(pushes, inst)
		va = inst.VA
	}
	if len(pushes) < 2 {
		return 0, false
	}

	// The function pointer is pushed before the argument size, so it is the
	// second push collected walking backward.
	fptr := pushes[1]
	if !fptr.HasImm {
		return 0, false
	}
	return fptr.Imm, true
}

// RenameNewprocPointers finds call sites of the scheduler entry point and
// labels the function-pointer argument passed at each one with a
// fptr_-prefixed data symbol. Best effort: a site that does not match the
// strategy's pattern is discarded silently. It returns the number of
// pointers labeled.
func RenameNewprocPointers(r *Reader, db Database, strat OperandRecovery) (int, error) {
	newprocVA, ok := db.SymbolByName(NewprocSymbol)
	if !ok {
		return 0, fmt.Errorf("symbol %s not found (run the function rename pass first)", NewprocSymbol)
	}

	renamed := 0
	for _, site := range db.CodeRefsTo(newprocVA) {
		slog.Info("found xref", "addr", hexAddr(site))

		inst, ok := db.InstructionAt(site)
		if !ok || inst.Class != disasm.ClassCall {
			slog.Debug("not a call instruction", "addr", hexAddr(site))
			continue
		}

		fptr, ok := strat.RecoverPointer(db, site)
		if !ok || fptr == 0 {
			continue
		}
		slog.Info("found call to newproc", "call", hexAddr(site), "fptr", hexAddr(fptr))

		if _, taken := db.SymbolAt(fptr); taken {
			continue
		}
		// The recovered constant is a slot holding a pointer to the
		// goroutine function; follow the indirection to name the slot
		// after its target.
		target, ok := r.ReadPointer(fptr)
		if !ok {
			continue
		}
		name, ok := db.FunctionName(target)
		if !ok {
			continue
		}
		db.DefineDataSymbol(fptr, "fptr_"+SanitizeVarName(name))
		renamed++
	}

	slog.Info("renamed function pointers passed to newproc", "count", renamed)
	return renamed, nil
}
