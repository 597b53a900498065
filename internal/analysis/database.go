package analysis

import "golabel/internal/disasm"

// Database is the analysis store the renaming passes mutate. Function
// creation and symbol definition are overwrite-style and idempotent; the
// store is assumed single-writer for the duration of a run.
type Database interface {
	// HasFunctionAt reports whether a function is defined at va.
	HasFunctionAt(va uint64) bool
	// CreateFunction defines a user function at va. Creating a function that
	// already exists is a no-op.
	CreateFunction(va uint64)
	// FunctionName returns the current name of the function at va.
	FunctionName(va uint64) (string, bool)
	// DefineFunctionSymbol names the function at va.
	DefineFunctionSymbol(va uint64, name string)
	// DefineDataSymbol names a pointer-sized data variable at va.
	DefineDataSymbol(va uint64, name string)
	// SymbolAt returns the symbol name at va, if any.
	SymbolAt(va uint64) (string, bool)
	// SymbolByName returns the address of the named symbol.
	SymbolByName(name string) (uint64, bool)
	// CodeRefsTo returns the addresses of instructions referencing va.
	CodeRefsTo(va uint64) []uint64
	// InstructionAt returns the decoded instruction starting at va.
	InstructionAt(va uint64) (disasm.Inst, bool)
	// InstructionBefore returns the decoded instruction immediately
	// preceding the one at va.
	InstructionBefore(va uint64) (disasm.Inst, bool)
}
