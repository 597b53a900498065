// Package imagedb implements the analysis database over a loaded ELF image:
// symbols seeded from the ELF symbol tables, plus an instruction index and
// code cross-references built by a linear sweep of the text section.
package imagedb

import (
	"debug/elf"
	"log/slog"
	"sort"

	"golabel/internal/disasm"
	"golabel/internal/elfx"
	"golabel/internal/logging"
)

// DB is an in-memory analysis store. It is not safe for concurrent writers;
// a run mutates it from a single goroutine.
type DB struct {
	insts  disasm.Stream
	xrefs  map[uint64][]uint64
	funcs  map[uint64]string
	syms   map[uint64]string
	byName map[string]uint64
}

// New builds a database for img. Instruction indexing is only available for
// x86 targets; on other machines the database still carries symbols, which
// is all the function rename pass needs.
func New(img *elfx.Image) *DB {
	var insts disasm.Stream
	switch img.File.Machine {
	case elf.EM_X86_64, elf.EM_386:
		if code, ok := img.SliceVA(img.Text.VA, img.Text.Size); ok {
			insts = disasm.DecodeX86(code, img.Text.VA, img.PointerSize()*8)
		}
	default:
		slog.Debug("no instruction decoder for machine", "machine", img.File.Machine.String())
	}

	db := newDB(insts)
	for _, s := range img.Syms {
		db.syms[s.Addr] = s.Name
		db.byName[s.Name] = s.Addr
		if s.IsFunc {
			db.funcs[s.Addr] = s.Name
		}
	}

	if logging.IsDebug() {
		lg := logging.NewLogger()
		lg.Debug("image database built",
			"instructions", len(db.insts),
			"xref targets", len(db.xrefs),
			"symbols", len(db.syms))
	}
	return db
}

func newDB(insts disasm.Stream) *DB {
	db := &DB{
		insts:  insts,
		xrefs:  make(map[uint64][]uint64),
		funcs:  make(map[uint64]string),
		syms:   make(map[uint64]string),
		byName: make(map[string]uint64),
	}
	for _, inst := range insts {
		if inst.HasTarget {
			db.xrefs[inst.Target] = append(db.xrefs[inst.Target], inst.VA)
		}
	}
	return db
}

func (db *DB) HasFunctionAt(va uint64) bool {
	_, ok := db.funcs[va]
	return ok
}

func (db *DB) CreateFunction(va uint64) {
	if _, ok := db.funcs[va]; ok {
		return
	}
	db.funcs[va] = ""
}

func (db *DB) FunctionName(va uint64) (string, bool) {
	name, ok := db.funcs[va]
	if !ok {
		return "", false
	}
	if sym, ok := db.syms[va]; ok {
		return sym, true
	}
	return name, name != ""
}

func (db *DB) DefineFunctionSymbol(va uint64, name string) {
	db.funcs[va] = name
	db.defineSymbol(va, name)
}

func (db *DB) DefineDataSymbol(va uint64, name string) {
	db.defineSymbol(va, name)
}

func (db *DB) defineSymbol(va uint64, name string) {
	if old, ok := db.syms[va]; ok {
		delete(db.byName, old)
	}
	db.syms[va] = name
	db.byName[name] = va
}

func (db *DB) SymbolAt(va uint64) (string, bool) {
	name, ok := db.syms[va]
	return name, ok
}

func (db *DB) SymbolByName(name string) (uint64, bool) {
	va, ok := db.byName[name]
	return va, ok
}

func (db *DB) CodeRefsTo(va uint64) []uint64 {
	return db.xrefs[va]
}

func (db *DB) InstructionAt(va uint64) (disasm.Inst, bool) {
	return db.insts.At(va)
}

func (db *DB) InstructionBefore(va uint64) (disasm.Inst, bool) {
	return db.insts.Before(va)
}

// Symbol is one named address, reported in address order.
type Symbol struct {
	Addr uint64
	Name string
}

// Symbols returns every symbol currently defined, sorted by address.
func (db *DB) Symbols() []Symbol {
	out := make([]Symbol, 0, len(db.syms))
	for va, name := range db.syms {
		out = append(out, Symbol{Addr: va, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Addr < out[j].Addr })
	return out
}
