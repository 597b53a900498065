package imagedb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"golabel/internal/disasm"
)

func testDB() *DB {
	return newDB(disasm.Stream{
		{VA: 0x4000, Len: 5, Class: disasm.ClassPush, Imm: 0x3000, HasImm: true},
		{VA: 0x4005, Len: 5, Class: disasm.ClassCall, Target: 0x5000, HasTarget: true},
		{VA: 0x400a, Len: 5, Class: disasm.ClassCall, Target: 0x5000, HasTarget: true},
		{VA: 0x400f, Len: 2, Class: disasm.ClassJump, Target: 0x4000, HasTarget: true},
	})
}

func TestCodeRefs(t *testing.T) {
	db := testDB()

	require.Equal(t, []uint64{0x4005, 0x400a}, db.CodeRefsTo(0x5000))
	require.Equal(t, []uint64{0x400f}, db.CodeRefsTo(0x4000))
	require.Empty(t, db.CodeRefsTo(0x6000))
}

func TestInstructionLookup(t *testing.T) {
	db := testDB()

	inst, ok := db.InstructionAt(0x4005)
	require.True(t, ok)
	require.Equal(t, disasm.ClassCall, inst.Class)

	prev, ok := db.InstructionBefore(0x4005)
	require.True(t, ok)
	require.Equal(t, uint64(0x4000), prev.VA)

	_, ok = db.InstructionBefore(0x4000)
	require.False(t, ok)
}

func TestCreateFunctionIdempotent(t *testing.T) {
	db := testDB()

	require.False(t, db.HasFunctionAt(0x2000))
	db.CreateFunction(0x2000)
	require.True(t, db.HasFunctionAt(0x2000))

	db.DefineFunctionSymbol(0x2000, "go.main.foo")
	db.CreateFunction(0x2000) // must not clobber the name

	name, ok := db.FunctionName(0x2000)
	require.True(t, ok)
	require.Equal(t, "go.main.foo", name)
}

func TestDefineSymbolOverwrites(t *testing.T) {
	db := testDB()

	db.DefineDataSymbol(0x3000, "fptr_a")
	db.DefineDataSymbol(0x3000, "fptr_b")

	name, ok := db.SymbolAt(0x3000)
	require.True(t, ok)
	require.Equal(t, "fptr_b", name)

	// The stale name no longer resolves.
	_, ok = db.SymbolByName("fptr_a")
	require.False(t, ok)
	va, ok := db.SymbolByName("fptr_b")
	require.True(t, ok)
	require.Equal(t, uint64(0x3000), va)
}

func TestSymbolsSorted(t *testing.T) {
	db := testDB()
	db.DefineDataSymbol(0x3000, "b")
	db.DefineDataSymbol(0x1000, "a")
	db.DefineDataSymbol(0x2000, "c")

	syms := db.Symbols()
	require.Len(t, syms, 3)
	require.Equal(t, uint64(0x1000), syms[0].Addr)
	require.Equal(t, uint64(0x2000), syms[1].Addr)
	require.Equal(t, uint64(0x3000), syms[2].Addr)
}

func TestFunctionNameUnnamed(t *testing.T) {
	db := testDB()
	db.CreateFunction(0x2000)

	_, ok := db.FunctionName(0x2000)
	require.False(t, ok)
}
