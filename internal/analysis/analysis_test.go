package analysis

import (
	"bytes"
	"encoding/binary"
	"sort"

	"golabel/internal/disasm"
)

// fakeSpace is a sparse address space assembled from mapped segments.
// Reads touching any unmapped byte fail.
type fakeSpace struct {
	segs     []fakeSeg
	sections map[string]uint64
}

type fakeSeg struct {
	base uint64
	data []byte
}

func (f *fakeSpace) add(base uint64, data []byte) {
	f.segs = append(f.segs, fakeSeg{base: base, data: data})
	sort.Slice(f.segs, func(i, j int) bool { return f.segs[i].base < f.segs[j].base })
}

func (f *fakeSpace) ReadAt(va uint64, n int) ([]byte, bool) {
	for _, s := range f.segs {
		if va >= s.base && va+uint64(n) <= s.base+uint64(len(s.data)) {
			off := va - s.base
			return s.data[off : off+uint64(n)], true
		}
	}
	return nil, false
}

func (f *fakeSpace) SectionStart(name string) (uint64, bool) {
	va, ok := f.sections[name]
	return va, ok
}

func (f *fakeSpace) FindPattern(start uint64, pattern []byte) (uint64, bool) {
	for _, s := range f.segs {
		data := s.data
		base := s.base
		if base+uint64(len(data)) <= start {
			continue
		}
		if start > base {
			data = data[start-base:]
			base = start
		}
		if idx := bytes.Index(data, pattern); idx >= 0 {
			return base + uint64(idx), true
		}
	}
	return 0, false
}

// fakeDB records mutations for assertions.
type fakeDB struct {
	funcs    map[uint64]string
	syms     map[uint64]string
	byName   map[string]uint64
	xrefs    map[uint64][]uint64
	insts    disasm.Stream
	funcSyms int // DefineFunctionSymbol calls
	dataSyms int // DefineDataSymbol calls
	created  int // CreateFunction calls
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		funcs:  make(map[uint64]string),
		syms:   make(map[uint64]string),
		byName: make(map[string]uint64),
		xrefs:  make(map[uint64][]uint64),
	}
}

func (db *fakeDB) HasFunctionAt(va uint64) bool {
	_, ok := db.funcs[va]
	return ok
}

func (db *fakeDB) CreateFunction(va uint64) {
	db.created++
	if _, ok := db.funcs[va]; !ok {
		db.funcs[va] = ""
	}
}

func (db *fakeDB) FunctionName(va uint64) (string, bool) {
	name, ok := db.funcs[va]
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

func (db *fakeDB) DefineFunctionSymbol(va uint64, name string) {
	db.funcSyms++
	db.funcs[va] = name
	db.syms[va] = name
	db.byName[name] = va
}

func (db *fakeDB) DefineDataSymbol(va uint64, name string) {
	db.dataSyms++
	db.syms[va] = name
	db.byName[name] = va
}

func (db *fakeDB) SymbolAt(va uint64) (string, bool) {
	name, ok := db.syms[va]
	return name, ok
}

func (db *fakeDB) SymbolByName(name string) (uint64, bool) {
	va, ok := db.byName[name]
	return va, ok
}

func (db *fakeDB) CodeRefsTo(va uint64) []uint64 {
	return db.xrefs[va]
}

func (db *fakeDB) InstructionAt(va uint64) (disasm.Inst, bool) {
	return db.insts.At(va)
}

func (db *fakeDB) InstructionBefore(va uint64) (disasm.Inst, bool) {
	return db.insts.Before(va)
}

// tableFunc describes one function for buildTable.
type tableFunc struct {
	addr uint64
	name string
}

// buildTable lays out a go1.2-style function table for an 8-byte pointer
// width: header magic, raw size at +8, (funcAddr, entryOff) records from
// +16, per-function metadata blobs, then the name strings.
func buildTable(funcs []tableFunc) []byte {
	const ptr = 8
	n := len(funcs)

	headerEnd := 16 + n*2*ptr
	metaStart := headerEnd
	namesStart := metaStart + n*16

	size := namesStart
	for _, f := range funcs {
		size += len(f.name) + 1
	}
	buf := make([]byte, size)

	copy(buf, []byte{0xfb, 0xff, 0xff, 0xff, 0x00, 0x00, 0x01, 0x08})
	binary.LittleEndian.PutUint64(buf[8:], uint64(n*2*ptr))

	nameOff := namesStart
	for i, f := range funcs {
		entryOff := metaStart + i*16
		binary.LittleEndian.PutUint64(buf[16+i*2*ptr:], f.addr)
		binary.LittleEndian.PutUint64(buf[16+i*2*ptr+ptr:], uint64(entryOff))

		// Metadata blob: function entry pointer, then the 4-byte name
		// string offset the walker reads.
		binary.LittleEndian.PutUint64(buf[entryOff:], f.addr)
		binary.LittleEndian.PutUint32(buf[entryOff+ptr:], uint32(nameOff))

		copy(buf[nameOff:], f.name)
		nameOff += len(f.name) + 1
	}
	return buf
}

func mustReader(space AddressSpace) *Reader {
	r, err := NewReader(space, 8)
	if err != nil {
		panic(err)
	}
	return r
}
