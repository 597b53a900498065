package analysis

import (
	"fmt"
	"log/slog"
)

// minNameLen rejects one- and two-character names; real table names are
// always package-qualified and longer.
const minNameLen = 3

// RenameFunctions locates the runtime function table, walks it, and defines
// a go.-prefixed function symbol for every record with a usable name,
// creating functions that do not exist yet. It returns the number of
// functions renamed. Locating no table is fatal; everything past that point
// skips bad records and keeps going.
func RenameFunctions(r *Reader, db Database) (int, error) {
	slog.Info("renaming functions based on the runtime function table")

	base, err := LocatePclntab(r.Space())
	if err != nil {
		return 0, err
	}

	renamed := 0
	for entry := range WalkPclntab(r, base) {
		if entry.Name == "" {
			slog.Debug("record without a name", "entry", hexAddr(entry.EntryAddr))
			continue
		}
		if !NameFunction(db, entry.FuncAddr, entry.Name) {
			slog.Warn("not using function name",
				"name", entry.Name,
				"func", hexAddr(entry.FuncAddr),
				"entry", hexAddr(entry.EntryAddr),
				"nameAddr", hexAddr(entry.NameAddr))
			continue
		}
		renamed++
	}

	slog.Info("renamed go functions", "count", renamed)
	return renamed, nil
}

// NameFunction ensures a function exists at addr and assigns it the
// sanitized, go.-prefixed symbol name. Names shorter than three characters
// after sanitization are rejected with no database mutation. The call is
// idempotent: renaming the same address with the same name twice leaves the
// same end state as once.
func NameFunction(db Database, addr uint64, rawName string) bool {
	name := SanitizeFuncName(rawName)
	if len(name) < minNameLen {
		return false
	}
	if !db.HasFunctionAt(addr) {
		db.CreateFunction(addr)
	}
	db.DefineFunctionSymbol(addr, GoFuncPrefix+name)
	return true
}

func hexAddr(va uint64) string {
	return fmt.Sprintf("0x%x", va)
}
