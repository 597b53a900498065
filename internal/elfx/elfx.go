// Package elfx provides helpers for opening ELF binaries, locating sections,
// and mapping virtual addresses to file offsets.
package elfx

import (
	"bytes"
	"debug/elf"
	"fmt"
	"os"
	"syscall"
)

type Image struct {
	Path     string
	File     *elf.File
	All      []byte
	Loads    []Seg
	Text     Section
	Sections map[string]Section
	Syms     []Sym
	f        *os.File
}

type Seg struct {
	Vaddr, Off, Filesz uint64
	Flags              elf.ProgFlag
}

type Section struct {
	Name          string
	VA, Off, Size uint64
}

type Sym struct {
	Name   string
	Addr   uint64
	IsFunc bool
}

func Open(path string) (*Image, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open elf: %w", err)
	}

	of, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open file: %w", err)
	}

	fi, err := of.Stat()
	if err != nil {
		of.Close()
		f.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}

	all, err := syscall.Mmap(int(of.Fd()), 0, int(fi.Size()), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		of.Close()
		f.Close()
		return nil, fmt.Errorf("mmap file: %w", err)
	}

	im := &Image{Path: path, File: f, All: all, Sections: make(map[string]Section), f: of}
	for _, p := range f.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		im.Loads = append(im.Loads, Seg{
			Vaddr:  uint64(p.Vaddr),
			Off:    uint64(p.Off),
			Filesz: uint64(p.Filesz),
			Flags:  p.Flags,
		})
	}

	for _, s := range f.Sections {
		if s.Name == "" || s.Type == elf.SHT_NOBITS {
			continue
		}
		sec := Section{s.Name, s.Addr, s.Offset, s.Size}
		im.Sections[s.Name] = sec
		if s.Name == ".text" {
			im.Text = sec
		}
	}

	im.loadSymbols()

	// Fallback if stripped.
	if im.Text.Size == 0 {
		for _, l := range im.Loads {
			if l.Flags&elf.PF_X != 0 && l.Filesz > 0 {
				im.Text = Section{"LOAD(exec)", l.Vaddr, l.Off, l.Filesz}
				break
			}
		}
	}
	return im, nil
}

// loadSymbols merges the static and dynamic symbol tables. Either table may
// be absent in stripped binaries.
func (im *Image) loadSymbols() {
	add := func(syms []elf.Symbol) {
		for _, s := range syms {
			if s.Name == "" || s.Value == 0 {
				continue
			}
			im.Syms = append(im.Syms, Sym{
				Name:   s.Name,
				Addr:   s.Value,
				IsFunc: elf.ST_TYPE(s.Info) == elf.STT_FUNC,
			})
		}
	}
	if syms, err := im.File.Symbols(); err == nil {
		add(syms)
	}
	if dynsyms, err := im.File.DynamicSymbols(); err == nil {
		add(dynsyms)
	}
}

// Close unmaps the memory and closes the underlying files.
func (im *Image) Close() error {
	var err1, err2 error
	if im.All != nil {
		err1 = syscall.Munmap(im.All)
		im.All = nil
	}
	if im.f != nil {
		err2 = im.f.Close()
		im.f = nil
	}
	if im.File != nil {
		err3 := im.File.Close()
		if err3 != nil && err2 == nil {
			err2 = err3
		}
		im.File = nil
	}
	if err1 != nil {
		return err1
	}
	return err2
}

// PointerSize returns the target's pointer width in bytes.
func (im *Image) PointerSize() int {
	if im.File.Class == elf.ELFCLASS64 {
		return 8
	}
	return 4
}

// VA2Off translates a virtual address into a file offset
// using PT_LOAD segments. It returns false if VA is unmapped.
func (im *Image) VA2Off(va uint64) (uint64, bool) {
	for _, l := range im.Loads {
		if va >= l.Vaddr && va < l.Vaddr+l.Filesz {
			return l.Off + (va - l.Vaddr), true
		}
	}
	return 0, false
}

// SliceVA returns a subslice of the mapped file corresponding to the virtual
// address range [va, va+size). It returns (nil, false) if the VA is unmapped
// or the range is out of bounds.
func (im *Image) SliceVA(va uint64, size uint64) ([]byte, bool) {
	off, ok := im.VA2Off(va)
	if !ok {
		return nil, false
	}
	if size == 0 {
		return []byte{}, true
	}
	end := off + size
	if end > uint64(len(im.All)) {
		return nil, false
	}
	return im.All[off:end], true
}

// ReadAt reads n bytes at virtual address va. The read fails if any part of
// the range is unmapped.
func (im *Image) ReadAt(va uint64, n int) ([]byte, bool) {
	return im.SliceVA(va, uint64(n))
}

// SectionStart returns the start address of the named section.
func (im *Image) SectionStart(name string) (uint64, bool) {
	sec, ok := im.Sections[name]
	if !ok {
		return 0, false
	}
	return sec.VA, true
}

// FindPattern scans the loaded segments in ascending virtual-address order
// for the first occurrence of pattern at or after start.
func (im *Image) FindPattern(start uint64, pattern []byte) (uint64, bool) {
	best := uint64(0)
	found := false
	for _, l := range im.Loads {
		off := l.Off
		size := l.Filesz
		va := l.Vaddr
		if va+size <= start {
			continue
		}
		if start > va {
			off += start - va
			size -= start - va
			va = start
		}
		if off+size > uint64(len(im.All)) {
			continue
		}
		idx := bytes.Index(im.All[off:off+size], pattern)
		if idx < 0 {
			continue
		}
		hit := va + uint64(idx)
		if !found || hit < best {
			best = hit
			found = true
		}
	}
	return best, found
}
