// Package program describes the embedded programs compiled for the simulated cores and derives
// their memory metadata from the cross-toolchain output.
package program

import (
	"path"
	"strings"
)

const (
	ObjectSuffix      = ".o"
	BinarySuffix      = ".bin"
	MemorySuffix      = ".mem"
	DisassemblySuffix = ".s"
	SymbolsSuffix     = ".symbols"
)

// Program is an embedded program built from assembly and C sources.
type Program struct {
	Name         string
	Sources      []string
	LinkerScript string
	IncludeDirs  []string
	Opt          string
}

// Programs is an ordered list of programs, in declaration order.
type Programs []*Program

// Find returns the program with the given name.
func (programs Programs) Find(name string) *Program {
	for _, program := range programs {
		if program.Name == name {
			return program
		}
	}

	return nil
}

// IsAssembly reports whether the source is assembled rather than compiled.
func IsAssembly(source string) bool {
	ext := path.Ext(source)
	return ext == ".s" || ext == ".S"
}

// Layout computes the artifact paths of a program inside a build directory.
type Layout struct {
	BuildDir string
}

// Object returns the object file path of one source of the program.
func (layout Layout) Object(program *Program, source string) string {
	return path.Join(layout.BuildDir, program.Name, strings.TrimSuffix(source, path.Ext(source))+ObjectSuffix)
}

// Linked returns the path of the linked program.
func (layout Layout) Linked(program *Program) string {
	return layout.artifact(program, ObjectSuffix)
}

// Binary returns the path of the raw binary.
func (layout Layout) Binary(program *Program) string {
	return layout.artifact(program, BinarySuffix)
}

// Memory returns the path of the hex memory image.
func (layout Layout) Memory(program *Program) string {
	return layout.artifact(program, MemorySuffix)
}

// Disassembly returns the path of the disassembly text.
func (layout Layout) Disassembly(program *Program) string {
	return layout.artifact(program, DisassemblySuffix)
}

// Symbols returns the path of the symbol table text.
func (layout Layout) Symbols(program *Program) string {
	return layout.artifact(program, SymbolsSuffix)
}

func (layout Layout) artifact(program *Program, suffix string) string {
	return path.Join(layout.BuildDir, program.Name+suffix)
}
