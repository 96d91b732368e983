package graph

// Kind is the closed set of build step kinds.
type Kind byte

const (
	// Lint checks a source module without producing generated code.
	Lint Kind = iota + 1
	// Translate turns a top-level module into generated C++ code.
	Translate
	// Merge synchronizes generated code into the artifact store.
	Merge
	// Compile turns one source file into an object.
	Compile
	// Assemble turns one assembly file into an object.
	Assemble
	// Link combines objects into a program or an executable.
	Link
	// Objcopy extracts the raw binary of a linked program.
	Objcopy
	// Disassemble writes the disassembly of a linked program.
	Disassemble
	// Symbols writes the symbol table of a linked program.
	Symbols
)

var kindNames = map[Kind]string{
	Lint:        "lint",
	Translate:   "translate",
	Merge:       "merge",
	Compile:     "compile",
	Assemble:    "assemble",
	Link:        "link",
	Objcopy:     "objcopy",
	Disassemble: "disassemble",
	Symbols:     "symbols",
}

// AllKinds lists every kind in declaration order.
var AllKinds = []Kind{Lint, Translate, Merge, Compile, Assemble, Link, Objcopy, Disassemble, Symbols}

func (kind Kind) String() string {
	if name, ok := kindNames[kind]; ok {
		return name
	}

	return "unknown"
}
