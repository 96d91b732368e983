package program

import (
	"bufio"
	"fmt"
	"io"
	"math/bits"
	"os"
	"strconv"
	"strings"

	"github.com/geckorv/hdlbuild/internal/errors"
)

// StackSymbol marks the top of the stack, its address is the memory size the program needs.
const StackSymbol = "__stack"

// Stats is the metadata derived from a built program.
type Stats struct {
	// BinarySize is the size of the raw binary in bytes.
	BinarySize int64
	// MemorySize is the number of bytes of memory the program requires.
	MemorySize uint64
	// AddressWidth is the minimal number of address bits to cover MemorySize.
	AddressWidth int
	// MemoryImage is the path of the generated hex memory image.
	MemoryImage string
}

func (stats *Stats) String() string {
	return fmt.Sprintf("%d bytes (binary), %d bytes (memory), %d bits (address)", stats.BinarySize, stats.MemorySize, stats.AddressWidth)
}

// MissingSymbolError is returned when the symbol table of a program has no stack symbol.
type MissingSymbolError struct {
	Program string
	Symbol  string
	Path    string
}

func (err MissingSymbolError) Error() string {
	return fmt.Sprintf("Program %s: symbol %s not found in %s", err.Program, err.Symbol, err.Path)
}

// AddressWidth returns ceil(log2(size)), the number of bits needed to address size bytes.
func AddressWidth(size uint64) int {
	if size <= 1 {
		return 0
	}

	return bits.Len64(size - 1)
}

// ParseStackAddress scans an `objdump -t` listing for the stack symbol and returns its address.
// The second return value is false if the symbol is absent.
func ParseStackAddress(reader io.Reader) (uint64, bool, error) {
	scanner := bufio.NewScanner(reader)

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || fields[len(fields)-1] != StackSymbol {
			continue
		}

		address, err := strconv.ParseUint(fields[0], 16, 64)
		if err != nil {
			return 0, false, errors.Errorf("invalid address %q of symbol %s: %w", fields[0], StackSymbol, err)
		}

		return address, true, nil
	}

	if err := scanner.Err(); err != nil {
		return 0, false, errors.New(err)
	}

	return 0, false, nil
}

// DeriveStats reads the symbol table of a built program, converts its raw binary into a memory image
// and returns the resulting metadata.
func DeriveStats(layout Layout, program *Program) (*Stats, error) {
	symbolsPath := layout.Symbols(program)

	file, err := os.Open(symbolsPath)
	if err != nil {
		return nil, errors.New(err)
	}
	defer file.Close() //nolint:errcheck

	memorySize, found, err := ParseStackAddress(file)
	if err != nil {
		return nil, err
	}

	if !found || memorySize == 0 {
		return nil, errors.New(MissingSymbolError{Program: program.Name, Symbol: StackSymbol, Path: symbolsPath})
	}

	binarySize, err := ConvertHexFile(layout.Binary(program), layout.Memory(program))
	if err != nil {
		return nil, err
	}

	return &Stats{
		BinarySize:   binarySize,
		MemorySize:   memorySize,
		AddressWidth: AddressWidth(memorySize),
		MemoryImage:  layout.Memory(program),
	}, nil
}
