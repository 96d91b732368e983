// Package directive parses the leading comment block of a hardware source file.
//
// The block is a contiguous run of `//!include`, `//!import`, `//!wrapper` and `//!no_lint`
// lines, optionally separated by blank lines. The first other line ends the block.
package directive

import (
	"bufio"
	"io"
	"os"
	"path"
	"strings"

	"github.com/geckorv/hdlbuild/internal/errors"
)

const (
	IncludePrefix = "//!include"
	ImportPrefix  = "//!import"
	WrapperPrefix = "//!wrapper"
	NoLintMarker  = "//!no_lint"

	DefaultRTLDir     = "rtl"
	DefaultWrapperDir = "wrappers"
)

// Directives are the relationships a module declares about itself.
type Directives struct {
	// Includes are header references, prefixed with the RTL directory.
	Includes []string
	// Imports are source references, prefixed with the RTL directory.
	Imports []string
	// Wrapper is the wrapper reference, prefixed with the wrapper directory. Empty if none.
	Wrapper string
	// NoLint marks the module as exempt from the lint step.
	NoLint bool
}

// Parser turns directive references into root-relative paths.
type Parser struct {
	rtlDir     string
	wrapperDir string
}

// Option configures a Parser.
type Option func(*Parser)

// WithRTLDir sets the directory include and import references are relative to.
func WithRTLDir(dir string) Option {
	return func(parser *Parser) {
		parser.rtlDir = dir
	}
}

// WithWrapperDir sets the directory wrapper references are relative to.
func WithWrapperDir(dir string) Option {
	return func(parser *Parser) {
		parser.wrapperDir = dir
	}
}

// NewParser returns a Parser with the default `rtl` and `wrappers` directories.
func NewParser(opts ...Option) *Parser {
	parser := &Parser{
		rtlDir:     DefaultRTLDir,
		wrapperDir: DefaultWrapperDir,
	}

	for _, opt := range opts {
		opt(parser)
	}

	return parser
}

// ParseFile parses the directive block of the file at the given path.
func (parser *Parser) ParseFile(filename string) (*Directives, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.New(err)
	}
	defer file.Close() //nolint:errcheck

	return parser.Parse(file)
}

// Parse reads lines until the end of the directive block. Only read failures are returned as errors,
// references are not checked here.
func (parser *Parser) Parse(reader io.Reader) (*Directives, error) {
	directives := &Directives{}

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")

		if line == "" {
			continue
		}

		if !parser.parseLine(directives, line) {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.New(err)
	}

	return directives, nil
}

func (parser *Parser) parseLine(directives *Directives, line string) bool {
	if strings.HasPrefix(line, NoLintMarker) {
		directives.NoLint = true
		return true
	}

	if ref, ok := reference(line, IncludePrefix); ok {
		directives.Includes = append(directives.Includes, path.Join(parser.rtlDir, ref))
		return true
	}

	if ref, ok := reference(line, ImportPrefix); ok {
		directives.Imports = append(directives.Imports, path.Join(parser.rtlDir, ref))
		return true
	}

	// A redeclared wrapper replaces the previous one.
	if ref, ok := reference(line, WrapperPrefix); ok {
		directives.Wrapper = path.Join(parser.wrapperDir, ref)
		return true
	}

	return false
}

// reference returns the argument of a `<prefix> <path>` line.
func reference(line, prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(line, prefix)
	if !ok || rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
		return "", false
	}

	ref := strings.TrimSpace(rest)
	if ref == "" {
		return "", false
	}

	return ref, true
}
