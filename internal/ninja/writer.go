// Package ninja writes build files for the ninja build system and expands their command templates.
package ninja

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/geckorv/hdlbuild/internal/errors"
)

const indent = "  "

// Rule is a named command template.
type Rule struct {
	Name        string
	Command     string
	Description string
	Depfile     string
	Deps        string
	Restat      bool
}

// Build is a build statement.
type Build struct {
	Outputs   []string
	Rule      string
	Inputs    []string
	Implicit  []string
	OrderOnly []string
	Variables map[string]string
}

// Writer emits ninja syntax. The first write error is kept and returned by Err, later calls do nothing.
type Writer struct {
	out io.Writer
	err error
}

func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Err returns the first error encountered while writing.
func (writer *Writer) Err() error {
	return writer.err
}

// Comment writes a `#` comment line.
func (writer *Writer) Comment(text string) {
	for _, line := range strings.Split(text, "\n") {
		writer.line("# " + line)
	}
}

// Newline writes an empty line.
func (writer *Writer) Newline() {
	writer.line("")
}

// Variable writes a `key = value` binding. Empty values are skipped.
func (writer *Writer) Variable(key, value string, depth int) {
	if value == "" {
		return
	}

	writer.line(strings.Repeat(indent, depth) + key + " = " + value)
}

// Rule writes a rule declaration.
func (writer *Writer) Rule(rule Rule) {
	writer.line("rule " + rule.Name)
	writer.Variable("command", rule.Command, 1)
	writer.Variable("description", rule.Description, 1)
	writer.Variable("depfile", rule.Depfile, 1)
	writer.Variable("deps", rule.Deps, 1)

	if rule.Restat {
		writer.Variable("restat", "1", 1)
	}
}

// Build writes a build statement with its variables in sorted order.
func (writer *Writer) Build(build Build) {
	parts := []string{"build"}
	parts = append(parts, escapePaths(build.Outputs)...)

	parts[len(parts)-1] += ":"
	parts = append(parts, build.Rule)
	parts = append(parts, escapePaths(build.Inputs)...)

	if len(build.Implicit) > 0 {
		parts = append(parts, "|")
		parts = append(parts, escapePaths(build.Implicit)...)
	}

	if len(build.OrderOnly) > 0 {
		parts = append(parts, "||")
		parts = append(parts, escapePaths(build.OrderOnly)...)
	}

	writer.line(strings.Join(parts, " "))

	for _, key := range slices.Sorted(maps.Keys(build.Variables)) {
		writer.Variable(key, build.Variables[key], 1)
	}
}

func (writer *Writer) line(text string) {
	if writer.err != nil {
		return
	}

	if _, err := fmt.Fprintln(writer.out, text); err != nil {
		writer.err = errors.New(err)
	}
}

// EscapePath escapes `$`, spaces and colons in a path used in a build line.
func EscapePath(path string) string {
	return pathEscaper.Replace(path)
}

// Escape escapes `$` in a variable value.
func Escape(value string) string {
	return strings.ReplaceAll(value, "$", "$$")
}

var pathEscaper = strings.NewReplacer("$", "$$", " ", "$ ", ":", "$:")

func escapePaths(paths []string) []string {
	escaped := make([]string, len(paths))

	for i, path := range paths {
		escaped[i] = EscapePath(path)
	}

	return escaped
}
