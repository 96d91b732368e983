// Package manifest reads the per-module class manifest (`V<name>_classes.mk`) written by the translator.
package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/geckorv/hdlbuild/internal/errors"
)

// Category is one of the file lists declared in a manifest.
type Category string

const (
	ClassesFast Category = "VM_CLASSES_FAST"
	ClassesSlow Category = "VM_CLASSES_SLOW"
	SupportFast Category = "VM_SUPPORT_FAST"
	SupportSlow Category = "VM_SUPPORT_SLOW"
	GlobalFast  Category = "VM_GLOBAL_FAST"
	GlobalSlow  Category = "VM_GLOBAL_SLOW"
)

// Categories lists the categories in compile order, fast ones first.
var Categories = []Category{ClassesFast, SupportFast, GlobalFast, ClassesSlow, SupportSlow, GlobalSlow}

// IsFast reports whether files of the category are compiled with optimizations.
func (category Category) IsFast() bool {
	return strings.HasSuffix(string(category), "_FAST")
}

// IsGlobal reports whether files of the category are shared runtime sources rather than generated ones.
func (category Category) IsGlobal() bool {
	return strings.HasPrefix(string(category), "VM_GLOBAL_")
}

// Manifest maps categories onto the base names of their files, in declaration order.
type Manifest map[Category][]string

// Filename returns the manifest name the translator writes for a module prefix.
func Filename(name string) string {
	return fmt.Sprintf("V%s_classes.mk", name)
}

// Source is one C++ file to compile.
type Source struct {
	Category Category
	// Path is the C++ source file.
	Path string
	// Name is the base name without suffix.
	Name string
}

// Sources returns the source files of all categories in compile order. Generated files live in genDir,
// global files in `<runtimeRoot>/include`.
func (manifest Manifest) Sources(genDir, runtimeRoot string) []Source {
	var sources []Source

	for _, category := range Categories {
		for _, name := range manifest[category] {
			dir := genDir
			if category.IsGlobal() {
				dir = path.Join(runtimeRoot, "include")
			}

			sources = append(sources, Source{
				Category: category,
				Path:     path.Join(dir, name+".cpp"),
				Name:     name,
			})
		}
	}

	return sources
}

// ParseError is returned when a manifest cannot be read.
type ParseError struct {
	Path string
	Err  error
}

func (err ParseError) Error() string {
	return fmt.Sprintf("Failed to read manifest %s: %v", err.Path, err.Err)
}

func (err ParseError) Unwrap() error {
	return err.Err
}

// ParseFile parses the manifest at the given path.
func ParseFile(filename string) (Manifest, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.New(ParseError{Path: filename, Err: err})
	}
	defer file.Close() //nolint:errcheck

	manifest, err := Parse(file)
	if err != nil {
		return nil, errors.New(ParseError{Path: filename, Err: err})
	}

	return manifest, nil
}

// Parse reads make-style `CATEGORY += a b \` assignments. Lines ending with a backslash continue on the
// next line, `#` lines are comments, and assignments to other variables are ignored.
func Parse(reader io.Reader) (Manifest, error) {
	manifest := make(Manifest)

	lines, err := logicalLines(reader)
	if err != nil {
		return nil, err
	}

	for _, line := range lines {
		name, values, ok := splitAssignment(line)
		if !ok {
			continue
		}

		category := Category(name)

		files := strings.Fields(values)
		if !isKnown(category) || len(files) == 0 {
			continue
		}

		manifest[category] = append(manifest[category], files...)
	}

	return manifest, nil
}

func logicalLines(reader io.Reader) ([]string, error) {
	var (
		lines   []string
		current strings.Builder
		partial bool
	)

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if !partial && strings.HasPrefix(line, "#") {
			continue
		}

		var continues bool

		line, continues = strings.CutSuffix(line, "\\")

		if partial {
			current.WriteByte(' ')
		}

		current.WriteString(line)

		partial = continues
		if !partial {
			lines = append(lines, current.String())
			current.Reset()
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.New(err)
	}

	if current.Len() > 0 {
		lines = append(lines, current.String())
	}

	return lines, nil
}

// splitAssignment splits `NAME = values`, `NAME += values` and `NAME := values`.
func splitAssignment(line string) (string, string, bool) {
	index := strings.IndexByte(line, '=')
	if index <= 0 {
		return "", "", false
	}

	name := strings.TrimRight(line[:index], "+:")

	return strings.TrimSpace(name), line[index+1:], true
}

func isKnown(category Category) bool {
	for _, known := range Categories {
		if known == category {
			return true
		}
	}

	return false
}
