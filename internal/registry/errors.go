package registry

import (
	"fmt"
	"strings"
)

// DuplicateModuleError is returned when the same module identifier is discovered under more than one source root.
type DuplicateModuleError struct {
	Path  string
	Roots []string
}

func (err DuplicateModuleError) Error() string {
	return fmt.Sprintf("Module %s was found in more than one source root: %s", err.Path, strings.Join(err.Roots, ", "))
}

// SourceRootNotFoundError is returned when a configured source root is not a directory.
type SourceRootNotFoundError struct {
	Root string
}

func (err SourceRootNotFoundError) Error() string {
	return fmt.Sprintf("Source root %s does not exist or is not a directory", err.Root)
}
