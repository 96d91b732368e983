package config

import (
	"fmt"
	"reflect"
)

// ConfigNotFoundError is returned when no project file exists in the working directory or its parents.
type ConfigNotFoundError struct {
	WorkingDir string
	Filename   string
}

func (err ConfigNotFoundError) Error() string {
	return fmt.Sprintf("Could not find %s in %s or any of its parent folders", err.Filename, err.WorkingDir)
}

// NoSourceRootsError is returned when the project declares no source roots.
type NoSourceRootsError string

func (err NoSourceRootsError) Error() string {
	return "No source_roots configured in " + string(err)
}

// DuplicateProgramError is returned when two program blocks share a name.
type DuplicateProgramError string

func (err DuplicateProgramError) Error() string {
	return fmt.Sprintf("Program %q is declared more than once", string(err))
}

// DuplicateTopLevelError is returned when two top_level blocks name the same module.
type DuplicateTopLevelError string

func (err DuplicateTopLevelError) Error() string {
	return fmt.Sprintf("Top-level module %q is declared more than once", string(err))
}

// UnknownProgramError is returned when a top_level block binds to an undeclared program.
type UnknownProgramError struct {
	TopLevel string
	Program  string
}

func (err UnknownProgramError) Error() string {
	return fmt.Sprintf("Top-level module %s uses program %q which is not declared", err.TopLevel, err.Program)
}

// PanicWhileParsingConfigError wraps a panic raised by the HCL decoder.
type PanicWhileParsingConfigError struct {
	ConfigFile     string
	RecoveredValue any
}

func (err PanicWhileParsingConfigError) Error() string {
	return fmt.Sprintf("Recovering panic while parsing '%s'. Got error of type '%v': %v", err.ConfigFile, reflect.TypeOf(err.RecoveredValue), err.RecoveredValue)
}
