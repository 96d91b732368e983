package emitter

import (
	"path"
	"strings"

	"github.com/geckorv/hdlbuild/internal/manifest"
)

const (
	ProgramsStage   = "programs"
	ModulesStage    = "modules"
	SimulatorsStage = "simulators"

	DriverDir    = "tb_cpp"
	DriverSuffix = "_tb.cpp"
)

// Layout computes the paths of the module and native stage artifacts inside the build directory.
// All paths are project-relative slash paths.
type Layout struct {
	BuildDir string
	RTLDir   string
}

// GraphFile returns the ninja file of a stage.
func (layout Layout) GraphFile(stage string) string {
	return path.Join(layout.BuildDir, stage+".ninja")
}

// LintLog returns the log file a lint or translate step writes for a module.
func (layout Layout) LintLog(modulePath string) string {
	return path.Join(layout.BuildDir, "lint", strings.TrimSuffix(modulePath, path.Ext(modulePath))+".log")
}

// GenDir returns the directory the translator writes the generated code of a module to.
func (layout Layout) GenDir(name string) string {
	return path.Join(layout.BuildDir, "verilated", name)
}

// Store returns the persistent artifact store the generated code is merged into.
func (layout Layout) Store() string {
	return path.Join(layout.BuildDir, "obj_dir")
}

// Manifest returns the merged class manifest of a module.
func (layout Layout) Manifest(name string) string {
	return path.Join(layout.Store(), manifest.Filename(name))
}

// Object returns the object file of a native source.
func (layout Layout) Object(source manifest.Source) string {
	return path.Join(layout.Store(), source.Name+".o")
}

// MergeStamp returns the stamp file touched after the generated code of a module was merged.
func (layout Layout) MergeStamp(name string) string {
	return path.Join(layout.BuildDir, "stamps", name+".merge")
}

// Simulator returns the final executable of a top-level module.
func (layout Layout) Simulator(name string) string {
	return path.Join(layout.BuildDir, name+"_simulator")
}

// Driver returns the default driver of a module, `tb_cpp/<path under rtl_dir>_tb.cpp`.
func (layout Layout) Driver(modulePath string) string {
	rel := strings.TrimPrefix(modulePath, strings.TrimSuffix(layout.RTLDir, "/")+"/")

	return path.Join(DriverDir, strings.TrimSuffix(rel, path.Ext(rel))+DriverSuffix)
}
