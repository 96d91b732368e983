package emitter

import (
	"path"
	"strings"

	"github.com/geckorv/hdlbuild/config"
	"github.com/geckorv/hdlbuild/internal/graph"
	"github.com/geckorv/hdlbuild/util"
)

// Step parameters bound by the emitter.
const (
	ParamOpt       = "opt"
	ParamIncludes  = "includes"
	ParamLinkFlags = "linkflags"
	ParamName      = "name"
	ParamMdir      = "mdir"
	ParamArgs      = "args"
	ParamSource    = "source"
	ParamDest      = "dest"
)

var nativeWarningFlags = []string{
	"-Wno-bool-operation",
	"-Wno-parentheses-equality",
	"-Wno-tautological-bitwise-compare",
	"-Wno-sign-compare",
	"-Wno-uninitialized",
	"-Wno-unused-parameter",
	"-Wno-unused-variable",
	"-Wno-shadow",
}

// ProgramRules returns the cross-toolchain rules of the program stage.
func ProgramRules(cfg *config.Config) graph.Rules {
	riscv := cfg.RISCV

	compiler := []string{toolPath(riscv.ClangRoot, "clang"), "--target=" + riscv.Target, "-march=" + riscv.March}
	if riscv.GNURoot != "" {
		compiler = append(compiler,
			"--sysroot="+path.Join(riscv.GNURoot, "riscv64-unknown-elf"),
			"--gcc-toolchain="+riscv.GNURoot)
	}

	compiler = append(compiler, "$opt", "$includes")
	cc := strings.Join(compiler, " ")

	return graph.Rules{
		graph.Assemble: {
			Name:        "riscv_assemble",
			Command:     cc + " -o $out -c $in -Wno-unused-command-line-argument",
			Description: "assemble $out",
		},
		graph.Compile: {
			Name:        "riscv_compile",
			Command:     cc + " -o $out -c $in -Wno-unused-command-line-argument -MMD -MF $out.d",
			Description: "compile $out",
			Depfile:     "$out.d",
		},
		graph.Link: {
			Name:        "riscv_link",
			Command:     cc + " $linkflags -nostartfiles -o $out $in",
			Description: "link $out",
		},
		graph.Objcopy: {
			Name:        "riscv_objcopy",
			Command:     toolPath(riscv.ClangRoot, "llvm-objcopy") + " -O binary $in $out",
			Description: "objcopy $out",
		},
		graph.Disassemble: {
			Name:        "riscv_objdump",
			Command:     toolPath(riscv.ClangRoot, "llvm-objdump") + " -d $in > $out",
			Description: "disassemble $out",
		},
		graph.Symbols: {
			Name:        "riscv_objdump_symbols",
			Command:     toolPath(riscv.ClangRoot, "llvm-objdump") + " -t $in > $out",
			Description: "symbols $out",
		},
	}
}

// ModuleRules returns the translator rules of the module stage. selfCommand is the hdlbuild executable the merge step calls back into.
func ModuleRules(cfg *config.Config, selfCommand string) graph.Rules {
	verilator := cfg.Verilator
	binary := "VERILATOR_ROOT=" + verilator.Root + " " + path.Join(verilator.Root, "bin", "verilator")

	flags := append([]string{"--prefix V$name", "-I" + strings.TrimSuffix(cfg.RTLDir, "/") + "/"}, verilator.Flags...)
	common := strings.Join(flags, " ")

	return graph.Rules{
		graph.Lint: {
			Name:        "verilator_lint",
			Command:     binary + " -lint-only " + common + " $in > $out",
			Description: "lint $name",
			Params:      []string{ParamName},
		},
		graph.Translate: {
			Name:        "verilator_verilate",
			Command:     binary + " --cc " + strings.Join(verilator.TraceFlags, " ") + " --Mdir $mdir " + common + " $args $in > $out",
			Description: "verilate $name",
			Params:      []string{ParamName, ParamMdir, ParamArgs},
		},
		graph.Merge: {
			Name:        "merge",
			Command:     util.ShellQuote(selfCommand) + " merge --source $source --dest $dest --stamp $out",
			Description: "merge $source",
			Restat:      true,
			Params:      []string{ParamSource, ParamDest},
		},
	}
}

// NativeRules returns the C++ rules of the native stage.
func NativeRules(cfg *config.Config, layout Layout) graph.Rules {
	verilator := cfg.Verilator

	includes := strings.Join([]string{
		"-I" + layout.Store() + "/",
		"-I" + path.Join(verilator.Root, "include"),
		"-I" + path.Join(verilator.Root, "include", "vltstd"),
	}, " ")

	return graph.Rules{
		graph.Compile: {
			Name:        "verilator_compile",
			Command:     verilator.CXX + " " + includes + " " + strings.Join(nativeWarningFlags, " ") + " $args -c $in -o $out -MMD -MF $out.d",
			Description: "compile $out",
			Depfile:     "$out.d",
			Params:      []string{ParamArgs},
		},
		graph.Link: {
			Name:        "verilator_link",
			Command:     verilator.CXX + " " + includes + " $args $in -o $out",
			Description: "link $out",
			Params:      []string{ParamArgs},
		},
	}
}

func toolPath(root, tool string) string {
	if root == "" {
		return tool
	}

	return path.Join(root, "bin", tool)
}
