package config

import (
	"os"
	"path/filepath"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

const (
	FuncNameGetEnv        = "get_env"
	FuncNamePathJoin      = "path_join"
	FuncNameGetProjectDir = "get_project_dir"
)

// createFunctions returns the functions available in the project file.
func createFunctions(projectDir string) map[string]function.Function {
	return map[string]function.Function{
		FuncNameGetEnv:        getEnvFunc(),
		FuncNamePathJoin:      pathJoinFunc(),
		FuncNameGetProjectDir: getProjectDirFunc(projectDir),
		"concat":              stdlib.ConcatFunc,
		"format":              stdlib.FormatFunc,
		"join":                stdlib.JoinFunc,
		"lower":               stdlib.LowerFunc,
		"upper":               stdlib.UpperFunc,
	}
}

// getEnvFunc implements `get_env(name, default)`, default is optional.
func getEnvFunc() function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "name", Type: cty.String},
		},
		VarParam: &function.Parameter{Name: "default", Type: cty.String},
		Type:     function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			if len(args) > 2 {
				return cty.StringVal(""), function.NewArgErrorf(2, "%s takes at most two arguments", FuncNameGetEnv)
			}

			if val, ok := os.LookupEnv(args[0].AsString()); ok {
				return cty.StringVal(val), nil
			}

			if len(args) == 2 {
				return args[1], nil
			}

			return cty.StringVal(""), nil
		},
	})
}

// pathJoinFunc implements `path_join(elem...)`.
func pathJoinFunc() function.Function {
	return function.New(&function.Spec{
		VarParam: &function.Parameter{Name: "elem", Type: cty.String},
		Type:     function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			elems := make([]string, len(args))

			for i, arg := range args {
				elems[i] = arg.AsString()
			}

			return cty.StringVal(filepath.ToSlash(filepath.Join(elems...))), nil
		},
	})
}

// getProjectDirFunc implements `get_project_dir()`, the directory of the project file.
func getProjectDirFunc(projectDir string) function.Function {
	return function.New(&function.Spec{
		Type: function.StaticReturnType(cty.String),
		Impl: func(_ []cty.Value, _ cty.Type) (cty.Value, error) {
			return cty.StringVal(filepath.ToSlash(projectDir)), nil
		},
	})
}
