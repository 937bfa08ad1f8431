package expr

import (
	"fmt"
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"reflect"
	"sync"

	"github.com/traefik/yaegi/stdlib"
)

// preludeFuncs gives the arity of each prelude function. All of them take
// and return float64.
var preludeFuncs = map[string]int{
	"abs": 1, "sqrt": 1, "cbrt": 1, "exp": 1, "log": 1, "log2": 1, "log10": 1,
	"sin": 1, "cos": 1, "tan": 1, "asin": 1, "acos": 1, "atan": 1, "atan2": 2,
	"sinh": 1, "cosh": 1, "tanh": 1,
	"floor": 1, "ceil": 1, "round": 1, "trunc": 1,
	"pow": 2, "hypot": 2, "mod": 2, "min": 2, "max": 2,
}

var preludeVars = []string{"pi", "epsilon", "inf"}

var (
	mathPkg     *types.Package
	mathPkgOnce sync.Once
)

// typeCheck checks node in a scope holding the bound variables, the prelude
// and package math, and requires a numeric or boolean result.
func typeCheck(node ast.Expr, vars int) error {
	pkg := types.NewPackage("main", "main")
	scope := pkg.Scope()
	f64 := types.Typ[types.Float64]

	for i := 0; i < vars; i++ {
		scope.Insert(types.NewVar(token.NoPos, pkg, VarName(i), f64))
	}
	for _, name := range preludeVars {
		scope.Insert(types.NewVar(token.NoPos, pkg, name, f64))
	}
	for name, arity := range preludeFuncs {
		params := make([]*types.Var, arity)
		for i := range params {
			params[i] = types.NewParam(token.NoPos, pkg, "", f64)
		}
		sig := types.NewSignatureType(nil, nil, nil,
			types.NewTuple(params...),
			types.NewTuple(types.NewParam(token.NoPos, pkg, "", f64)),
			false)
		scope.Insert(types.NewFunc(token.NoPos, pkg, name, sig))
	}
	scope.Insert(types.NewPkgName(token.NoPos, pkg, "math", mathPackage()))

	info := &types.Info{Types: make(map[ast.Expr]types.TypeAndValue)}
	if err := types.CheckExpr(token.NewFileSet(), pkg, token.NoPos, node, info); err != nil {
		return err
	}

	tv, ok := info.Types[node]
	if !ok || !tv.IsValue() {
		return fmt.Errorf("expression does not produce a value")
	}
	basic, ok := tv.Type.Underlying().(*types.Basic)
	if !ok || basic.Info()&(types.IsNumeric|types.IsBoolean) == 0 || basic.Info()&types.IsComplex != 0 {
		return fmt.Errorf("expression has non-numeric type %s", tv.Type)
	}
	return nil
}

// mathPackage describes package math from the interpreter's own symbol
// table, so the checker sees exactly what Yaegi will run.
func mathPackage() *types.Package {
	mathPkgOnce.Do(func() {
		pkg := types.NewPackage("math", "math")
		for name, v := range stdlib.Symbols["math/math"] {
			if obj := mathObject(pkg, name, v); obj != nil {
				pkg.Scope().Insert(obj)
			}
		}
		pkg.MarkComplete()
		mathPkg = pkg
	})
	return mathPkg
}

func mathObject(pkg *types.Package, name string, v reflect.Value) types.Object {
	if c, ok := v.Interface().(constant.Value); ok {
		kind := types.UntypedFloat
		if c.Kind() == constant.Int {
			kind = types.UntypedInt
		}
		return types.NewConst(token.NoPos, pkg, name, types.Typ[kind], c)
	}
	if v.Kind() != reflect.Func {
		return nil
	}

	t := v.Type()
	params := make([]*types.Var, t.NumIn())
	for i := range params {
		b := basicOf(t.In(i))
		if b == nil {
			return nil
		}
		params[i] = types.NewParam(token.NoPos, pkg, "", b)
	}
	results := make([]*types.Var, t.NumOut())
	for i := range results {
		b := basicOf(t.Out(i))
		if b == nil {
			return nil
		}
		results[i] = types.NewParam(token.NoPos, pkg, "", b)
	}
	sig := types.NewSignatureType(nil, nil, nil, types.NewTuple(params...), types.NewTuple(results...), false)
	return types.NewFunc(token.NoPos, pkg, name, sig)
}

func basicOf(t reflect.Type) types.Type {
	switch t.Kind() {
	case reflect.Float64:
		return types.Typ[types.Float64]
	case reflect.Float32:
		return types.Typ[types.Float32]
	case reflect.Int:
		return types.Typ[types.Int]
	case reflect.Int64:
		return types.Typ[types.Int64]
	case reflect.Uint32:
		return types.Typ[types.Uint32]
	case reflect.Uint64:
		return types.Typ[types.Uint64]
	case reflect.Bool:
		return types.Typ[types.Bool]
	default:
		return nil
	}
}
