// Package expr compiles and evaluates the numeric expressions eqfuzz searches over.
//
// An expression is a single Go expression over the variables a..z (only the
// first N are bound for a run) plus a small numeric prelude (pi, sqrt, pow, ...).
// Expressions are parsed with go/parser, type-checked with go/types and then
// interpreted with Yaegi, once per expression; the resulting function is
// reused for every evaluation.
package expr

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"io"
	"math"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// MaxVariables is the number of single-letter variable names available.
const MaxVariables = 26

// ErrEvaluation is returned when an expression panics at runtime
// (for example an integer division by zero).
var ErrEvaluation = errors.New("expression evaluation failed")

// Expression is a compiled expression bound to a fixed number of variables.
type Expression interface {
	// Evaluate computes the expression with vars bound to a, b, c, ...
	Evaluate(vars []float64) (float64, error)
	String() string
}

// Compiler turns expression text into an Expression.
type Compiler interface {
	Compile(text string, vars int) (Expression, error)
}

// CompileError reports expression text that could not be compiled.
type CompileError struct {
	Expr string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %q: %v", e.Expr, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// VarName returns the variable name bound to index i.
func VarName(i int) string {
	return string(rune('a' + i))
}

// Interpreter compiles expressions with the Yaegi Go interpreter.
// Every expression gets its own interpreter instance, so evaluations of
// different expressions never share state.
type Interpreter struct {
	logger *zap.Logger
}

// NewInterpreter creates a Yaegi-backed Compiler.
func NewInterpreter(logger *zap.Logger) *Interpreter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interpreter{logger: logger}
}

// Program is an expression compiled into an interpreted Go function.
type Program struct {
	text string
	vars int
	fn   func([]float64) interface{}
}

// Compile validates and interprets text for a run with the given number of variables.
func (in *Interpreter) Compile(text string, vars int) (Expression, error) {
	if vars < 1 || vars > MaxVariables {
		return nil, &CompileError{Expr: text, Err: fmt.Errorf("variable count %d out of range [1, %d]", vars, MaxVariables)}
	}
	node, err := validate(text, vars)
	if err != nil {
		return nil, &CompileError{Expr: text, Err: err}
	}
	if err := typeCheck(node, vars); err != nil {
		return nil, &CompileError{Expr: text, Err: err}
	}

	// Yaegi reports runtime panics on its own stderr before re-panicking;
	// Evaluate already returns them as ErrEvaluation.
	out := in.output()
	i := interp.New(interp.Options{Stdout: out, Stderr: out})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("failed to load stdlib: %w", err)
	}
	if _, err = i.Eval(wrap(text, vars)); err != nil {
		return nil, &CompileError{Expr: text, Err: err}
	}

	v, err := i.Eval("main.Evaluate")
	if err != nil {
		return nil, &CompileError{Expr: text, Err: err}
	}
	fn, ok := v.Interface().(func([]float64) interface{})
	if !ok {
		return nil, fmt.Errorf("interpreted function has unexpected type %T", v.Interface())
	}

	p := &Program{text: text, vars: vars, fn: fn}
	in.logger.Debug("Compiled expression",
		zap.String("expr", text),
		zap.Int("vars", vars))
	return p, nil
}

// Evaluate binds vars to a private copy and evaluates the expression.
func (p *Program) Evaluate(vars []float64) (float64, error) {
	if len(vars) != p.vars {
		return math.NaN(), fmt.Errorf("expected %d variables, got %d", p.vars, len(vars))
	}
	bindings := make([]float64, len(vars))
	copy(bindings, vars)

	out, err := p.call(bindings)
	if err != nil {
		return math.NaN(), err
	}
	f, ok := toFloat(out)
	if !ok {
		return math.NaN(), fmt.Errorf("%w: result of type %T is not numeric", ErrEvaluation, out)
	}
	return f, nil
}

func (p *Program) String() string { return p.text }

func (p *Program) call(bindings []float64) (out interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrEvaluation, r)
		}
	}()
	return p.fn(bindings), nil
}

func toFloat(v interface{}) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Bool:
		if rv.Bool() {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// validate parses text as a single Go expression and checks every free
// identifier against the bound variables and the prelude.
func validate(text string, vars int) (ast.Expr, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("empty expression")
	}
	node, err := parser.ParseExpr(text)
	if err != nil {
		return nil, err
	}

	allowed := make(map[string]bool, vars+len(preludeNames))
	for i := 0; i < vars; i++ {
		allowed[VarName(i)] = true
	}
	for _, name := range preludeNames {
		allowed[name] = true
	}

	var bad error
	ast.Inspect(node, func(n ast.Node) bool {
		if bad != nil {
			return false
		}
		switch x := n.(type) {
		case *ast.FuncLit:
			bad = errors.New("function literals are not allowed")
			return false
		case *ast.SelectorExpr:
			pkg, ok := x.X.(*ast.Ident)
			if !ok || pkg.Name != "math" {
				bad = fmt.Errorf("selector %s not allowed (only math.*)", exprString(text, x))
			}
			return false
		case *ast.CompositeLit:
			bad = errors.New("composite literals are not allowed")
			return false
		case *ast.Ident:
			if !allowed[x.Name] {
				bad = fmt.Errorf("undefined: %s", x.Name)
			}
		}
		return true
	})
	if bad != nil {
		return nil, bad
	}
	return node, nil
}

func exprString(src string, n ast.Node) string {
	start, end := int(n.Pos())-1, int(n.End())-1
	if start < 0 || end > len(src) || start >= end {
		return "expression"
	}
	return src[start:end]
}

func wrap(text string, vars int) string {
	names := make([]string, vars)
	values := make([]string, vars)
	for i := 0; i < vars; i++ {
		names[i] = VarName(i)
		values[i] = fmt.Sprintf("bindings[%d]", i)
	}
	blanks := strings.TrimSuffix(strings.Repeat("_, ", vars), ", ")

	var sb strings.Builder
	sb.WriteString(prelude)
	sb.WriteString("\nfunc Evaluate(bindings []float64) interface{} {\n")
	fmt.Fprintf(&sb, "\t%s := %s\n", strings.Join(names, ", "), strings.Join(values, ", "))
	fmt.Fprintf(&sb, "\t%s = %s\n", blanks, strings.Join(names, ", "))
	fmt.Fprintf(&sb, "\treturn (%s)\n}\n", text)
	return sb.String()
}

// output returns a writer that forwards interpreter output to the debug log.
func (in *Interpreter) output() io.Writer {
	std, err := zap.NewStdLogAt(in.logger, zapcore.DebugLevel)
	if err != nil {
		return io.Discard
	}
	return std.Writer()
}
