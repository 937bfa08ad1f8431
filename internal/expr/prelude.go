package expr

// prelude is the package source every expression is interpreted against.
// Functions work on float64 so untyped constants and variables mix freely.
const prelude = `package main

import "math"

var (
	pi      = math.Pi
	epsilon = 2.220446049250313e-16
	inf     = math.Inf(1)
)

func abs(x float64) float64      { return math.Abs(x) }
func sqrt(x float64) float64     { return math.Sqrt(x) }
func cbrt(x float64) float64     { return math.Cbrt(x) }
func exp(x float64) float64      { return math.Exp(x) }
func log(x float64) float64      { return math.Log(x) }
func log2(x float64) float64     { return math.Log2(x) }
func log10(x float64) float64    { return math.Log10(x) }
func sin(x float64) float64      { return math.Sin(x) }
func cos(x float64) float64      { return math.Cos(x) }
func tan(x float64) float64      { return math.Tan(x) }
func asin(x float64) float64     { return math.Asin(x) }
func acos(x float64) float64     { return math.Acos(x) }
func atan(x float64) float64     { return math.Atan(x) }
func atan2(y, x float64) float64 { return math.Atan2(y, x) }
func sinh(x float64) float64     { return math.Sinh(x) }
func cosh(x float64) float64     { return math.Cosh(x) }
func tanh(x float64) float64     { return math.Tanh(x) }
func floor(x float64) float64    { return math.Floor(x) }
func ceil(x float64) float64     { return math.Ceil(x) }
func round(x float64) float64    { return math.Round(x) }
func trunc(x float64) float64    { return math.Trunc(x) }
func pow(x, y float64) float64   { return math.Pow(x, y) }
func hypot(x, y float64) float64 { return math.Hypot(x, y) }
func mod(x, y float64) float64   { return math.Mod(x, y) }
func min(x, y float64) float64   { return math.Min(x, y) }
func max(x, y float64) float64   { return math.Max(x, y) }
`

// preludeNames lists the identifiers an expression may use besides its variables.
var preludeNames = []string{
	"pi", "epsilon", "inf",
	"abs", "sqrt", "cbrt", "exp", "log", "log2", "log10",
	"sin", "cos", "tan", "asin", "acos", "atan", "atan2",
	"sinh", "cosh", "tanh",
	"floor", "ceil", "round", "trunc",
	"pow", "hypot", "mod", "min", "max",
	"true", "false", "float64", "int", "int64",
}
