package tools

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/file"
)

var errMathDomain = errors.New("math domain error")

// CalculatorTool evaluates arithmetic expressions. Only the math functions
// and constants below are reachable from an expression; expr's builtins are
// disabled and the environment holds no other values.
type CalculatorTool struct {
	options []expr.Option
	env     map[string]any
}

// NewCalculatorTool creates the Calculator tool.
func NewCalculatorTool() *CalculatorTool {
	env := map[string]any{
		"pi":  math.Pi,
		"e":   math.E,
		"tau": 2 * math.Pi,
		"inf": math.Inf(1),
		"nan": math.NaN(),
	}

	options := []expr.Option{
		expr.Env(env),
		expr.DisableAllBuiltins(),
		expr.Patch(arithmetic{}),
		expr.Function(negFunc, negate),
	}
	for name, op := range binaryOps {
		options = append(options, expr.Function(name, op.call))
	}
	for name, fn := range mathFunctions {
		options = append(options, expr.Function(name, fn.call(name)))
	}

	return &CalculatorTool{options: options, env: env}
}

func (c *CalculatorTool) Name() string {
	return "Calculator"
}

func (c *CalculatorTool) Description() string {
	return "Evaluate math expressions. Supports functions like sqrt(), sin(), pi, etc. Input: a math expression."
}

func (c *CalculatorTool) Invoke(_ context.Context, input string) string {
	result, err := c.evaluate(CleanPath(input))
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return result
}

func (c *CalculatorTool) evaluate(expression string) (string, error) {
	if expression == "" {
		return "", errors.New("empty expression")
	}
	// The expression lexer would read these as comments and drop the rest.
	if strings.Contains(expression, "//") {
		return "", errors.New("floor division '//' is not supported, use floor(a / b)")
	}
	if strings.Contains(expression, "/*") {
		return "", errors.New("invalid syntax '/*'")
	}
	program, err := expr.Compile(expression, c.options...)
	if err != nil {
		return "", err
	}
	out, err := expr.Run(program, c.env)
	if err != nil {
		// Report what the function failed with, without the source snippet.
		var runErr *file.Error
		if errors.As(err, &runErr) && runErr.Prev != nil {
			return "", runErr.Prev
		}
		return "", err
	}
	return formatValue(out)
}

// formatValue renders numbers the way Python's str() does, so integral
// floats keep their ".0".
func formatValue(v any) (string, error) {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n), nil
	case int64:
		return strconv.FormatInt(n, 10), nil
	case float64:
		return formatFloat(n), nil
	case bool:
		if n {
			return "True", nil
		}
		return "False", nil
	default:
		return "", fmt.Errorf("unsupported result type %T", v)
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}

	exp := int(math.Floor(math.Log10(math.Abs(f))))
	if exp < -4 || exp >= 16 {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// mathFunc is a whitelisted function. minArgs/maxArgs bound the arity;
// maxArgs < 0 means variadic. Functions over integers set ints instead of fn
// and see their arguments without a float round trip.
type mathFunc struct {
	minArgs, maxArgs int
	fn               func(args []float64) (any, error)
	ints             func(args []int) (any, error)
}

func (m mathFunc) call(name string) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		if len(params) < m.minArgs || (m.maxArgs >= 0 && len(params) > m.maxArgs) {
			return nil, fmt.Errorf("%s() takes %s (%d given)", name, m.arity(), len(params))
		}
		if m.ints != nil {
			args := make([]int, len(params))
			for i, p := range params {
				n, err := toInteger(p)
				if err != nil {
					return nil, fmt.Errorf("%s() %w", name, err)
				}
				args[i] = n
			}
			return m.ints(args)
		}
		args := make([]float64, len(params))
		for i, p := range params {
			f, err := toFloat(p)
			if err != nil {
				return nil, fmt.Errorf("%s(): %w", name, err)
			}
			args[i] = f
		}
		return m.fn(args)
	}
}

func (m mathFunc) arity() string {
	switch {
	case m.maxArgs < 0:
		return fmt.Sprintf("at least %d arguments", m.minArgs)
	case m.minArgs == m.maxArgs:
		return fmt.Sprintf("exactly %d arguments", m.minArgs)
	default:
		return fmt.Sprintf("%d to %d arguments", m.minArgs, m.maxArgs)
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("must be real number, not %T", v)
	}
}

func unary(fn func(float64) float64) mathFunc {
	return mathFunc{minArgs: 1, maxArgs: 1, fn: func(a []float64) (any, error) { return fn(a[0]), nil }}
}

func binary(fn func(float64, float64) float64) mathFunc {
	return mathFunc{minArgs: 2, maxArgs: 2, fn: func(a []float64) (any, error) { return fn(a[0], a[1]), nil }}
}

// domain wraps fn so arguments outside ok raise a domain error.
func domain(ok func(float64) bool, fn func(float64) float64) mathFunc {
	return mathFunc{minArgs: 1, maxArgs: 1, fn: func(a []float64) (any, error) {
		if !ok(a[0]) {
			return nil, errMathDomain
		}
		return fn(a[0]), nil
	}}
}

func toInt(fn func(float64) float64) mathFunc {
	return mathFunc{minArgs: 1, maxArgs: 1, fn: func(a []float64) (any, error) {
		r := fn(a[0])
		if math.IsInf(r, 0) || math.IsNaN(r) {
			return nil, errors.New("cannot convert float to integer")
		}
		return floatToInt(r)
	}}
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func positive(f float64) bool    { return f > 0 }
func nonNegative(f float64) bool { return f >= 0 }
func unit(f float64) bool        { return f >= -1 && f <= 1 }

var mathFunctions = map[string]mathFunc{
	"sqrt":  domain(nonNegative, math.Sqrt),
	"cbrt":  unary(math.Cbrt),
	"exp":   unary(math.Exp),
	"exp2":  unary(math.Exp2),
	"expm1": unary(math.Expm1),
	"log10": domain(positive, math.Log10),
	"log2":  domain(positive, math.Log2),
	"log1p": domain(func(f float64) bool { return f > -1 }, math.Log1p),
	"log": {minArgs: 1, maxArgs: 2, fn: func(a []float64) (any, error) {
		if a[0] <= 0 {
			return nil, errMathDomain
		}
		if len(a) == 1 {
			return math.Log(a[0]), nil
		}
		if a[1] <= 0 || a[1] == 1 {
			return nil, errMathDomain
		}
		return math.Log(a[0]) / math.Log(a[1]), nil
	}},
	"pow": {minArgs: 2, maxArgs: 2, fn: func(a []float64) (any, error) {
		if a[0] == 0 && a[1] < 0 {
			return nil, errMathDomain
		}
		return math.Pow(a[0], a[1]), nil
	}},

	"sin":   unary(math.Sin),
	"cos":   unary(math.Cos),
	"tan":   unary(math.Tan),
	"asin":  domain(unit, math.Asin),
	"acos":  domain(unit, math.Acos),
	"atan":  unary(math.Atan),
	"atan2": binary(math.Atan2),
	"sinh":  unary(math.Sinh),
	"cosh":  unary(math.Cosh),
	"tanh":  unary(math.Tanh),
	"asinh": unary(math.Asinh),
	"acosh": domain(func(f float64) bool { return f >= 1 }, math.Acosh),
	"atanh": domain(func(f float64) bool { return f > -1 && f < 1 }, math.Atanh),

	"degrees": unary(func(f float64) float64 { return f * 180 / math.Pi }),
	"radians": unary(func(f float64) float64 { return f * math.Pi / 180 }),
	"hypot": {minArgs: 0, maxArgs: -1, fn: func(a []float64) (any, error) {
		h := 0.0
		for _, f := range a {
			h = math.Hypot(h, f)
		}
		return h, nil
	}},

	"fabs":      unary(math.Abs),
	"copysign":  binary(math.Copysign),
	"fmod":      binary(math.Mod),
	"remainder": binary(math.Remainder),
	"erf":       unary(math.Erf),
	"erfc":      unary(math.Erfc),
	"gamma":     unary(math.Gamma),
	"lgamma": unary(func(f float64) float64 {
		v, _ := math.Lgamma(f)
		return v
	}),

	"ceil":  toInt(math.Ceil),
	"floor": toInt(math.Floor),
	"trunc": toInt(math.Trunc),

	"factorial": {minArgs: 1, maxArgs: 1, ints: func(a []int) (any, error) {
		n := a[0]
		if n < 0 {
			return nil, errors.New("factorial() not defined for negative values")
		}
		if n > 20 {
			return nil, errors.New("factorial() result too large")
		}
		r := 1
		for i := 2; i <= n; i++ {
			r *= i
		}
		return r, nil
	}},
	"gcd": {minArgs: 0, maxArgs: -1, ints: func(ns []int) (any, error) {
		g := 0
		for _, n := range ns {
			g = gcd(g, n)
		}
		return g, nil
	}},
	"lcm": {minArgs: 0, maxArgs: -1, ints: func(ns []int) (any, error) {
		l := 1
		for _, n := range ns {
			if n == 0 {
				return 0, nil
			}
			if n < 0 {
				n = -n
			}
			var err error
			if l, err = mulInt(l/gcd(l, n), n); err != nil {
				return nil, err
			}
		}
		return l, nil
	}},

	"isfinite": {minArgs: 1, maxArgs: 1, fn: func(a []float64) (any, error) { return !math.IsInf(a[0], 0) && !math.IsNaN(a[0]), nil }},
	"isinf":    {minArgs: 1, maxArgs: 1, fn: func(a []float64) (any, error) { return math.IsInf(a[0], 0), nil }},
	"isnan":    {minArgs: 1, maxArgs: 1, fn: func(a []float64) (any, error) { return math.IsNaN(a[0]), nil }},
}
