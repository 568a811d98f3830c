package tools

import (
	"errors"
	"fmt"
	"math"

	"github.com/expr-lang/expr/ast"
)

var (
	errIntOverflow    = errors.New("integer overflow")
	errNotIntegral    = errors.New("only accepts integral values")
	errZeroDivision   = errors.New("division by zero")
	errZeroModulo     = errors.New("modulo by zero")
	errZeroNegPower   = errors.New("0.0 cannot be raised to a negative power")
	errResultTooLarge = errors.New("numerical result out of range")
)

// Operators are rewritten into calls to these functions. The names cannot
// collide with the math functions.
var operatorFuncs = map[string]string{
	"+":  "_add",
	"-":  "_sub",
	"*":  "_mul",
	"/":  "_div",
	"%":  "_mod",
	"**": "_pow",
	"^":  "_pow",
}

const negFunc = "_neg"

// arithmetic replaces arithmetic operators with checked function calls so
// integer results never wrap and division and modulo behave like Python.
type arithmetic struct{}

func (arithmetic) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.BinaryNode:
		if fn, ok := operatorFuncs[n.Operator]; ok {
			ast.Patch(node, &ast.CallNode{
				Callee:    &ast.IdentifierNode{Value: fn},
				Arguments: []ast.Node{n.Left, n.Right},
			})
		}
	case *ast.UnaryNode:
		if n.Operator == "-" {
			ast.Patch(node, &ast.CallNode{
				Callee:    &ast.IdentifierNode{Value: negFunc},
				Arguments: []ast.Node{n.Node},
			})
		}
	}
}

// binaryOp evaluates exactly when both operands are integers and falls back
// to float64 otherwise.
type binaryOp struct {
	symbol string
	ints   func(a, b int) (any, error)
	floats func(a, b float64) (any, error)
}

func (op binaryOp) call(params ...any) (any, error) {
	if len(params) != 2 {
		return nil, fmt.Errorf("operator %s takes 2 operands (%d given)", op.symbol, len(params))
	}
	if a, ok := asInt(params[0]); ok {
		if b, ok := asInt(params[1]); ok {
			return op.ints(a, b)
		}
	}
	x, err := operand(op.symbol, params[0])
	if err != nil {
		return nil, err
	}
	y, err := operand(op.symbol, params[1])
	if err != nil {
		return nil, err
	}
	return op.floats(x, y)
}

func operand(symbol string, v any) (float64, error) {
	f, err := toFloat(v)
	if err != nil {
		return 0, fmt.Errorf("unsupported operand type for %s: %T", symbol, v)
	}
	return f, nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// toInteger accepts integers and integral floats that fit in an int.
func toInteger(v any) (int, error) {
	if n, ok := asInt(v); ok {
		return n, nil
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, errNotIntegral
	}
	return floatToInt(f)
}

// floatToInt converts an integral float, failing when it is outside the int
// range.
func floatToInt(f float64) (int, error) {
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, errIntOverflow
	}
	return int(f), nil
}

func addInt(a, b int) (int, error) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, errIntOverflow
	}
	return s, nil
}

func subInt(a, b int) (int, error) {
	d := a - b
	if (b > 0 && d > a) || (b < 0 && d < a) {
		return 0, errIntOverflow
	}
	return d, nil
}

func mulInt(a, b int) (int, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if (a == -1 && b == math.MinInt) || (b == -1 && a == math.MinInt) {
		return 0, errIntOverflow
	}
	p := a * b
	if p/b != a {
		return 0, errIntOverflow
	}
	return p, nil
}

func powInt(base, exp int) (int, error) {
	result := 1
	for e := exp; e > 0; e >>= 1 {
		var err error
		if e&1 == 1 {
			if result, err = mulInt(result, base); err != nil {
				return 0, err
			}
		}
		if e > 1 {
			if base, err = mulInt(base, base); err != nil {
				return 0, err
			}
		}
	}
	return result, nil
}

// floorMod returns a remainder with the sign of the divisor.
func floorMod(a, b float64) float64 {
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

func powFloat(a, b float64) (any, error) {
	if a == 0 && b < 0 {
		return nil, errZeroNegPower
	}
	if a < 0 && b != math.Trunc(b) && !math.IsInf(b, 0) {
		return nil, errMathDomain
	}
	r := math.Pow(a, b)
	if math.IsInf(r, 0) && !math.IsInf(a, 0) && !math.IsInf(b, 0) {
		return nil, errResultTooLarge
	}
	return r, nil
}

func wrapInt(fn func(a, b int) (int, error)) func(a, b int) (any, error) {
	return func(a, b int) (any, error) {
		r, err := fn(a, b)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
}

var binaryOps = map[string]binaryOp{
	"_add": {
		symbol: "+",
		ints:   wrapInt(addInt),
		floats: func(a, b float64) (any, error) { return a + b, nil },
	},
	"_sub": {
		symbol: "-",
		ints:   wrapInt(subInt),
		floats: func(a, b float64) (any, error) { return a - b, nil },
	},
	"_mul": {
		symbol: "*",
		ints:   wrapInt(mulInt),
		floats: func(a, b float64) (any, error) { return a * b, nil },
	},
	"_div": {
		symbol: "/",
		ints: func(a, b int) (any, error) {
			if b == 0 {
				return nil, errZeroDivision
			}
			return float64(a) / float64(b), nil
		},
		floats: func(a, b float64) (any, error) {
			if b == 0 {
				return nil, errZeroDivision
			}
			return a / b, nil
		},
	},
	"_mod": {
		symbol: "%",
		ints: func(a, b int) (any, error) {
			if b == 0 {
				return nil, errZeroModulo
			}
			r := a % b
			if r != 0 && (r < 0) != (b < 0) {
				r += b
			}
			return r, nil
		},
		floats: func(a, b float64) (any, error) {
			if b == 0 {
				return nil, errZeroModulo
			}
			return floorMod(a, b), nil
		},
	},
	"_pow": {
		symbol: "**",
		ints: func(a, b int) (any, error) {
			if b < 0 {
				return powFloat(float64(a), float64(b))
			}
			r, err := powInt(a, b)
			if err != nil {
				return nil, err
			}
			return r, nil
		},
		floats: powFloat,
	},
}

func negate(params ...any) (any, error) {
	if len(params) != 1 {
		return nil, fmt.Errorf("operator - takes 1 operand (%d given)", len(params))
	}
	if n, ok := asInt(params[0]); ok {
		if n == math.MinInt {
			return nil, errIntOverflow
		}
		return -n, nil
	}
	f, err := operand("-", params[0])
	if err != nil {
		return nil, err
	}
	return -f, nil
}
