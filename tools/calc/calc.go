// Package calc implements the math tool: it pulls an arithmetic expression
// out of free text and evaluates it with a restricted recursive-descent
// parser that only understands numbers, + - * /, unary signs and
// parentheses.
package calc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/ourstudio-se/ai-agent-backend/tools"
)

// ArgExpression is the argument carrying a pre-extracted expression.
const ArgExpression = "expression"

// Tool evaluates arithmetic found in a query. It never suspends and holds no
// state, so the same query always produces the same answer.
type Tool struct{}

var _ tools.Tool = (*Tool)(nil)

// New creates the math tool.
func New() *Tool {
	return &Tool{}
}

// Kind returns tools.KindMath.
func (t *Tool) Kind() tools.Kind {
	return tools.KindMath
}

// Execute evaluates the expression from req.Args or, when absent, the one
// extracted from req.Query.
func (t *Tool) Execute(ctx context.Context, req tools.Request) (string, error) {
	expr := req.Args.String(ArgExpression)
	if expr == "" {
		var ok bool
		if expr, ok = Extract(req.Query); !ok {
			return "", tools.NewMathError(tools.ErrUnparseable, nil)
		}
	}

	v, err := Eval(expr)
	if err != nil {
		if errors.Is(err, tools.ErrDivisionByZero) {
			return "", tools.NewMathError(tools.ErrDivisionByZero, nil)
		}
		return "", tools.NewMathError(tools.ErrUnparseable, err)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "", tools.NewMathError(tools.ErrNotFinite, nil)
	}

	return fmt.Sprintf("The result of %s is %s.", expr, FormatNumber(v)), nil
}

// FormatNumber renders v without exponent or trailing zeros, so 294.0 prints
// as "294". Values are rounded to 15 significant digits first, which hides
// binary representation noise such as 0.1+0.2 = 0.30000000000000004.
func FormatNumber(v float64) string {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', 15, 64), 64)
	if err == nil {
		v = rounded
	}
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
