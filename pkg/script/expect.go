package script

import (
	"fmt"

	"github.com/Knetic/govaluate"
)

var expectParams = map[string]struct{}{
	"value": {},
	"ok":    {},
	"text":  {},
	"len":   {},
	"cycle": {},
}

type expectation struct {
	raw  string
	expr *govaluate.EvaluableExpression
}

func newExpectation(s string) (*expectation, error) {
	expr, err := govaluate.NewEvaluableExpression(s)
	if err != nil {
		return nil, err
	}
	for _, v := range expr.Vars() {
		if _, ok := expectParams[v]; !ok {
			return nil, fmt.Errorf("unknown parameter %s", v)
		}
	}
	return &expectation{raw: s, expr: expr}, nil
}

// check evaluates e against r. A non-nil error describes why it did not pass.
func (e *expectation) check(r *Result) error {
	params := govaluate.MapParameters{
		"value": paramValue(r.Value),
		"ok":    r.OK,
		"text":  r.Text,
		"len":   float64(r.Len),
		"cycle": r.Cycle,
	}
	out, err := e.expr.Eval(params)
	if err != nil {
		return fmt.Errorf("eval: %w", err)
	}
	b, ok := out.(bool)
	if !ok {
		return fmt.Errorf("expression returned %T, want bool", out)
	}
	if !b {
		return fmt.Errorf("expression is false for value=%v ok=%t len=%d", r.Value, r.OK, r.Len)
	}
	return nil
}

// govaluate only does arithmetic on float64.
func paramValue(v interface{}) interface{} {
	if i, ok := v.(int); ok {
		return float64(i)
	}
	return v
}
