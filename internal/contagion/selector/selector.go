// Package selector compiles restricted boolean expressions used to pick
// trigger banks, e.g. `equity < 50 && out_degree >= 2`.
package selector

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Variables available to every expression.
const (
	VarID          = "id"
	VarName        = "name"
	VarEquity      = "equity"
	VarOutExposure = "out_exposure"
	VarInExposure  = "in_exposure"
	VarOutDegree   = "out_degree"
	VarInDegree    = "in_degree"
)

type Selector struct {
	source  string
	program *vm.Program
}

func exampleEnv() map[string]any {
	return map[string]any{
		VarID:          0,
		VarName:        "",
		VarEquity:      0.0,
		VarOutExposure: 0.0,
		VarInExposure:  0.0,
		VarOutDegree:   0,
		VarInDegree:    0,
	}
}

// Compile validates and compiles cond. An empty cond matches every bank.
func Compile(cond string) (*Selector, error) {
	cond = strings.TrimSpace(cond)
	if cond == "" {
		return &Selector{}, nil
	}
	if err := Validate(cond); err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", cond, err)
	}

	program, err := expr.Compile(cond, expr.Env(exampleEnv()), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", cond, err)
	}
	return &Selector{source: cond, program: program}, nil
}

func (s *Selector) String() string { return s.source }

func (s *Selector) Match(vars map[string]any) (bool, error) {
	if s == nil || s.program == nil {
		return true, nil
	}
	out, err := expr.Run(s.program, vars)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("selector must evaluate to bool (got %T)", out)
	}
	return b, nil
}
