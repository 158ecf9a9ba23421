// Package condition evaluates single comparisons such as
//
//	ERLC_X_InGame i_iMikey == true
//	ERLC_Players >= 20
//
// The left and right side are either a registered variable followed by its
// positional arguments, or a raw literal. Expressions are split on
// whitespace, so variable names and literals cannot contain spaces.
package condition

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

var (
	ErrSyntax          = errors.New("condition: expected <value> <operator> <value>")
	ErrUnknownFuture   = errors.New("condition: unknown future")
	ErrNotComparable   = errors.New("condition: operands are not ordered")
	ErrMissingArgument = errors.New("condition: missing argument")
)

// Future is a deferred fetch of guild-scoped state.
type Future func(ctx context.Context) (any, error)

type futureResult struct {
	val any
	err error
}

// Futures resolves each named future at most once.
type Futures struct {
	mu   sync.Mutex
	fns  map[string]Future
	done map[string]futureResult
}

func NewFutures(fns map[string]Future) *Futures {
	return &Futures{fns: fns, done: make(map[string]futureResult, len(fns))}
}

func (f *Futures) Resolve(ctx context.Context, key string) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.done[key]; ok {
		return r.val, r.err
	}
	fn, ok := f.fns[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFuture, key)
	}
	v, err := fn(ctx)
	f.done[key] = futureResult{val: v, err: err}
	return v, err
}

// Func computes a variable from its resolved futures (in Requires order)
// and the positional arguments that followed the variable name.
type Func func(inputs []any, args []string) (any, error)

type Variable struct {
	Requires []string
	Fn       Func
}

type Evaluator struct {
	vars map[string]Variable
}

func New(vars map[string]Variable) *Evaluator {
	return &Evaluator{vars: vars}
}

// Known reports whether name is a registered variable.
func (e *Evaluator) Known(name string) bool {
	_, ok := e.vars[name]
	return ok
}

// Value resolves one side of an expression. A token that does not start with
// a registered variable is returned unchanged as a literal.
func (e *Evaluator) Value(ctx context.Context, token string, futures *Futures) (any, error) {
	fields := strings.Fields(token)
	if len(fields) == 0 {
		return token, nil
	}
	v, ok := e.vars[fields[0]]
	if !ok {
		return token, nil
	}
	inputs := make([]any, 0, len(v.Requires))
	for _, key := range v.Requires {
		in, err := futures.Resolve(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fields[0], err)
		}
		inputs = append(inputs, in)
	}
	return v.Fn(inputs, fields[1:])
}

// Evaluate parses and evaluates expr.
func (e *Evaluator) Evaluate(ctx context.Context, expr string, futures *Futures) (bool, error) {
	left, op, right, err := Split(expr)
	if err != nil {
		return false, err
	}
	lv, err := e.Value(ctx, left, futures)
	if err != nil {
		return false, err
	}
	rv, err := e.Value(ctx, right, futures)
	if err != nil {
		return false, err
	}
	return Compare(lv, op, rv)
}

// Split cuts expr at its first operator token.
func Split(expr string) (left, op, right string, err error) {
	tokens := strings.Fields(expr)
	for i, tok := range tokens {
		if _, ok := operators[tok]; !ok {
			continue
		}
		if i == 0 || i == len(tokens)-1 {
			return "", "", "", ErrSyntax
		}
		return strings.Join(tokens[:i], " "), tok, strings.Join(tokens[i+1:], " "), nil
	}
	return "", "", "", ErrSyntax
}

type operator struct {
	ordered bool
	fn      func(cmp int) bool
}

// operators never evaluate input, they only look at a comparison result.
var operators = map[string]operator{
	"==": {false, func(c int) bool { return c == 0 }},
	"!=": {false, func(c int) bool { return c != 0 }},
	"<":  {true, func(c int) bool { return c < 0 }},
	"<=": {true, func(c int) bool { return c <= 0 }},
	">":  {true, func(c int) bool { return c > 0 }},
	">=": {true, func(c int) bool { return c >= 0 }},
}

// Compare applies op to two resolved operands. Numbers compare numerically,
// booleans and strings only support equality.
func Compare(a any, op string, b any) (bool, error) {
	o, ok := operators[op]
	if !ok {
		return false, fmt.Errorf("condition: unknown operator %q", op)
	}

	if x, ok := asNumber(a); ok {
		if y, ok := asNumber(b); ok {
			c := 0
			switch {
			case x < y:
				c = -1
			case x > y:
				c = 1
			}
			return o.fn(c), nil
		}
	}
	if o.ordered {
		return false, fmt.Errorf("%w: %v %s %v", ErrNotComparable, a, op, b)
	}
	if x, ok := asBool(a); ok {
		if y, ok := asBool(b); ok {
			return o.fn(boolCmp(x == y)), nil
		}
	}
	return o.fn(boolCmp(fmt.Sprint(a) == fmt.Sprint(b))), nil
}

func boolCmp(equal bool) int {
	if equal {
		return 0
	}
	return 1
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func asBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}
