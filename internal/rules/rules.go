package rules

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/expr-lang/expr"
)

// Rule is an expr condition evaluated after every resolution attempt.
// Conditions see the environment:
//
//	rtt      - round-trip time of the call in milliseconds
//	count    - cumulative call count across all workers
//	changed  - whether this call observed an address change
//	failed   - whether this call failed to resolve
//	failures - consecutive failed calls so far
type Rule struct {
	Name      string `yaml:"name"`
	Condition string `yaml:"condition"`
}

type Result struct {
	Satisfied bool
	Error     error
}

type Params struct {
	RTT      time.Duration
	Count    int64
	Changed  bool
	Failed   bool
	Failures int64
}

var (
	ErrEmptyName      = errors.New("rule name cannot be empty")
	ErrEmptyCondition = errors.New("rule condition cannot be empty")
	ErrInvalidSyntax  = errors.New("invalid rule syntax")
)

func (r Rule) Validate() error {
	if r.Name == "" {
		return ErrEmptyName
	}
	if r.Condition == "" {
		return fmt.Errorf("rule %q: %w", r.Name, ErrEmptyCondition)
	}
	return nil
}

func Evaluate(rule Rule, params Params) Result {
	if err := rule.Validate(); err != nil {
		return Result{Error: err}
	}

	env := map[string]interface{}{
		"rtt":      params.RTT.Milliseconds(),
		"count":    params.Count,
		"changed":  params.Changed,
		"failed":   params.Failed,
		"failures": params.Failures,
	}

	condition := normalizeCondition(rule.Condition)

	program, err := expr.Compile(condition, expr.Env(env))
	if err != nil {
		return Result{Error: fmt.Errorf("%w: %v", ErrInvalidSyntax, err)}
	}

	result, err := expr.Run(program, env)
	if err != nil {
		return Result{Error: fmt.Errorf("rule evaluation failed: %w", err)}
	}

	satisfied, ok := result.(bool)
	if !ok {
		return Result{Error: fmt.Errorf("rule must evaluate to boolean, got %T", result)}
	}

	return Result{Satisfied: satisfied}
}

// normalizeCondition rewrites duration literals ("200ms", "1s") to the
// millisecond integers the rtt variable carries.
func normalizeCondition(condition string) string {
	words := strings.Split(condition, " ")
	for i, word := range words {
		dur, err := time.ParseDuration(word)
		if err == nil {
			words[i] = fmt.Sprintf("%d", dur.Milliseconds())
		}
	}
	return strings.Join(words, " ")
}
