// Package builtin provides the tools registered with every agent: the core
// set (calculate, get_current_time, search_web) and the extended development
// set (execute_code, file_operations, web_scrape).
package builtin

import (
	"context"
	"fmt"
	"math"

	"github.com/expr-lang/expr"

	"github.com/Troyboy911/tyson/pkg/tool"
)

// RegisterCore registers the three always-available tools.
func RegisterCore(r *tool.Registry) {
	r.Register(Calculate{})
	r.Register(CurrentTime{})
	r.Register(SearchWeb{})
}

// RegisterDev registers the extended development tools on top of the core
// set.
func RegisterDev(r *tool.Registry) {
	RegisterCore(r)
	r.Register(ExecuteCode{})
	r.Register(FileOperations{})
	r.Register(WebScrape{})
}

// mathEnv is the complete set of names an expression may reference. Anything
// outside this list fails to compile, so expressions cannot reach the host
// language.
var mathEnv = map[string]any{
	"pi":    math.Pi,
	"e":     math.E,
	"sqrt":  math.Sqrt,
	"abs":   math.Abs,
	"pow":   math.Pow,
	"exp":   math.Exp,
	"log":   math.Log,
	"log2":  math.Log2,
	"log10": math.Log10,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"floor": math.Floor,
	"ceil":  math.Ceil,
	"round": math.Round,
	"mod":   math.Mod,
	"max":   math.Max,
	"min":   math.Min,
}

// Calculate evaluates arithmetic expressions against a whitelisted set of
// numeric functions.
type Calculate struct{}

func (Calculate) Name() string { return "calculate" }

func (Calculate) Description() string {
	return "Perform mathematical calculations. Supports +, -, *, /, **, sqrt, etc."
}

func (Calculate) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"expression": map[string]any{
				"type":        "string",
				"description": "The mathematical expression to evaluate",
			},
		},
		"required": []string{"expression"},
	}
}

func (Calculate) Execute(ctx context.Context, args map[string]any) (string, error) {
	expression, _ := args["expression"].(string)
	if expression == "" {
		return "", fmt.Errorf("'expression' parameter is required")
	}

	program, err := expr.Compile(expression, expr.Env(mathEnv))
	if err != nil {
		return fmt.Sprintf("Error calculating: %v", err), nil
	}
	result, err := expr.Run(program, mathEnv)
	if err != nil {
		return fmt.Sprintf("Error calculating: %v", err), nil
	}
	return fmt.Sprintf("Result: %v", result), nil
}
