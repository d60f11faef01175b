package chat

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// ToolTypeFunction is the only tool type currently defined.
const ToolTypeFunction = "function"

// FunctionCall is a named function invocation with a JSON-encoded argument
// string. The arguments are not guaranteed to be valid JSON; callers decode
// them through DecodeArguments and handle the error.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// DecodeArguments unmarshals the argument string into v.
func (fc FunctionCall) DecodeArguments(v any) error {
	if err := json.Unmarshal([]byte(fc.Arguments), v); err != nil {
		return fmt.Errorf("invalid arguments for function %q: %w", fc.Name, err)
	}
	return nil
}

// ArgumentsMap decodes the argument string as a JSON object.
func (fc FunctionCall) ArgumentsMap() (map[string]JSONValue, error) {
	var args map[string]JSONValue
	if err := fc.DecodeArguments(&args); err != nil {
		return nil, err
	}
	return args, nil
}

// ToolCall is an identified invocation of a tool of a given type.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// Tool describes a callable capability offered to the model.
type Tool struct {
	Type     string   `json:"type"`
	Function Function `json:"function"`
}

// NewFunctionTool wraps a function description as a tool.
func NewFunctionTool(fn Function) Tool {
	return Tool{Type: ToolTypeFunction, Function: fn}
}

// Validate checks the tool type and the nested function description.
func (t Tool) Validate() error {
	if t.Type != ToolTypeFunction {
		return fmt.Errorf("unsupported tool type %q", t.Type)
	}
	return t.Function.Validate()
}

// Function defines a callable function: a constrained name, a
// JSON-Schema-shaped parameter object, and an optional description.
type Function struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Parameters  JSONValue `json:"parameters"`
}

var functionNameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidFunctionName reports whether name is 1-64 characters of
// alphanumerics, underscores, and dashes.
func ValidFunctionName(name string) bool {
	return functionNameRe.MatchString(name)
}

// Validate checks the function name against the allowed pattern.
func (f Function) Validate() error {
	if !ValidFunctionName(f.Name) {
		return fmt.Errorf("invalid function name %q: must be 1-64 alphanumeric, underscore, or dash characters", f.Name)
	}
	return nil
}
