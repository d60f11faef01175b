package chat

import (
	"encoding/json"
	"fmt"
)

// Tool choice modes.
const (
	ToolChoiceModeNone     = "none"
	ToolChoiceModeAuto     = "auto"
	ToolChoiceModeFunction = "function"
)

// ToolChoice directs whether and which tool the model may invoke. It is a
// tri-state: none (no call), auto (model decides), or an explicit selection
// naming one allowed function. The zero value means "unset" and serializes
// to null.
type ToolChoice struct {
	mode string
	name string
}

// ToolChoiceNone forbids tool calls.
func ToolChoiceNone() ToolChoice { return ToolChoice{mode: ToolChoiceModeNone} }

// ToolChoiceAuto lets the model decide.
func ToolChoiceAuto() ToolChoice { return ToolChoice{mode: ToolChoiceModeAuto} }

// ToolChoiceFunction forces a call to the named function.
func ToolChoiceFunction(name string) ToolChoice {
	return ToolChoice{mode: ToolChoiceModeFunction, name: name}
}

// Mode returns the choice mode, or "" when unset.
func (tc ToolChoice) Mode() string { return tc.mode }

// FunctionName returns the selected function name for an explicit choice.
func (tc ToolChoice) FunctionName() string { return tc.name }

// IsZero reports whether the choice is unset.
func (tc ToolChoice) IsZero() bool { return tc.mode == "" }

func (tc ToolChoice) String() string {
	if tc.mode == ToolChoiceModeFunction {
		return fmt.Sprintf("function(%s)", tc.name)
	}
	return tc.mode
}

// MarshalJSON writes the literal "none"/"auto", or the explicit object form
// {"type":"function","function":{"name":...}}. The zero value marshals to
// null.
func (tc ToolChoice) MarshalJSON() ([]byte, error) {
	switch tc.mode {
	case "":
		return []byte("null"), nil
	case ToolChoiceModeNone, ToolChoiceModeAuto:
		return json.Marshal(tc.mode)
	case ToolChoiceModeFunction:
		return json.Marshal(explicitToolChoice{
			Type:     ToolTypeFunction,
			Function: explicitToolChoiceFunction{Name: tc.name},
		})
	}
	return nil, fmt.Errorf("invalid tool choice mode %q", tc.mode)
}

// UnmarshalJSON accepts the three valid forms plus null, which resets the
// choice to unset. An explicit form missing the function name is rejected.
func (tc *ToolChoice) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*tc = ToolChoice{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case ToolChoiceModeNone, ToolChoiceModeAuto:
			*tc = ToolChoice{mode: s}
			return nil
		}
		return fmt.Errorf("invalid tool choice %q: want \"none\", \"auto\", or a function object", s)
	}

	var explicit explicitToolChoice
	if err := json.Unmarshal(data, &explicit); err != nil {
		return fmt.Errorf("invalid tool choice: %w", err)
	}
	if explicit.Type != ToolTypeFunction {
		return fmt.Errorf("invalid tool choice type %q", explicit.Type)
	}
	if explicit.Function.Name == "" {
		return fmt.Errorf("tool choice of type %q is missing the function name", explicit.Type)
	}
	*tc = ToolChoice{mode: ToolChoiceModeFunction, name: explicit.Function.Name}
	return nil
}

type explicitToolChoice struct {
	Type     string                     `json:"type"`
	Function explicitToolChoiceFunction `json:"function"`
}

type explicitToolChoiceFunction struct {
	Name string `json:"name"`
}
