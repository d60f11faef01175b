package chat

import (
	"encoding/json"
	"testing"
)

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleSystem, RoleUser, RoleAssistant, RoleFunction, RoleData, RoleTool} {
		if !ValidRole(role) {
			t.Fatalf("ValidRole(%q) = false; want true", role)
		}
	}
	for _, role := range []string{"", "model", "Assistant", "tool_call"} {
		if ValidRole(role) {
			t.Fatalf("ValidRole(%q) = true; want false", role)
		}
	}
}

func TestMessageValidate(t *testing.T) {
	cases := map[string]struct {
		msg     Message
		wantErr bool
	}{
		"user message": {
			msg: NewUserMessage("hello"),
		},
		"function result with name": {
			msg: NewFunctionResultMessage("lookup", `{"ok":true}`),
		},
		"name outside function role": {
			msg:     Message{ID: "m1", Role: RoleUser, Name: "lookup"},
			wantErr: true,
		},
		"unknown role": {
			msg:     Message{ID: "m1", Role: "model"},
			wantErr: true,
		},
		// Both call forms may coexist on foreign payloads.
		"both call forms": {
			msg: Message{
				ID:           "m1",
				Role:         RoleAssistant,
				FunctionCall: &FunctionCall{Name: "lookup"},
				ToolCalls:    []ToolCall{{ID: "c1", Type: ToolTypeFunction}},
			},
		},
	}

	for name, tc := range cases {
		err := tc.msg.Validate()
		if tc.wantErr && err == nil {
			t.Fatalf("%s: expected error, got nil", name)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
	}
}

func TestMessageHasBothCallForms(t *testing.T) {
	m := Message{
		ID:           "m1",
		Role:         RoleAssistant,
		FunctionCall: &FunctionCall{Name: "lookup"},
		ToolCalls:    []ToolCall{{ID: "c1", Type: ToolTypeFunction}},
	}
	if !m.HasBothCallForms() {
		t.Fatalf("HasBothCallForms = false with both forms set")
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("message with both call forms should validate: %v", err)
	}

	m.ToolCalls = nil
	if m.HasBothCallForms() {
		t.Fatalf("HasBothCallForms = true with only function_call set")
	}
}

func TestCreateMessageMaterialize(t *testing.T) {
	cm := CreateMessage{Role: RoleUser, Content: "hi"}
	m := cm.Materialize(nil)
	if m.ID == "" {
		t.Fatalf("Materialize did not assign an id")
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("materialized message invalid: %v", err)
	}

	m2 := cm.Materialize(func() string { return "fixed-id" })
	if m2.ID != "fixed-id" {
		t.Fatalf("Materialize ignored custom generator: got %q", m2.ID)
	}

	withID := CreateMessage{ID: "keep-me", Role: RoleUser, Content: "hi"}
	if got := withID.Materialize(nil); got.ID != "keep-me" {
		t.Fatalf("Materialize replaced existing id: got %q", got.ID)
	}
}

func TestMessageJSONRoundTrip(t *testing.T) {
	m := NewAssistantMessage("result below")
	m.ToolCalls = []ToolCall{{
		ID:       "call_1",
		Type:     ToolTypeFunction,
		Function: FunctionCall{Name: "lookup", Arguments: `{"q":"go"}`},
	}}
	m.Annotations = []JSONValue{map[string]JSONValue{"source": "test"}}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var got Message
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if got.ID != m.ID || got.Role != RoleAssistant {
		t.Fatalf("round trip lost identity: %+v", got)
	}
	if len(got.ToolCalls) != 1 || got.ToolCalls[0].Function.Name != "lookup" {
		t.Fatalf("round trip lost tool calls: %+v", got.ToolCalls)
	}
}

func TestNewDataMessage(t *testing.T) {
	m := NewDataMessage(map[string]JSONValue{"progress": 0.5})
	if m.Role != RoleData {
		t.Fatalf("data message role = %q; want %q", m.Role, RoleData)
	}
	if m.Data == nil {
		t.Fatalf("data message lost its payload")
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("data message invalid: %v", err)
	}
}
