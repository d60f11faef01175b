package chat

import "testing"

func TestValidJSONValue(t *testing.T) {
	valid := []JSONValue{
		nil,
		true,
		"text",
		3.14,
		42,
		[]JSONValue{"a", 1, nil},
		map[string]JSONValue{
			"nested": map[string]JSONValue{
				"list": []JSONValue{true, map[string]JSONValue{"deep": "yes"}},
			},
		},
		// Typed containers marshal fine, so they are valid too.
		[]string{"a", "b"},
		map[string]int{"n": 1},
		map[string]JSONValue{"tags": []string{"x"}},
	}
	for _, v := range valid {
		if !ValidJSONValue(v) {
			t.Fatalf("ValidJSONValue(%#v) = false; want true", v)
		}
	}

	invalid := []JSONValue{
		func() {},
		make(chan int),
		struct{ X int }{1},
		[]JSONValue{"ok", func() {}},
		map[string]JSONValue{"bad": make(chan int)},
		map[int]string{1: "keys must be strings"},
		[]func(){nil},
	}
	for _, v := range invalid {
		if ValidJSONValue(v) {
			t.Fatalf("ValidJSONValue(%T) = true; want false", v)
		}
	}
}

func TestNormalizeJSONValue(t *testing.T) {
	got, err := NormalizeJSONValue(map[string]JSONValue{"n": 1})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("normalized value is %T; want map[string]any", got)
	}
	if n, ok := m["n"].(float64); !ok || n != 1 {
		t.Fatalf("normalized number = %#v; want float64(1)", m["n"])
	}

	got, err = NormalizeJSONValue([]string{"a", "b"})
	if err != nil {
		t.Fatalf("normalize typed slice failed: %v", err)
	}
	list, ok := got.([]any)
	if !ok || len(list) != 2 || list[0] != "a" {
		t.Fatalf("normalized slice = %#v; want []any{\"a\", \"b\"}", got)
	}

	if _, err := NormalizeJSONValue(func() {}); err == nil {
		t.Fatalf("expected error for non-JSON value")
	}
}
