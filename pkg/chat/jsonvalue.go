package chat

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// JSONValue is any value representable in JSON: null, booleans, strings,
// numbers, and arbitrarily nested arrays and string-keyed maps thereof. It
// is an alias rather than a sum type so values round-trip through
// encoding/json without copying.
type JSONValue = any

// ValidJSONValue reports whether v is representable in JSON: a primitive,
// or any slice, array, or string-keyed map of valid values, including typed
// containers like []string or map[string]int. Functions, channels, structs,
// and other non-JSON Go values are rejected, recursively.
func ValidJSONValue(v JSONValue) bool {
	switch v.(type) {
	case nil, bool, string,
		float32, float64,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		json.Number:
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if !ValidJSONValue(rv.Index(i).Interface()) {
				return false
			}
		}
		return true
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return false
		}
		iter := rv.MapRange()
		for iter.Next() {
			if !ValidJSONValue(iter.Value().Interface()) {
				return false
			}
		}
		return true
	case reflect.Pointer:
		if rv.IsNil() {
			return true
		}
		return ValidJSONValue(rv.Elem().Interface())
	}
	return false
}

// NormalizeJSONValue canonicalizes v into the forms encoding/json produces:
// nil, bool, string, float64, []any, and map[string]any. It fails when v is
// not a valid JSON value.
func NormalizeJSONValue(v JSONValue) (JSONValue, error) {
	if !ValidJSONValue(v) {
		return nil, fmt.Errorf("value of type %T is not a JSON value", v)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize JSON value: %w", err)
	}
	var out JSONValue
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to normalize JSON value: %w", err)
	}
	return out, nil
}
