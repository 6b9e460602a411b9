// File: api/value.go
// Author: momentics <momentics@gmail.com>
//
// Values carried in request params and response results, per §9 "Dynamic
// method registry": null, boolean, integer, floating-point, string,
// byte-string, ordered sequence, and mapping with string keys, recursively.
// There is no separate boxed value type: the codec encodes/decodes Go's
// native `any` directly (encoding/json already maps cleanly onto this set),
// and handlers work with Params and the extraction helpers below.
package api

// Params is the wire representation of a request's named arguments.
type Params map[string]any

// Kind-checking helpers used by handlers extracting typed parameters out
// of a Params map, per §9 "keyword-argument dispatch".

// Float64 extracts a float64 from v, accepting any JSON numeric decode
// (float64, int, int64, json.Number-free — encoding/json always produces
// float64 for numbers unless UseNumber is set, which this codec does not
// use) and reports whether the conversion succeeded.
func Float64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// String extracts a string from v.
func String(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// Bool extracts a bool from v.
func Bool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}
