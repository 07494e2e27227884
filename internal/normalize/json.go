package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// unwrap returns the entity object of a payload, which the services send either
// bare or wrapped in a "data" or "info" envelope
func unwrap(payload []byte) gjson.Result {
	root := gjson.ParseBytes(payload)
	for _, key := range []string{"data", "info"} {
		if inner := root.Get(key); inner.IsObject() || inner.IsArray() {
			return inner
		}
	}
	return root
}

// firstOf returns the first of the given keys present on obj
func firstOf(obj gjson.Result, keys ...string) gjson.Result {
	for _, key := range keys {
		if r := obj.Get(key); r.Exists() && r.Type != gjson.Null {
			return r
		}
	}
	return gjson.Result{}
}

// intValue reads a positive integer from a number or a numeric string
func intValue(r gjson.Result) (int, bool) {
	switch r.Type {
	case gjson.Number:
		if r.Num != math.Trunc(r.Num) || r.Num <= 0 || r.Num > math.MaxInt32 {
			return 0, false
		}
		return int(r.Num), true
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(r.Str))
		if err != nil || n <= 0 {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// stringValue returns the trimmed text of r, or "" when absent
func stringValue(r gjson.Result) string {
	if !r.Exists() || r.Type == gjson.Null || r.IsObject() || r.IsArray() {
		return ""
	}
	return strings.TrimSpace(r.String())
}

// optionalString returns nil instead of an empty string
func optionalString(r gjson.Result) *string {
	s := stringValue(r)
	if s == "" {
		return nil
	}
	return &s
}

// label reads a free-text label that is either a plain string or an object with a "text" field
func label(r gjson.Result) string {
	if r.IsObject() {
		return stringValue(firstOf(r, "text", "name"))
	}
	return stringValue(r)
}

// matchLabel returns the candidate equal to text, ignoring case
func matchLabel[T ~string](text string, candidates []T) (T, bool) {
	for _, c := range candidates {
		if strings.EqualFold(text, string(c)) {
			return c, true
		}
	}
	var zero T
	return zero, false
}
