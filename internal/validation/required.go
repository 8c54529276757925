// Package validation holds the request-level checks shared by the user flows:
// required-field projection, phone and email format.
package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// MissingFieldError names the first required field that was absent or empty.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "missing required field: " + e.Field
}

// Required projects a loosely-typed request onto its validated counterpart R.
//
// in is encoded as JSON and every name in fields is checked in order. A field
// counts as missing when it is absent, null, a blank string, or the number 0.
// Zero is treated as unset on purpose, so a required numeric field cannot
// legitimately carry 0. Fields not listed are copied through as-is.
func Required[R any](in any, fields ...string) (R, error) {
	var out R

	raw, err := json.Marshal(in)
	if err != nil {
		return out, fmt.Errorf("encode request: %w", err)
	}

	for _, field := range fields {
		if isUnset(gjson.GetBytes(raw, gjson.Escape(field))) {
			return out, &MissingFieldError{Field: field}
		}
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode validated request: %w", err)
	}
	return out, nil
}

func isUnset(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null:
		// gjson reports absent keys as Null too
		return true
	case gjson.String:
		return strings.TrimSpace(v.Str) == ""
	case gjson.Number:
		return v.Num == 0
	default:
		return false
	}
}
