package dto

import (
	"bytes"
	"encoding/json"
)

// Truthy decodes a flag the way the backend's JavaScript callers read it:
// null, false, 0 and "" are false; any other number, string, object or array
// is true. It never fails to decode.
type Truthy bool

func (t *Truthy) UnmarshalJSON(raw []byte) error {
	*t = Truthy(truthy(raw))
	return nil
}

func truthy(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch raw[0] {
	case '{', '[':
		return true
	case '"':
		var s string
		return json.Unmarshal(raw, &s) == nil && s != ""
	case 't':
		return string(raw) == "true"
	case 'f', 'n':
		return false
	default:
		var n float64
		return json.Unmarshal(raw, &n) == nil && n != 0
	}
}
