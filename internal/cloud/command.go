package cloud

import (
	"encoding/json"
	"strings"
)

// Command is the remote control record polled from command.json. Clients
// writing it are phone apps with loose typing, so both fields tolerate
// quoted and unquoted encodings.
type Command struct {
	SystemCmd    FlexString `json:"system_cmd"`
	ManualUpdate *FlexBool  `json:"manual_update"`
}

// FlexString is a string field that may arrive double-quoted ("\"ON\"")
// or as a bare JSON string. Surrounding quote characters are stripped.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Not a JSON string; keep the raw token.
		s = string(data)
	}
	*f = FlexString(strings.Trim(strings.TrimSpace(s), `"'`))
	return nil
}

func (f FlexString) String() string { return string(f) }

// FlexBool is a boolean field that may arrive as true/false, "true"/"false"
// or a number. Raw preserves the original token so duplicate requests can
// be recognized even when the writer re-sends the identical value.
type FlexBool struct {
	Value bool
	Raw   string
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexBool) UnmarshalJSON(data []byte) error {
	f.Raw = string(data)

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		f.Value = b
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.Value = strings.EqualFold(strings.Trim(s, `"'`), "true")
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		f.Value = n != 0
		return nil
	}

	f.Value = false
	return nil
}
