package cloud

import (
	"encoding/json"
	"testing"
)

func TestCommandDecoding(t *testing.T) {
	tests := []struct {
		name       string
		doc        string
		wantCmd    string
		wantManual *bool
	}{
		{
			name:    "plain strings",
			doc:     `{"system_cmd":"ON"}`,
			wantCmd: "ON",
		},
		{
			name:    "double quoted command",
			doc:     `{"system_cmd":"\"OFF\""}`,
			wantCmd: "OFF",
		},
		{
			name:       "boolean manual update",
			doc:        `{"manual_update":true}`,
			wantManual: boolPtr(true),
		},
		{
			name:       "string manual update",
			doc:        `{"manual_update":"true"}`,
			wantManual: boolPtr(true),
		},
		{
			name:       "quoted string manual update",
			doc:        `{"manual_update":"\"true\""}`,
			wantManual: boolPtr(true),
		},
		{
			name:       "string false",
			doc:        `{"manual_update":"false"}`,
			wantManual: boolPtr(false),
		},
		{
			name:       "numeric manual update",
			doc:        `{"manual_update":1}`,
			wantManual: boolPtr(true),
		},
		{
			name:       "numeric zero",
			doc:        `{"manual_update":0}`,
			wantManual: boolPtr(false),
		},
		{
			name:    "both fields",
			doc:     `{"system_cmd":"ON","manual_update":false}`,
			wantCmd: "ON",

			wantManual: boolPtr(false),
		},
		{
			name: "empty document",
			doc:  `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cmd Command
			if err := json.Unmarshal([]byte(tt.doc), &cmd); err != nil {
				t.Fatalf("Unmarshal(%s) failed: %v", tt.doc, err)
			}
			if got := cmd.SystemCmd.String(); got != tt.wantCmd {
				t.Errorf("SystemCmd = %q, want %q", got, tt.wantCmd)
			}
			if tt.wantManual == nil {
				if cmd.ManualUpdate != nil {
					t.Errorf("ManualUpdate = %+v, want absent", cmd.ManualUpdate)
				}
				return
			}
			if cmd.ManualUpdate == nil {
				t.Fatal("ManualUpdate absent, want present")
			}
			if cmd.ManualUpdate.Value != *tt.wantManual {
				t.Errorf("ManualUpdate.Value = %v, want %v", cmd.ManualUpdate.Value, *tt.wantManual)
			}
		})
	}
}

func TestFlexBoolRawPreserved(t *testing.T) {
	var a, b FlexBool
	if err := a.UnmarshalJSON([]byte(`true`)); err != nil {
		t.Fatalf("UnmarshalJSON failed: %v", err)
	}
	if err := b.UnmarshalJSON([]byte(`"true"`)); err != nil {
		t.Fatalf("UnmarshalJSON failed: %v", err)
	}
	if a.Raw == b.Raw {
		t.Error("distinct encodings produced identical raw tokens")
	}
	if a.Raw != "true" || b.Raw != `"true"` {
		t.Errorf("raw tokens = %q, %q", a.Raw, b.Raw)
	}
}

func boolPtr(b bool) *bool { return &b }
