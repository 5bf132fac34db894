package action

import (
	"reflect"
	"testing"
)

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    map[string]any
		wantErr bool
	}{
		{"empty", "", map[string]any{}, false},
		{"empty value", "uploaded_gcode_file=", map[string]any{}, false},
		{"string", "uploaded_gcode_file=benchy.gcode", map[string]any{"uploaded_gcode_file": "benchy.gcode"}, false},
		{"typed values", "slot_number=2 speed=1.5 finished=true", map[string]any{"slot_number": int64(2), "speed": 1.5, "finished": true}, false},
		{"value with equals", "note=a=b", map[string]any{"note": "a=b"}, false},
		{"leading zeros stay strings", "uploaded_gcode_file=007 slot=-01", map[string]any{"uploaded_gcode_file": "007", "slot": "-01"}, false},
		{"single letter bools stay strings", "slot=T flag=F on=1", map[string]any{"slot": "T", "flag": "F", "on": int64(1)}, false},
		{"non finite floats stay strings", "name=inf a=NaN b=-Infinity", map[string]any{"name": "inf", "a": "NaN", "b": "-Infinity"}, false},
		{"float forms", "speed=0.25 big=1e3", map[string]any{"speed": 0.25, "big": "1e3"}, false},
		{"missing equals", "benchy.gcode", nil, true},
		{"missing key", "=value", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePayload(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePayload(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ParsePayload(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}
