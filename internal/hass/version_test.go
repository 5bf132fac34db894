package hass

import "testing"

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{"", false},
		{"2024.8.0", false},
		{"2023.9.0", false},
		{"2023.12", false},
		{"2023.8.4", true},
		{"2022.12.1", true},
		{"2024.6.0.dev20240501", false},
	}
	for _, tt := range tests {
		if err := CheckVersion(tt.raw); (err != nil) != tt.wantErr {
			t.Errorf("CheckVersion(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
		}
	}
}
