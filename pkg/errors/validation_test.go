package errors

import (
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"layer id", "L1", false},
		{"box id", "B12", false},
		{"uuid", "0b6c2f0e-7a1d-4c55-9a3e-2f4d8b1c9e70", false},
		{"korean", "레이어1", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 129), true},
		{"space", "L 1", true},
		{"tab", "L\t1", true},
		{"null byte", "L\x001", true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidID) {
				t.Errorf("ValidateID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidID)
			}
		})
	}
}
