package errors

import (
	"strings"
	"testing"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "c0", false},
		{"underscore", "f1_0", false},
		{"unicode", "ü1", false},
		{"space", "feature one", false},
		{"quote", "it's", false},
		{"markup", "<a&b>", false},
		{"long", strings.Repeat("a", 500), false},

		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidKey) {
				t.Errorf("ValidateKey(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidKey)
			}
		})
	}
}

func TestValidateLane(t *testing.T) {
	for _, lane := range []int{0, 1, 7} {
		if err := ValidateLane(lane); err != nil {
			t.Errorf("ValidateLane(%d) = %v, want nil", lane, err)
		}
	}
	if err := ValidateLane(-1); err == nil {
		t.Error("ValidateLane(-1) = nil, want error")
	}
}
