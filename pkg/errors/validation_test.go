package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateMeasure(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"positive", 12.5, false},
		{"negative", -1, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
		{"negative inf", math.Inf(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMeasure("width", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMeasure(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidatePositive(t *testing.T) {
	if err := ValidatePositive("dpi", 0); err == nil {
		t.Error("ValidatePositive(0) should fail")
	}
	if err := ValidatePositive("dpi", 300); err != nil {
		t.Errorf("ValidatePositive(300) error = %v", err)
	}
}

func TestValidateFinite(t *testing.T) {
	if err := ValidateFinite("left", -40); err != nil {
		t.Errorf("negative coordinates are valid: %v", err)
	}
	if err := ValidateFinite("left", math.NaN()); err == nil {
		t.Error("NaN coordinate should fail")
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://cdn.example.com/a.png", false},
		{"http", "http://localhost:3000", false},
		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"data", "data:image/png;base64,AAAA", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "print_file.png", false},
		{"empty", "", true},
		{"slash", "a/b.png", true},
		{"backslash", "a\\b.png", true},
		{"traversal", "..png", true},
		{"control", "a\x00.png", true},
		{"too long", strings.Repeat("a", 300), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFilename(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
