package validation

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestConfigValidator_MinInt(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	cv.MinInt("MinSubsections", 0, 1)

	if !cv.HasErrors() {
		t.Error("Expected error for value below minimum")
	}

	cv2 := NewConfigValidator("TestConfig")
	cv2.MinInt("MinSubsections", 2, 1)

	if cv2.HasErrors() {
		t.Error("Expected no error for value at or above minimum")
	}
}

func TestConfigValidator_RangeInt(t *testing.T) {
	tests := []struct {
		name      string
		value     int
		min       int
		max       int
		expectErr bool
	}{
		{"below range", 0, 1, 10, true},
		{"above range", 15, 1, 10, true},
		{"at min", 1, 1, 10, false},
		{"at max", 10, 1, 10, false},
		{"in range", 5, 1, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cv := NewConfigValidator("TestConfig")
			cv.RangeInt("Value", tt.value, tt.min, tt.max)

			if tt.expectErr && !cv.HasErrors() {
				t.Error("Expected error")
			}
			if !tt.expectErr && cv.HasErrors() {
				t.Errorf("Unexpected error: %v", cv.Validate())
			}
		})
	}
}

func TestConfigValidator_NonNegative(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	cv.NonNegative("Workers", -1)

	if !cv.HasErrors() {
		t.Error("Expected error for negative value")
	}

	cv2 := NewConfigValidator("TestConfig")
	cv2.NonNegative("Workers", 0)

	if cv2.HasErrors() {
		t.Error("Expected no error for zero value")
	}
}

func TestConfigValidator_Floats(t *testing.T) {
	tests := []struct {
		name      string
		apply     func(cv *ConfigValidator)
		expectErr bool
	}{
		{"positive ok", func(cv *ConfigValidator) { cv.PositiveFloat("X", 0.5) }, false},
		{"positive zero", func(cv *ConfigValidator) { cv.PositiveFloat("X", 0) }, true},
		{"positive NaN", func(cv *ConfigValidator) { cv.PositiveFloat("X", math.NaN()) }, true},
		{"non-negative zero", func(cv *ConfigValidator) { cv.NonNegativeFloat("X", 0) }, false},
		{"non-negative negative", func(cv *ConfigValidator) { cv.NonNegativeFloat("X", -0.1) }, true},
		{"non-negative NaN", func(cv *ConfigValidator) { cv.NonNegativeFloat("X", math.NaN()) }, true},
		{"range inside", func(cv *ConfigValidator) { cv.RangeFloat("X", 0.5, 0, 1) }, false},
		{"range at bound", func(cv *ConfigValidator) { cv.RangeFloat("X", 1, 0, 1) }, false},
		{"range outside", func(cv *ConfigValidator) { cv.RangeFloat("X", 1.5, 0, 1) }, true},
		{"finite", func(cv *ConfigValidator) { cv.Finite("X", 3) }, false},
		{"infinite", func(cv *ConfigValidator) { cv.Finite("X", math.Inf(1)) }, true},
		{"ordered", func(cv *ConfigValidator) { cv.OrderedFloat("Min", 1, "Max", 3) }, false},
		{"ordered equal", func(cv *ConfigValidator) { cv.OrderedFloat("Min", 3, "Max", 3) }, false},
		{"not ordered", func(cv *ConfigValidator) { cv.OrderedFloat("Min", 4, "Max", 3) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cv := NewConfigValidator("TestConfig")
			tt.apply(cv)
			if cv.HasErrors() != tt.expectErr {
				t.Errorf("HasErrors() = %v, want %v (%v)", cv.HasErrors(), tt.expectErr, cv.Validate())
			}
		})
	}
}

func TestConfigValidator_OneOf(t *testing.T) {
	allowed := []string{"incremental", "downdip", "points"}

	cv := NewConfigValidator("TestConfig")
	cv.OneOf("Strategy", "spiral", allowed)

	if !cv.HasErrors() {
		t.Error("Expected error for value not in allowed list")
	}

	cv2 := NewConfigValidator("TestConfig")
	cv2.OneOf("Strategy", "points", allowed)

	if cv2.HasErrors() {
		t.Error("Expected no error for allowed value")
	}
}

func TestConfigValidator_NotEmpty(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	cv.NotEmpty("FaultIDs", 0)
	if !cv.HasErrors() {
		t.Error("Expected error for empty slice")
	}
}

func TestConfigValidator_Custom(t *testing.T) {
	sentinel := errors.New("custom validation failed")
	cv := NewConfigValidator("TestConfig")
	cv.Custom("CustomField", func() error {
		return sentinel
	})

	if !errors.Is(cv.Validate(), sentinel) {
		t.Error("Expected custom error to be wrapped")
	}

	cv2 := NewConfigValidator("TestConfig")
	cv2.Custom("CustomField", func() error {
		return nil
	})

	if cv2.HasErrors() {
		t.Error("Expected no error from passing custom validation")
	}
}

func TestConfigValidator_When(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	cv.When(false, func(v *ConfigValidator) { v.PositiveFloat("X", -1) })
	if cv.HasErrors() {
		t.Error("Expected validations to be skipped when condition is false")
	}

	cv.When(true, func(v *ConfigValidator) { v.PositiveFloat("X", -1) })
	if !cv.HasErrors() {
		t.Error("Expected validations to run when condition is true")
	}
}

func TestConfigValidator_Validate(t *testing.T) {
	cv := NewConfigValidator("Plausibility")
	if err := cv.Validate(); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}

	cv.PositiveFloat("MaxJumpDistance", 0)
	err := cv.Validate()
	if err == nil || !strings.HasPrefix(err.Error(), "Plausibility.MaxJumpDistance") {
		t.Errorf("Expected single error prefixed with config and field name, got %v", err)
	}

	sentinel := errors.New("boom")
	cv.Custom("Other", func() error { return sentinel })
	err = cv.Validate()
	if err == nil || !strings.Contains(err.Error(), "2 errors") {
		t.Errorf("Expected combined error, got %v", err)
	}
	if !errors.Is(err, sentinel) {
		t.Error("Expected combined error to wrap every error")
	}
	if len(cv.Errors()) != 2 {
		t.Errorf("Expected 2 errors, got %d", len(cv.Errors()))
	}
}

func TestDefaultOr(t *testing.T) {
	if got := DefaultOr("", "incremental"); got != "incremental" {
		t.Errorf("DefaultOr empty = %q", got)
	}
	if got := DefaultOr(2.5, 5.0); got != 2.5 {
		t.Errorf("DefaultOr set = %v", got)
	}
	if got := DefaultOrInt(0, 8); got != 8 {
		t.Errorf("DefaultOrInt zero = %d", got)
	}
	if got := DefaultOrInt(3, 8); got != 3 {
		t.Errorf("DefaultOrInt set = %d", got)
	}
}
