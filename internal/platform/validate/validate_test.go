// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/platewise/internal/platform/apperr"
	"github.com/taibuivan/platewise/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "username", "alice", false},
		{"empty_string", "username", "", true},
		{"whitespace_only", "username", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Number checks that numbers and numeric strings are both accepted.
*/
func TestValidator_Number(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		isValid bool
	}{
		{"json_number", `72.5`, 72.5, true},
		{"json_integer", `180`, 180, true},
		{"numeric_string", `"65.25"`, 65.25, true},
		{"padded_string", `" 70 "`, 70, true},
		{"missing", ``, 0, false},
		{"null", `null`, 0, false},
		{"empty_string", `""`, 0, false},
		{"word", `"heavy"`, 0, false},
		{"nan_string", `"NaN"`, 0, false},
		{"inf_string", `"Inf"`, 0, false},
		{"boolean", `true`, 0, false},
		{"object", `{"kg":70}`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			got := v.Number("weight", json.RawMessage(tt.raw))

			assert.Equal(t, tt.want, got)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Positive verifies the strict positivity rule and that a field
is only reported once.
*/
func TestValidator_Positive(t *testing.T) {
	t.Run("zero_fails", func(t *testing.T) {
		v := &validate.Validator{}
		v.Positive("height", 0)
		assert.True(t, v.HasErrors())
	})

	t.Run("negative_fails", func(t *testing.T) {
		v := &validate.Validator{}
		v.Positive("height", -1.5)
		assert.True(t, v.HasErrors())
	})

	t.Run("positive_passes", func(t *testing.T) {
		v := &validate.Validator{}
		v.Positive("height", 0.01)
		assert.False(t, v.HasErrors())
	})

	t.Run("no_duplicate_after_number_failure", func(t *testing.T) {
		v := &validate.Validator{}
		value := v.Number("height", json.RawMessage(`"abc"`))
		v.Positive("height", value)

		ae := apperr.As(v.Err())
		require.NotNil(t, ae)
		assert.Len(t, ae.Details, 1)
	})
}

/*
TestValidator_MaxBytes checks byte (not rune) based limits.
*/
func TestValidator_MaxBytes(t *testing.T) {
	v := &validate.Validator{}
	v.MaxBytes("password", strings.Repeat("a", 72), 72)
	assert.False(t, v.HasErrors())

	// 37 two-byte runes are 74 bytes.
	v.MaxBytes("password", strings.Repeat("é", 37), 72)
	assert.True(t, v.HasErrors())
}

/*
TestValidator_OneOf checks the enumerated value rule.
*/
func TestValidator_OneOf(t *testing.T) {
	v := &validate.Validator{}
	v.OneOf("goal", "gain", "gain", "lose")
	assert.False(t, v.HasErrors())

	v.OneOf("goal", "maintain", "gain", "lose")
	assert.True(t, v.HasErrors())
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("username", "tai").
		MaxBytes("password", "secret", 72).
		MaxLen("username", "tai", 10).
		OneOf("goal", "lose", "gain", "lose").
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("username", "").              // Fails
		MaxLen("bio", "abcdefgh", 5).          // Fails
		OneOf("goal", "bulk", "gain", "lose"). // Fails
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	// Should accumulate all 3 errors
	assert.Len(t, ae.Details, 3)
}
