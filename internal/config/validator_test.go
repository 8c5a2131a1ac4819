package config

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestEmotionValidation(t *testing.T) {
	v := NewValidator()

	type req struct {
		Emotion string `validate:"required,emotion"`
	}

	tests := []struct {
		in    string
		valid bool
	}{
		{"happy", true},
		{"Sad", true},
		{" surprised ", true},
		{"bored", false},
		{"", false},
	}

	for _, tt := range tests {
		err := v.Struct(req{Emotion: tt.in})
		if tt.valid {
			assert.NoError(t, err, tt.in)
		} else {
			assert.Error(t, err, tt.in)
		}
	}
}

func TestRegisterValidationsReportsFailure(t *testing.T) {
	assert.NotPanics(t, func() { NewValidator() })

	err := registerValidations(validator.New(), map[string]validator.Func{"": validEmotion})
	assert.Error(t, err)
}
