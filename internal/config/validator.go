package config

import (
	"MoodMate/internal/entity"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var customValidations = map[string]validator.Func{
	"emotion": validEmotion,
}

// NewValidator returns a validator that also knows the "emotion" tag, which accepts any
// emotion category name regardless of case. It panics when a custom tag cannot be registered.
func NewValidator() *validator.Validate {
	v := validator.New()

	if err := registerValidations(v, customValidations); err != nil {
		panic(err)
	}

	return v
}

func registerValidations(v *validator.Validate, fns map[string]validator.Func) error {
	for tag, fn := range fns {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %q validation: %w", tag, err)
		}
	}
	return nil
}

func validEmotion(fl validator.FieldLevel) bool {
	_, ok := entity.ParseEmotionCategory(fl.Field().String())
	return ok
}
