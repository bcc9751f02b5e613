package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"disasterwatch/internal/types"
)

// Validator wraps go-playground/validator and reports failures as AppErrors
// keyed by JSON field name.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// ValidateStruct returns nil or an *types.AppError. A missing required field
// maps to validation_missing_required_field; every other rule maps to
// validation_invalid_body. Details list each failing field and its rule.
func (v *Validator) ValidateStruct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return types.NewAppError(types.ErrCodeValidationInvalidBody, "invalid request body", err)
	}

	fields := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}

	first := verrs[0]
	if first.Tag() == "required" {
		return types.NewAppError(types.ErrCodeValidationMissingField,
			fmt.Sprintf("%s is required", first.Field()), err).
			WithDetails(map[string]any{"fields": fields})
	}
	return types.NewAppError(types.ErrCodeValidationInvalidBody,
		fmt.Sprintf("%s failed %s validation", first.Field(), first.Tag()), err).
		WithDetails(map[string]any{"fields": fields})
}
