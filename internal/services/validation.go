package services

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/babushkai/saas-marketplace/internal/apperr"
	"github.com/babushkai/saas-marketplace/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernamePattern = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// newValidator returns a validator that reports JSON field names and knows
// the marketplace rules.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("basic_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("pricing", func(fl validator.FieldLevel) bool {
		return models.PricingTier(fl.Field().String()).Valid()
	})
	return v
}

// validateInput checks s and converts the first failure into a validation
// error. Missing fields are reported before malformed ones.
func validateInput(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Internal("failed to validate input", err)
	}

	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return apperr.Validation("missing required field: " + fe.Field())
		}
	}
	return apperr.Validation(describe(verrs[0]))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "basic_email":
		return "invalid email format"
	case "username":
		return "username may only contain lowercase letters, numbers and hyphens"
	case "category":
		return fmt.Sprintf("invalid category %q", fe.Value())
	case "pricing":
		return fmt.Sprintf("invalid pricing %q", fe.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("invalid value for field: %s", fe.Field())
	}
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
