package service

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/qc-report-api/internal/models"
)

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsEmailShape reports whether s looks like local@domain.tld.
func IsEmailShape(s string) bool {
	return emailShape.MatchString(s)
}

// registerValidations installs the QC-specific tags. Registering twice on the same
// validator replaces the previous functions.
func registerValidations(v *validator.Validate) {
	_ = v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return IsEmailShape(fl.Field().String())
	})
	_ = v.RegisterValidation("judgement", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case models.JudgementPass, models.JudgementFail, models.JudgementConditional:
			return true
		default:
			return false
		}
	})
	_ = v.RegisterValidation("strictness", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case models.StrictnessNormal, models.StrictnessTightened, models.StrictnessRelaxed:
			return true
		default:
			return false
		}
	})
}

func newValidator(v *validator.Validate) *validator.Validate {
	if v == nil {
		v = validator.New()
	}
	registerValidations(v)
	return v
}
