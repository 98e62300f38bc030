package course

import (
	ut "github.com/go-playground/universal-translator"
	validator "github.com/go-playground/validator/v10"

	"github.com/paathshala/backend/core"
)

const enrollmentStatusTag = "enrollmentstatus"

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(enrollmentStatusTag, func(fl validator.FieldLevel) bool {
		return EnrollmentStatus(fl.Field().String()).Valid()
	})
	core.RegisterCustomTranslation(validate, translator, enrollmentStatusTag, "{0} is not a valid enrollment status")
}
