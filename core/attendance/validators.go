package attendance

import (
	ut "github.com/go-playground/universal-translator"
	validator "github.com/go-playground/validator/v10"

	"github.com/paathshala/backend/core"
)

const statusTag = "attendancestatus"

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(statusTag, func(fl validator.FieldLevel) bool {
		return Status(fl.Field().String()).Valid()
	})
	core.RegisterCustomTranslation(validate, translator, statusTag, "{0} is not a valid attendance status")
}
