package dto

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/splitloop/splitloop_backend/internal/core/domain"
)

// joinCodeValidator accepts exactly the codes GenerateJoinCode produces:
// uppercase alphanumeric of the fixed length. Codes are case-sensitive.
func joinCodeValidator(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if len(code) != domain.JoinCodeLength {
		return false
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("joincode", joinCodeValidator)
	}
}
