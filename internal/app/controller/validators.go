package controller

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ratehub/ratehub-backend/pkg/util"
)

// RegisterValidators installs the password policy as a binding tag so
// request structs can declare it alongside the builtin rules. Safe to call
// more than once.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("strong_password", func(fl validator.FieldLevel) bool {
			return util.IsStrongPassword(fl.Field().String())
		})
	}
}
