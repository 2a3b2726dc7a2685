package dto

import (
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/listing"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators installs the binding validators gin does not
// ship with. Call once at startup before routes are registered.
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("card_condition", func(fl validator.FieldLevel) bool {
		return listing.Condition(fl.Field().String()).IsValid()
	})
}
