package serverutils

import (
	"fmt"
	"strings"

	"ai-interview-coach-be/internal/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation and flattens the field errors
// into a single ValidationError so the error middleware maps it to 400.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		messages := make([]string, 0, len(validationErrors))
		for _, fieldErr := range validationErrors {
			messages = append(messages, fmt.Sprintf("field '%s' failed on the '%s' rule", fieldErr.Field(), fieldErr.Tag()))
		}
		return apperror.New(apperror.KindValidation, "", strings.Join(messages, "; "))
	}
	return nil
}
