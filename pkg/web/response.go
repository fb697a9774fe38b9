// Package web defines common components for a web application.
package web

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Response holds the common response type for all APIs.
type Response struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Error wraps a given err into the common response.
func Error(err error) Response {
	return Response{Error: err.Error()}
}

// GetErrorMsg returns a human readable message for a failed binding rule.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s field is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s field should be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s field should be at most %s", fe.Field(), fe.Param())
	case "money":
		return fmt.Sprintf("%s field should be a positive amount with at most 2 decimal places", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s field should be one of [%s]", fe.Field(), fe.Param())
	}

	return fmt.Sprintf("%s field is invalid", fe.Field())
}

// BindingErrorMsg returns the message of the first failed binding rule of err.
// Errors not produced by the validator, such as malformed JSON, yield a generic message.
func BindingErrorMsg(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return GetErrorMsg(ve[0])
	}

	return "invalid request"
}
