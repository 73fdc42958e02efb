package http

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"airport-service/internal/validation"
)

var registerOnce sync.Once

// registerValidators teaches gin's validator to report json field names and
// adds the notblank tag.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
}

var tagMessages = map[string]string{
	"required": "This field is required.",
	"notblank": "This field may not be blank.",
	"email":    "Enter a valid email address.",
	"max":      "Ensure this field has no more than %s characters.",
	"min":      "Ensure this value is greater than or equal to %s.",
}

// bindingError turns decoder and validator failures into field errors.
func bindingError(err error) *validation.Error {
	verr := &validation.Error{}

	var fields validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &fields):
		for _, fe := range fields {
			msg, ok := tagMessages[fe.Tag()]
			if !ok {
				msg = "Invalid value."
			}
			if strings.Contains(msg, "%s") {
				msg = fmt.Sprintf(msg, fe.Param())
			}
			verr.Add(fe.Field(), msg)
		}
	case errors.As(err, &typeErr) && typeErr.Field != "":
		verr.Add(typeErr.Field, fmt.Sprintf("Incorrect type. Expected %s.", typeErr.Type))
	default:
		verr.Add("non_field_errors", "Malformed request: "+err.Error())
	}
	return verr
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		newFieldErrorsResponse(c, bindingError(err).Fields)
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		newFieldErrorsResponse(c, bindingError(err).Fields)
		return false
	}
	return true
}
