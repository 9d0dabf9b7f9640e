package validators

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var fieldMessages = map[string]string{
	"required": "This field is required.",
	"email":    "Enter a valid email address.",
	"max":      "Ensure this field has no more characters than allowed.",
	"min":      "Ensure this field has enough characters.",
	"oneof":    "Not a valid choice.",
	"gt":       "Ensure this value is greater than zero.",
	"youtube":  VideoLinkMessage,
}

// Validator wraps go-playground/validator with the project's custom tags and
// reports field names by their json tag.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	v.RegisterValidation("youtube", func(fl validator.FieldLevel) bool {
		return ValidateVideoLink(fl.Field().String()) == nil
	})
	return &Validator{validate: v}
}

// Struct validates s and returns field errors keyed by json name, or nil.
func (v *Validator) Struct(s interface{}) map[string][]string {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string][]string{"non_field_errors": {err.Error()}}
	}

	result := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Tag()]
		if !ok {
			msg = "Invalid value."
		}
		result[fe.Field()] = append(result[fe.Field()], msg)
	}
	return result
}
