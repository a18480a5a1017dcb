package validators

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/detoxsabeho/orders-backend/pkg/errors"
)

var validate = newValidator()

var (
	nonDigits = regexp.MustCompile(`\D`)
	coPhone   = regexp.MustCompile(`^3\d{9}$`)
	// Letters, accents, digits and common address punctuation.
	safeText = regexp.MustCompile(`^[a-zA-ZáéíóúñÁÉÍÓÚÑ\d\s.,\-'()#/]+$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})

	// Colombian mobile number: exactly ten digits starting with 3 once
	// separators are stripped.
	_ = v.RegisterValidation("co_phone", func(fl validator.FieldLevel) bool {
		cleaned := nonDigits.ReplaceAllString(fl.Field().String(), "")
		return coPhone.MatchString(cleaned)
	})

	_ = v.RegisterValidation("safe_text", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		return safeText.MatchString(value)
	})

	return v
}

func DecodeJSONBody(r *http.Request, dest any) error {
	defer func() {
		io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").WithDetails(map[string]any{"error": err.Error()})
	}
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "co_phone":
		return "must be a 10-digit mobile number starting with 3"
	case "safe_text":
		return "contains invalid characters"
	}
	return "is invalid"
}
