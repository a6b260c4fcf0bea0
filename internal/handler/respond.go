package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Shreehari27/Asset-Management/pkg/apperror"
	"github.com/Shreehari27/Asset-Management/pkg/logger"
)

// RequestValidator adapts go-playground/validator to echo
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{validate: v}
}

// Validate implements echo.Validator
func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.validate.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Wrap(err, apperror.KindValidation, "Invalid request data")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return apperror.Validation("%s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}

// respondError maps err to its HTTP status and logs it
func respondError(c echo.Context, err error, message string) error {
	log := logger.FromEcho(c)
	kind := apperror.KindOf(err)
	status := kind.HTTPStatus()

	if status >= 500 {
		log.Error(message, zap.String("kind", string(kind)), zap.Error(err))
	} else {
		log.Warn(message, zap.String("kind", string(kind)), zap.Error(err))
	}
	return c.JSON(status, echo.Map{
		"error": apperror.MessageOf(err),
		"kind":  kind,
	})
}

// bindAndValidate binds the body into req and runs the validator
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return validationErr(err)
	}
	return c.Validate(req)
}

// bindList accepts either a single JSON object or an array of them
func bindList[T any](c echo.Context) ([]T, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.KindValidation, "Failed to read request body")
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, apperror.Validation("Request body is required")
	}

	var items []T
	if body[0] == '[' {
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, validationErr(err)
		}
	} else {
		var one T
		if err := json.Unmarshal(body, &one); err != nil {
			return nil, validationErr(err)
		}
		items = []T{one}
	}
	if len(items) == 0 {
		return nil, apperror.Validation("At least one item is required")
	}
	return items, nil
}

func validationErr(err error) error {
	return apperror.Wrap(err, apperror.KindValidation, "Invalid request data")
}
