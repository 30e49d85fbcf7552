package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"

	"github.com/Payphone-Digital/auth-service/internal/constants"
	"github.com/Payphone-Digital/auth-service/internal/dto"
	apperrors "github.com/Payphone-Digital/auth-service/internal/errors"
	"github.com/Payphone-Digital/auth-service/pkg/logger"
	"github.com/Payphone-Digital/auth-service/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// loginIdentifierTag reports a login body with both or neither identifier.
const loginIdentifierTag = "username_xor_email"

// normalizer is implemented by request bodies that clean their fields before
// validation.
type normalizer interface {
	Normalize()
}

type ValidationMiddleware struct {
	validate *validator.Validate
}

func NewValidationMiddleware() *ValidationMiddleware {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// report json names so messages match what the client sent
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterStructValidation(validateLoginIdentifier, dto.LoginRequest{})

	return &ValidationMiddleware{validate: validate}
}

func validateLoginIdentifier(sl validator.StructLevel) {
	req := sl.Current().Interface().(dto.LoginRequest)
	hasUsername := strings.TrimSpace(req.Username) != ""
	hasEmail := strings.TrimSpace(req.Email) != ""
	if hasUsername == hasEmail {
		sl.ReportError(req.Username, "login", "Username", loginIdentifierTag, "")
	}
}

// Struct validates req and returns a ValidationError carrying one failure per
// broken rule.
func (m *ValidationMiddleware) Struct(req any) error {
	err := m.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return apperrors.WrapError(apperrors.ErrUnexpected, err)
	}

	failures := make([]dto.ValidationFailure, 0, len(fieldErrors))
	for _, e := range fieldErrors {
		failures = append(failures, dto.ValidationFailure{
			Message: validation.Message(e.Field(), e.Tag(), paramName(e)),
			Param:   e.Field(),
		})
	}
	return apperrors.WithDetails(apperrors.ErrValidation, failures)
}

// paramName maps eqfield's Go field parameter to its json name.
func paramName(e validator.FieldError) string {
	if e.Tag() == "eqfield" && e.Param() != "" {
		return strings.ToLower(e.Param()[:1]) + e.Param()[1:]
	}
	return e.Param()
}

// ValidateRequestBody decodes the JSON body into factory's value, validates it
// and stores it under constants.GinKeyRequestBody for the handler.
func (m *ValidationMiddleware) ValidateRequestBody(factory func() any) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		var bodyBytes []byte
		if c.Request.Body != nil {
			var err error
			bodyBytes, err = io.ReadAll(c.Request.Body)
			if err != nil {
				logger.GetLogger().Warn("Middleware: Failed to read request body",
					zap.String("client_ip", clientIP),
					zap.String("path", c.Request.URL.Path),
					zap.Error(err),
				)
				abortWithError(c, apperrors.WithDetails(apperrors.ErrValidation, []dto.ValidationFailure{
					{Message: "request body could not be read", Param: "body"},
				}))
				return
			}
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		// an absent body is validated as an empty object
		if len(bytes.TrimSpace(bodyBytes)) == 0 {
			bodyBytes = []byte("{}")
		}

		request := factory()
		if err := json.Unmarshal(bodyBytes, request); err != nil {
			logger.GetLogger().Warn("Middleware: JSON unmarshaling failed",
				zap.String("client_ip", clientIP),
				zap.String("path", c.Request.URL.Path),
				zap.Int("body_size", len(bodyBytes)),
				zap.Error(err),
			)
			abortWithError(c, apperrors.WithDetails(apperrors.ErrValidation, []dto.ValidationFailure{
				{Message: err.Error(), Param: "body"},
			}))
			return
		}

		if n, ok := request.(normalizer); ok {
			n.Normalize()
		}

		if err := m.Struct(request); err != nil {
			logger.GetLogger().Warn("Middleware: Request validation failed",
				zap.String("client_ip", clientIP),
				zap.String("path", c.Request.URL.Path),
				zap.Any("details", apperrors.GetErrorDetails(err)),
			)
			abortWithError(c, err)
			return
		}

		c.Set(constants.GinKeyRequestBody, request)
		c.Next()
	}
}
