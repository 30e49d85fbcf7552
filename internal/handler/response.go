package handler

import (
	"errors"

	"github.com/Payphone-Digital/auth-service/internal/constants"
	apperrors "github.com/Payphone-Digital/auth-service/internal/errors"
	"github.com/gin-gonic/gin"
)

// respondError writes the standard {name, message, statusCode, details?} body.
func respondError(c *gin.Context, err error) {
	status := apperrors.ToHTTPStatus(err)
	c.JSON(status, constants.BuildErrorResponse(
		string(apperrors.KindOf(err)),
		apperrors.GetErrorMessage(err),
		status,
		apperrors.GetErrorDetails(err),
	))
}

// requestBody returns the body decoded and validated by the validation
// middleware.
func requestBody[T any](c *gin.Context) (*T, error) {
	value, exists := c.Get(constants.GinKeyRequestBody)
	if !exists {
		return nil, apperrors.WrapError(apperrors.ErrUnexpected, errors.New("request body was not validated"))
	}
	body, ok := value.(*T)
	if !ok {
		return nil, apperrors.WrapError(apperrors.ErrUnexpected, errors.New("request body has an unexpected type"))
	}
	return body, nil
}
