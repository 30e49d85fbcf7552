package middleware

import (
	"github.com/Payphone-Digital/auth-service/internal/constants"
	apperrors "github.com/Payphone-Digital/auth-service/internal/errors"
	"github.com/gin-gonic/gin"
)

// abortWithError writes the standard error body for err and stops the chain.
func abortWithError(c *gin.Context, err error) {
	status := apperrors.ToHTTPStatus(err)
	c.AbortWithStatusJSON(status, constants.BuildErrorResponse(
		string(apperrors.KindOf(err)),
		apperrors.GetErrorMessage(err),
		status,
		apperrors.GetErrorDetails(err),
	))
}
