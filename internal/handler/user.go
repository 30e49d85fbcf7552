package handler

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"github.com/Payphone-Digital/auth-service/internal/constants"
	"github.com/Payphone-Digital/auth-service/internal/dto"
	apperrors "github.com/Payphone-Digital/auth-service/internal/errors"
	"github.com/Payphone-Digital/auth-service/internal/middleware"
	"github.com/Payphone-Digital/auth-service/internal/service"
	ctxutil "github.com/Payphone-Digital/auth-service/pkg/context"
	"github.com/Payphone-Digital/auth-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

var userIDPattern = regexp.MustCompile(constants.UserIDPattern)

type UserHandler struct {
	service *service.UserService
}

func NewUserHandler(service *service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func identityOrAbort(c *gin.Context) (dto.Identity, bool) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, apperrors.WrapError(apperrors.ErrUnauthorized, errors.New("no identity on request")))
	}
	return identity, ok
}

// ChangePassword replaces the caller's password.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "ChangePassword")

	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}

	req, err := requestBody[dto.ChangePasswordRequest](c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.service.ChangePassword(ctx, identity, req.Password); err != nil {
		logger.WarnWithContext(ctx, "Password change failed").
			Uint("user_id", identity.ID).
			Err(err).
			Log()
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		constants.ResponseFieldMessage:    constants.MsgPasswordUpdated,
		constants.ResponseFieldStatusCode: http.StatusOK,
	})
}

func (h *UserHandler) List(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "List")

	users, err := h.service.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildListResponse(constants.MsgUserListFetched, http.StatusOK, users, len(users)))
}

// Me returns the authenticated caller's profile.
func (h *UserHandler) Me(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Me")

	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}

	user, err := h.service.GetByID(ctx, identity.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgUserFetched, http.StatusOK, user))
}

func (h *UserHandler) GetByID(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "GetByID")

	idParam := c.Param("id")
	if !userIDPattern.MatchString(idParam) {
		logger.WarnWithContext(ctx, "Invalid user ID").
			String("id", idParam).
			Log()
		respondError(c, apperrors.ErrInvalidID)
		return
	}

	id, err := strconv.ParseUint(idParam, 10, 0)
	if err != nil || id == 0 {
		// out of range for this platform or zero; no such user either way
		respondError(c, apperrors.NewDomainError(apperrors.KindNotFound,
			fmt.Sprintf("The user with ID %s was not found or doesn't exist.", idParam)))
		return
	}

	user, err := h.service.GetByID(ctx, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgUserFetched, http.StatusOK, user))
}
