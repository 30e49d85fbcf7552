package handler

import (
	"net/http"

	"github.com/Payphone-Digital/auth-service/internal/constants"
	"github.com/Payphone-Digital/auth-service/internal/dto"
	"github.com/Payphone-Digital/auth-service/internal/service"
	ctxutil "github.com/Payphone-Digital/auth-service/pkg/context"
	"github.com/Payphone-Digital/auth-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userService *service.UserService
}

func NewAuthHandler(userService *service.UserService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
	}
}

// Register creates an account. No token is issued; the client logs in next.
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Register")

	req, err := requestBody[dto.RegisterRequest](c)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := h.userService.Register(ctx, *req)
	if err != nil {
		logger.WarnWithContext(ctx, "Registration failed").
			String("username", req.Username).
			Err(err).
			Log()
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, constants.BuildSuccessResponse(constants.MsgUserRegistered, http.StatusCreated, user))
}

// Login exchanges a username or email plus password for a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Login")

	req, err := requestBody[dto.LoginRequest](c)
	if err != nil {
		respondError(c, err)
		return
	}

	response, err := h.userService.Login(ctx, *req)
	if err != nil {
		logger.WarnWithContext(ctx, "Login failed").
			Err(err).
			Log()
		respondError(c, err)
		return
	}

	logger.InfoWithContext(ctx, "User logged in successfully").
		Uint("user_id", response.ID).
		Log()

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgUserLoggedIn, http.StatusOK, response))
}
