package router

import (
	"github.com/Payphone-Digital/auth-service/internal/dto"
	"github.com/gin-gonic/gin"
)

func (r *Router) userRoutes(users *gin.RouterGroup) {
	// All routes below require a bearer token
	protected := users.Group("")
	protected.Use(r.jwtMw.RequireAuth())
	{
		protected.PUT("/change-password",
			r.validMw.ValidateRequestBody(func() any { return &dto.ChangePasswordRequest{} }),
			r.userHandler.ChangePassword,
		)

		protected.GET("", r.userHandler.List)
		protected.GET("/me", r.userHandler.Me)
		protected.GET("/:id", r.userHandler.GetByID)
	}
}
