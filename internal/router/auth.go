package router

import (
	"github.com/Payphone-Digital/auth-service/internal/dto"
	"github.com/gin-gonic/gin"
)

func (r *Router) authRoutes(users *gin.RouterGroup) {
	// Public routes, rate limited per client IP
	public := users.Group("")
	public.Use(r.rateLimited())
	{
		public.POST("/register",
			r.validMw.ValidateRequestBody(func() any { return &dto.RegisterRequest{} }),
			r.authHandler.Register,
		)
		public.POST("/login",
			r.validMw.ValidateRequestBody(func() any { return &dto.LoginRequest{} }),
			r.authHandler.Login,
		)
	}
}
