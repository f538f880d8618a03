package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/abhigupta0507/NadiRakshak-Backend/internal/adapters/http/api/v1/handlers"
)

type Router struct {
	handlers  *handlers.AuthHandler
	authMW    echo.MiddlewareFunc
	sessionMW echo.MiddlewareFunc
}

func NewRouter(h *handlers.AuthHandler, authMW, sessionMW echo.MiddlewareFunc) *Router {
	return &Router{handlers: h, authMW: authMW, sessionMW: sessionMW}
}

func (r *Router) Register(g *echo.Group) {
	auth := g.Group("/auth")

	signup := auth.Group("/signup", r.sessionMW)
	signup.POST("/initiate", r.handlers.SignupInitiate)
	signup.POST("/verify", r.handlers.SignupVerify)

	auth.POST("/login", r.handlers.Login)
	auth.POST("/refresh", r.handlers.Refresh)
	auth.POST("/forgot-password", r.handlers.ForgotPassword)
	auth.POST("/reset-password/:token", r.handlers.ResetPassword)
	auth.POST("/verify", r.handlers.VerifyToken)

	protected := auth.Group("", r.authMW)
	protected.POST("/logout", r.handlers.Logout)
	protected.POST("/profile", r.handlers.Profile)
}
