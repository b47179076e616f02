package routes

import (
	"github.com/gin-gonic/gin"

	"driver_rating/internal/auth"
	"driver_rating/internal/middleware"
)

func AuthRoutes(r *gin.Engine, d Deps) {
	throttle := func(scope auth.Scope) gin.HandlerFunc {
		return middleware.LoginThrottle(d.Limiter, string(scope), d.LoginRateLimit, d.LoginRateWindow)
	}

	r.POST("/register", d.Handler.RegisterCompany)
	r.POST("/login", throttle(auth.ScopeCompany), d.Handler.Login)
	r.POST("/staff-login", throttle(auth.ScopeStaff), d.Handler.StaffLogin)
}
