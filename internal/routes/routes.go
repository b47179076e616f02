package routes

import (
	"io"
	"time"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"driver_rating/internal/auth"
	"driver_rating/internal/controllers"
	"driver_rating/internal/middleware"
	"driver_rating/internal/ratelimit"
	"driver_rating/internal/store"
)

type Deps struct {
	Handler *controllers.Handler
	Store   store.Store
	Issuers auth.Issuers

	Limiter         ratelimit.Limiter
	LoginRateLimit  int
	LoginRateWindow time.Duration

	// AccessLog receives one line per request. Nil disables access logging.
	AccessLog io.Writer
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	if d.AccessLog != nil {
		r.Use(ginlog.SetLogger(
			ginlog.WithWriter(d.AccessLog),
			ginlog.WithSkipPath([]string{"/healthz", "/readyz"}),
			ginlog.WithUTC(true),
		))
	}

	HealthRoutes(r, d)
	AuthRoutes(r, d)
	CompanyRoutes(r, d)
	DriverRoutes(r, d)
	StaffRoutes(r, d)

	return r
}
