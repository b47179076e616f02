package routes

import "github.com/gin-gonic/gin"

func HealthRoutes(r *gin.Engine, d Deps) {
	r.GET("/healthz", d.Handler.Healthz)
	r.GET("/readyz", d.Handler.Readyz)
	r.GET("/ping", d.Handler.Ping)
	r.GET("/favicon.ico", d.Handler.Favicon)
}
