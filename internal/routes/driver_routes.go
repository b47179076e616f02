package routes

import (
	"github.com/gin-gonic/gin"

	"driver_rating/internal/middleware"
)

func DriverRoutes(r *gin.Engine, d Deps) {
	drivers := r.Group("/drivers")
	drivers.Use(middleware.RequireCompany(d.Issuers.Company, d.Store))
	{
		drivers.POST("", d.Handler.CreateDriver)
		drivers.GET("/search", d.Handler.SearchDrivers)
		drivers.GET("/:id", d.Handler.GetDriver)
		drivers.GET("/:id/ratings", d.Handler.DriverRatings)
	}
}
