package routes

import (
	"github.com/gin-gonic/gin"

	"driver_rating/internal/middleware"
)

func StaffRoutes(r *gin.Engine, d Deps) {
	staff := r.Group("/")
	staff.Use(middleware.RequireStaff(d.Issuers.Staff, d.Store))
	{
		staff.GET("/staff/drivers", d.Handler.StaffDrivers)
		staff.POST("/ratings", d.Handler.RateDriver)
	}
}
