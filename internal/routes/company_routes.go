package routes

import (
	"github.com/gin-gonic/gin"

	"driver_rating/internal/middleware"
)

func CompanyRoutes(r *gin.Engine, d Deps) {
	company := r.Group("/")
	company.Use(middleware.RequireCompany(d.Issuers.Company, d.Store))
	{
		company.GET("/company/me", d.Handler.CompanyMe)
		company.GET("/company/staff", d.Handler.ListStaff)
		company.POST("/invite-user", d.Handler.InviteUser)
	}
}
