package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"driver_rating/internal/apperr"
	"driver_rating/internal/middleware"
	"driver_rating/internal/models"
	"driver_rating/internal/store"
)

type createDriverInput struct {
	Name          string `json:"name" binding:"required,min=2,max=120"`
	DOB           string `json:"dob" binding:"required"`
	LicenseNumber string `json:"license_number" binding:"required,min=3,max=64"`
}

type searchDriversQuery struct {
	Name   string `form:"name"`
	DOB    string `form:"dob"`
	Limit  int    `form:"limit,default=50" binding:"min=1,max=200"`
	Offset int    `form:"offset,default=0" binding:"min=0"`
}

type driverResponse struct {
	ID                 uint      `json:"id"`
	Name               string    `json:"name"`
	DOB                string    `json:"dob"`
	LicenseNumber      string    `json:"license_number"`
	CreatedByCompanyID uint      `json:"created_by_company_id"`
	CreatedAt          time.Time `json:"created_at"`
}

func newDriverResponse(d models.Driver) driverResponse {
	return driverResponse{
		ID:                 d.ID,
		Name:               d.Name,
		DOB:                d.DOB.Format(time.DateOnly),
		LicenseNumber:      d.LicenseNumber,
		CreatedByCompanyID: d.CreatedByCompanyID,
		CreatedAt:          d.CreatedAt,
	}
}

func newDriverList(drivers []models.Driver) []driverResponse {
	out := make([]driverResponse, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, newDriverResponse(d))
	}
	return out
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, apperr.InvalidInput(field + " must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

func parseDriverID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.InvalidInput("Invalid driver id")
	}
	return uint(id), nil
}

// CreateDriver handles POST /drivers.
func (h *Handler) CreateDriver(c *gin.Context) {
	var input createDriverInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondError(c, bindError(err))
		return
	}
	dob, err := parseDate("dob", input.DOB)
	if err != nil {
		h.respondError(c, err)
		return
	}

	driver := models.Driver{
		Name:          strings.TrimSpace(input.Name),
		DOB:           dob,
		LicenseNumber: strings.TrimSpace(input.LicenseNumber),
	}
	if err := middleware.Tenant(c).CreateDriver(c.Request.Context(), &driver); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDriverResponse(driver))
}

// SearchDrivers handles GET /drivers/search.
func (h *Handler) SearchDrivers(c *gin.Context) {
	var q searchDriversQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.respondError(c, bindError(err))
		return
	}
	// limit and offset are range-checked by the binding tags
	filter := store.DriverFilter{
		Name:   strings.TrimSpace(q.Name),
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	if q.DOB != "" {
		dob, err := parseDate("dob", q.DOB)
		if err != nil {
			h.respondError(c, err)
			return
		}
		filter.DOB = &dob
	}

	drivers, err := middleware.Tenant(c).SearchDrivers(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDriverList(drivers))
}

// GetDriver handles GET /drivers/:id.
func (h *Handler) GetDriver(c *gin.Context) {
	id, err := parseDriverID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	driver, err := middleware.Tenant(c).Driver(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDriverResponse(*driver))
}

// StaffDrivers handles GET /staff/drivers: the drivers of the caller's company.
func (h *Handler) StaffDrivers(c *gin.Context) {
	drivers, err := middleware.Tenant(c).ListDrivers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDriverList(drivers))
}
