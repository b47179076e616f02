package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"driver_rating/internal/apperr"
	"driver_rating/internal/middleware"
	"driver_rating/internal/models"
)

type rateDriverInput struct {
	DriverID *uint   `json:"driver_id" binding:"required"`
	Score    *int    `json:"score" binding:"required"`
	Comment  *string `json:"comment" binding:"omitempty,max=2000"`
}

type ratingResponse struct {
	ID         uint              `json:"id"`
	DriverID   uint              `json:"driver_id"`
	UserID     uint              `json:"user_id"`
	Department models.Department `json:"department"`
	Score      int               `json:"score"`
	Comment    *string           `json:"comment"`
	CreatedAt  time.Time         `json:"created_at"`
}

func newRatingResponse(r models.DriverRating) ratingResponse {
	return ratingResponse{
		ID:         r.ID,
		DriverID:   r.DriverID,
		UserID:     r.UserID,
		Department: r.Department,
		Score:      r.Score,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}

var errScoreRange = apperr.InvalidInput(fmt.Sprintf("score must be between %d and %d", models.MinScore, models.MaxScore))

// RateDriver handles POST /ratings. The rater's department is copied onto the
// rating as it is at submission time.
func (h *Handler) RateDriver(c *gin.Context) {
	// 1) Bind the payload. driver_id must be present; an id that matches no
	//    driver is answered by the store with 404.
	var input rateDriverInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	// 2) Score range is checked here so 0 and 6 get a clear message.
	if *input.Score < models.MinScore || *input.Score > models.MaxScore {
		h.respondError(c, errScoreRange)
		return
	}
	if input.Comment != nil {
		trimmed := strings.TrimSpace(*input.Comment)
		if trimmed == "" {
			input.Comment = nil
		} else {
			input.Comment = &trimmed
		}
	}

	// 3) Snapshot the rater's department onto the rating.
	staff := middleware.CurrentStaff(c)
	rating := models.DriverRating{
		DriverID:   *input.DriverID,
		UserID:     staff.ID,
		Department: staff.Department,
		Score:      *input.Score,
		Comment:    input.Comment,
	}

	// 4) The tenant view rejects unknown (404) and foreign (403) drivers.
	if err := middleware.Tenant(c).RateDriver(c.Request.Context(), &rating); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRatingResponse(rating))
}

// DriverRatings handles GET /drivers/:id/ratings.
func (h *Handler) DriverRatings(c *gin.Context) {
	id, err := parseDriverID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ratings, err := middleware.Tenant(c).DriverRatings(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	out := make([]ratingResponse, 0, len(ratings))
	for _, r := range ratings {
		out = append(out, newRatingResponse(r))
	}
	c.JSON(http.StatusOK, out)
}
