package models

import "time"

const (
	MinScore = 1
	MaxScore = 5
)

// DriverRating is immutable once written. Department is the rater's
// department at submission time.
type DriverRating struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	DriverID   uint       `gorm:"not null;index" json:"driver_id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	Department Department `gorm:"size:32;not null" json:"department"`
	Score      int        `gorm:"not null;check:chk_driver_ratings_score,score BETWEEN 1 AND 5" json:"score"`
	Comment    *string    `gorm:"size:2000" json:"comment"`
	CreatedAt  time.Time  `json:"created_at"`
}
