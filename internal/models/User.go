package models

import "time"

// User is a staff member invited by a company into one department.
type User struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Name              string     `gorm:"size:100;not null" json:"name"`
	Email             string     `gorm:"size:255;not null;uniqueIndex:uq_users_email" json:"email"`
	Password          string     `gorm:"size:255;not null" json:"-"`
	MustResetPassword bool       `gorm:"not null;default:true" json:"must_reset_password"`
	Department        Department `gorm:"size:32;not null;uniqueIndex:uq_company_department,priority:2" json:"department"`
	CompanyID         uint       `gorm:"not null;index;uniqueIndex:uq_company_department,priority:1" json:"company_id"`
	CreatedAt         time.Time  `json:"created_at"`

	Ratings []DriverRating `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
