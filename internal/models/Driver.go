package models

import "time"

type Driver struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Name               string    `gorm:"size:120;not null" json:"name"`
	DOB                time.Time `gorm:"type:date;not null" json:"dob"`
	LicenseNumber      string    `gorm:"size:64;not null;uniqueIndex:uq_driver_license" json:"license_number"`
	CreatedByCompanyID uint      `gorm:"not null;index" json:"created_by_company_id"`
	CreatedAt          time.Time `json:"created_at"`

	Ratings []DriverRating `gorm:"foreignKey:DriverID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
