package models

import "time"

// Company is a tenant. Its staff and drivers are removed with it.
type Company struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex:uq_companies_email" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Address   string    `gorm:"size:200" json:"address"`
	CreatedAt time.Time `json:"created_at"`

	Staff   []User   `gorm:"foreignKey:CompanyID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Drivers []Driver `gorm:"foreignKey:CreatedByCompanyID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// All lists the models in migration order.
func All() []interface{} {
	return []interface{}{&Company{}, &User{}, &Driver{}, &DriverRating{}}
}
