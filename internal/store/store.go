// Package store persists companies, staff, drivers and ratings.
//
// Everything a principal may touch after authentication goes through a Tenant,
// a view whose every query is restricted to one company. Store itself only
// exposes what is needed before a tenant is known: registration and principal
// lookup.
package store

import (
	"context"
	"fmt"
	"time"

	"driver_rating/internal/apperr"
	"driver_rating/internal/models"
)

const (
	DefaultSearchLimit = 50
	MaxSearchLimit     = 200
)

type Store interface {
	// CreateCompany fails with Conflict when the email is taken.
	CreateCompany(ctx context.Context, company *models.Company) error
	CompanyByID(ctx context.Context, id uint) (*models.Company, error)
	CompanyByEmail(ctx context.Context, email string) (*models.Company, error)
	StaffByID(ctx context.Context, id uint) (*models.User, error)
	StaffByEmail(ctx context.Context, email string) (*models.User, error)

	// ForCompany returns the view scoped to companyID.
	ForCompany(companyID uint) Tenant

	Ping(ctx context.Context) error
	Close() error
}

// Tenant is the only way handlers read or write tenant data.
type Tenant interface {
	CompanyID() uint

	// InviteStaff sets user.CompanyID to the tenant and fails with Conflict
	// when the department is already staffed or the email is taken.
	InviteStaff(ctx context.Context, user *models.User) error
	ListStaff(ctx context.Context) ([]models.User, error)

	// CreateDriver sets driver.CreatedByCompanyID to the tenant. License
	// numbers are unique across all tenants.
	CreateDriver(ctx context.Context, driver *models.Driver) error
	Driver(ctx context.Context, id uint) (*models.Driver, error)
	SearchDrivers(ctx context.Context, filter DriverFilter) ([]models.Driver, error)
	ListDrivers(ctx context.Context) ([]models.Driver, error)

	// RateDriver fails with NotFound when the driver does not exist at all
	// and with Forbidden when it belongs to another tenant.
	RateDriver(ctx context.Context, rating *models.DriverRating) error
	// DriverRatings fails with NotFound when the driver is absent or foreign.
	DriverRatings(ctx context.Context, driverID uint) ([]models.DriverRating, error)
}

// DriverFilter narrows SearchDrivers. Zero values mean no filter.
type DriverFilter struct {
	Name   string
	DOB    *time.Time
	Limit  int
	Offset int
}

// Normalize applies the default limit and rejects out-of-range paging.
func (f DriverFilter) Normalize() (DriverFilter, error) {
	if f.Limit == 0 {
		f.Limit = DefaultSearchLimit
	}
	if f.Limit < 1 || f.Limit > MaxSearchLimit {
		return f, apperr.InvalidInput(fmt.Sprintf("limit must be between 1 and %d", MaxSearchLimit))
	}
	if f.Offset < 0 {
		return f, apperr.InvalidInput("offset must not be negative")
	}
	return f, nil
}

var (
	errEmailTaken      = apperr.Conflict("Email already registered")
	errDriverExists    = apperr.Conflict("Driver already exists")
	errDriverNotFound  = apperr.NotFound("Driver not found")
	errCompanyNotFound = apperr.NotFound("Company not found")
	errStaffNotFound   = apperr.NotFound("Staff user not found")
	errForeignDriver   = apperr.Forbidden("You can only rate drivers from your company")
)

func errDepartmentTaken(d models.Department) error {
	return apperr.Conflict(fmt.Sprintf("%s already exists in your company", d))
}

func dateOnly(t time.Time) string {
	return t.Format(time.DateOnly)
}
