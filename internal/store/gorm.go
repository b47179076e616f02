package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"driver_rating/internal/models"
)

// GormStore is the PostgreSQL-backed Store.
type GormStore struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the tables, indexes and constraints.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

func (s *GormStore) CreateCompany(ctx context.Context, company *models.Company) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Company{}).Where("email = ?", company.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("check company email: %w", err)
		}
		if count > 0 {
			return errEmailTaken
		}
		if err := tx.Create(company).Error; err != nil {
			if _, ok := uniqueViolation(err); ok {
				return errEmailTaken
			}
			return fmt.Errorf("create company: %w", err)
		}
		return nil
	})
}

func (s *GormStore) CompanyByID(ctx context.Context, id uint) (*models.Company, error) {
	var company models.Company
	if err := s.db.WithContext(ctx).First(&company, id).Error; err != nil {
		return nil, notFoundOr(err, errCompanyNotFound)
	}
	return &company, nil
}

func (s *GormStore) CompanyByEmail(ctx context.Context, email string) (*models.Company, error) {
	var company models.Company
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&company).Error; err != nil {
		return nil, notFoundOr(err, errCompanyNotFound)
	}
	return &company, nil
}

func (s *GormStore) StaffByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, errStaffNotFound)
	}
	return &user, nil
}

func (s *GormStore) StaffByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFoundOr(err, errStaffNotFound)
	}
	return &user, nil
}

func (s *GormStore) ForCompany(companyID uint) Tenant {
	return &gormTenant{db: s.db, companyID: companyID}
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type gormTenant struct {
	db        *gorm.DB
	companyID uint
}

func (t *gormTenant) CompanyID() uint { return t.companyID }

func (t *gormTenant) ownStaff(db *gorm.DB) *gorm.DB {
	return db.Where("company_id = ?", t.companyID)
}

func (t *gormTenant) ownDrivers(db *gorm.DB) *gorm.DB {
	return db.Where("created_by_company_id = ?", t.companyID)
}

func (t *gormTenant) InviteStaff(ctx context.Context, user *models.User) error {
	user.CompanyID = t.companyID
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := t.departmentQuery(tx, user.Department).Count(&count).Error; err != nil {
			return fmt.Errorf("check department: %w", err)
		}
		if count > 0 {
			return errDepartmentTaken(user.Department)
		}

		if err := tx.Create(user).Error; err != nil {
			return inviteConflict(err, user.Department)
		}
		return nil
	})
}

// departmentQuery selects the tenant's staff holding department.
func (t *gormTenant) departmentQuery(tx *gorm.DB, department models.Department) *gorm.DB {
	return t.ownStaff(tx.Model(&models.User{})).Where("department = ?", department)
}

// inviteConflict maps a failed staff insert. The unique index on
// (company_id, department) backs the pre-check; any other unique violation
// on users is the email.
func inviteConflict(err error, department models.Department) error {
	constraint, ok := uniqueViolation(err)
	if !ok {
		return fmt.Errorf("create staff user: %w", err)
	}
	if constraint == constraintCompanyDepartment {
		return errDepartmentTaken(department)
	}
	return errEmailTaken
}

func (t *gormTenant) ListStaff(ctx context.Context) ([]models.User, error) {
	var staff []models.User
	if err := t.db.WithContext(ctx).Scopes(t.ownStaff).Order("id").Find(&staff).Error; err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	return staff, nil
}

func (t *gormTenant) CreateDriver(ctx context.Context, driver *models.Driver) error {
	driver.CreatedByCompanyID = t.companyID
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Driver{}).Where("license_number = ?", driver.LicenseNumber).Count(&count).Error; err != nil {
			return fmt.Errorf("check license number: %w", err)
		}
		if count > 0 {
			return errDriverExists
		}
		if err := tx.Create(driver).Error; err != nil {
			if _, ok := uniqueViolation(err); ok {
				return errDriverExists
			}
			return fmt.Errorf("create driver: %w", err)
		}
		return nil
	})
}

func (t *gormTenant) Driver(ctx context.Context, id uint) (*models.Driver, error) {
	var driver models.Driver
	if err := t.db.WithContext(ctx).Scopes(t.ownDrivers).Where("id = ?", id).First(&driver).Error; err != nil {
		return nil, notFoundOr(err, errDriverNotFound)
	}
	return &driver, nil
}

func (t *gormTenant) searchQuery(ctx context.Context, f DriverFilter) *gorm.DB {
	// tenant predicate first so it is always the leading condition
	q := t.ownDrivers(t.db.WithContext(ctx).Model(&models.Driver{}))
	if f.Name != "" {
		q = q.Where("name ILIKE ?", "%"+escapeLike(f.Name)+"%")
	}
	if f.DOB != nil {
		q = q.Where("dob = ?", dateOnly(*f.DOB))
	}
	return q.Order("id").Limit(f.Limit).Offset(f.Offset)
}

func (t *gormTenant) SearchDrivers(ctx context.Context, filter DriverFilter) ([]models.Driver, error) {
	f, err := filter.Normalize()
	if err != nil {
		return nil, err
	}
	var drivers []models.Driver
	if err := t.searchQuery(ctx, f).Find(&drivers).Error; err != nil {
		return nil, fmt.Errorf("search drivers: %w", err)
	}
	return drivers, nil
}

func (t *gormTenant) ListDrivers(ctx context.Context) ([]models.Driver, error) {
	var drivers []models.Driver
	if err := t.db.WithContext(ctx).Scopes(t.ownDrivers).Order("id").Find(&drivers).Error; err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	return drivers, nil
}

func (t *gormTenant) RateDriver(ctx context.Context, rating *models.DriverRating) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var driver models.Driver
		if err := driverOwnerQuery(tx, rating.DriverID).First(&driver).Error; err != nil {
			return notFoundOr(err, errDriverNotFound)
		}
		if err := t.checkOwner(driver); err != nil {
			return err
		}
		if err := tx.Create(rating).Error; err != nil {
			return fmt.Errorf("create rating: %w", err)
		}
		return nil
	})
}

// driverOwnerQuery looks a driver up across all tenants: a foreign driver
// is Forbidden, not NotFound.
func driverOwnerQuery(tx *gorm.DB, driverID uint) *gorm.DB {
	return tx.Model(&models.Driver{}).Select("id", "created_by_company_id").Where("id = ?", driverID)
}

func (t *gormTenant) checkOwner(driver models.Driver) error {
	if driver.CreatedByCompanyID != t.companyID {
		return errForeignDriver
	}
	return nil
}

func (t *gormTenant) DriverRatings(ctx context.Context, driverID uint) ([]models.DriverRating, error) {
	if _, err := t.Driver(ctx, driverID); err != nil {
		return nil, err
	}
	var ratings []models.DriverRating
	if err := t.db.WithContext(ctx).Where("driver_id = ?", driverID).Order("id").Find(&ratings).Error; err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return ratings, nil
}

func notFoundOr(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
