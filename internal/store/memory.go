package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"driver_rating/internal/models"
)

// Memory is a process-local Store with the same constraint semantics as the
// PostgreSQL schema. It backs DB_DRIVER=memory and the handler tests.
type Memory struct {
	mu        sync.RWMutex
	now       func() time.Time
	nextID    map[string]uint
	companies map[uint]models.Company
	users     map[uint]models.User
	drivers   map[uint]models.Driver
	ratings   map[uint]models.DriverRating
}

func NewMemory() *Memory {
	return &Memory{
		now:       time.Now,
		nextID:    make(map[string]uint),
		companies: make(map[uint]models.Company),
		users:     make(map[uint]models.User),
		drivers:   make(map[uint]models.Driver),
		ratings:   make(map[uint]models.DriverRating),
	}
}

func (m *Memory) id(table string) uint {
	m.nextID[table]++
	return m.nextID[table]
}

func (m *Memory) CreateCompany(_ context.Context, company *models.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.companies {
		if c.Email == company.Email {
			return errEmailTaken
		}
	}
	company.ID = m.id("companies")
	company.CreatedAt = m.now().UTC()
	m.companies[company.ID] = *company
	return nil
}

func (m *Memory) CompanyByID(_ context.Context, id uint) (*models.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.companies[id]
	if !ok {
		return nil, errCompanyNotFound
	}
	return &c, nil
}

func (m *Memory) CompanyByEmail(_ context.Context, email string) (*models.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.companies {
		if c.Email == email {
			return &c, nil
		}
	}
	return nil, errCompanyNotFound
}

func (m *Memory) StaffByID(_ context.Context, id uint) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, errStaffNotFound
	}
	return &u, nil
}

func (m *Memory) StaffByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, errStaffNotFound
}

func (m *Memory) ForCompany(companyID uint) Tenant {
	return &memTenant{m: m, companyID: companyID}
}

func (m *Memory) Ping(context.Context) error { return nil }
func (m *Memory) Close() error               { return nil }

type memTenant struct {
	m         *Memory
	companyID uint
}

func (t *memTenant) CompanyID() uint { return t.companyID }

func (t *memTenant) InviteStaff(_ context.Context, user *models.User) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	user.CompanyID = t.companyID
	for _, u := range t.m.users {
		if u.CompanyID == t.companyID && u.Department == user.Department {
			return errDepartmentTaken(user.Department)
		}
	}
	for _, u := range t.m.users {
		if u.Email == user.Email {
			return errEmailTaken
		}
	}
	user.ID = t.m.id("users")
	user.CreatedAt = t.m.now().UTC()
	t.m.users[user.ID] = *user
	return nil
}

func (t *memTenant) ListStaff(context.Context) ([]models.User, error) {
	t.m.mu.RLock()
	defer t.m.mu.RUnlock()
	staff := []models.User{}
	for _, u := range t.m.users {
		if u.CompanyID == t.companyID {
			staff = append(staff, u)
		}
	}
	sort.Slice(staff, func(i, j int) bool { return staff[i].ID < staff[j].ID })
	return staff, nil
}

func (t *memTenant) CreateDriver(_ context.Context, driver *models.Driver) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	for _, d := range t.m.drivers {
		if d.LicenseNumber == driver.LicenseNumber {
			return errDriverExists
		}
	}
	driver.CreatedByCompanyID = t.companyID
	driver.ID = t.m.id("drivers")
	driver.CreatedAt = t.m.now().UTC()
	t.m.drivers[driver.ID] = *driver
	return nil
}

func (t *memTenant) Driver(_ context.Context, id uint) (*models.Driver, error) {
	t.m.mu.RLock()
	defer t.m.mu.RUnlock()
	d, ok := t.m.drivers[id]
	if !ok || d.CreatedByCompanyID != t.companyID {
		return nil, errDriverNotFound
	}
	return &d, nil
}

func (t *memTenant) ownDrivers(match func(models.Driver) bool) []models.Driver {
	drivers := []models.Driver{}
	for _, d := range t.m.drivers {
		if d.CreatedByCompanyID == t.companyID && match(d) {
			drivers = append(drivers, d)
		}
	}
	sort.Slice(drivers, func(i, j int) bool { return drivers[i].ID < drivers[j].ID })
	return drivers
}

func (t *memTenant) SearchDrivers(_ context.Context, filter DriverFilter) ([]models.Driver, error) {
	f, err := filter.Normalize()
	if err != nil {
		return nil, err
	}
	name := strings.ToLower(f.Name)

	t.m.mu.RLock()
	defer t.m.mu.RUnlock()
	drivers := t.ownDrivers(func(d models.Driver) bool {
		if name != "" && !strings.Contains(strings.ToLower(d.Name), name) {
			return false
		}
		if f.DOB != nil && dateOnly(d.DOB) != dateOnly(*f.DOB) {
			return false
		}
		return true
	})

	if f.Offset >= len(drivers) {
		return []models.Driver{}, nil
	}
	end := f.Offset + f.Limit
	if end > len(drivers) {
		end = len(drivers)
	}
	return drivers[f.Offset:end], nil
}

func (t *memTenant) ListDrivers(context.Context) ([]models.Driver, error) {
	t.m.mu.RLock()
	defer t.m.mu.RUnlock()
	return t.ownDrivers(func(models.Driver) bool { return true }), nil
}

func (t *memTenant) RateDriver(_ context.Context, rating *models.DriverRating) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	d, ok := t.m.drivers[rating.DriverID]
	if !ok {
		return errDriverNotFound
	}
	if d.CreatedByCompanyID != t.companyID {
		return errForeignDriver
	}
	rating.ID = t.m.id("driver_ratings")
	rating.CreatedAt = t.m.now().UTC()
	t.m.ratings[rating.ID] = *rating
	return nil
}

func (t *memTenant) DriverRatings(ctx context.Context, driverID uint) ([]models.DriverRating, error) {
	if _, err := t.Driver(ctx, driverID); err != nil {
		return nil, err
	}
	t.m.mu.RLock()
	defer t.m.mu.RUnlock()
	ratings := []models.DriverRating{}
	for _, r := range t.m.ratings {
		if r.DriverID == driverID {
			ratings = append(ratings, r)
		}
	}
	sort.Slice(ratings, func(i, j int) bool { return ratings[i].ID < ratings[j].ID })
	return ratings, nil
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*GormStore)(nil)
)
