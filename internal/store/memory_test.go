package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"driver_rating/internal/apperr"
	"driver_rating/internal/models"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func seedCompany(t *testing.T, s Store, email string) Tenant {
	t.Helper()
	c := &models.Company{Name: "Co " + email, Email: email, Password: "x", Address: "Main St"}
	if err := s.CreateCompany(context.Background(), c); err != nil {
		t.Fatalf("create company: %v", err)
	}
	return s.ForCompany(c.ID)
}

func TestCreateCompanyRejectsDuplicateEmail(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	first := &models.Company{Name: "One", Email: "c1@x.com"}
	if err := s.CreateCompany(ctx, first); err != nil {
		t.Fatalf("first create: %v", err)
	}
	err := s.CreateCompany(ctx, &models.Company{Name: "Two", Email: "c1@x.com"})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	got, err := s.CompanyByEmail(ctx, "c1@x.com")
	if err != nil || got.ID != first.ID {
		t.Fatalf("expected first company to survive, got %+v, %v", got, err)
	}
}

func TestInviteStaffOnePerDepartment(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	a := seedCompany(t, s, "a@x.com")
	b := seedCompany(t, s, "b@x.com")

	if err := a.InviteStaff(ctx, &models.User{Name: "S1", Email: "s1@a.com", Department: models.DepartmentDispatch}); err != nil {
		t.Fatalf("invite: %v", err)
	}
	err := a.InviteStaff(ctx, &models.User{Name: "S2", Email: "s2@a.com", Department: models.DepartmentDispatch})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict for second dispatch user, got %v", err)
	}
	if apperr.Message(err) != "dispatch already exists in your company" {
		t.Fatalf("unexpected message %q", apperr.Message(err))
	}

	// Another tenant may staff the same department.
	if err := b.InviteStaff(ctx, &models.User{Name: "S3", Email: "s3@b.com", Department: models.DepartmentDispatch}); err != nil {
		t.Fatalf("invite in other tenant: %v", err)
	}
	// Emails are globally unique.
	err = b.InviteStaff(ctx, &models.User{Name: "S4", Email: "s1@a.com", Department: models.DepartmentHR})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict for reused email, got %v", err)
	}

	staff, err := a.ListStaff(ctx)
	if err != nil {
		t.Fatalf("list staff: %v", err)
	}
	if len(staff) != 1 || staff[0].CompanyID != a.CompanyID() {
		t.Fatalf("expected exactly tenant A's staff, got %+v", staff)
	}
}

func TestSearchDriversStaysInTenant(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	a := seedCompany(t, s, "a@x.com")
	b := seedCompany(t, s, "b@x.com")

	mustDriver := func(tn Tenant, name, dob, license string) *models.Driver {
		d := &models.Driver{Name: name, DOB: date(t, dob), LicenseNumber: license}
		if err := tn.CreateDriver(ctx, d); err != nil {
			t.Fatalf("create driver %s: %v", license, err)
		}
		return d
	}
	mustDriver(a, "John Smith", "1990-01-02", "A-1")
	mustDriver(a, "Johnny Cash", "1985-05-05", "A-2")
	mustDriver(b, "John Smith", "1990-01-02", "B-1")

	got, err := a.SearchDrivers(ctx, DriverFilter{Name: "JOHN"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 drivers, got %d", len(got))
	}
	for _, d := range got {
		if d.CreatedByCompanyID != a.CompanyID() {
			t.Fatalf("search leaked driver %+v", d)
		}
	}

	dob := date(t, "1990-01-02")
	got, err = a.SearchDrivers(ctx, DriverFilter{Name: "smith", DOB: &dob})
	if err != nil || len(got) != 1 || got[0].LicenseNumber != "A-1" {
		t.Fatalf("expected A-1 only, got %+v, %v", got, err)
	}

	got, err = a.SearchDrivers(ctx, DriverFilter{Limit: 1, Offset: 1})
	if err != nil || len(got) != 1 || got[0].LicenseNumber != "A-2" {
		t.Fatalf("expected second page to hold A-2, got %+v, %v", got, err)
	}

	if _, err := a.SearchDrivers(ctx, DriverFilter{Limit: MaxSearchLimit + 1}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected invalid input for oversized limit, got %v", err)
	}
}

func TestCreateDriverLicenseIsGlobal(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	a := seedCompany(t, s, "a@x.com")
	b := seedCompany(t, s, "b@x.com")

	if err := a.CreateDriver(ctx, &models.Driver{Name: "D", DOB: date(t, "1990-01-01"), LicenseNumber: "L-1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := b.CreateDriver(ctx, &models.Driver{Name: "D", DOB: date(t, "1990-01-01"), LicenseNumber: "L-1"})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict across tenants, got %v", err)
	}
}

func TestRateDriverNotFoundVersusForbidden(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	a := seedCompany(t, s, "a@x.com")
	b := seedCompany(t, s, "b@x.com")

	foreign := &models.Driver{Name: "B driver", DOB: date(t, "1980-01-01"), LicenseNumber: "B-1"}
	if err := b.CreateDriver(ctx, foreign); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := a.RateDriver(ctx, &models.DriverRating{DriverID: foreign.ID, UserID: 1, Department: models.DepartmentHR, Score: 3})
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	err = a.RateDriver(ctx, &models.DriverRating{DriverID: 999, UserID: 1, Department: models.DepartmentHR, Score: 3})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if _, err := a.DriverRatings(ctx, foreign.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected foreign ratings to be not found, got %v", err)
	}
	if _, err := a.Driver(ctx, foreign.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected foreign driver to be not found, got %v", err)
	}
}

func TestDriverRatingsInInsertionOrder(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	a := seedCompany(t, s, "a@x.com")

	d := &models.Driver{Name: "D", DOB: date(t, "1990-01-01"), LicenseNumber: "L-1"}
	if err := a.CreateDriver(ctx, d); err != nil {
		t.Fatalf("create: %v", err)
	}
	for score := models.MinScore; score <= models.MaxScore; score++ {
		r := &models.DriverRating{DriverID: d.ID, UserID: 1, Department: models.DepartmentSafety, Score: score}
		if err := a.RateDriver(ctx, r); err != nil {
			t.Fatalf("rate %d: %v", score, err)
		}
	}

	ratings, err := a.DriverRatings(ctx, d.ID)
	if err != nil {
		t.Fatalf("ratings: %v", err)
	}
	if len(ratings) != 5 {
		t.Fatalf("expected 5 ratings, got %d", len(ratings))
	}
	for i, r := range ratings {
		if r.Score != i+1 {
			t.Fatalf("rating %d out of order: %+v", i, r)
		}
	}
}
