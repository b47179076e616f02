package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"driver_rating/internal/apperr"
	"driver_rating/internal/models"
)

// dryRunDB never connects; statements are only rendered.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test password=test dbname=test port=5432 sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}
	return db
}

func TestSearchQueryCarriesTenantPredicate(t *testing.T) {
	db := dryRunDB(t)
	tenant := &gormTenant{db: db, companyID: 7}
	dob := time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)

	var drivers []models.Driver
	stmt := tenant.searchQuery(context.Background(), DriverFilter{Name: "50%_off", DOB: &dob, Limit: 10}).
		Find(&drivers).Statement
	sql := stmt.SQL.String()

	if !strings.Contains(sql, "WHERE created_by_company_id = $1 AND name ILIKE $2 AND dob = $3") {
		t.Fatalf("tenant predicate must lead the filters in %q", sql)
	}
	if len(stmt.Vars) < 3 {
		t.Fatalf("expected at least 3 vars, got %v", stmt.Vars)
	}
	if stmt.Vars[0] != uint(7) {
		t.Fatalf("expected tenant id 7 as first var, got %v", stmt.Vars[0])
	}
	if stmt.Vars[1] != `%50\%\_off%` {
		t.Fatalf("expected escaped pattern, got %v", stmt.Vars[1])
	}
	if stmt.Vars[2] != "1990-01-02" {
		t.Fatalf("expected date-only dob, got %v", stmt.Vars[2])
	}
}

func TestSearchQueryWithoutFilters(t *testing.T) {
	db := dryRunDB(t)
	tenant := &gormTenant{db: db, companyID: 4}

	var drivers []models.Driver
	stmt := tenant.searchQuery(context.Background(), DriverFilter{Limit: 50}).Find(&drivers).Statement
	sql := stmt.SQL.String()
	if !strings.Contains(sql, "WHERE created_by_company_id = $1") {
		t.Fatalf("tenant predicate missing from %q", sql)
	}
	if strings.Contains(sql, "ILIKE") || strings.Contains(sql, "dob =") {
		t.Fatalf("unexpected filters in %q", sql)
	}
}

func TestDepartmentQueryIsTenantScoped(t *testing.T) {
	db := dryRunDB(t)
	tenant := &gormTenant{db: db, companyID: 5}

	var users []models.User
	stmt := tenant.departmentQuery(db, models.DepartmentSafety).Find(&users).Statement
	sql := stmt.SQL.String()
	if !strings.Contains(sql, "company_id = $1 AND department = $2") {
		t.Fatalf("unexpected department check %q", sql)
	}
	if len(stmt.Vars) != 2 || stmt.Vars[0] != uint(5) || stmt.Vars[1] != models.DepartmentSafety {
		t.Fatalf("unexpected vars %v", stmt.Vars)
	}
}

func TestInviteConflict(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind apperr.Kind
		msg  string
	}{
		{
			"department index",
			&pgconn.PgError{Code: "23505", ConstraintName: constraintCompanyDepartment},
			apperr.KindConflict, "safety already exists in your company",
		},
		{
			"department index via pq",
			fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: constraintCompanyDepartment}),
			apperr.KindConflict, "safety already exists in your company",
		},
		{
			"email index",
			&pgconn.PgError{Code: "23505", ConstraintName: constraintUserEmail},
			apperr.KindConflict, "Email already registered",
		},
		{
			"unnamed duplicate",
			gorm.ErrDuplicatedKey,
			apperr.KindConflict, "Email already registered",
		},
		{
			"other failure",
			errors.New("connection reset"),
			apperr.KindUnknown, "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := inviteConflict(tc.err, models.DepartmentSafety)
			if apperr.KindOf(err) != tc.kind {
				t.Fatalf("expected kind %v, got %v (%v)", tc.kind, apperr.KindOf(err), err)
			}
			if got := apperr.Message(err); got != tc.msg {
				t.Fatalf("expected message %q, got %q", tc.msg, got)
			}
		})
	}

	if err := inviteConflict(errors.New("connection reset"), models.DepartmentHR); !strings.Contains(err.Error(), "connection reset") {
		t.Fatalf("expected cause to be kept, got %v", err)
	}
}

func TestDriverOwnerQueryIsUnscoped(t *testing.T) {
	db := dryRunDB(t)

	var drivers []models.Driver
	stmt := driverOwnerQuery(db, 9).Find(&drivers).Statement
	sql := stmt.SQL.String()
	if !strings.Contains(sql, "WHERE id = $1") {
		t.Fatalf("unexpected lookup %q", sql)
	}
	if strings.Contains(sql, "created_by_company_id =") {
		t.Fatalf("owner lookup must not filter by tenant: %q", sql)
	}
}

func TestCheckOwner(t *testing.T) {
	tenant := &gormTenant{companyID: 2}

	if err := tenant.checkOwner(models.Driver{ID: 1, CreatedByCompanyID: 2}); err != nil {
		t.Fatalf("own driver rejected: %v", err)
	}
	err := tenant.checkOwner(models.Driver{ID: 1, CreatedByCompanyID: 3})
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if apperr.Message(err) != "You can only rate drivers from your company" {
		t.Fatalf("unexpected message %q", apperr.Message(err))
	}
}

func TestTenantScopesStaffQueries(t *testing.T) {
	db := dryRunDB(t)
	tenant := &gormTenant{db: db, companyID: 3}

	var staff []models.User
	stmt := db.Scopes(tenant.ownStaff).Find(&staff).Statement
	if sql := stmt.SQL.String(); !strings.Contains(sql, "company_id = $1") {
		t.Fatalf("tenant predicate missing from %q", sql)
	}
}

func TestUniqueViolation(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		constraint string
		ok         bool
	}{
		{"pgx", &pgconn.PgError{Code: "23505", ConstraintName: constraintDriverLicense}, constraintDriverLicense, true},
		{"pgx wrapped", fmt.Errorf("create: %w", &pgconn.PgError{Code: "23505", ConstraintName: constraintUserEmail}), constraintUserEmail, true},
		{"pgx other code", &pgconn.PgError{Code: "23503"}, "", false},
		{"pq", &pq.Error{Code: "23505", Constraint: constraintCompanyDepartment}, constraintCompanyDepartment, true},
		{"gorm translated", gorm.ErrDuplicatedKey, "", true},
		{"plain", errors.New("boom"), "", false},
		{"nil", nil, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			constraint, ok := uniqueViolation(tc.err)
			if ok != tc.ok || constraint != tc.constraint {
				t.Fatalf("expected (%q, %v), got (%q, %v)", tc.constraint, tc.ok, constraint, ok)
			}
		})
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike(`a\b%c_d`); got != `a\\b\%c\_d` {
		t.Fatalf("unexpected escape %q", got)
	}
}
