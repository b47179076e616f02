package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const uniqueViolationCode = "23505"

// Unique index names, see the gorm tags in internal/models.
const (
	constraintCompanyEmail      = "uq_companies_email"
	constraintUserEmail         = "uq_users_email"
	constraintCompanyDepartment = "uq_company_department"
	constraintDriverLicense     = "uq_driver_license"
)

// uniqueViolation reports whether err is a unique constraint violation and,
// when the driver exposes it, the violated constraint. Both pgx and lib/pq
// errors are recognised since either can sit under gorm.
func uniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return pgErr.ConstraintName, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
		return pqErr.Constraint, true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}
	return "", false
}
