package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"driver_rating/internal/apperr"
	"driver_rating/internal/auth"
	"driver_rating/internal/models"
	"driver_rating/internal/store"
)

const (
	companyKey = "auth.company"
	staffKey   = "auth.staff"
	tenantKey  = "auth.tenant"

	msgNotAuthenticated   = "Not authenticated"
	msgInvalidCredentials = "Invalid authentication credentials"
)

// RequireCompany admits requests bearing a company-scope token for an existing
// company and scopes the request to that company.
func RequireCompany(issuer *auth.Issuer, st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := verifyBearer(c, issuer)
		if !ok {
			return
		}
		company, err := st.CompanyByID(c.Request.Context(), id)
		if err != nil {
			abortLookup(c, err)
			return
		}
		c.Set(companyKey, company)
		c.Set(tenantKey, st.ForCompany(company.ID))
		c.Next()
	}
}

// RequireStaff admits requests bearing a staff-scope token for an existing
// user and scopes the request to the user's company.
func RequireStaff(issuer *auth.Issuer, st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := verifyBearer(c, issuer)
		if !ok {
			return
		}
		user, err := st.StaffByID(c.Request.Context(), id)
		if err != nil {
			abortLookup(c, err)
			return
		}
		c.Set(staffKey, user)
		c.Set(tenantKey, st.ForCompany(user.CompanyID))
		c.Next()
	}
}

// CurrentCompany returns the company set by RequireCompany.
func CurrentCompany(c *gin.Context) *models.Company {
	v, _ := c.Get(companyKey)
	company, _ := v.(*models.Company)
	return company
}

// CurrentStaff returns the user set by RequireStaff.
func CurrentStaff(c *gin.Context) *models.User {
	v, _ := c.Get(staffKey)
	user, _ := v.(*models.User)
	return user
}

// Tenant returns the company-scoped store view set by either guard.
func Tenant(c *gin.Context) store.Tenant {
	v, _ := c.Get(tenantKey)
	t, _ := v.(store.Tenant)
	return t
}

func verifyBearer(c *gin.Context, issuer *auth.Issuer) (uint, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		abortUnauthorized(c, msgNotAuthenticated)
		return 0, false
	}
	id, err := issuer.Verify(token)
	if err != nil {
		logrus.WithError(err).
			WithField("scope", issuer.Scope()).
			WithField("request_id", RequestID(c)).
			Debug("bearer token rejected")
		abortUnauthorized(c, msgInvalidCredentials)
		return 0, false
	}
	return id, true
}

func abortLookup(c *gin.Context, err error) {
	if errors.Is(err, apperr.ErrNotFound) {
		abortUnauthorized(c, msgInvalidCredentials)
		return
	}
	logrus.WithError(err).WithField("request_id", RequestID(c)).Error("principal lookup failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": msg})
}
