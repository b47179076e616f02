package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"driver_rating/internal/apperr"
)

// Scope names the signing key a token was issued under.
type Scope string

const (
	ScopeCompany Scope = "company"
	ScopeStaff   Scope = "staff"
)

const DefaultTokenTTL = 60 * time.Minute

// Issuer signs and verifies bearer tokens for exactly one scope. Company and
// staff tokens come from separate Issuers with separate secrets, so a token
// from one scope never verifies in the other.
type Issuer struct {
	scope  Scope
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(scope Scope, secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("%s token secret is empty", scope)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Issuer{scope: scope, secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (i *Issuer) Scope() Scope { return i.scope }

// Issue returns an HS256 token whose subject is principalID.
func (i *Issuer) Issue(principalID uint) (string, error) {
	now := i.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(principalID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verify returns the principal id carried by tokenStr. Every failure is an
// apperr InvalidCredentials error.
func (i *Issuer) Verify(tokenStr string) (uint, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return 0, apperr.InvalidCredentials(err)
	}
	if !token.Valid {
		return 0, apperr.InvalidCredentials(errors.New("token is not valid"))
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 || id > uint64(^uint(0)) {
		return 0, apperr.InvalidCredentials(fmt.Errorf("subject %q is not a principal id", claims.Subject))
	}
	return uint(id), nil
}

// Issuers holds one Issuer per scope.
type Issuers struct {
	Company *Issuer
	Staff   *Issuer
}

func NewIssuers(companySecret, staffSecret string, ttl time.Duration) (Issuers, error) {
	if companySecret == staffSecret {
		return Issuers{}, errors.New("company and staff token secrets must differ")
	}
	company, err := NewIssuer(ScopeCompany, companySecret, ttl)
	if err != nil {
		return Issuers{}, err
	}
	staff, err := NewIssuer(ScopeStaff, staffSecret, ttl)
	if err != nil {
		return Issuers{}, err
	}
	return Issuers{Company: company, Staff: staff}, nil
}
