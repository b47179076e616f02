package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	logrus "github.com/sirupsen/logrus"

	"driver_rating/internal/apperr"
	"driver_rating/internal/auth"
	"driver_rating/internal/middleware"
	"driver_rating/internal/store"
)

// Handler serves every HTTP endpoint. Tenant data is only reached through the
// store.Tenant injected by the guards.
type Handler struct {
	store   store.Store
	issuers auth.Issuers
	status  apperr.StatusMapper
}

func NewHandler(st store.Store, issuers auth.Issuers, status apperr.StatusMapper) *Handler {
	fieldNamesOnce.Do(useWireFieldNames)
	return &Handler{store: st, issuers: issuers, status: status}
}

var fieldNamesOnce sync.Once

// useWireFieldNames makes validation errors name fields as clients send them.
func useWireFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	code := h.status.Status(err)
	if code >= http.StatusInternalServerError {
		logrus.WithError(err).
			WithField("request_id", middleware.RequestID(c)).
			WithField("path", c.FullPath()).
			Error("request failed")
		c.JSON(code, gin.H{"detail": "Internal server error"})
		return
	}
	c.JSON(code, gin.H{"detail": apperr.Message(err)})
}

// bindError turns a gin binding failure into InvalidInput with a readable
// message naming the offending fields.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.InvalidInput("Invalid request body")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return apperr.InvalidInput(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return field + " is invalid"
	}
}
