package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"driver_rating/internal/apperr"
	"driver_rating/internal/auth"
	"driver_rating/internal/middleware"
	"driver_rating/internal/models"
)

type registerCompanyInput struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Address  string `json:"address" binding:"required,min=2,max=200"`
}

type loginInput struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type inviteUserInput struct {
	Name       string `json:"name" binding:"required,min=2,max=100"`
	Email      string `json:"email" binding:"required,email"`
	Department string `json:"department" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type staffResponse struct {
	ID         uint              `json:"id"`
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Department models.Department `json:"department"`
}

var errBadLogin = apperr.InvalidInput("Invalid email or password")

// RegisterCompany handles POST /register.
func (h *Handler) RegisterCompany(c *gin.Context) {
	var input registerCompanyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		h.respondError(c, fmt.Errorf("hash password: %w", err))
		return
	}
	company := models.Company{
		Name:     strings.TrimSpace(input.Name),
		Email:    input.Email,
		Password: hashed,
		Address:  strings.TrimSpace(input.Address),
	}
	if err := h.store.CreateCompany(c.Request.Context(), &company); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Company registered successfully",
		"company_id": company.ID,
	})
}

// Login handles POST /login and issues a company-scope token.
func (h *Handler) Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindWith(&input, binding.FormPost); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	// Unknown email and wrong password give the same answer.
	company, err := h.store.CompanyByEmail(c.Request.Context(), input.Username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			err = errBadLogin
		}
		h.respondError(c, err)
		return
	}
	if !auth.CheckPassword(company.Password, input.Password) {
		h.respondError(c, errBadLogin)
		return
	}
	h.issueToken(c, h.issuers.Company, company.ID)
}

// CompanyMe handles GET /company/me.
func (h *Handler) CompanyMe(c *gin.Context) {
	company := middleware.CurrentCompany(c)
	c.JSON(http.StatusOK, gin.H{
		"id":      company.ID,
		"name":    company.Name,
		"email":   company.Email,
		"address": company.Address,
	})
}

// InviteUser handles POST /invite-user. Every invitee starts with the shared
// default password and must_reset_password set.
func (h *Handler) InviteUser(c *gin.Context) {
	// 1) Bind and validate the payload, department against the closed set.
	var input inviteUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondError(c, bindError(err))
		return
	}
	department, ok := models.ParseDepartment(input.Department)
	if !ok {
		h.respondError(c, apperr.InvalidInput("Invalid department"))
		return
	}

	// 2) Hash the shared default password.
	hashed, err := auth.HashPassword(auth.DefaultStaffPassword)
	if err != nil {
		h.respondError(c, fmt.Errorf("hash password: %w", err))
		return
	}

	// 3) Create the user inside the caller's tenant. A staffed department or
	//    a taken email comes back as Conflict.
	user := models.User{
		Name:              strings.TrimSpace(input.Name),
		Email:             input.Email,
		Password:          hashed,
		MustResetPassword: true,
		Department:        department,
	}
	if err := middleware.Tenant(c).InviteStaff(c.Request.Context(), &user); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          fmt.Sprintf("%s invited successfully", department),
		"user_id":          user.ID,
		"default_password": auth.DefaultStaffPassword,
	})
}

// ListStaff handles GET /company/staff.
func (h *Handler) ListStaff(c *gin.Context) {
	users, err := middleware.Tenant(c).ListStaff(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	out := make([]staffResponse, 0, len(users))
	for _, u := range users {
		out = append(out, staffResponse{ID: u.ID, Name: u.Name, Email: u.Email, Department: u.Department})
	}
	c.JSON(http.StatusOK, out)
}

// StaffLogin handles POST /staff-login and issues a staff-scope token.
func (h *Handler) StaffLogin(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindWith(&input, binding.FormPost); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	user, err := h.store.StaffByEmail(c.Request.Context(), input.Username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			err = errBadLogin
		}
		h.respondError(c, err)
		return
	}
	if !auth.CheckPassword(user.Password, input.Password) {
		h.respondError(c, errBadLogin)
		return
	}
	h.issueToken(c, h.issuers.Staff, user.ID)
}

func (h *Handler) issueToken(c *gin.Context, issuer *auth.Issuer, id uint) {
	token, err := issuer.Issue(id)
	if err != nil {
		h.respondError(c, fmt.Errorf("issue %s token: %w", issuer.Scope(), err))
		return
	}
	c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}
