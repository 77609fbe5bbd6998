package dto

import (
	"strings"

	"github.com/baechuer/coursehub/internal/domain"
)

const maxNameLen = 100

// -------- Core auth --------

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

func (r *RegisterRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	return firstFailure(
		required("email", r.Email),
		required("password", r.Password),
		emailFormat("email", r.Email),
		maxBytes("password", r.Password, domain.MaxPasswordBytes),
		maxLen("name", r.Name, maxNameLen),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return firstFailure(
		required("email", r.Email),
		required("password", r.Password),
	)
}

// -------- Email verification --------

type VerifyEmailRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (r *VerifyEmailRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.OTP = strings.TrimSpace(r.OTP)
	return firstFailure(
		required("email", r.Email),
		required("otp", r.OTP),
	)
}

type ResendVerificationRequest struct {
	Email string `json:"email"`
}

func (r *ResendVerificationRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return firstFailure(
		required("email", r.Email),
		emailFormat("email", r.Email),
	)
}

// -------- Profile --------

// ProfileForm carries the text fields of the multipart profile update.
type ProfileForm struct {
	Email           string
	CurrentPassword string
	NewPassword     string
}

func (f *ProfileForm) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	return firstFailure(
		required("email", f.Email),
		emailFormat("email", f.Email),
	)
}

// -------- Admin --------

type SetRoleRequest struct {
	Role string `json:"role"`
}

func (r *SetRoleRequest) Validate() error {
	r.Role = strings.TrimSpace(r.Role)
	return firstFailure(
		required("role", r.Role),
		validRole(r.Role),
	)
}
