package http_handlers

import (
	"errors"
	"net/http"

	"github.com/baechuer/coursehub/internal/application/auth"
	"github.com/baechuer/coursehub/internal/domain"
	"github.com/baechuer/coursehub/internal/logger"
	"github.com/baechuer/coursehub/internal/metrics"
	"github.com/baechuer/coursehub/internal/transport/http/dto"
	"github.com/baechuer/coursehub/internal/transport/http/middleware"
	"github.com/baechuer/coursehub/internal/transport/http/response"
)

type AuthHandler struct {
	svc *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// codeOf returns the domain code of err for metric labels.
func codeOf(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// POST /auth/v1/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Register(r.Context(), auth.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	metrics.RecordRegistration(metrics.Status(codeOf(err), err))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.Created(w, dto.RegisterData{
		Email:                res.Email,
		RequiresVerification: res.RequiresVerification,
	})
}

// POST /auth/v1/verify-email
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyEmailRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.VerifyEmail(r.Context(), req.Email, req.OTP)
	metrics.RecordVerification(metrics.Status(codeOf(err), err))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.NewAuthData(res))
}

// POST /auth/v1/verify-email/resend
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req dto.ResendVerificationRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.ResendVerification(r.Context(), req.Email)
	metrics.RecordResend(metrics.Status(codeOf(err), err))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.RegisterData{
		Email:                res.Email,
		RequiresVerification: res.RequiresVerification,
	})
}

// POST /auth/v1/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	metrics.RecordLogin(metrics.Status(codeOf(err), err))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", res.User.ID).
		Msg("user_logged_in")

	response.OK(w, dto.NewAuthData(res))
}

// GET /auth/v1/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenMissing())
		return
	}

	u, err := h.svc.Me(r.Context(), uid)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.NewUserView(u))
}
