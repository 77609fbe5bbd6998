package http_handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/coursehub/internal/application/auth"
	"github.com/baechuer/coursehub/internal/transport/http/dto"
	"github.com/baechuer/coursehub/internal/transport/http/middleware"
	"github.com/baechuer/coursehub/internal/transport/http/response"
)

type AdminUsersHandler struct {
	svc *auth.Service
}

func NewAdminUsersHandler(svc *auth.Service) *AdminUsersHandler {
	return &AdminUsersHandler{svc: svc}
}

// GET /api/v1/admin/users
func (h *AdminUsersHandler) List(w http.ResponseWriter, r *http.Request) {
	role, _ := middleware.RoleFromContext(r.Context())

	users, err := h.svc.ListUsers(r.Context(), role)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewUserViews(users))
}

// GET /api/v1/admin/users/{id}
func (h *AdminUsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	role, _ := middleware.RoleFromContext(r.Context())

	u, err := h.svc.GetUser(r.Context(), role, chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewUserView(u))
}

// PUT /api/v1/admin/users/{id}/role
func (h *AdminUsersHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserIDFromContext(r.Context())
	actorRole, _ := middleware.RoleFromContext(r.Context())
	targetID := chi.URLParam(r, "id")

	var req dto.SetRoleRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.SetUserRole(r.Context(), actorID, actorRole, targetID, req.Role); err != nil {
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.GetUser(r.Context(), actorRole, targetID)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewUserView(u))
}

// DELETE /api/v1/admin/users/{id}
func (h *AdminUsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserIDFromContext(r.Context())
	actorRole, _ := middleware.RoleFromContext(r.Context())

	if err := h.svc.DeleteUser(r.Context(), actorID, actorRole, chi.URLParam(r, "id")); err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.NoContent(w)
}
