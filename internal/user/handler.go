package user

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/ebooklet-admin/internal"
	"github.com/frahmantamala/ebooklet-admin/internal/auth"
	"github.com/frahmantamala/ebooklet-admin/internal/permission"
	"github.com/frahmantamala/ebooklet-admin/internal/transport"
	"github.com/frahmantamala/ebooklet-admin/pkg/logger"
)

type ServiceAPI interface {
	List() ([]*User, error)
	Create(actor string, dto CreateUserDTO) (*User, error)
	ChangePassword(actor string, dto ChangePasswordDTO) error
	ChangeRole(actor string, dto ChangeRoleDTO) error
	ToggleStatus(actor, username string) (bool, error)
	Delete(actor, username string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// ListUsers handles GET /users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.List()
	if err != nil {
		h.Logger.Error("ListUsers: service error", "error", err)
		h.WriteAppError(w, internal.NewInternalError("failed to list users", err))
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// CreateUser handles POST /users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Service.Create(identity.Username, dto)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, u)
}

// ChangePassword handles POST /users/password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto ChangePasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.ChangePassword(identity.Username, dto); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}

// ChangeRole handles POST /users/role
func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto ChangeRoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.ChangeRole(identity.Username, dto); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "role changed"})
}

// ToggleStatus handles POST /users/status
func (h *Handler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto TargetUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	active, err := h.Service.ToggleStatus(identity.Username, dto.Username)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"username": dto.Username, "is_active": active})
}

// DeleteUser handles DELETE /users
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto TargetUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.Delete(identity.Username, dto.Username); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "user deleted"})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSelfAction):
		h.WriteAppError(w, internal.ErrSelfActionForbidden)
	case errors.Is(err, ErrLastAdmin):
		h.WriteAppError(w, internal.ErrLastAdminProtected)
	case errors.Is(err, ErrNotFound):
		h.WriteAppError(w, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound))
	case errors.Is(err, ErrDuplicate):
		h.WriteAppError(w, internal.NewConflictError("username already exists", internal.ErrCodeDuplicateUsername))
	case errors.Is(err, permission.ErrInvalidRole):
		h.WriteAppError(w, internal.NewValidationError("invalid role", internal.ErrCodeInvalidRole))
	case errors.Is(err, ErrPasswordTooShort):
		h.WriteAppError(w, internal.NewValidationError(ErrPasswordTooShort.Error(), internal.ErrCodeInvalidPassword))
	default:
		var verr ValidationError
		if errors.As(err, &verr) {
			h.WriteAppError(w, internal.NewValidationError(verr.Error(), internal.ErrCodeValidationFailed))
			return
		}
		h.Logger.Error("user service error", "error", err)
		h.WriteAppError(w, internal.NewInternalError("internal server error", err))
	}
}
