package setting

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/ebooklet-admin/internal"
	"github.com/frahmantamala/ebooklet-admin/internal/auth"
	"github.com/frahmantamala/ebooklet-admin/internal/transport"
	"github.com/frahmantamala/ebooklet-admin/pkg/logger"
)

type ServiceAPI interface {
	List() ([]*Setting, error)
	Get(key string) (*Setting, error)
	Upsert(actor string, dto UpsertSettingDTO) (*Setting, error)
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

// ListSettings handles GET /settings
func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Service.List()
	if err != nil {
		h.Logger.Error("ListSettings: service error", "error", err)
		h.WriteAppError(w, internal.NewInternalError("failed to list settings", err))
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"settings": settings})
}

// GetSetting handles GET /settings/{key}
func (h *Handler) GetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	setting, err := h.Service.Get(key)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, setting)
}

// UpsertSetting handles PUT /settings
func (h *Handler) UpsertSetting(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto UpsertSettingDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	setting, err := h.Service.Upsert(identity.Username, dto)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, setting)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		h.WriteAppError(w, internal.NewNotFoundError("setting not found", internal.ErrCodeSettingNotFound))
	default:
		var verr ValidationError
		if errors.As(err, &verr) {
			h.WriteAppError(w, internal.NewValidationError(verr.Error(), internal.ErrCodeValidationFailed))
			return
		}
		h.Logger.Error("setting service error", "error", err)
		h.WriteAppError(w, internal.NewInternalError("internal server error", err))
	}
}
