package patient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/ebooklet-admin/internal"
	"github.com/frahmantamala/ebooklet-admin/internal/auth"
	"github.com/frahmantamala/ebooklet-admin/internal/transport"
	"github.com/frahmantamala/ebooklet-admin/pkg/logger"
)

type ServiceAPI interface {
	List(params ListParams) (*ListResult, error)
	Upsert(actor string, dto UpsertPatientDTO) (*Patient, error)
	Delete(actor, mrNumber string) error
	ClearAll(actor, confirmation string) (int64, error)
	ExportCSV(w io.Writer, params ListParams) error
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

// ListPatients handles GET /patients
func (h *Handler) ListPatients(w http.ResponseWriter, r *http.Request) {
	params := ParseListParams(r.URL.Query())

	result, err := h.Service.List(params)
	if err != nil {
		h.Logger.Error("ListPatients: service error", "error", err)
		h.WriteAppError(w, internal.NewInternalError("failed to list patients", err))
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

// UpsertPatient handles POST /patients
func (h *Handler) UpsertPatient(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto UpsertPatientDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.Service.Upsert(identity.Username, dto)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, p)
}

// DeletePatient handles DELETE /patients/{mrNumber}
func (h *Handler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	mrNumber := chi.URLParam(r, "mrNumber")

	if err := h.Service.Delete(identity.Username, mrNumber); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "patient deleted"})
}

// ClearAllPatients handles POST /patients/clear-all
func (h *Handler) ClearAllPatients(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto ClearAllDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	removed, err := h.Service.ClearAll(identity.Username, dto.Confirmation)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"status": "all patient data cleared", "removed": removed})
}

// ExportCSV handles GET /patients/export
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	params := ParseListParams(r.URL.Query())

	filename := fmt.Sprintf("data-pasien-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.Service.ExportCSV(w, params); err != nil {
		// headers are already out; the broken download is the best signal left
		h.Logger.Error("ExportCSV: service error", "error", err)
	}
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrConfirmationMismatch):
		h.WriteAppError(w, internal.NewValidationError("confirmation phrase does not match", internal.ErrCodeConfirmationMismatch))
	case errors.Is(err, ErrNotFound):
		h.WriteAppError(w, internal.NewNotFoundError("patient not found", internal.ErrCodePatientNotFound))
	default:
		var verr ValidationError
		if errors.As(err, &verr) {
			h.WriteAppError(w, internal.NewValidationError(verr.Error(), internal.ErrCodeValidationFailed))
			return
		}
		h.Logger.Error("patient service error", "error", err)
		h.WriteAppError(w, internal.NewInternalError("internal server error", err))
	}
}
