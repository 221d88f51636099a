package patient

import (
	"context"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/frahmantamala/ebooklet-admin/internal/core/events"
	"github.com/google/uuid"
)

// Repository defines the data access methods for patients.
type Repository interface {
	List(params ListParams) ([]*Patient, int64, error)
	ListAll(params ListParams) ([]*Patient, error)
	GetByMRNumber(mrNumber string) (*Patient, error)
	Upsert(p *Patient) error
	Delete(mrNumber string) error
	DeleteAll() (int64, error)
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type ListResult struct {
	Patients   []*Patient `json:"patients"`
	Pagination Pagination `json:"pagination"`
}

type Service struct {
	repo   Repository
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo Repository, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

// List returns one page of patients plus pagination totals.
func (s *Service) List(params ListParams) (*ListResult, error) {
	params = params.Normalize()

	patients, total, err := s.repo.List(params)
	if err != nil {
		s.logger.Error("failed to list patients", "error", err)
		return nil, err
	}

	for _, p := range patients {
		p.FillPlaceholders()
	}

	return &ListResult{
		Patients: patients,
		Pagination: Pagination{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(params.Limit))),
		},
	}, nil
}

// Upsert creates or updates a record keyed on the medical record number. A
// new record gets a fresh access token; updates never touch the token, the
// approval fields, or the creation timestamp.
func (s *Service) Upsert(actor string, dto UpsertPatientDTO) (*Patient, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	p := &Patient{
		MRNumber:       strings.TrimSpace(dto.MRNumber),
		Name:           strings.TrimSpace(dto.Name),
		ScheduledAt:    dto.ScheduledAt,
		Doctor:         dto.Doctor,
		Gender:         dto.Gender,
		Age:            dto.Age,
		Diagnosis:      dto.Diagnosis,
		Payer:          dto.Payer,
		Class:          dto.Class,
		Scale:          dto.Scale,
		ApprovalStatus: StatusPending,
		AccessToken:    uuid.NewString(),
	}

	if err := s.repo.Upsert(p); err != nil {
		s.logger.Error("failed to upsert patient", "error", err, "mr_number", p.MRNumber)
		return nil, err
	}

	stored, err := s.repo.GetByMRNumber(p.MRNumber)
	if err != nil {
		return nil, err
	}

	s.logger.Info("patient upserted", "mr_number", stored.MRNumber, "actor", actor)
	return stored, nil
}

func (s *Service) Delete(actor, mrNumber string) error {
	mrNumber = strings.TrimSpace(mrNumber)
	if mrNumber == "" {
		return ValidationError{Msg: "mr_number is required"}
	}

	if err := s.repo.Delete(mrNumber); err != nil {
		return err
	}

	s.logger.Info("patient deleted", "mr_number", mrNumber, "actor", actor)
	return nil
}

// ClearAll wipes the patient table. The confirmation phrase must match
// exactly; otherwise nothing is touched.
func (s *Service) ClearAll(actor, confirmation string) (int64, error) {
	if confirmation != ClearConfirmationPhrase {
		return 0, ErrConfirmationMismatch
	}

	s.logger.Warn("clearing all patient data", "actor", actor)

	removed, err := s.repo.DeleteAll()
	if err != nil {
		s.logger.Error("failed to clear patients", "error", err)
		return 0, err
	}

	s.publish(events.EventPatientsCleared, actor, map[string]interface{}{"removed": removed})
	return removed, nil
}

// ExportCSV streams every patient matching the filters (no pagination) as
// CSV rows.
func (s *Service) ExportCSV(w io.Writer, params ListParams) error {
	params = params.Normalize()

	patients, err := s.repo.ListAll(params)
	if err != nil {
		s.logger.Error("failed to load patients for export", "error", err)
		return err
	}

	for _, p := range patients {
		p.FillPlaceholders()
	}

	return writeCSV(w, patients)
}

func (s *Service) publish(eventType, actor string, extra map[string]interface{}) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(context.Background(), events.NewAuditEvent(eventType, actor, "patients", extra)); err != nil {
		s.logger.Warn("audit publish failed", "event_type", eventType, "error", err)
	}
}
