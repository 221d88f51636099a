package patient

import (
	"strings"
	"time"
)

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

// UpsertPatientDTO is the payload for creating or updating a booklet record,
// keyed on the medical record number.
type UpsertPatientDTO struct {
	MRNumber    string    `json:"mr_number"`
	Name        string    `json:"name"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Doctor      string    `json:"doctor"`
	Gender      string    `json:"gender"`
	Age         string    `json:"age"`
	Diagnosis   string    `json:"diagnosis"`
	Payer       string    `json:"payer"`
	Class       string    `json:"class"`
	Scale       string    `json:"scale"`
}

func (d UpsertPatientDTO) Validate() error {
	if strings.TrimSpace(d.MRNumber) == "" {
		return ValidationError{Msg: "mr_number is required"}
	}
	if strings.TrimSpace(d.Name) == "" {
		return ValidationError{Msg: "name is required"}
	}
	if d.ScheduledAt.IsZero() {
		return ValidationError{Msg: "scheduled_at is required"}
	}
	return nil
}

// ClearAllDTO carries the confirmation phrase for the bulk-clear action.
type ClearAllDTO struct {
	Confirmation string `json:"confirmation"`
}
