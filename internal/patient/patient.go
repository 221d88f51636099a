package patient

import (
	"errors"
	"time"
)

// Approval status values are stored and served exactly as the patient-facing
// flow writes them.
const (
	StatusPending  = "Menunggu"
	StatusApproved = "Disetujui"
)

// ClearConfirmationPhrase must match the bulk-clear request exactly,
// including case and whitespace.
const ClearConfirmationPhrase = "HAPUS PERMANEN"

// Patient is one booklet record, keyed by the immutable medical record
// number. The access token is generated once at creation and used to build
// patient-facing links.
type Patient struct {
	MRNumber       string     `json:"mr_number" gorm:"column:mr_number;primaryKey"`
	Name           string     `json:"name" gorm:"not null"`
	ScheduledAt    time.Time  `json:"scheduled_at" gorm:"column:scheduled_at"`
	Doctor         string     `json:"doctor"`
	Gender         string     `json:"gender"`
	Age            string     `json:"age"`
	Diagnosis      string     `json:"diagnosis"`
	Payer          string     `json:"payer"`
	Class          string     `json:"class" gorm:"column:class"`
	Scale          string     `json:"scale"`
	ApprovalStatus string     `json:"approval_status" gorm:"column:approval_status;default:Menunggu"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty" gorm:"column:approved_at"`
	AccessToken    string     `json:"access_token" gorm:"column:access_token"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (Patient) TableName() string {
	return "patients"
}

// FillPlaceholders substitutes display placeholders for absent optional
// fields, matching what the booklet UI expects.
func (p *Patient) FillPlaceholders() {
	if p.Doctor == "" {
		p.Doctor = "Akan ditentukan"
	}
	for _, f := range []*string{&p.Gender, &p.Age, &p.Diagnosis, &p.Payer, &p.Class, &p.Scale} {
		if *f == "" {
			*f = "-"
		}
	}
}

var (
	ErrNotFound             = errors.New("patient not found")
	ErrConfirmationMismatch = errors.New("confirmation phrase does not match")
)
