package postgres

import (
	"errors"

	"github.com/frahmantamala/ebooklet-admin/internal/patient"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PatientRepository implements patient.Repository using GORM.
type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

// List returns one page of patients plus the total match count. Search is
// case-insensitive against the name and the medical record number; the sort
// column has already been resolved through the whitelist.
func (r *PatientRepository) List(params patient.ListParams) ([]*patient.Patient, int64, error) {
	var total int64
	if err := r.applyFilters(r.db.Model(&patient.Patient{}), params).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var patients []*patient.Patient
	err := r.applyFilters(r.db.Model(&patient.Patient{}), params).
		Order(params.OrderClause()).
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&patients).Error
	if err != nil {
		return nil, 0, err
	}
	return patients, total, nil
}

// ListAll returns every patient matching the filters, same ordering as List
// but without pagination. Used by the CSV export.
func (r *PatientRepository) ListAll(params patient.ListParams) ([]*patient.Patient, error) {
	var patients []*patient.Patient
	err := r.applyFilters(r.db.Model(&patient.Patient{}), params).
		Order(params.OrderClause()).
		Find(&patients).Error
	return patients, err
}

func (r *PatientRepository) applyFilters(q *gorm.DB, params patient.ListParams) *gorm.DB {
	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		q = q.Where("LOWER(name) LIKE LOWER(?) OR LOWER(mr_number) LIKE LOWER(?)", pattern, pattern)
	}
	if params.Status != "" {
		q = q.Where("approval_status = ?", params.Status)
	}
	return q
}

func (r *PatientRepository) GetByMRNumber(mrNumber string) (*patient.Patient, error) {
	var p patient.Patient
	err := r.db.Where("mr_number = ?", mrNumber).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, patient.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Upsert inserts or updates on the medical record number. On conflict only
// the editable fields are rewritten; the access token, the approval fields,
// and the creation timestamp keep their stored values.
func (r *PatientRepository) Upsert(p *patient.Patient) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "mr_number"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name",
			"scheduled_at",
			"doctor",
			"gender",
			"age",
			"diagnosis",
			"payer",
			"class",
			"scale",
		}),
	}).Create(p).Error
}

func (r *PatientRepository) Delete(mrNumber string) error {
	res := r.db.Delete(&patient.Patient{}, "mr_number = ?", mrNumber)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return patient.ErrNotFound
	}
	return nil
}

// DeleteAll wipes the patient table and reports how many rows went.
func (r *PatientRepository) DeleteAll() (int64, error) {
	res := r.db.Where("1 = 1").Delete(&patient.Patient{})
	return res.RowsAffected, res.Error
}
