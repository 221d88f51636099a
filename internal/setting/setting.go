package setting

import (
	"errors"
	"strings"
	"time"
)

// KeyPatientBaseURL is the base URL prepended to a patient's access token
// when building the shareable booklet link.
const KeyPatientBaseURL = "patient_base_url"

// Setting is one key/value application setting with audit fields.
type Setting struct {
	Key           string    `json:"key" gorm:"primaryKey;column:key"`
	Value         string    `json:"value"`
	LastUpdated   time.Time `json:"last_updated"`
	LastUpdatedBy string    `json:"last_updated_by"`
}

func (Setting) TableName() string { return "settings" }

var ErrNotFound = errors.New("setting not found")

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

type UpsertSettingDTO struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (d UpsertSettingDTO) Validate() error {
	if strings.TrimSpace(d.Key) == "" {
		return ValidationError{Msg: "key is required"}
	}
	return nil
}
