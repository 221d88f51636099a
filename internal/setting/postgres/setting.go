package postgres

import (
	"errors"

	"github.com/frahmantamala/ebooklet-admin/internal/setting"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepository implements setting.Repository using GORM.
type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) List() ([]*setting.Setting, error) {
	var settings []*setting.Setting
	err := r.db.Order("key ASC").Find(&settings).Error
	return settings, err
}

func (r *SettingRepository) Get(key string) (*setting.Setting, error) {
	var s setting.Setting
	err := r.db.Where("key = ?", key).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, setting.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SettingRepository) Upsert(s *setting.Setting) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "last_updated", "last_updated_by"}),
	}).Create(s).Error
}
