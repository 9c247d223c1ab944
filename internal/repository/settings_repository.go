package repository

import (
	"github.com/randeeprajputr/webinar-backend/internal/models"
	"gorm.io/gorm"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{
		db: db,
	}
}

// Get returns the settings singleton. The row is seeded at migration time,
// so a missing row is a real error.
func (r *SettingsRepository) Get() (*models.SiteSettings, error) {
	var settings models.SiteSettings
	err := r.db.First(&settings).Error
	return &settings, err
}
