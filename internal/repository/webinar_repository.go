package repository

import (
	"github.com/randeeprajputr/webinar-backend/internal/models"
	"gorm.io/gorm"
)

type WebinarRepository struct {
	db *gorm.DB
}

func NewWebinarRepository(db *gorm.DB) *WebinarRepository {
	return &WebinarRepository{
		db: db,
	}
}

func (r *WebinarRepository) GetByID(id uint) (*models.Webinar, error) {
	var webinar models.Webinar
	err := r.db.First(&webinar, id).Error
	return &webinar, err
}

func (r *WebinarRepository) GetActive() ([]models.Webinar, error) {
	var webinars []models.Webinar
	err := r.db.Where("is_active = ?", true).
		Order("start_time ASC").
		Find(&webinars).Error
	return webinars, err
}

// DecrementSlot takes one seat with a floor at zero. Returns false when no
// slot was available, so two concurrent completions can never oversell.
func (r *WebinarRepository) DecrementSlot(id uint) (bool, error) {
	res := r.db.Model(&models.Webinar{}).
		Where("id = ? AND available_slots > 0", id).
		UpdateColumn("available_slots", gorm.Expr("available_slots - 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
