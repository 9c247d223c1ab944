package repository

import (
	"github.com/randeeprajputr/webinar-backend/internal/models"
	"gorm.io/gorm"
)

type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{
		db: db,
	}
}

func (r *ServiceRepository) GetByID(id uint) (*models.ServiceOffering, error) {
	var service models.ServiceOffering
	err := r.db.First(&service, id).Error
	return &service, err
}

func (r *ServiceRepository) GetActive() ([]models.ServiceOffering, error) {
	var services []models.ServiceOffering
	err := r.db.Where("is_active = ?", true).Find(&services).Error
	return services, err
}
