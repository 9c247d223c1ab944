package service

import (
	"errors"
	"fmt"

	"github.com/randeeprajputr/webinar-backend/internal/models"
	"github.com/randeeprajputr/webinar-backend/internal/repository"
	"gorm.io/gorm"
)

// CatalogService serves the public webinar and service listings.
type CatalogService struct {
	webinarRepo *repository.WebinarRepository
	serviceRepo *repository.ServiceRepository
}

func NewCatalogService(webinarRepo *repository.WebinarRepository, serviceRepo *repository.ServiceRepository) *CatalogService {
	return &CatalogService{
		webinarRepo: webinarRepo,
		serviceRepo: serviceRepo,
	}
}

func (s *CatalogService) GetWebinars() ([]models.Webinar, error) {
	return s.webinarRepo.GetActive()
}

func (s *CatalogService) GetWebinar(id uint) (*models.Webinar, error) {
	webinar, err := s.webinarRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch webinar: %w", err)
	}
	return webinar, nil
}

func (s *CatalogService) GetServices() ([]models.ServiceOffering, error) {
	return s.serviceRepo.GetActive()
}
