package repository

import (
	"github.com/randeeprajputr/webinar-backend/internal/models"
	"gorm.io/gorm"
)

type PurchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{
		db: db,
	}
}

func (r *PurchaseRepository) Create(purchase *models.ServicePurchase) error {
	return r.db.Create(purchase).Error
}

func (r *PurchaseRepository) GetByIDForUser(id, userID uint) (*models.ServicePurchase, error) {
	var purchase models.ServicePurchase
	err := r.db.Preload("Service").
		Where("id = ? AND user_id = ?", id, userID).
		First(&purchase).Error
	return &purchase, err
}

func (r *PurchaseRepository) GetBySessionID(sessionID string) (*models.ServicePurchase, error) {
	var purchase models.ServicePurchase
	err := r.db.Where("stripe_session_id = ?", sessionID).First(&purchase).Error
	return &purchase, err
}

func (r *PurchaseRepository) GetUserHistory(userID uint) ([]models.ServicePurchase, error) {
	var purchases []models.ServicePurchase
	err := r.db.Preload("Service").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&purchases).Error
	return purchases, err
}

// MarkCompleted mirrors RegistrationRepository.MarkCompleted for service
// purchases: one conditional update, scoped by record, owner and status.
func (r *PurchaseRepository) MarkCompleted(id, userID uint, paymentID, invoiceNumber string) (int64, error) {
	res := r.db.Model(&models.ServicePurchase{}).
		Where("id = ? AND user_id = ? AND payment_status = ?", id, userID, models.PaymentStatusPending).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentStatusCompleted,
			"payment_id":     paymentID,
			"invoice_number": invoiceNumber,
		})
	return res.RowsAffected, res.Error
}

func (r *PurchaseRepository) MarkFailedBySession(sessionID string) (int64, error) {
	res := r.db.Model(&models.ServicePurchase{}).
		Where("stripe_session_id = ? AND payment_status = ?", sessionID, models.PaymentStatusPending).
		Update("payment_status", models.PaymentStatusFailed)
	return res.RowsAffected, res.Error
}

func (r *PurchaseRepository) InvoiceNumberExists(invoiceNumber string) (bool, error) {
	var count int64
	err := r.db.Model(&models.ServicePurchase{}).
		Where("invoice_number = ?", invoiceNumber).
		Count(&count).Error
	return count > 0, err
}
