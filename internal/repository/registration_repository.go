package repository

import (
	"github.com/randeeprajputr/webinar-backend/internal/models"
	"gorm.io/gorm"
)

type RegistrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) *RegistrationRepository {
	return &RegistrationRepository{
		db: db,
	}
}

func (r *RegistrationRepository) Create(reg *models.WebinarRegistration) error {
	return r.db.Create(reg).Error
}

func (r *RegistrationRepository) GetByIDForUser(id, userID uint) (*models.WebinarRegistration, error) {
	var reg models.WebinarRegistration
	err := r.db.Preload("Webinar").
		Where("id = ? AND user_id = ?", id, userID).
		First(&reg).Error
	return &reg, err
}

func (r *RegistrationRepository) GetBySessionID(sessionID string) (*models.WebinarRegistration, error) {
	var reg models.WebinarRegistration
	err := r.db.Where("stripe_session_id = ?", sessionID).First(&reg).Error
	return &reg, err
}

func (r *RegistrationRepository) GetUserHistory(userID uint) ([]models.WebinarRegistration, error) {
	var regs []models.WebinarRegistration
	err := r.db.Preload("Webinar").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&regs).Error
	return regs, err
}

// MarkCompleted is the linearization point of payment completion: the status
// flips pending -> completed, and the payment id and invoice number are set,
// all in one conditional update scoped by record and owner. A zero row count
// means the record was absent, foreign, or no longer pending.
func (r *RegistrationRepository) MarkCompleted(id, userID uint, paymentID, invoiceNumber string) (int64, error) {
	res := r.db.Model(&models.WebinarRegistration{}).
		Where("id = ? AND user_id = ? AND payment_status = ?", id, userID, models.PaymentStatusPending).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentStatusCompleted,
			"payment_id":     paymentID,
			"invoice_number": invoiceNumber,
		})
	return res.RowsAffected, res.Error
}

// MarkFailedBySession flips a pending registration to failed after a gateway
// failure callback. Completed records are never regressed.
func (r *RegistrationRepository) MarkFailedBySession(sessionID string) (int64, error) {
	res := r.db.Model(&models.WebinarRegistration{}).
		Where("stripe_session_id = ? AND payment_status = ?", sessionID, models.PaymentStatusPending).
		Update("payment_status", models.PaymentStatusFailed)
	return res.RowsAffected, res.Error
}

func (r *RegistrationRepository) InvoiceNumberExists(invoiceNumber string) (bool, error) {
	var count int64
	err := r.db.Model(&models.WebinarRegistration{}).
		Where("invoice_number = ?", invoiceNumber).
		Count(&count).Error
	return count > 0, err
}

// GetAttendeeEmails lists the emails of everyone holding a confirmed seat.
func (r *RegistrationRepository) GetAttendeeEmails(webinarID uint) ([]string, error) {
	var emails []string
	err := r.db.Model(&models.WebinarRegistration{}).
		Joins("JOIN users ON users.id = webinar_registrations.user_id").
		Where("webinar_registrations.webinar_id = ? AND webinar_registrations.payment_status IN ?",
			webinarID, []string{models.PaymentStatusCompleted, models.PaymentStatusFree}).
		Pluck("users.email", &emails).Error
	return emails, err
}
