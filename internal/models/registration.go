package models

import "time"

// Payment status lifecycle for registrations and purchases.
// pending -> completed (paid), pending -> free (zero-amount webinars),
// pending -> failed (gateway failure). Refunds are a manual admin action.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFree      = "free"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// WebinarRegistration is a user's seat in a webinar.
type WebinarRegistration struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	UserID          uint      `json:"user_id" gorm:"not null;index"`
	WebinarID       uint      `json:"webinar_id" gorm:"not null;index"`
	Webinar         Webinar   `json:"webinar" gorm:"foreignKey:WebinarID"`
	AmountPaid      float64   `json:"amount_paid" gorm:"not null;default:0"`
	DiscountAmount  float64   `json:"discount_amount" gorm:"not null;default:0"`
	CouponID        *uint     `json:"coupon_id,omitempty"`
	PaymentStatus   string    `json:"payment_status" gorm:"not null;default:'pending';index"`
	PaymentID       *string   `json:"payment_id,omitempty"`
	StripeSessionID string    `json:"-" gorm:"index"`
	InvoiceNumber   *string   `json:"invoice_number,omitempty" gorm:"uniqueIndex"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ServicePurchase is a user's purchase of a service offering.
type ServicePurchase struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	UserID          uint            `json:"user_id" gorm:"not null;index"`
	ServiceID       uint            `json:"service_id" gorm:"not null;index"`
	Service         ServiceOffering `json:"service" gorm:"foreignKey:ServiceID"`
	AmountPaid      float64         `json:"amount_paid" gorm:"not null;default:0"`
	DiscountAmount  float64         `json:"discount_amount" gorm:"not null;default:0"`
	CouponID        *uint           `json:"coupon_id,omitempty"`
	PaymentStatus   string          `json:"payment_status" gorm:"not null;default:'pending';index"`
	PaymentID       *string         `json:"payment_id,omitempty"`
	StripeSessionID string          `json:"-" gorm:"index"`
	InvoiceNumber   *string         `json:"invoice_number,omitempty" gorm:"uniqueIndex"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type CompletePaymentRequest struct {
	RegistrationID *uint  `json:"registration_id"`
	PurchaseID     *uint  `json:"purchase_id"`
	OrderID        string `json:"order_id" validate:"required"`
}

type RegisterWebinarRequest struct {
	CouponCode string `json:"coupon_code"`
}

type CheckoutRequest struct {
	ServiceID  uint   `json:"service_id" validate:"required"`
	CouponCode string `json:"coupon_code"`
}

type PurchaseHistory struct {
	Registrations []WebinarRegistration `json:"registrations"`
	Purchases     []ServicePurchase     `json:"purchases"`
}
