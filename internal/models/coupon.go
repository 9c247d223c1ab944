package models

import "time"

const (
	CouponDiscountPercentage = "percentage"
	CouponDiscountFixed      = "fixed"
)

// Coupon applicability categories.
const (
	CouponAppliesAll     = "all"
	CouponAppliesWebinar = "webinar"
	CouponAppliesService = "service"
)

type Coupon struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	Code              string     `json:"code" gorm:"uniqueIndex;not null"`
	DiscountType      string     `json:"discount_type" gorm:"not null"`
	DiscountValue     float64    `json:"discount_value" gorm:"not null"`
	MaxUses           int        `json:"max_uses" gorm:"default:0"` // 0 = unlimited
	MaxUsesPerUser    int        `json:"max_uses_per_user" gorm:"default:1"`
	MinPurchaseAmount float64    `json:"min_purchase_amount" gorm:"default:0"`
	MaxDiscountAmount float64    `json:"max_discount_amount" gorm:"default:0"` // cap for percentage type, 0 = no cap
	ValidUntil        *time.Time `json:"valid_until,omitempty"`
	AppliesTo         string     `json:"applies_to" gorm:"not null;default:'all'"`
	IsActive          bool       `json:"is_active" gorm:"default:true"`
	UsedCount         int        `json:"used_count" gorm:"default:0"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// CouponUsage records one redemption of a coupon by a user.
type CouponUsage struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	CouponID uint      `json:"coupon_id" gorm:"not null;index"`
	UserID   uint      `json:"user_id" gorm:"not null;index"`
	UsedAt   time.Time `json:"used_at"`
}

type CouponResult struct {
	CouponID       uint    `json:"coupon_id"`
	CouponCode     string  `json:"coupon_code"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalAmount    float64 `json:"final_amount"`
}

type ValidateCouponRequest struct {
	Code     string  `json:"code" validate:"required"`
	ItemType string  `json:"item_type" validate:"required,oneof=webinar service"`
	Amount   float64 `json:"amount" validate:"gte=0"`
}
