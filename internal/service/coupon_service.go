package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/randeeprajputr/webinar-backend/internal/models"
	"github.com/randeeprajputr/webinar-backend/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Coupon rejection reasons. Each rule violation carries its own error so the
// client can show an actionable message instead of a generic "invalid coupon".
var (
	ErrCouponNotFound      = errors.New("coupon code is invalid")
	ErrCouponExpired       = errors.New("coupon has expired")
	ErrCouponWrongCategory = errors.New("coupon is not applicable to this item")
	ErrCouponMinPurchase   = errors.New("order amount is below the coupon minimum")
	ErrCouponUserLimit     = errors.New("you have already used this coupon the maximum number of times")
	ErrCouponExhausted     = errors.New("coupon usage limit has been reached")
)

type CouponService struct {
	couponRepo *repository.CouponRepository
}

func NewCouponService(couponRepo *repository.CouponRepository) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
	}
}

// Evaluate checks every coupon rule in order, first failure wins, and
// computes the discount on success. It does not consume the coupon.
func (s *CouponService) Evaluate(userID uint, code, itemType string, amount float64) (*models.CouponResult, error) {
	coupon, err := s.couponRepo.GetByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("look up coupon: %w", err)
	}

	if !coupon.IsActive {
		return nil, ErrCouponNotFound
	}
	if coupon.ValidUntil != nil && time.Now().After(*coupon.ValidUntil) {
		return nil, ErrCouponExpired
	}
	if coupon.AppliesTo != models.CouponAppliesAll && coupon.AppliesTo != itemType {
		return nil, ErrCouponWrongCategory
	}
	if amount < coupon.MinPurchaseAmount {
		return nil, ErrCouponMinPurchase
	}

	userUses, err := s.couponRepo.CountUsageByUser(coupon.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("count coupon usage: %w", err)
	}
	if coupon.MaxUsesPerUser > 0 && userUses >= int64(coupon.MaxUsesPerUser) {
		return nil, ErrCouponUserLimit
	}
	if coupon.MaxUses > 0 && coupon.UsedCount >= coupon.MaxUses {
		return nil, ErrCouponExhausted
	}

	discount := computeDiscount(coupon, amount)
	final := roundMoney(amount - discount)

	return &models.CouponResult{
		CouponID:       coupon.ID,
		CouponCode:     coupon.Code,
		DiscountAmount: discount,
		FinalAmount:    final,
	}, nil
}

// Consume records a redemption; called once at successful checkout.
func (s *CouponService) Consume(couponID, userID uint) error {
	return s.couponRepo.Consume(couponID, userID)
}

func computeDiscount(coupon *models.Coupon, amount float64) float64 {
	amt := decimal.NewFromFloat(amount)

	var discount decimal.Decimal
	switch coupon.DiscountType {
	case models.CouponDiscountPercentage:
		discount = amt.Mul(decimal.NewFromFloat(coupon.DiscountValue)).
			Div(decimal.NewFromInt(100)).Round(2)
		if coupon.MaxDiscountAmount > 0 {
			cap := decimal.NewFromFloat(coupon.MaxDiscountAmount)
			if discount.GreaterThan(cap) {
				discount = cap
			}
		}
	default: // fixed
		discount = decimal.NewFromFloat(coupon.DiscountValue)
	}

	// Final price never goes below zero.
	if discount.GreaterThan(amt) {
		discount = amt
	}

	f, _ := discount.Float64()
	return f
}
