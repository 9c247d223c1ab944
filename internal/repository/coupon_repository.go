package repository

import (
	"time"

	"github.com/randeeprajputr/webinar-backend/internal/models"
	"gorm.io/gorm"
)

type CouponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) *CouponRepository {
	return &CouponRepository{
		db: db,
	}
}

func (r *CouponRepository) Create(coupon *models.Coupon) error {
	return r.db.Create(coupon).Error
}

func (r *CouponRepository) GetByCode(code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.Where("code = ?", code).First(&coupon).Error
	return &coupon, err
}

func (r *CouponRepository) CountUsageByUser(couponID, userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.CouponUsage{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&count).Error
	return count, err
}

// Consume records one redemption: bumps the global counter and writes the
// per-user usage row.
func (r *CouponRepository) Consume(couponID, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Coupon{}).
			Where("id = ?", couponID).
			UpdateColumn("used_count", gorm.Expr("used_count + 1")).Error
		if err != nil {
			return err
		}
		return tx.Create(&models.CouponUsage{
			CouponID: couponID,
			UserID:   userID,
			UsedAt:   time.Now(),
		}).Error
	})
}
