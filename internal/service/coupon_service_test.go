package service

import (
	"testing"
	"time"

	"github.com/randeeprajputr/webinar-backend/internal/models"
	"github.com/randeeprajputr/webinar-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCouponService(t *testing.T) (*CouponService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewCouponService(repository.NewCouponRepository(db)), db
}

func seedCoupon(t *testing.T, db *gorm.DB, coupon models.Coupon) models.Coupon {
	t.Helper()
	require.NoError(t, db.Create(&coupon).Error)
	return coupon
}

func TestEvaluatePercentageDiscount(t *testing.T) {
	svc, db := newCouponService(t)
	seedCoupon(t, db, models.Coupon{
		Code:          "SAVE10",
		DiscountType:  models.CouponDiscountPercentage,
		DiscountValue: 10,
		AppliesTo:     models.CouponAppliesAll,
		IsActive:      true,
	})

	result, err := svc.Evaluate(1, "SAVE10", models.CouponAppliesWebinar, 500)
	require.NoError(t, err)
	assert.Equal(t, 50.0, result.DiscountAmount)
	assert.Equal(t, 450.0, result.FinalAmount)
}

func TestEvaluatePercentageDiscountCap(t *testing.T) {
	svc, db := newCouponService(t)
	seedCoupon(t, db, models.Coupon{
		Code:              "BIG20",
		DiscountType:      models.CouponDiscountPercentage,
		DiscountValue:     20,
		MaxDiscountAmount: 100,
		AppliesTo:         models.CouponAppliesAll,
		IsActive:          true,
	})

	// 20% of 1000 is 200, capped at 100.
	result, err := svc.Evaluate(1, "BIG20", models.CouponAppliesWebinar, 1000)
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.DiscountAmount)
	assert.Equal(t, 900.0, result.FinalAmount)
}

func TestEvaluateFixedDiscountFloorsAtZero(t *testing.T) {
	svc, db := newCouponService(t)
	seedCoupon(t, db, models.Coupon{
		Code:          "FLAT500",
		DiscountType:  models.CouponDiscountFixed,
		DiscountValue: 500,
		AppliesTo:     models.CouponAppliesAll,
		IsActive:      true,
	})

	result, err := svc.Evaluate(1, "FLAT500", models.CouponAppliesService, 300)
	require.NoError(t, err)
	assert.Equal(t, 300.0, result.DiscountAmount)
	assert.Equal(t, 0.0, result.FinalAmount)
}

func TestEvaluateRejections(t *testing.T) {
	svc, db := newCouponService(t)

	past := time.Now().Add(-24 * time.Hour)
	seedCoupon(t, db, models.Coupon{
		Code: "EXPIRED", DiscountType: models.CouponDiscountFixed, DiscountValue: 50,
		AppliesTo: models.CouponAppliesAll, IsActive: true, ValidUntil: &past,
	})
	seedCoupon(t, db, models.Coupon{
		Code: "WEBONLY", DiscountType: models.CouponDiscountFixed, DiscountValue: 50,
		AppliesTo: models.CouponAppliesWebinar, IsActive: true,
	})
	seedCoupon(t, db, models.Coupon{
		Code: "MIN1000", DiscountType: models.CouponDiscountFixed, DiscountValue: 50,
		AppliesTo: models.CouponAppliesAll, IsActive: true, MinPurchaseAmount: 1000,
	})
	seedCoupon(t, db, models.Coupon{
		Code: "USEDUP", DiscountType: models.CouponDiscountFixed, DiscountValue: 50,
		AppliesTo: models.CouponAppliesAll, IsActive: true, MaxUses: 2, UsedCount: 2,
	})
	seedCoupon(t, db, models.Coupon{
		Code: "INACTIVE", DiscountType: models.CouponDiscountFixed, DiscountValue: 50,
		AppliesTo: models.CouponAppliesAll, IsActive: false,
	})

	tests := []struct {
		name     string
		code     string
		itemType string
		amount   float64
		want     error
	}{
		{"unknown code", "NOPE", models.CouponAppliesWebinar, 500, ErrCouponNotFound},
		{"inactive treated as unknown", "INACTIVE", models.CouponAppliesWebinar, 500, ErrCouponNotFound},
		{"expired", "EXPIRED", models.CouponAppliesWebinar, 500, ErrCouponExpired},
		{"wrong category", "WEBONLY", models.CouponAppliesService, 500, ErrCouponWrongCategory},
		{"below minimum", "MIN1000", models.CouponAppliesWebinar, 500, ErrCouponMinPurchase},
		{"globally exhausted", "USEDUP", models.CouponAppliesWebinar, 500, ErrCouponExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Evaluate(7, tt.code, tt.itemType, tt.amount)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEvaluatePerUserLimit(t *testing.T) {
	svc, db := newCouponService(t)
	coupon := seedCoupon(t, db, models.Coupon{
		Code: "ONCE", DiscountType: models.CouponDiscountFixed, DiscountValue: 50,
		AppliesTo: models.CouponAppliesAll, IsActive: true, MaxUsesPerUser: 1,
	})

	require.NoError(t, db.Create(&models.CouponUsage{
		CouponID: coupon.ID, UserID: 7, UsedAt: time.Now(),
	}).Error)

	_, err := svc.Evaluate(7, "ONCE", models.CouponAppliesWebinar, 500)
	assert.ErrorIs(t, err, ErrCouponUserLimit)

	// Other users are unaffected.
	_, err = svc.Evaluate(8, "ONCE", models.CouponAppliesWebinar, 500)
	assert.NoError(t, err)
}

func TestConsumeRecordsRedemption(t *testing.T) {
	svc, db := newCouponService(t)
	coupon := seedCoupon(t, db, models.Coupon{
		Code: "TRACKME", DiscountType: models.CouponDiscountFixed, DiscountValue: 50,
		AppliesTo: models.CouponAppliesAll, IsActive: true,
	})

	require.NoError(t, svc.Consume(coupon.ID, 7))
	require.NoError(t, svc.Consume(coupon.ID, 8))

	var fresh models.Coupon
	require.NoError(t, db.First(&fresh, coupon.ID).Error)
	assert.Equal(t, 2, fresh.UsedCount)

	var usages int64
	require.NoError(t, db.Model(&models.CouponUsage{}).
		Where("coupon_id = ?", coupon.ID).Count(&usages).Error)
	assert.Equal(t, int64(2), usages)
}
