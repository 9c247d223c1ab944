package service

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/randeeprajputr/webinar-backend/internal/models"
	"github.com/randeeprajputr/webinar-backend/internal/repository"
	"github.com/randeeprajputr/webinar-backend/pkg/email"
	"github.com/randeeprajputr/webinar-backend/pkg/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fakeMailer records outbound messages so tests can assert on dispatch
// without a transport. Setting fail simulates a delivery outage.
type fakeMailer struct {
	mu        sync.Mutex
	fail      bool
	bookings  []email.BookingEmail
	purchases []email.PurchaseEmail
	bulkSends [][]string
}

func (m *fakeMailer) SendBookingConfirmation(msg email.BookingEmail) email.SendResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings = append(m.bookings, msg)
	if m.fail {
		return email.SendResult{Success: false, Error: "transport down"}
	}
	return email.SendResult{Success: true}
}

func (m *fakeMailer) SendPurchaseConfirmation(msg email.PurchaseEmail) email.SendResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purchases = append(m.purchases, msg)
	if m.fail {
		return email.SendResult{Success: false, Error: "transport down"}
	}
	return email.SendResult{Success: true}
}

func (m *fakeMailer) SendMeetingLink(recipients []string, msg email.MeetingLinkEmail) email.BulkSendResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bulkSends = append(m.bulkSends, recipients)
	if m.fail {
		return email.BulkSendResult{Failed: len(recipients)}
	}
	return email.BulkSendResult{Sent: len(recipients)}
}

func (m *fakeMailer) bookingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}

func (m *fakeMailer) purchaseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.purchases)
}

func newPaymentService(t *testing.T) (*PaymentService, *gorm.DB, *fakeMailer) {
	t.Helper()
	db := newTestDB(t)
	mailer := &fakeMailer{}

	svc := NewPaymentService(
		repository.NewRegistrationRepository(db),
		repository.NewPurchaseRepository(db),
		repository.NewWebinarRepository(db),
		repository.NewServiceRepository(db),
		repository.NewUserRepository(db),
		repository.NewSettingsRepository(db),
		NewCouponService(repository.NewCouponRepository(db)),
		payment.NewStripeService("", "", "http://localhost:5173"),
		mailer,
		zap.NewNop(),
	)
	return svc, db, mailer
}

func seedUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{
		FullName: "Asha Verma",
		Email:    "asha@example.com",
		Phone:    "+91 98765 43210",
		Password: "irrelevant",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedWebinar(t *testing.T, db *gorm.DB, price float64, slots int) models.Webinar {
	t.Helper()
	webinar := models.Webinar{
		Title:          "Intro to Investing",
		Host:           "R. Gupta",
		StartTime:      time.Now().Add(72 * time.Hour),
		MeetingLink:    "https://meet.example.com/abc",
		Price:          price,
		TotalSlots:     slots,
		AvailableSlots: slots,
		IsActive:       true,
	}
	require.NoError(t, db.Create(&webinar).Error)
	return webinar
}

func seedPendingRegistration(t *testing.T, db *gorm.DB, userID, webinarID uint, amount float64) models.WebinarRegistration {
	t.Helper()
	reg := models.WebinarRegistration{
		UserID:          userID,
		WebinarID:       webinarID,
		AmountPaid:      amount,
		PaymentStatus:   models.PaymentStatusPending,
		StripeSessionID: "cs_test_" + time.Now().Format("150405.000000000"),
	}
	require.NoError(t, db.Create(&reg).Error)
	return reg
}

func availableSlots(t *testing.T, db *gorm.DB, webinarID uint) int {
	t.Helper()
	var webinar models.Webinar
	require.NoError(t, db.First(&webinar, webinarID).Error)
	return webinar.AvailableSlots
}

func TestCompleteWebinarPaymentIsIdempotent(t *testing.T) {
	svc, db, mailer := newPaymentService(t)
	user := seedUser(t, db)
	webinar := seedWebinar(t, db, 499, 10)
	reg := seedPendingRegistration(t, db, user.ID, webinar.ID, 499)

	require.NoError(t, svc.CompleteWebinarPayment(user.ID, reg.ID, "pay_abc123"))

	var first models.WebinarRegistration
	require.NoError(t, db.First(&first, reg.ID).Error)
	assert.Equal(t, models.PaymentStatusCompleted, first.PaymentStatus)
	require.NotNil(t, first.InvoiceNumber)
	require.NotNil(t, first.PaymentID)
	assert.Equal(t, "pay_abc123", *first.PaymentID)
	assert.Equal(t, 9, availableSlots(t, db, webinar.ID))

	// A retried callback must not take another slot, reissue the invoice
	// number, or send a second email.
	require.NoError(t, svc.CompleteWebinarPayment(user.ID, reg.ID, "pay_abc123"))

	var second models.WebinarRegistration
	require.NoError(t, db.First(&second, reg.ID).Error)
	assert.Equal(t, *first.InvoiceNumber, *second.InvoiceNumber)
	assert.Equal(t, 9, availableSlots(t, db, webinar.ID))

	assert.Eventually(t, func() bool { return mailer.bookingCount() == 1 },
		2*time.Second, 10*time.Millisecond)
}

func TestCompleteWebinarPaymentRejectsForeignRecord(t *testing.T) {
	svc, db, _ := newPaymentService(t)
	owner := seedUser(t, db)
	webinar := seedWebinar(t, db, 499, 10)
	reg := seedPendingRegistration(t, db, owner.ID, webinar.ID, 499)

	err := svc.CompleteWebinarPayment(owner.ID+1, reg.ID, "pay_abc123")
	assert.ErrorIs(t, err, ErrNotFound)

	var fresh models.WebinarRegistration
	require.NoError(t, db.First(&fresh, reg.ID).Error)
	assert.Equal(t, models.PaymentStatusPending, fresh.PaymentStatus)
	assert.Nil(t, fresh.InvoiceNumber)
	assert.Equal(t, 10, availableSlots(t, db, webinar.ID))
}

func TestCompleteWebinarPaymentSlotFloor(t *testing.T) {
	svc, db, _ := newPaymentService(t)
	user := seedUser(t, db)
	webinar := seedWebinar(t, db, 499, 1)
	require.NoError(t, db.Model(&models.Webinar{}).
		Where("id = ?", webinar.ID).Update("available_slots", 0).Error)
	reg := seedPendingRegistration(t, db, user.ID, webinar.ID, 499)

	// Completion still succeeds; inventory never goes negative.
	require.NoError(t, svc.CompleteWebinarPayment(user.ID, reg.ID, "pay_abc123"))

	assert.Equal(t, 0, availableSlots(t, db, webinar.ID))

	var fresh models.WebinarRegistration
	require.NoError(t, db.First(&fresh, reg.ID).Error)
	assert.Equal(t, models.PaymentStatusCompleted, fresh.PaymentStatus)
}

func TestCompleteServicePaymentSurvivesMailerOutage(t *testing.T) {
	svc, db, mailer := newPaymentService(t)
	mailer.fail = true

	user := seedUser(t, db)
	offering := models.ServiceOffering{Name: "Portfolio Review", Price: 999, IsActive: true}
	require.NoError(t, db.Create(&offering).Error)

	purchase := models.ServicePurchase{
		UserID:        user.ID,
		ServiceID:     offering.ID,
		AmountPaid:    999,
		PaymentStatus: models.PaymentStatusPending,
	}
	require.NoError(t, db.Create(&purchase).Error)

	require.NoError(t, svc.CompleteServicePayment(user.ID, purchase.ID, "pay_xyz789"))

	var fresh models.ServicePurchase
	require.NoError(t, db.First(&fresh, purchase.ID).Error)
	assert.Equal(t, models.PaymentStatusCompleted, fresh.PaymentStatus)
	require.NotNil(t, fresh.InvoiceNumber)

	assert.Eventually(t, func() bool { return mailer.purchaseCount() == 1 },
		2*time.Second, 10*time.Millisecond)
}

func TestRegisterForWebinarFreeConfirmsImmediately(t *testing.T) {
	svc, db, mailer := newPaymentService(t)
	user := seedUser(t, db)
	webinar := seedWebinar(t, db, 0, 5)

	resp, err := svc.RegisterForWebinar(user.ID, webinar.ID, "")
	require.NoError(t, err)
	require.NotNil(t, resp.Registration)
	assert.Nil(t, resp.Checkout)

	assert.Equal(t, models.PaymentStatusFree, resp.Registration.PaymentStatus)
	require.NotNil(t, resp.Registration.InvoiceNumber)
	require.NotNil(t, resp.Registration.PaymentID)
	assert.Contains(t, *resp.Registration.PaymentID, "free-")
	assert.Equal(t, 4, availableSlots(t, db, webinar.ID))

	assert.Eventually(t, func() bool { return mailer.bookingCount() == 1 },
		2*time.Second, 10*time.Millisecond)
}

func TestRegisterForWebinarFullyDiscounted(t *testing.T) {
	svc, db, _ := newPaymentService(t)
	user := seedUser(t, db)
	webinar := seedWebinar(t, db, 299, 5)

	coupon := models.Coupon{
		Code:          "FREEPASS",
		DiscountType:  models.CouponDiscountFixed,
		DiscountValue: 299,
		AppliesTo:     models.CouponAppliesWebinar,
		IsActive:      true,
	}
	require.NoError(t, db.Create(&coupon).Error)

	resp, err := svc.RegisterForWebinar(user.ID, webinar.ID, "FREEPASS")
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusFree, resp.Registration.PaymentStatus)
	assert.Equal(t, 0.0, resp.Registration.AmountPaid)
	assert.Equal(t, 299.0, resp.Registration.DiscountAmount)
	assert.Nil(t, resp.Checkout)

	var fresh models.Coupon
	require.NoError(t, db.First(&fresh, coupon.ID).Error)
	assert.Equal(t, 1, fresh.UsedCount)
}

func TestRegisterForWebinarGuards(t *testing.T) {
	svc, db, _ := newPaymentService(t)
	user := seedUser(t, db)

	inactive := seedWebinar(t, db, 0, 5)
	require.NoError(t, db.Model(&models.Webinar{}).
		Where("id = ?", inactive.ID).Update("is_active", false).Error)

	full := seedWebinar(t, db, 0, 1)
	require.NoError(t, db.Model(&models.Webinar{}).
		Where("id = ?", full.ID).Update("available_slots", 0).Error)

	_, err := svc.RegisterForWebinar(user.ID, inactive.ID, "")
	assert.ErrorIs(t, err, ErrWebinarUnavailable)

	_, err = svc.RegisterForWebinar(user.ID, full.ID, "")
	assert.ErrorIs(t, err, ErrWebinarFull)

	_, err = svc.RegisterForWebinar(user.ID, 9999, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHandleWebhookEventMarksFailures(t *testing.T) {
	svc, db, _ := newPaymentService(t)
	user := seedUser(t, db)
	webinar := seedWebinar(t, db, 499, 5)

	pending := seedPendingRegistration(t, db, user.ID, webinar.ID, 499)
	completed := seedPendingRegistration(t, db, user.ID, webinar.ID, 499)
	require.NoError(t, svc.CompleteWebinarPayment(user.ID, completed.ID, "pay_done"))

	expire := func(sessionID string) {
		raw, err := json.Marshal(map[string]string{"id": sessionID})
		require.NoError(t, err)
		require.NoError(t, svc.HandleWebhookEvent(&stripe.Event{
			Type: "checkout.session.expired",
			Data: &stripe.EventData{Raw: raw},
		}))
	}

	expire(pending.StripeSessionID)
	expire(completed.StripeSessionID)

	var freshPending models.WebinarRegistration
	require.NoError(t, db.First(&freshPending, pending.ID).Error)
	assert.Equal(t, models.PaymentStatusFailed, freshPending.PaymentStatus)

	// A completed payment is never regressed by a late expiry event.
	var freshCompleted models.WebinarRegistration
	require.NoError(t, db.First(&freshCompleted, completed.ID).Error)
	assert.Equal(t, models.PaymentStatusCompleted, freshCompleted.PaymentStatus)
}

func TestInvoiceForRegistration(t *testing.T) {
	svc, db, _ := newPaymentService(t)
	user := seedUser(t, db)
	webinar := seedWebinar(t, db, 499, 5)

	pending := seedPendingRegistration(t, db, user.ID, webinar.ID, 499)
	_, err := svc.InvoiceForRegistration(user.ID, pending.ID)
	assert.ErrorIs(t, err, ErrInvoiceNotReady)

	require.NoError(t, svc.CompleteWebinarPayment(user.ID, pending.ID, "pay_abc123"))

	pdf, err := svc.InvoiceForRegistration(user.ID, pending.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	_, err = svc.InvoiceForRegistration(user.ID+1, pending.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotifyWebinarAttendees(t *testing.T) {
	svc, db, mailer := newPaymentService(t)
	user := seedUser(t, db)
	other := models.User{FullName: "Ravi", Email: "ravi@example.com", Password: "irrelevant"}
	require.NoError(t, db.Create(&other).Error)
	webinar := seedWebinar(t, db, 499, 5)

	confirmed := seedPendingRegistration(t, db, user.ID, webinar.ID, 499)
	require.NoError(t, svc.CompleteWebinarPayment(user.ID, confirmed.ID, "pay_abc"))
	seedPendingRegistration(t, db, other.ID, webinar.ID, 499) // stays pending

	result, err := svc.NotifyWebinarAttendees(webinar.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)

	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	require.Len(t, mailer.bulkSends, 1)
	assert.Equal(t, []string{user.Email}, mailer.bulkSends[0])
}

func TestGetPurchaseHistory(t *testing.T) {
	svc, db, _ := newPaymentService(t)
	user := seedUser(t, db)
	webinar := seedWebinar(t, db, 499, 5)
	seedPendingRegistration(t, db, user.ID, webinar.ID, 499)

	offering := models.ServiceOffering{Name: "Portfolio Review", Price: 999, IsActive: true}
	require.NoError(t, db.Create(&offering).Error)
	require.NoError(t, db.Create(&models.ServicePurchase{
		UserID: user.ID, ServiceID: offering.ID, AmountPaid: 999,
		PaymentStatus: models.PaymentStatusCompleted,
	}).Error)

	history, err := svc.GetPurchaseHistory(user.ID)
	require.NoError(t, err)
	assert.Len(t, history.Registrations, 1)
	assert.Len(t, history.Purchases, 1)
}
