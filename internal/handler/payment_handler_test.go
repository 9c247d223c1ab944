package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/randeeprajputr/webinar-backend/internal/middleware"
	"github.com/randeeprajputr/webinar-backend/internal/models"
	"github.com/randeeprajputr/webinar-backend/internal/repository"
	"github.com/randeeprajputr/webinar-backend/internal/service"
	"github.com/randeeprajputr/webinar-backend/pkg/database"
	"github.com/randeeprajputr/webinar-backend/pkg/email"
	jwtPkg "github.com/randeeprajputr/webinar-backend/pkg/jwt"
	"github.com/randeeprajputr/webinar-backend/pkg/payment"
	"github.com/randeeprajputr/webinar-backend/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type nopMailer struct{}

func (nopMailer) SendBookingConfirmation(email.BookingEmail) email.SendResult {
	return email.SendResult{Success: true}
}
func (nopMailer) SendPurchaseConfirmation(email.PurchaseEmail) email.SendResult {
	return email.SendResult{Success: true}
}
func (nopMailer) SendMeetingLink(recipients []string, _ email.MeetingLinkEmail) email.BulkSendResult {
	return email.BulkSendResult{Sent: len(recipients)}
}

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	couponService := service.NewCouponService(repository.NewCouponRepository(db))
	stripeService := payment.NewStripeService("", "", "http://localhost:5173")
	paymentService := service.NewPaymentService(
		repository.NewRegistrationRepository(db),
		repository.NewPurchaseRepository(db),
		repository.NewWebinarRepository(db),
		repository.NewServiceRepository(db),
		repository.NewUserRepository(db),
		repository.NewSettingsRepository(db),
		couponService,
		stripeService,
		nopMailer{},
		zap.NewNop(),
	)

	h := NewPaymentHandler(paymentService, stripeService, utils.NewValidator())

	app := fiber.New()
	api := app.Group("/api")
	api.Use(middleware.AuthMiddleware())
	api.Post("/payments/complete", h.CompletePayment)
	api.Get("/invoices/registration/:registrationId", h.GetRegistrationInvoice)

	return app, db
}

func authToken(t *testing.T, user models.User) string {
	t.Helper()
	token, err := jwtPkg.GenerateToken(user.Email, user.ID)
	require.NoError(t, err)
	return token
}

func completeRequest(t *testing.T, token string, body any) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/complete", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func seedCompletionFixtures(t *testing.T, db *gorm.DB) (models.User, models.WebinarRegistration) {
	t.Helper()
	user := models.User{FullName: "Asha", Email: "asha@example.com", Password: "irrelevant"}
	require.NoError(t, db.Create(&user).Error)

	webinar := models.Webinar{
		Title: "Intro to Investing", StartTime: time.Now().Add(48 * time.Hour),
		Price: 499, TotalSlots: 10, AvailableSlots: 10, IsActive: true,
	}
	require.NoError(t, db.Create(&webinar).Error)

	reg := models.WebinarRegistration{
		UserID: user.ID, WebinarID: webinar.ID, AmountPaid: 499,
		PaymentStatus: models.PaymentStatusPending,
	}
	require.NoError(t, db.Create(&reg).Error)
	return user, reg
}

func TestCompletePaymentRequiresAuth(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(completeRequest(t, "", fiber.Map{"order_id": "pay_1"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCompletePaymentRequiresExactlyOneTarget(t *testing.T) {
	app, db := newTestApp(t)
	user, reg := seedCompletionFixtures(t, db)
	token := authToken(t, user)

	// Neither target.
	resp, err := app.Test(completeRequest(t, token, fiber.Map{"order_id": "pay_1"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Both targets.
	resp, err = app.Test(completeRequest(t, token, fiber.Map{
		"order_id": "pay_1", "registration_id": reg.ID, "purchase_id": 1,
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Missing order id.
	resp, err = app.Test(completeRequest(t, token, fiber.Map{"registration_id": reg.ID}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCompletePaymentHappyPath(t *testing.T) {
	app, db := newTestApp(t)
	user, reg := seedCompletionFixtures(t, db)
	token := authToken(t, user)

	resp, err := app.Test(completeRequest(t, token, fiber.Map{
		"order_id": "pay_1", "registration_id": reg.ID,
	}), 5000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var fresh models.WebinarRegistration
	require.NoError(t, db.First(&fresh, reg.ID).Error)
	assert.Equal(t, models.PaymentStatusCompleted, fresh.PaymentStatus)
	require.NotNil(t, fresh.InvoiceNumber)
}

func TestCompletePaymentUnknownRecord(t *testing.T) {
	app, db := newTestApp(t)
	user, _ := seedCompletionFixtures(t, db)
	token := authToken(t, user)

	resp, err := app.Test(completeRequest(t, token, fiber.Map{
		"order_id": "pay_1", "registration_id": 9999,
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetRegistrationInvoiceStreamsPDF(t *testing.T) {
	app, db := newTestApp(t)
	user, reg := seedCompletionFixtures(t, db)
	token := authToken(t, user)

	resp, err := app.Test(completeRequest(t, token, fiber.Map{
		"order_id": "pay_1", "registration_id": reg.ID,
	}), 5000)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/invoices/registration/%d", reg.ID), nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err = app.Test(req, 5000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
}
