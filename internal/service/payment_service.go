package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/randeeprajputr/webinar-backend/internal/models"
	"github.com/randeeprajputr/webinar-backend/internal/repository"
	"github.com/randeeprajputr/webinar-backend/pkg/email"
	"github.com/randeeprajputr/webinar-backend/pkg/invoice"
	"github.com/randeeprajputr/webinar-backend/pkg/payment"
	"github.com/stripe/stripe-go/v74"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrWebinarUnavailable = errors.New("webinar is not open for registration")
	ErrWebinarFull        = errors.New("webinar has no available slots")
	ErrInvoiceNotReady    = errors.New("invoice is not available for this record")
)

// PDF generation is CPU-bound and normally instant; the timeout is a
// safety net so a pathological render can never wedge a completion.
const renderTimeout = 10 * time.Second

// Mailer is the outbound notification transport. Results are soft: the
// orchestrator never fails a completion over a delivery problem.
type Mailer interface {
	SendBookingConfirmation(msg email.BookingEmail) email.SendResult
	SendPurchaseConfirmation(msg email.PurchaseEmail) email.SendResult
	SendMeetingLink(recipients []string, msg email.MeetingLinkEmail) email.BulkSendResult
}

type PaymentService struct {
	registrationRepo *repository.RegistrationRepository
	purchaseRepo     *repository.PurchaseRepository
	webinarRepo      *repository.WebinarRepository
	serviceRepo      *repository.ServiceRepository
	userRepo         *repository.UserRepository
	settingsRepo     *repository.SettingsRepository
	couponService    *CouponService
	stripeService    *payment.StripeService
	mailer           Mailer
	logger           *zap.Logger
}

func NewPaymentService(
	registrationRepo *repository.RegistrationRepository,
	purchaseRepo *repository.PurchaseRepository,
	webinarRepo *repository.WebinarRepository,
	serviceRepo *repository.ServiceRepository,
	userRepo *repository.UserRepository,
	settingsRepo *repository.SettingsRepository,
	couponService *CouponService,
	stripeService *payment.StripeService,
	mailer Mailer,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		registrationRepo: registrationRepo,
		purchaseRepo:     purchaseRepo,
		webinarRepo:      webinarRepo,
		serviceRepo:      serviceRepo,
		userRepo:         userRepo,
		settingsRepo:     settingsRepo,
		couponService:    couponService,
		stripeService:    stripeService,
		mailer:           mailer,
		logger:           logger,
	}
}

// CompleteWebinarPayment finalizes a paid webinar registration after the
// gateway reports success. Only the status transition itself can fail the
// call; slot accounting, invoice rendering and email are best-effort.
func (s *PaymentService) CompleteWebinarPayment(userID, registrationID uint, orderID string) error {
	reg, err := s.registrationRepo.GetByIDForUser(registrationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("fetch registration: %w", err)
	}

	// Retried completions are a no-op: no second slot decrement, no new
	// invoice number, no duplicate email.
	if reg.PaymentStatus == models.PaymentStatusCompleted || reg.PaymentStatus == models.PaymentStatusFree {
		s.logger.Info("registration already finalized, skipping",
			zap.Uint("registration_id", registrationID),
			zap.String("status", reg.PaymentStatus))
		return nil
	}

	invoiceNumber := s.issueInvoiceNumber()

	rows, err := s.registrationRepo.MarkCompleted(registrationID, userID, orderID, invoiceNumber)
	if err != nil {
		return fmt.Errorf("complete registration %d: %w", registrationID, err)
	}
	if rows == 0 {
		// A concurrent call may have won the transition.
		if fresh, ferr := s.registrationRepo.GetByIDForUser(registrationID, userID); ferr == nil &&
			fresh.PaymentStatus == models.PaymentStatusCompleted {
			return nil
		}
		return fmt.Errorf("registration %d is not in a completable state", registrationID)
	}

	s.takeWebinarSlot(reg.WebinarID, registrationID)

	reg.PaymentStatus = models.PaymentStatusCompleted
	reg.PaymentID = &orderID
	reg.InvoiceNumber = &invoiceNumber
	s.sendRegistrationConfirmation(reg)

	s.logger.Info("webinar payment completed",
		zap.Uint("registration_id", registrationID),
		zap.Uint("user_id", userID),
		zap.String("invoice_number", invoiceNumber),
		zap.String("order_id", orderID))
	return nil
}

// CompleteServicePayment is the service-purchase arm of completion. Services
// carry no inventory, so there is no slot step.
func (s *PaymentService) CompleteServicePayment(userID, purchaseID uint, orderID string) error {
	purchase, err := s.purchaseRepo.GetByIDForUser(purchaseID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("fetch purchase: %w", err)
	}

	if purchase.PaymentStatus == models.PaymentStatusCompleted || purchase.PaymentStatus == models.PaymentStatusFree {
		s.logger.Info("purchase already finalized, skipping",
			zap.Uint("purchase_id", purchaseID),
			zap.String("status", purchase.PaymentStatus))
		return nil
	}

	invoiceNumber := s.issueInvoiceNumber()

	rows, err := s.purchaseRepo.MarkCompleted(purchaseID, userID, orderID, invoiceNumber)
	if err != nil {
		return fmt.Errorf("complete purchase %d: %w", purchaseID, err)
	}
	if rows == 0 {
		if fresh, ferr := s.purchaseRepo.GetByIDForUser(purchaseID, userID); ferr == nil &&
			fresh.PaymentStatus == models.PaymentStatusCompleted {
			return nil
		}
		return fmt.Errorf("purchase %d is not in a completable state", purchaseID)
	}

	purchase.PaymentStatus = models.PaymentStatusCompleted
	purchase.PaymentID = &orderID
	purchase.InvoiceNumber = &invoiceNumber
	s.sendPurchaseConfirmation(purchase)

	s.logger.Info("service payment completed",
		zap.Uint("purchase_id", purchaseID),
		zap.Uint("user_id", userID),
		zap.String("invoice_number", invoiceNumber),
		zap.String("order_id", orderID))
	return nil
}

// RegisterForWebinar creates a registration. Zero-amount webinars (free, or
// fully discounted) confirm immediately; paid ones get a checkout session.
func (s *PaymentService) RegisterForWebinar(userID, webinarID uint, couponCode string) (*models.RegistrationResponse, error) {
	webinar, err := s.webinarRepo.GetByID(webinarID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch webinar: %w", err)
	}
	if !webinar.IsActive {
		return nil, ErrWebinarUnavailable
	}
	if webinar.AvailableSlots <= 0 {
		return nil, ErrWebinarFull
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}

	amount := webinar.Price
	var discount float64
	var couponID *uint
	if couponCode != "" {
		result, cerr := s.couponService.Evaluate(userID, couponCode, models.CouponAppliesWebinar, amount)
		if cerr != nil {
			return nil, cerr
		}
		discount = result.DiscountAmount
		amount = result.FinalAmount
		couponID = &result.CouponID
	}

	if amount <= 0 {
		reg, ferr := s.registerFree(user, webinar, discount, couponID)
		if ferr != nil {
			return nil, ferr
		}
		return &models.RegistrationResponse{Registration: reg}, nil
	}

	session, err := s.stripeService.CreateCheckoutSession(
		user.Email,
		webinar.Title,
		fmt.Sprintf("Webinar on %s with %s", webinar.StartTime.Format("02 Jan 2006"), webinar.Host),
		amount,
		map[string]string{
			"item_type":  models.CouponAppliesWebinar,
			"user_id":    fmt.Sprintf("%d", userID),
			"webinar_id": fmt.Sprintf("%d", webinarID),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	reg := &models.WebinarRegistration{
		UserID:          userID,
		WebinarID:       webinarID,
		AmountPaid:      amount,
		DiscountAmount:  discount,
		CouponID:        couponID,
		PaymentStatus:   models.PaymentStatusPending,
		StripeSessionID: session.ID,
	}
	if err := s.registrationRepo.Create(reg); err != nil {
		return nil, fmt.Errorf("create registration: %w", err)
	}
	if couponID != nil {
		if cerr := s.couponService.Consume(*couponID, userID); cerr != nil {
			s.logger.Error("record coupon usage", zap.Uint("coupon_id", *couponID), zap.Error(cerr))
		}
	}

	return &models.RegistrationResponse{
		Registration: reg,
		Checkout:     &models.CheckoutSession{ID: session.ID, URL: session.URL},
	}, nil
}

// registerFree is the pending->free arm: no gateway round trip, the seat is
// confirmed, invoiced and emailed straight away.
func (s *PaymentService) registerFree(user *models.User, webinar *models.Webinar, discount float64, couponID *uint) (*models.WebinarRegistration, error) {
	invoiceNumber := s.issueInvoiceNumber()
	txID := "free-" + uuid.NewString()

	reg := &models.WebinarRegistration{
		UserID:         user.ID,
		WebinarID:      webinar.ID,
		AmountPaid:     0,
		DiscountAmount: discount,
		CouponID:       couponID,
		PaymentStatus:  models.PaymentStatusFree,
		PaymentID:      &txID,
		InvoiceNumber:  &invoiceNumber,
	}
	if err := s.registrationRepo.Create(reg); err != nil {
		return nil, fmt.Errorf("create free registration: %w", err)
	}
	if couponID != nil {
		if cerr := s.couponService.Consume(*couponID, user.ID); cerr != nil {
			s.logger.Error("record coupon usage", zap.Uint("coupon_id", *couponID), zap.Error(cerr))
		}
	}

	s.takeWebinarSlot(webinar.ID, reg.ID)

	reg.Webinar = *webinar
	s.sendRegistrationConfirmation(reg)

	s.logger.Info("free webinar registration confirmed",
		zap.Uint("registration_id", reg.ID),
		zap.Uint("user_id", user.ID),
		zap.String("invoice_number", invoiceNumber))
	return reg, nil
}

// CreateServiceCheckout starts a service purchase; fully discounted services
// confirm immediately like free webinars.
func (s *PaymentService) CreateServiceCheckout(userID, serviceID uint, couponCode string) (*models.PurchaseResponse, error) {
	offering, err := s.serviceRepo.GetByID(serviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch service: %w", err)
	}
	if !offering.IsActive {
		return nil, ErrNotFound
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}

	amount := offering.Price
	var discount float64
	var couponID *uint
	if couponCode != "" {
		result, cerr := s.couponService.Evaluate(userID, couponCode, models.CouponAppliesService, amount)
		if cerr != nil {
			return nil, cerr
		}
		discount = result.DiscountAmount
		amount = result.FinalAmount
		couponID = &result.CouponID
	}

	if amount <= 0 {
		invoiceNumber := s.issueInvoiceNumber()
		txID := "free-" + uuid.NewString()
		purchase := &models.ServicePurchase{
			UserID:         userID,
			ServiceID:      serviceID,
			AmountPaid:     0,
			DiscountAmount: discount,
			CouponID:       couponID,
			PaymentStatus:  models.PaymentStatusFree,
			PaymentID:      &txID,
			InvoiceNumber:  &invoiceNumber,
		}
		if err := s.purchaseRepo.Create(purchase); err != nil {
			return nil, fmt.Errorf("create purchase: %w", err)
		}
		if couponID != nil {
			if cerr := s.couponService.Consume(*couponID, userID); cerr != nil {
				s.logger.Error("record coupon usage", zap.Uint("coupon_id", *couponID), zap.Error(cerr))
			}
		}
		purchase.Service = *offering
		s.sendPurchaseConfirmation(purchase)
		return &models.PurchaseResponse{Purchase: purchase}, nil
	}

	session, err := s.stripeService.CreateCheckoutSession(
		user.Email, offering.Name, offering.Description, amount,
		map[string]string{
			"item_type":  models.CouponAppliesService,
			"user_id":    fmt.Sprintf("%d", userID),
			"service_id": fmt.Sprintf("%d", serviceID),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	purchase := &models.ServicePurchase{
		UserID:          userID,
		ServiceID:       serviceID,
		AmountPaid:      amount,
		DiscountAmount:  discount,
		CouponID:        couponID,
		PaymentStatus:   models.PaymentStatusPending,
		StripeSessionID: session.ID,
	}
	if err := s.purchaseRepo.Create(purchase); err != nil {
		return nil, fmt.Errorf("create purchase: %w", err)
	}
	if couponID != nil {
		if cerr := s.couponService.Consume(*couponID, userID); cerr != nil {
			s.logger.Error("record coupon usage", zap.Uint("coupon_id", *couponID), zap.Error(cerr))
		}
	}

	return &models.PurchaseResponse{
		Purchase: purchase,
		Checkout: &models.CheckoutSession{ID: session.ID, URL: session.URL},
	}, nil
}

// HandleWebhookEvent records gateway-side failures. Successful sessions are
// finalized by the client-driven completion endpoint, not here.
func (s *PaymentService) HandleWebhookEvent(event *stripe.Event) error {
	switch event.Type {
	case "checkout.session.expired", "checkout.session.async_payment_failed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("unmarshal checkout session: %w", err)
		}

		rows, err := s.registrationRepo.MarkFailedBySession(session.ID)
		if err != nil {
			return fmt.Errorf("mark registration failed: %w", err)
		}
		if rows == 0 {
			rows, err = s.purchaseRepo.MarkFailedBySession(session.ID)
			if err != nil {
				return fmt.Errorf("mark purchase failed: %w", err)
			}
		}
		s.logger.Info("gateway reported failed session",
			zap.String("session_id", session.ID),
			zap.String("event_type", string(event.Type)),
			zap.Int64("records_updated", rows))

	case "checkout.session.completed":
		// Completion is driven by the authenticated client callback.
		s.logger.Info("checkout session completed", zap.String("event_id", event.ID))
	}

	return nil
}

// InvoiceForRegistration renders the invoice PDF for a finalized registration.
func (s *PaymentService) InvoiceForRegistration(userID, registrationID uint) ([]byte, error) {
	reg, err := s.registrationRepo.GetByIDForUser(registrationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch registration: %w", err)
	}
	if reg.InvoiceNumber == nil {
		return nil, ErrInvoiceNotReady
	}

	data, err := s.buildRegistrationInvoice(reg)
	if err != nil {
		return nil, err
	}
	return invoice.Render(data)
}

// InvoiceForPurchase renders the invoice PDF for a finalized service purchase.
func (s *PaymentService) InvoiceForPurchase(userID, purchaseID uint) ([]byte, error) {
	purchase, err := s.purchaseRepo.GetByIDForUser(purchaseID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch purchase: %w", err)
	}
	if purchase.InvoiceNumber == nil {
		return nil, ErrInvoiceNotReady
	}

	data, err := s.buildPurchaseInvoice(purchase)
	if err != nil {
		return nil, err
	}
	return invoice.Render(data)
}

func (s *PaymentService) GetPurchaseHistory(userID uint) (*models.PurchaseHistory, error) {
	registrations, err := s.registrationRepo.GetUserHistory(userID)
	if err != nil {
		return nil, fmt.Errorf("fetch registrations: %w", err)
	}
	purchases, err := s.purchaseRepo.GetUserHistory(userID)
	if err != nil {
		return nil, fmt.Errorf("fetch purchases: %w", err)
	}
	return &models.PurchaseHistory{
		Registrations: registrations,
		Purchases:     purchases,
	}, nil
}

// NotifyWebinarAttendees sends the meeting link to every confirmed attendee.
func (s *PaymentService) NotifyWebinarAttendees(webinarID uint) (email.BulkSendResult, error) {
	webinar, err := s.webinarRepo.GetByID(webinarID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return email.BulkSendResult{}, ErrNotFound
		}
		return email.BulkSendResult{}, fmt.Errorf("fetch webinar: %w", err)
	}

	recipients, err := s.registrationRepo.GetAttendeeEmails(webinarID)
	if err != nil {
		return email.BulkSendResult{}, fmt.Errorf("fetch attendee emails: %w", err)
	}
	if len(recipients) == 0 {
		return email.BulkSendResult{}, nil
	}

	return s.mailer.SendMeetingLink(recipients, email.MeetingLinkEmail{
		WebinarTitle: webinar.Title,
		WebinarDate:  webinar.StartTime.Format("02 Jan 2006"),
		WebinarTime:  webinar.StartTime.Format("3:04 PM"),
		MeetingLink:  webinar.MeetingLink,
	}), nil
}

// takeWebinarSlot decrements inventory with a floor at zero. Failures are
// logged and swallowed: slot accounting is best-effort by design.
func (s *PaymentService) takeWebinarSlot(webinarID, registrationID uint) {
	ok, err := s.webinarRepo.DecrementSlot(webinarID)
	if err != nil {
		s.logger.Error("decrement webinar slot",
			zap.Uint("webinar_id", webinarID),
			zap.Uint("registration_id", registrationID),
			zap.Error(err))
		return
	}
	if !ok {
		s.logger.Warn("webinar slot decrement skipped, no slots left",
			zap.Uint("webinar_id", webinarID),
			zap.Uint("registration_id", registrationID))
	}
}

// issueInvoiceNumber generates a number and verifies it against both tables,
// regenerating on the (unlikely) collision. After a few attempts it proceeds
// with the last candidate rather than blocking completion.
func (s *PaymentService) issueInvoiceNumber() string {
	var number string
	for attempt := 0; attempt < 5; attempt++ {
		number = invoice.GenerateNumber()
		regExists, err := s.registrationRepo.InvoiceNumberExists(number)
		if err != nil {
			s.logger.Error("check invoice number on registrations", zap.Error(err))
			return number
		}
		purchaseExists, err := s.purchaseRepo.InvoiceNumberExists(number)
		if err != nil {
			s.logger.Error("check invoice number on purchases", zap.Error(err))
			return number
		}
		if !regExists && !purchaseExists {
			return number
		}
	}
	s.logger.Warn("invoice number still colliding after retries", zap.String("invoice_number", number))
	return number
}

func (s *PaymentService) buildRegistrationInvoice(reg *models.WebinarRegistration) (invoice.Data, error) {
	settings, err := s.settingsRepo.Get()
	if err != nil {
		return invoice.Data{}, fmt.Errorf("fetch settings: %w", err)
	}
	user, err := s.userRepo.GetByID(reg.UserID)
	if err != nil {
		return invoice.Data{}, fmt.Errorf("fetch user: %w", err)
	}

	subtotal, tax := ComputeGST(reg.AmountPaid, settings.GSTRate, settings.GSTEnabled)

	txID := ""
	if reg.PaymentID != nil {
		txID = *reg.PaymentID
	}

	return invoice.Data{
		InvoiceNumber: *reg.InvoiceNumber,
		Date:          reg.UpdatedAt,
		IsPaid:        true,
		CustomerName:  user.DisplayName(),
		CustomerEmail: user.Email,
		CustomerPhone: user.Phone,
		Items: []invoice.LineItem{
			{
				Description: reg.Webinar.Title,
				Details: fmt.Sprintf("Webinar on %s at %s, hosted by %s",
					reg.Webinar.StartTime.Format("02 Jan 2006"),
					reg.Webinar.StartTime.Format("3:04 PM"),
					reg.Webinar.Host),
				Quantity:  1,
				UnitPrice: reg.AmountPaid,
				Total:     reg.AmountPaid,
			},
		},
		Subtotal:       subtotal,
		DiscountAmount: reg.DiscountAmount,
		TaxAmount:      tax,
		TaxRate:        settings.GSTRate,
		Total:          reg.AmountPaid,
		GSTEnabled:     settings.GSTEnabled,
		TransactionID:  txID,
		PaymentMethod:  "Online",
		Company: invoice.Company{
			Name:      settings.CompanyName,
			Email:     settings.CompanyEmail,
			Phone:     settings.CompanyPhone,
			Address:   settings.CompanyAddress,
			GSTNumber: settings.GSTNumber,
		},
	}, nil
}

func (s *PaymentService) buildPurchaseInvoice(purchase *models.ServicePurchase) (invoice.Data, error) {
	settings, err := s.settingsRepo.Get()
	if err != nil {
		return invoice.Data{}, fmt.Errorf("fetch settings: %w", err)
	}
	user, err := s.userRepo.GetByID(purchase.UserID)
	if err != nil {
		return invoice.Data{}, fmt.Errorf("fetch user: %w", err)
	}

	subtotal, tax := ComputeGST(purchase.AmountPaid, settings.GSTRate, settings.GSTEnabled)

	txID := ""
	if purchase.PaymentID != nil {
		txID = *purchase.PaymentID
	}

	return invoice.Data{
		InvoiceNumber: *purchase.InvoiceNumber,
		Date:          purchase.UpdatedAt,
		IsPaid:        true,
		CustomerName:  user.DisplayName(),
		CustomerEmail: user.Email,
		CustomerPhone: user.Phone,
		Items: []invoice.LineItem{
			{
				Description: purchase.Service.Name,
				Details:     purchase.Service.Description,
				Quantity:    1,
				UnitPrice:   purchase.AmountPaid,
				Total:       purchase.AmountPaid,
			},
		},
		Subtotal:       subtotal,
		DiscountAmount: purchase.DiscountAmount,
		TaxAmount:      tax,
		TaxRate:        settings.GSTRate,
		Total:          purchase.AmountPaid,
		GSTEnabled:     settings.GSTEnabled,
		TransactionID:  txID,
		PaymentMethod:  "Online",
		Company: invoice.Company{
			Name:      settings.CompanyName,
			Email:     settings.CompanyEmail,
			Phone:     settings.CompanyPhone,
			Address:   settings.CompanyAddress,
			GSTNumber: settings.GSTNumber,
		},
	}, nil
}

// sendRegistrationConfirmation renders the invoice and dispatches the booking
// email without blocking or failing the caller.
func (s *PaymentService) sendRegistrationConfirmation(reg *models.WebinarRegistration) {
	data, err := s.buildRegistrationInvoice(reg)
	if err != nil {
		s.logger.Error("build registration invoice",
			zap.Uint("registration_id", reg.ID), zap.Error(err))
		return
	}

	attachment := s.renderAttachment(data)

	txID := ""
	if reg.PaymentID != nil {
		txID = *reg.PaymentID
	}
	msg := email.BookingEmail{
		To:            data.CustomerEmail,
		Name:          data.CustomerName,
		WebinarTitle:  reg.Webinar.Title,
		WebinarDate:   reg.Webinar.StartTime.Format("02 Jan 2006"),
		WebinarTime:   reg.Webinar.StartTime.Format("3:04 PM"),
		Host:          reg.Webinar.Host,
		Amount:        invoice.FormatINR(reg.AmountPaid),
		TransactionID: txID,
		Attachment:    attachment,
	}

	go func() {
		res := s.mailer.SendBookingConfirmation(msg)
		if !res.Success {
			s.logger.Warn("booking confirmation not delivered",
				zap.Uint("registration_id", reg.ID),
				zap.String("reason", res.Error))
		}
	}()
}

func (s *PaymentService) sendPurchaseConfirmation(purchase *models.ServicePurchase) {
	data, err := s.buildPurchaseInvoice(purchase)
	if err != nil {
		s.logger.Error("build purchase invoice",
			zap.Uint("purchase_id", purchase.ID), zap.Error(err))
		return
	}

	attachment := s.renderAttachment(data)

	txID := ""
	if purchase.PaymentID != nil {
		txID = *purchase.PaymentID
	}
	msg := email.PurchaseEmail{
		To:                 data.CustomerEmail,
		Name:               data.CustomerName,
		ServiceName:        purchase.Service.Name,
		ServiceDescription: purchase.Service.Description,
		Amount:             invoice.FormatINR(purchase.AmountPaid),
		TransactionID:      txID,
		Attachment:         attachment,
	}

	go func() {
		res := s.mailer.SendPurchaseConfirmation(msg)
		if !res.Success {
			s.logger.Warn("purchase confirmation not delivered",
				zap.Uint("purchase_id", purchase.ID),
				zap.String("reason", res.Error))
		}
	}()
}

// renderAttachment produces the PDF under a timeout. A nil return means the
// email goes out without an attachment; the invoice stays downloadable from
// the dashboard either way.
func (s *PaymentService) renderAttachment(data invoice.Data) *email.Attachment {
	type renderResult struct {
		pdf []byte
		err error
	}
	ch := make(chan renderResult, 1)
	go func() {
		pdf, err := invoice.Render(data)
		ch <- renderResult{pdf, err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			s.logger.Error("render invoice pdf",
				zap.String("invoice_number", data.InvoiceNumber), zap.Error(res.err))
			return nil
		}
		return &email.Attachment{
			Filename: data.InvoiceNumber + ".pdf",
			Content:  res.pdf,
		}
	case <-time.After(renderTimeout):
		s.logger.Error("render invoice pdf timed out",
			zap.String("invoice_number", data.InvoiceNumber))
		return nil
	}
}
