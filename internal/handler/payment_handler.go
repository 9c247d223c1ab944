package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/randeeprajputr/webinar-backend/internal/models"
	"github.com/randeeprajputr/webinar-backend/internal/service"
	"github.com/randeeprajputr/webinar-backend/pkg/payment"
	"github.com/randeeprajputr/webinar-backend/pkg/utils"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
	stripeService  *payment.StripeService
	validator      *utils.Validator
}

func NewPaymentHandler(paymentService *service.PaymentService, stripeService *payment.StripeService, validator *utils.Validator) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		stripeService:  stripeService,
		validator:      validator,
	}
}

// CompletePayment finalizes a registration or purchase after the gateway
// reports success. Exactly one of registration_id/purchase_id is required.
func (h *PaymentHandler) CompletePayment(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not authenticated"))
	}

	var req models.CompletePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}
	if (req.RegistrationID == nil) == (req.PurchaseID == nil) {
		return c.Status(fiber.StatusBadRequest).JSON(
			models.ErrorResponse("Exactly one of registration_id or purchase_id is required"))
	}

	var err error
	if req.RegistrationID != nil {
		err = h.paymentService.CompleteWebinarPayment(userID, *req.RegistrationID, req.OrderID)
	} else {
		err = h.paymentService.CompleteServicePayment(userID, *req.PurchaseID, req.OrderID)
	}
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Record not found"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(nil,
		"Payment completed. Your invoice has been emailed and is available in your dashboard."))
}

func (h *PaymentHandler) CreateServiceCheckout(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not authenticated"))
	}

	var req models.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	resp, err := h.paymentService.CreateServiceCheckout(userID, req.ServiceID, req.CouponCode)
	if err != nil {
		return h.mapServiceError(c, err)
	}

	return c.JSON(models.SuccessResponse(resp, ""))
}

func (h *PaymentHandler) GetRegistrationInvoice(c *fiber.Ctx) error {
	return h.streamInvoice(c, "registrationId", h.paymentService.InvoiceForRegistration)
}

func (h *PaymentHandler) GetPurchaseInvoice(c *fiber.Ctx) error {
	return h.streamInvoice(c, "purchaseId", h.paymentService.InvoiceForPurchase)
}

func (h *PaymentHandler) streamInvoice(c *fiber.Ctx, param string, fetch func(userID, id uint) ([]byte, error)) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not authenticated"))
	}

	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid id"))
	}

	pdf, err := fetch(userID, uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrInvoiceNotReady) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Invoice not found"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="invoice.pdf"`)
	return c.Send(pdf)
}

func (h *PaymentHandler) GetPurchaseHistory(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not authenticated"))
	}

	history, err := h.paymentService.GetPurchaseHistory(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(history, ""))
}

func (h *PaymentHandler) HandleStripeWebhook(c *fiber.Ctx) error {
	event, err := h.stripeService.ConstructWebhookEvent(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Webhook signature verification failed"))
	}

	if err := h.paymentService.HandleWebhookEvent(&event); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *PaymentHandler) mapServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Record not found"))
	case isCouponRejection(err):
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}
}

func isCouponRejection(err error) bool {
	for _, rejection := range []error{
		service.ErrCouponNotFound,
		service.ErrCouponExpired,
		service.ErrCouponWrongCategory,
		service.ErrCouponMinPurchase,
		service.ErrCouponUserLimit,
		service.ErrCouponExhausted,
	} {
		if errors.Is(err, rejection) {
			return true
		}
	}
	return false
}

func currentUserID(c *fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals("userID").(uint)
	return userID, ok
}
