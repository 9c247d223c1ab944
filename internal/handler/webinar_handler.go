package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/randeeprajputr/webinar-backend/internal/models"
	"github.com/randeeprajputr/webinar-backend/internal/service"
)

type WebinarHandler struct {
	catalogService *service.CatalogService
	paymentService *service.PaymentService
}

func NewWebinarHandler(catalogService *service.CatalogService, paymentService *service.PaymentService) *WebinarHandler {
	return &WebinarHandler{
		catalogService: catalogService,
		paymentService: paymentService,
	}
}

func (h *WebinarHandler) GetWebinars(c *fiber.Ctx) error {
	webinars, err := h.catalogService.GetWebinars()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}
	return c.JSON(models.SuccessResponse(webinars, ""))
}

func (h *WebinarHandler) GetWebinar(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid webinar ID"))
	}

	webinar, err := h.catalogService.GetWebinar(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Webinar not found"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}
	return c.JSON(models.SuccessResponse(webinar, ""))
}

func (h *WebinarHandler) GetServices(c *fiber.Ctx) error {
	services, err := h.catalogService.GetServices()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}
	return c.JSON(models.SuccessResponse(services, ""))
}

func (h *WebinarHandler) RegisterForWebinar(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not authenticated"))
	}

	webinarID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid webinar ID"))
	}

	var req models.RegisterWebinarRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
		}
	}

	resp, err := h.paymentService.RegisterForWebinar(userID, uint(webinarID), req.CouponCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Webinar not found"))
		case errors.Is(err, service.ErrWebinarUnavailable), errors.Is(err, service.ErrWebinarFull):
			return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse(err.Error()))
		case isCouponRejection(err):
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
		}
	}

	return c.JSON(models.SuccessResponse(resp, ""))
}

// NotifyAttendees sends the meeting link to everyone with a confirmed seat.
func (h *WebinarHandler) NotifyAttendees(c *fiber.Ctx) error {
	if _, ok := currentUserID(c); !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not authenticated"))
	}

	webinarID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid webinar ID"))
	}

	result, err := h.paymentService.NotifyWebinarAttendees(uint(webinarID))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Webinar not found"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(result, ""))
}
