package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/randeeprajputr/webinar-backend/internal/models"
	"github.com/randeeprajputr/webinar-backend/internal/service"
	"github.com/randeeprajputr/webinar-backend/pkg/utils"
)

type CouponHandler struct {
	couponService *service.CouponService
	validator     *utils.Validator
}

func NewCouponHandler(couponService *service.CouponService, validator *utils.Validator) *CouponHandler {
	return &CouponHandler{
		couponService: couponService,
		validator:     validator,
	}
}

// ValidateCoupon evaluates a coupon against an order without consuming it.
// Rejections carry their specific reason so the client can display it.
func (h *CouponHandler) ValidateCoupon(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not authenticated"))
	}

	var req models.ValidateCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	result, err := h.couponService.Evaluate(userID, req.Code, req.ItemType, req.Amount)
	if err != nil {
		if isCouponRejection(err) {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(result, ""))
}
