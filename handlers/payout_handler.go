package handlers

import (
	"strconv"

	"github.com/kamau254/course_finance/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreatePayoutRequestBody struct {
	PaymentMethod   string  `json:"payment_method" validate:"required,oneof=bank_transfer mpesa paypal"`
	ReceiverName    string  `json:"receiver_name" validate:"required,min=3"`
	ReceiverAccount string  `json:"receiver_account" validate:"required,min=4"`
	ReceiverBank    *string `json:"receiver_bank,omitempty"`
	Currency        string  `json:"currency" validate:"required,iso4217"`
	Amount          *int64  `json:"amount,omitempty" validate:"omitempty,gt=0"`
}

func CreatePayoutRequest(c *fiber.Ctx) error {
	instructorID := currentUserID(c)

	var req CreatePayoutRequestBody
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	request, err := services.CreatePayoutRequest(instructorID, services.CreatePayoutInput{
		PaymentMethod:   req.PaymentMethod,
		ReceiverName:    req.ReceiverName,
		ReceiverAccount: req.ReceiverAccount,
		ReceiverBank:    req.ReceiverBank,
		Currency:        req.Currency,
		RequestedAmount: req.Amount,
		RequestIP:       c.IP(),
	})
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(request)
}

func ReRequestPayout(c *fiber.Ctx) error {
	instructorID := currentUserID(c)

	requestID, err := uuid.Parse(c.Params("requestId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payout request ID format"})
	}

	request, err := services.ReRequestPayout(requestID, instructorID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(request)
}

func CancelPayoutRequest(c *fiber.Ctx) error {
	instructorID := currentUserID(c)

	requestID, err := uuid.Parse(c.Params("requestId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payout request ID format"})
	}

	type CancelRequest struct {
		Reason string `json:"reason"`
	}
	var req CancelRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
		}
	}

	request, err := services.CancelPayoutRequest(requestID, instructorID, req.Reason)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(request)
}

func ListMyPayoutRequests(c *fiber.Ctx) error {
	instructorID := currentUserID(c)
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	requests, total, err := services.ListPayoutRequests(instructorID, page, limit)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"data": requests,
		"meta": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}
