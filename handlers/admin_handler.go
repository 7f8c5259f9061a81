package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	config "github.com/kamau254/course_finance/configs"
	"github.com/kamau254/course_finance/database"
	"github.com/kamau254/course_finance/models"
	"github.com/kamau254/course_finance/services"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func ListAllPayoutRequests(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	status := c.Query("status", models.PayoutStatusPending)

	var total int64
	countQuery := database.DB.Model(&models.PayoutRequest{})
	query := database.DB.Preload("Instructor")
	if status != "all" {
		countQuery = countQuery.Where("status = ?", status)
		query = query.Where("status = ?", status)
	}
	countQuery.Count(&total)

	var requests []models.PayoutRequest
	if err := query.
		Order("requested_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&requests).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load payout requests"})
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

// ApprovePayoutRequest expects a multipart form with a "proof" file, uploads
// it to Cloudinary and approves the request with the stored reference.
func ApprovePayoutRequest(c *fiber.Ctx) error {
	adminID := currentUserID(c)

	requestID, err := uuid.Parse(c.Params("requestId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payout request ID format"})
	}

	fileHeader, err := c.FormFile("proof")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "A proof-of-payment file is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot read proof-of-payment file"})
	}
	defer file.Close()

	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		log.Printf("🔥 Failed to initialize Cloudinary: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "File storage unavailable"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	uploadResult, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:     fmt.Sprintf("payout_proofs/%s_%s", requestID, uuid.New().String()),
		Folder:       "course_finance_payout_proofs",
		ResourceType: "auto",
	})
	if err != nil {
		log.Printf("🔥 Failed to upload proof of payment for request %s: %v", requestID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store proof of payment"})
	}

	request, err := services.ApprovePayoutRequest(requestID, adminID, uploadResult.SecureURL)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(request)
}

func RejectPayoutRequest(c *fiber.Ctx) error {
	adminID := currentUserID(c)

	requestID, err := uuid.Parse(c.Params("requestId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payout request ID format"})
	}

	type RejectRequest struct {
		Reason string `json:"reason" validate:"required,min=20"`
	}
	var req RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	request, err := services.RejectPayoutRequest(requestID, adminID, req.Reason)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(request)
}

type AgreementRequest struct {
	InstructorID  string  `json:"instructor_id" validate:"required,uuid"`
	PlatformPct   float64 `json:"platform_pct" validate:"gte=0,lte=100"`
	InstructorPct float64 `json:"instructor_pct" validate:"gte=0,lte=100"`
}

func CreateRevenueAgreement(c *fiber.Ctx) error {
	adminID := currentUserID(c)

	var req AgreementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	instructorID, _ := uuid.Parse(req.InstructorID)
	agreement, err := services.CreateAgreement(services.NewAgreementInput{
		InstructorID:  instructorID,
		PlatformPct:   req.PlatformPct,
		InstructorPct: req.InstructorPct,
	}, adminID.String())
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(agreement)
}

func ManageRevenueAgreement(c *fiber.Ctx) error {
	adminID := currentUserID(c)

	agreementID, err := uuid.Parse(c.Params("agreementId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid agreement ID format"})
	}

	type MgtRequest struct {
		Decision string `json:"decision" validate:"required,oneof=approve reject"`
	}
	var req MgtRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var agreement *models.RevenueAgreement
	if req.Decision == "approve" {
		agreement, err = services.ApproveAgreement(agreementID, adminID.String())
	} else {
		agreement, err = services.RejectAgreement(agreementID, adminID.String())
	}
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(agreement)
}

func ListRevenueAgreements(c *fiber.Ctx) error {
	query := database.DB.Preload("Instructor")
	if instructorID := c.Query("instructor_id"); instructorID != "" {
		query = query.Where("instructor_id = ?", instructorID)
	}

	var agreements []models.RevenueAgreement
	if err := query.Order("created_at desc").Find(&agreements).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load agreements"})
	}

	return c.JSON(agreements)
}

func GetAuditTrail(c *fiber.Ctx) error {
	entityType := c.Params("entityType")
	entityID := c.Params("entityId")
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	entries, err := services.GetAuditTrail(entityType, entityID, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load audit trail"})
	}

	return c.JSON(entries)
}

func ListAllEarnings(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	countQuery := database.DB.Model(&models.EarningRecord{}).Where("side = ?", models.EarningSideInstructor)
	query := database.DB.Where("side = ?", models.EarningSideInstructor)
	if instructorID := c.Query("instructor_id"); instructorID != "" {
		countQuery = countQuery.Where("instructor_id = ?", instructorID)
		query = query.Where("instructor_id = ?", instructorID)
	}

	var total int64
	countQuery.Count(&total)

	var earnings []models.EarningRecord
	if err := query.
		Preload("Payment.Student").
		Preload("Payment.Course").
		Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&earnings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load earnings"})
	}

	return c.JSON(fiber.Map{
		"data": earnings,
		"meta": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}
