package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/kamau254/course_finance/database"
	"github.com/kamau254/course_finance/models"
	"github.com/kamau254/course_finance/services"
	"github.com/gofiber/fiber/v2"
)

func GetAvailableBalance(c *fiber.Ctx) error {
	instructorID := currentUserID(c)

	balance, err := services.AvailableBalance(instructorID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"available_balance": balance})
}

func GetEarningsSummary(c *fiber.Ctx) error {
	instructorID := currentUserID(c)

	summary, err := services.GetEarningsSummary(instructorID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(summary)
}

func ListMyEarnings(c *fiber.Ctx) error {
	instructorID := currentUserID(c)
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	earnings, total, err := services.ListEarnings(instructorID, page, limit)
	if err != nil {
		return serviceError(c, err)
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

// ExportEarningsCsv streams the instructor's earnings history as CSV.
func ExportEarningsCsv(c *fiber.Ctx) error {
	instructorID := currentUserID(c)

	var earnings []models.EarningRecord
	err := database.DB.
		Where("instructor_id = ? AND side = ?", instructorID, models.EarningSideInstructor).
		Preload("Payment.Student").
		Preload("Payment.Course").
		Order("created_at desc").
		Find(&earnings).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load earnings"})
	}

	b := new(bytes.Buffer)
	w := csv.NewWriter(b)

	headers := []string{"date", "student", "course", "section", "paid amount", "instructor %", "instructor amount", "platform %", "platform amount", "payment method"}
	if err := w.Write(headers); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write CSV header"})
	}

	for _, e := range earnings {
		section := ""
		if e.Payment.Course.Section != nil {
			section = *e.Payment.Course.Section
		}

		platformAmount := e.Payment.Amount - e.Amount
		row := []string{
			e.CreatedAt.Format("2006-01-02 15:04"),
			e.Payment.Student.FullName,
			e.Payment.Course.Title,
			section,
			strconv.FormatInt(e.Payment.Amount, 10),
			fmt.Sprintf("%.2f", e.Percent),
			strconv.FormatInt(e.Amount, 10),
			fmt.Sprintf("%.2f", 100-e.Percent),
			strconv.FormatInt(platformAmount, 10),
			e.Payment.PaymentMethod,
		}
		if err := w.Write(row); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write CSV row"})
		}
	}
	w.Flush()

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"earnings_%s.csv\"", time.Now().Format("2006-01-02")))

	return c.Send(b.Bytes())
}

// DownloadEarningsStatement renders the instructor's earnings as a PDF.
func DownloadEarningsStatement(c *fiber.Ctx) error {
	instructorID := currentUserID(c)

	pdfBytes, err := services.GenerateEarningsStatement(instructorID)
	if err != nil {
		return serviceError(c, err)
	}

	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"statement_%s.pdf\"", time.Now().Format("2006-01-02")))

	return c.Send(pdfBytes)
}
