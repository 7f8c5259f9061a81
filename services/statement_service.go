package services

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"time"

	"github.com/kamau254/course_finance/database"
	"github.com/kamau254/course_finance/models"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const statementTemplate = `<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: Helvetica, Arial, sans-serif; margin: 40px; color: #222; }
  h1 { border-bottom: 2px solid #222; padding-bottom: 8px; }
  .meta { color: #666; margin-bottom: 24px; }
  table { width: 100%; border-collapse: collapse; }
  th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid #ddd; }
  th { background: #f4f4f4; }
  .totals { margin-top: 24px; font-size: 1.1em; }
</style>
</head>
<body>
  <h1>Earnings Statement</h1>
  <div class="meta">
    <p><b>{{.InstructorName}}</b></p>
    <p>Generated {{.GeneratedAt}}</p>
  </div>
  <table>
    <tr><th>Date</th><th>Course</th><th>Amount</th><th>%</th><th>Status</th></tr>
    {{range .Earnings}}
    <tr>
      <td>{{.Date}}</td><td>{{.Course}}</td><td>{{.Amount}} {{.Currency}}</td>
      <td>{{.Percent}}</td><td>{{.Status}}</td>
    </tr>
    {{end}}
  </table>
  <div class="totals">
    <p>Total earned: {{.TotalEarned}} | Accrued: {{.Accrued}} | Withdrawn: {{.Withdrawn}} | Available: {{.Available}}</p>
  </div>
</body>
</html>`

type statementRow struct {
	Date     string
	Course   string
	Amount   int64
	Currency string
	Percent  float64
	Status   string
}

// GenerateEarningsStatement renders an instructor's earnings history as a PDF
// via headless Chrome, for download from the instructor dashboard.
func GenerateEarningsStatement(instructorID uuid.UUID) ([]byte, error) {
	var instructor models.User
	if err := database.DB.First(&instructor, "id = ?", instructorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("instructor %s not found", instructorID)
		}
		return nil, err
	}

	var earnings []models.EarningRecord
	if err := database.DB.
		Where("instructor_id = ? AND side = ?", instructorID, models.EarningSideInstructor).
		Preload("Payment.Course").
		Order("created_at desc").
		Limit(200).
		Find(&earnings).Error; err != nil {
		return nil, err
	}

	summary, err := GetEarningsSummary(instructorID)
	if err != nil {
		return nil, err
	}

	rows := make([]statementRow, 0, len(earnings))
	for _, earning := range earnings {
		rows = append(rows, statementRow{
			Date:     earning.CreatedAt.Format("2006-01-02"),
			Course:   earning.Payment.Course.Title,
			Amount:   earning.Amount,
			Currency: earning.Currency,
			Percent:  earning.Percent,
			Status:   earning.Status,
		})
	}

	html, err := renderStatementHTML(instructor.FullName, rows, summary)
	if err != nil {
		return nil, err
	}

	return generatePDFFromHTML(html)
}

func renderStatementHTML(instructorName string, rows []statementRow, summary EarningsSummary) (string, error) {
	tmpl, err := template.New("statement").Parse(statementTemplate)
	if err != nil {
		return "", err
	}

	data := struct {
		InstructorName string
		GeneratedAt    string
		Earnings       []statementRow
		TotalEarned    int64
		Accrued        int64
		Withdrawn      int64
		Available      int64
	}{
		InstructorName: instructorName,
		GeneratedAt:    time.Now().Format("January 2, 2006"),
		Earnings:       rows,
		TotalEarned:    summary.TotalEarned,
		Accrued:        summary.Accrued,
		Withdrawn:      summary.Withdrawn,
		Available:      summary.Available,
	}

	var renderedHTML bytes.Buffer
	if err := tmpl.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}
