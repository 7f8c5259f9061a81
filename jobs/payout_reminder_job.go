package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/kamau254/course_finance/database"
	"github.com/kamau254/course_finance/models"
	"github.com/kamau254/course_finance/notifications"
)

// RemindStalePayoutRequests emails every admin about payout requests that
// have been sitting in pending for more than 48 hours.
func RemindStalePayoutRequests() {
	log.Println("Running job: RemindStalePayoutRequests...")

	cutoff := time.Now().Add(-48 * time.Hour)

	var staleRequests []models.PayoutRequest
	err := database.DB.
		Preload("Instructor").
		Where("status = ? AND requested_at < ?", models.PayoutStatusPending, cutoff).
		Order("requested_at asc").
		Find(&staleRequests).Error
	if err != nil {
		log.Printf("Error checking for stale payout requests: %v", err)
		return
	}

	if len(staleRequests) == 0 {
		return
	}

	rows := ""
	for _, request := range staleRequests {
		rows += fmt.Sprintf(
			"<li><b>%s</b> - %s %d (minor units) requested on %s</li>",
			request.Instructor.FullName,
			request.Currency,
			request.RequestedAmount,
			request.RequestedAt.Format("2006-01-02 15:04"),
		)
	}

	emailSubject := fmt.Sprintf("%d payout requests awaiting review", len(staleRequests))
	emailBody := fmt.Sprintf(
		"<h1>Pending Payouts</h1><p>The following payout requests have been pending for more than 48 hours:</p><ul>%s</ul>",
		rows,
	)

	var admins []models.User
	if err := database.DB.Where("role = ?", "admin").Find(&admins).Error; err != nil {
		log.Printf("Error loading admins for payout reminders: %v", err)
		return
	}

	for _, admin := range admins {
		go notifications.SendEmail(admin.FullName, admin.Email, emailSubject, emailBody)
	}
}
