package utils

import (
	"math/rand"
	"time"

	"github.com/kamau254/course_finance/models"
	"gorm.io/gorm"
)

const payoutReferenceLength = 8
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GeneratePayoutReference produces a human-readable payout reference like
// "PO-7FK2Q9XA" that is unique among payout requests.
func GeneratePayoutReference(tx *gorm.DB) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		b := make([]byte, payoutReferenceLength)
		for i := range b {
			b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
		}
		reference := "PO-" + string(b)

		var request models.PayoutRequest
		err := tx.Where("reference = ?", reference).First(&request).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return reference, nil
			}
			return "", err
		}
	}
}
