package services

import (
	"encoding/json"
	"log"
	"time"

	"github.com/kamau254/course_finance/database"
	"github.com/kamau254/course_finance/models"
	"github.com/google/uuid"
)

// RecordAudit appends an entry to the audit trail. It is fire-and-forget:
// write failures are logged and never surface to the caller, so the primary
// mutation they describe is never rolled back over a missing audit row.
func RecordAudit(entityType, entityID, action, actorID, actorRole string, previous, next interface{}) {
	entry := models.AuditLog{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		ActorID:    actorID,
		ActorRole:  actorRole,
	}

	if snapshot := marshalSnapshot(previous); snapshot != nil {
		entry.PreviousState = snapshot
	}
	if snapshot := marshalSnapshot(next); snapshot != nil {
		entry.NewState = snapshot
	}

	if err := database.DB.Create(&entry).Error; err != nil {
		log.Printf("🔥 Failed to write audit entry %s/%s %s: %v", entityType, entityID, action, err)
	}
}

func marshalSnapshot(state interface{}) *string {
	if state == nil {
		return nil
	}
	raw, err := json.Marshal(state)
	if err != nil {
		log.Printf("🔥 Failed to marshal audit snapshot: %v", err)
		return nil
	}
	encoded := string(raw)
	return &encoded
}

// GetAuditTrail returns the newest entries for one entity, newest first.
func GetAuditTrail(entityType, entityID string, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	var entries []models.AuditLog
	err := database.DB.
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at desc").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// DetectSuspiciousActivity applies the payout-request heuristics: more than
// three requests by the instructor, or more than two from the same source
// address, inside the window. Flags are advisory and never block creation.
func DetectSuspiciousActivity(instructorID uuid.UUID, requestIP string, windowHours int) []string {
	if windowHours <= 0 {
		windowHours = 24
	}
	since := clock.Now().Add(-time.Duration(windowHours) * time.Hour)

	var flags []string

	// Counts are of prior requests; the one being created makes it one more.
	var byInstructor int64
	if err := database.DB.Model(&models.PayoutRequest{}).
		Where("instructor_id = ? AND requested_at > ?", instructorID, since).
		Count(&byInstructor).Error; err != nil {
		log.Printf("🔥 Suspicious-activity check failed for instructor %s: %v", instructorID, err)
	} else if byInstructor+1 > 3 {
		flags = append(flags, "high_request_frequency")
	}

	if requestIP != "" {
		var byAddress int64
		if err := database.DB.Model(&models.PayoutRequest{}).
			Where("request_ip = ? AND requested_at > ?", requestIP, since).
			Count(&byAddress).Error; err != nil {
			log.Printf("🔥 Suspicious-activity check failed for address %s: %v", requestIP, err)
		} else if byAddress+1 > 2 {
			flags = append(flags, "shared_network_origin")
		}
	}

	return flags
}
