package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuditLogIsAppendOnly(t *testing.T) {
	entry := AuditLog{EntityType: "payout_request", EntityID: "abc", Action: "payout.approved"}

	assert.ErrorIs(t, entry.BeforeUpdate(nil), ErrAuditLogImmutable)
	assert.ErrorIs(t, entry.BeforeDelete(nil), ErrAuditLogImmutable)
}
