package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"crmcore/pkg/platform/sentinel"
)

func TestNotificationKinds(t *testing.T) {
	for _, k := range []EntityKind{
		KindProjects, KindTasks, KindGoals, KindLeads, KindCustomers,
		KindFiles, KindUpsells, KindMessages, KindUsers,
	} {
		assert.True(t, IsNotificationKind(k), "kind %q", k)
		assert.NoError(t, ValidateNotificationKind(k))
	}

	// Audit-only kinds are not notification subjects.
	assert.False(t, IsNotificationKind(KindAttachments))
	assert.False(t, IsNotificationKind(KindChargeDetails))
}

func TestAuditKindsSupersetOfNotificationKinds(t *testing.T) {
	for _, k := range []EntityKind{
		KindProjects, KindTasks, KindGoals, KindLeads, KindCustomers,
		KindFiles, KindUpsells, KindMessages, KindUsers,
		KindAttachments, KindChargeDetails,
	} {
		assert.True(t, IsAuditKind(k), "kind %q", k)
	}
}

func TestValidateRejectsUnknownKinds(t *testing.T) {
	for _, k := range []EntityKind{"", "invoices", "Tasks", "task"} {
		err := ValidateNotificationKind(k)
		assert.True(t, errors.Is(err, sentinel.ErrInvalidEntityKind), "kind %q", k)

		err = ValidateAuditKind(k)
		assert.True(t, errors.Is(err, sentinel.ErrInvalidEntityKind), "kind %q", k)
	}
}

func TestEntityRef(t *testing.T) {
	assert.True(t, EntityRef{}.IsZero())
	assert.False(t, EntityRef{Kind: KindTasks, ID: "t1"}.IsZero())
	assert.Equal(t, "tasks/t1", EntityRef{Kind: KindTasks, ID: "t1"}.String())
}
