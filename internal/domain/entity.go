package domain

import (
	"fmt"

	"crmcore/pkg/platform/sentinel"
)

// EntityKind names one of the CRM collections a record can point at. The set
// is closed: audit records and notifications reference entities by
// (kind, id) without a typed foreign key, so the kind discriminator has to be
// validated at the boundary instead of by the schema.
type EntityKind string

const (
	KindProjects  EntityKind = "projects"
	KindTasks     EntityKind = "tasks"
	KindGoals     EntityKind = "goals"
	KindLeads     EntityKind = "leads"
	KindCustomers EntityKind = "customers"
	KindFiles     EntityKind = "files"
	KindUpsells   EntityKind = "upsells"
	KindMessages  EntityKind = "messages"
	KindUsers     EntityKind = "users"

	// Audit-only kinds. The audit trail covers a broader set of collections
	// than notifications ever link to.
	KindAttachments   EntityKind = "attachments"
	KindChargeDetails EntityKind = "charge_details"
)

var notificationKinds = map[EntityKind]bool{
	KindProjects:  true,
	KindTasks:     true,
	KindGoals:     true,
	KindLeads:     true,
	KindCustomers: true,
	KindFiles:     true,
	KindUpsells:   true,
	KindMessages:  true,
	KindUsers:     true,
}

var auditKinds = map[EntityKind]bool{
	KindProjects:      true,
	KindTasks:         true,
	KindGoals:         true,
	KindLeads:         true,
	KindCustomers:     true,
	KindFiles:         true,
	KindUpsells:       true,
	KindMessages:      true,
	KindUsers:         true,
	KindAttachments:   true,
	KindChargeDetails: true,
}

// IsNotificationKind reports whether k may appear on a notification.
func IsNotificationKind(k EntityKind) bool { return notificationKinds[k] }

// IsAuditKind reports whether k may appear on an audit record.
func IsAuditKind(k EntityKind) bool { return auditKinds[k] }

// ValidateNotificationKind returns ErrInvalidEntityKind when k is outside the
// notification set.
func ValidateNotificationKind(k EntityKind) error {
	if !notificationKinds[k] {
		return fmt.Errorf("%w: %q", sentinel.ErrInvalidEntityKind, string(k))
	}
	return nil
}

// ValidateAuditKind returns ErrInvalidEntityKind when k is outside the audit
// set.
func ValidateAuditKind(k EntityKind) error {
	if !auditKinds[k] {
		return fmt.Errorf("%w: %q", sentinel.ErrInvalidEntityKind, string(k))
	}
	return nil
}

// EntityRef is a weak polymorphic reference: a lookup key, never an ownership
// edge. The referenced entity may be deleted without cascading here.
type EntityRef struct {
	Kind EntityKind `json:"kind"`
	ID   string     `json:"id"`
}

// IsZero reports whether the reference is unset.
func (r EntityRef) IsZero() bool { return r.Kind == "" && r.ID == "" }

func (r EntityRef) String() string {
	if r.IsZero() {
		return ""
	}
	return string(r.Kind) + "/" + r.ID
}
