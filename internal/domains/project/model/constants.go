package model

// =====================================================
// TIMELINE ACTION PHRASES
// =====================================================
// Timeline entries carry free action text; these are the canonical phrases
// used by the service so the audit trail stays greppable.
const (
	ActionProjectCreated    = "Project created"
	ActionEditorAssigned    = "Editor assigned"
	ActionEditorReassigned  = "Editor reassigned"
	ActionStatusUpdated     = "Editor updated status"
	ActionVersionUploaded   = "Edited version uploaded"
	ActionReviewApproved    = "Admin approved edited version"
	ActionRevisionRequested = "Admin requested revision"
	ActionReassignFlagged   = "Admin flagged project for reassignment"
	ActionClientApproved    = "Client approved delivery"
	ActionClientReEdit      = "Client requested re-edit"
	ActionClientRevision    = "Client requested revision"
	ActionDeadlineExceeded  = "Editor deadline exceeded"
)

// =====================================================
// TIMELINE AUDIENCE
// =====================================================
// Audience is decided at append time. The old implementation inferred the
// client-safe view by string-matching action text after the fact; the tag
// replaces that, with ClientVisibleActions preserving the original
// client-visible action set for entries appended without an explicit tag.
const (
	AudienceInternal = "internal"
	AudienceClient   = "client"
)

// ClientVisibleActions is the legacy allow-list of action phrases shown to
// clients. Used only by AudienceForAction as the default tagging rule.
var ClientVisibleActions = map[string]bool{
	ActionProjectCreated:    true,
	ActionEditorAssigned:    true,
	ActionEditorReassigned:  true,
	ActionVersionUploaded:   true,
	ActionReviewApproved:    true,
	ActionClientApproved:    true,
	ActionClientReEdit:      true,
	ActionClientRevision:    true,
}

// AudienceForAction maps an action phrase to its default audience.
func AudienceForAction(action string) string {
	if ClientVisibleActions[action] {
		return AudienceClient
	}
	return AudienceInternal
}
