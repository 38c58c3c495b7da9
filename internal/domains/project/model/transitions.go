package model

// =====================================================
// STATE MACHINE TRANSITION RULES
// =====================================================
// Status only ever changes through the project service; everything here is
// the static legality data the service validates against.

// editorSourceStates are the states an assigned editor may transition from.
var editorSourceStates = map[string]bool{
	StatusAssigned:           true,
	StatusReassigned:         true,
	StatusInProgress:         true,
	StatusRevisionInProgress: true,
}

// editorTargetStates are the states an assigned editor may declare.
var editorTargetStates = map[string]bool{
	StatusAssigned:           true,
	StatusInProgress:         true,
	StatusCompleted:          true,
	StatusRevisionInProgress: true,
}

// CanEditorTransition validates an editor-declared status update.
func CanEditorTransition(from, to string) bool {
	return editorSourceStates[from] && editorTargetStates[to]
}

// =====================================================
// REVIEW ACTIONS (ADMIN)
// =====================================================
const (
	ReviewActionApprove  = "approve"
	ReviewActionRevision = "revision"
	ReviewActionReassign = "reassign"
)

// ReviewTarget returns the status a review action moves the project to.
// The reassign flag leaves status untouched (the admin assigns separately).
func ReviewTarget(action, current string) (string, bool) {
	switch action {
	case ReviewActionApprove:
		return StatusApproved, true
	case ReviewActionRevision:
		return StatusRevisionRequested, true
	case ReviewActionReassign:
		return current, true
	}
	return "", false
}

// ReviewCommentKind maps a review action to the admin comment kind recorded
// alongside it.
func ReviewCommentKind(action string) string {
	if action == ReviewActionReassign {
		return CommentKindReassignment
	}
	return CommentKindReview
}

// =====================================================
// CLIENT FEEDBACK OUTCOMES
// =====================================================

// FeedbackTarget resolves the status a client response moves the project to:
//   - approved + satisfied        -> delivered
//   - revision + re-edit request  -> client_reedit
//   - revision, no re-edit        -> revision_requested
func FeedbackTarget(responseState string, satisfied, reEditRequested bool) (string, bool) {
	switch responseState {
	case ResponseApproved:
		if satisfied {
			return StatusDelivered, true
		}
		// An approval without satisfaction keeps the project delivered;
		// the original system treated the approve action itself as final.
		return StatusDelivered, true
	case ResponseRevisionRequested:
		if reEditRequested {
			return StatusClientReEdit, true
		}
		return StatusRevisionRequested, true
	}
	return "", false
}
