package shared

// =====================================================
// ASYNQ TASK TYPES AND QUEUES
// =====================================================
const (
	TypeNotifyAssignment     = "notify:assignment"
	TypeNotifyReviewResult   = "notify:review_result"
	TypeNotifyClientFeedback = "notify:client_feedback"
	TypeDeadlineSweep        = "project:deadline_sweep"

	QueueNotifications = "notifications"
	QueueMaintenance   = "maintenance"
)

// AssignmentNotificationPayload notifies an editor of a new assignment or
// reassignment, including the deadline fixed at assignment time.
type AssignmentNotificationPayload struct {
	ProjectID      string `json:"project_id"`
	ProjectTitle   string `json:"project_title"`
	EditorEmail    string `json:"editor_email"`
	EditorName     string `json:"editor_name"`
	IsReassignment bool   `json:"is_reassignment"`
	DeadlineHours  int    `json:"deadline_hours"`
	Deadline       string `json:"deadline"`
}

// ReviewResultPayload notifies the relevant party of an admin review outcome:
// the client on approval, the editor on a revision request.
type ReviewResultPayload struct {
	ProjectID      string `json:"project_id"`
	ProjectTitle   string `json:"project_title"`
	RecipientEmail string `json:"recipient_email"`
	RecipientName  string `json:"recipient_name"`
	Approved       bool   `json:"approved"`
	Comment        string `json:"comment"`
}

// ClientFeedbackAlertPayload notifies the admin inbox that a client asked
// for a revision without requesting a re-edit.
type ClientFeedbackAlertPayload struct {
	ProjectID    string `json:"project_id"`
	ProjectTitle string `json:"project_title"`
	ClientName   string `json:"client_name"`
	Message      string `json:"message"`
}
