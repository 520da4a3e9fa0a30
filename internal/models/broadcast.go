package models

// Notification types understood by the backend push service.
const (
	NotificationTypeGeneral      = "general"
	NotificationTypeRoleSpecific = "role-specific"
)

// Broadcast is a push notification sent to many users at once.
type Broadcast struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Type  string `json:"type"`
	Roles []Role `json:"roles,omitempty"`
}

// BroadcastDelivery is the backend's delivery report for one broadcast.
type BroadcastDelivery struct {
	Message      string `json:"message"`
	SuccessCount int    `json:"successCount"`
	FailureCount int    `json:"failureCount"`
	TotalUsers   int    `json:"totalUsers"`
}

// BroadcastStats summarizes push-notification reach.
type BroadcastStats struct {
	TotalUsers    int            `json:"totalUsers"`
	UsersWithFCM  int            `json:"usersWithFCM"`
	FCMCoverage   string         `json:"fcmCoverage"`
	RoleBreakdown []LabeledCount `json:"roleBreakdown"`
}
