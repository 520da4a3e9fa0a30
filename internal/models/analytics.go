package models

// LabeledCount is one bar or slice of a dashboard chart.
type LabeledCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// RoleExperience is the mean years of experience for a role.
type RoleExperience struct {
	Role          string  `json:"role"`
	AvgExperience float64 `json:"avgExperience"`
}

// Analytics is the marketplace overview rendered on the dashboard.
type Analytics struct {
	TotalUsers          int              `json:"totalUsers"`
	UsersByRole         []LabeledCount   `json:"usersByRole"`
	UsersByVerification []LabeledCount   `json:"usersByVerification"`
	RegistrationTrends  []LabeledCount   `json:"registrationTrends"`
	UsersByCity         []LabeledCount   `json:"usersByCity"`
	UsersBySkill        []LabeledCount   `json:"usersBySkill"`
	AvgExperienceByRole []RoleExperience `json:"avgExperienceByRole"`
}

// Dashboard combines analytics with broadcast reach.
type Dashboard struct {
	Analytics      *Analytics      `json:"analytics"`
	BroadcastStats *BroadcastStats `json:"broadcastStats,omitempty"`
}
