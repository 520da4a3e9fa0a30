package models

import (
	"time"
)

// Role is a marketplace account role as reported by the backend.
type Role string

const (
	RoleClient     Role = "client"
	RoleWorker     Role = "worker"
	RoleAdmin      Role = "admin"
	RoleThekadar   Role = "thekadar"
	RoleContractor Role = "contractor"
	RoleConsultant Role = "consultant"
)

// Roles lists every role in display order.
var Roles = []Role{RoleClient, RoleWorker, RoleAdmin, RoleThekadar, RoleContractor, RoleConsultant}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// VerificationStatus is the state of a provider's document review.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationPending, VerificationApproved, VerificationRejected:
		return true
	}
	return false
}

// Decisive reports whether s is a verdict an admin can hand down.
func (s VerificationStatus) Decisive() bool {
	return s == VerificationApproved || s == VerificationRejected
}

// UserRecord mirrors a backend user account.
type UserRecord struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (u *UserRecord) IsClient() bool {
	return u.Role == RoleClient
}

func (u *UserRecord) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ProfileRecord mirrors a provider profile. Clients normally have none.
type ProfileRecord struct {
	UserID             string             `json:"userId"`
	Name               string             `json:"name"`
	City               string             `json:"city"`
	Town               string             `json:"town"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	Phone              string             `json:"phone,omitempty"`
	Address            string             `json:"address,omitempty"`
	Skills             []string           `json:"skills,omitempty"`
	Experience         int                `json:"experience,omitempty"`
}

// VerificationRecord mirrors a submitted verification document.
type VerificationRecord struct {
	UserID       string             `json:"userId"`
	Status       VerificationStatus `json:"status"`
	DocumentType string             `json:"documentType"`
	DocumentURL  string             `json:"documentUrl"`
	SubmittedAt  time.Time          `json:"submittedAt"`
}

// Aggregate is a user joined with its optional profile and verification.
type Aggregate struct {
	User         UserRecord          `json:"user"`
	Profile      *ProfileRecord      `json:"profile,omitempty"`
	Verification *VerificationRecord `json:"verification,omitempty"`
}

// UserPage is one page of the backend user listing.
type UserPage struct {
	Users         []UserRecord         `json:"users"`
	Profiles      []ProfileRecord      `json:"profiles"`
	Verifications []VerificationRecord `json:"verifications"`
	TotalPages    int                  `json:"totalPages"`
}

// UserStats are counts derived from the mirrored collections.
type UserStats struct {
	Total    int `json:"total"`
	Verified int `json:"verified"`
	Pending  int `json:"pending"`
}

// AdminIdentity is the logged-in console operator.
type AdminIdentity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  Role   `json:"role"`
}
