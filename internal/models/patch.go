package models

// UserPatch is a partial update of a single user. Nil fields are untouched.
type UserPatch struct {
	Role               *Role               `json:"role,omitempty"`
	IsVerified         *bool               `json:"isVerified,omitempty"`
	VerificationStatus *VerificationStatus `json:"verificationStatus,omitempty"`
}

// IsEmpty reports whether the patch sets no field.
func (p UserPatch) IsEmpty() bool {
	return p.Role == nil && p.IsVerified == nil && p.VerificationStatus == nil
}

// BulkPatch is the update applied to every selected user in a group
// operation. Role changes are not allowed in bulk.
type BulkPatch struct {
	IsVerified         *bool               `json:"isVerified,omitempty"`
	VerificationStatus *VerificationStatus `json:"verificationStatus,omitempty"`
}

func (p BulkPatch) IsEmpty() bool {
	return p.IsVerified == nil && p.VerificationStatus == nil
}

// UserPatch widens the bulk patch to a single-user patch.
func (p BulkPatch) UserPatch() UserPatch {
	return UserPatch{IsVerified: p.IsVerified, VerificationStatus: p.VerificationStatus}
}

// BulkDeleteResult reports what the backend confirmed against what was asked.
type BulkDeleteResult struct {
	Requested int  `json:"requestedCount"`
	Deleted   int  `json:"deletedCount"`
	Mismatch  bool `json:"mismatch"`
}

// BulkUpdateResult reports the backend's confirmed update count.
type BulkUpdateResult struct {
	Requested int  `json:"requestedCount"`
	Updated   int  `json:"updatedCount"`
	Mismatch  bool `json:"mismatch"`
}
