package backend

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/community-vercel/theekadar-admin/internal/models"
)

// ref is a document reference that the backend sends either as a bare id
// string or as a populated object.
type ref struct {
	ID         string      `json:"_id"`
	AltID      string      `json:"id"`
	Name       string      `json:"name"`
	Title      string      `json:"title"`
	Email      string      `json:"email"`
	Role       models.Role `json:"role"`
	IsVerified bool        `json:"isVerified"`
}

func (r *ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}

	type plain ref
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = ref(p)
	return nil
}

func (r ref) id() string {
	if r.ID != "" {
		return r.ID
	}
	return r.AltID
}

type wireUser struct {
	ID         string      `json:"_id"`
	AltID      string      `json:"id"`
	Email      string      `json:"email"`
	Name       string      `json:"name"`
	Role       models.Role `json:"role"`
	IsVerified bool        `json:"isVerified"`
	CreatedAt  time.Time   `json:"createdAt"`
}

func (w wireUser) model() models.UserRecord {
	id := w.ID
	if id == "" {
		id = w.AltID
	}
	return models.UserRecord{
		ID:         id,
		Email:      w.Email,
		Role:       w.Role,
		IsVerified: w.IsVerified,
		CreatedAt:  w.CreatedAt,
	}
}

type wireProfile struct {
	UserID             ref                       `json:"userId"`
	Name               string                    `json:"name"`
	City               string                    `json:"city"`
	Town               string                    `json:"town"`
	VerificationStatus models.VerificationStatus `json:"verificationStatus"`
	Phone              string                    `json:"phone"`
	Address            string                    `json:"address"`
	Skills             []string                  `json:"skills"`
	Experience         int                       `json:"experience"`
}

func (w wireProfile) model() models.ProfileRecord {
	return models.ProfileRecord{
		UserID:             w.UserID.id(),
		Name:               w.Name,
		City:               w.City,
		Town:               w.Town,
		VerificationStatus: w.VerificationStatus,
		Phone:              w.Phone,
		Address:            w.Address,
		Skills:             w.Skills,
		Experience:         w.Experience,
	}
}

type wireVerification struct {
	UserID       ref                       `json:"userId"`
	Status       models.VerificationStatus `json:"status"`
	DocumentType string                    `json:"documentType"`
	DocumentURL  string                    `json:"documentUrl"`
	SubmittedAt  time.Time                 `json:"submittedAt"`
}

func (w wireVerification) model() models.VerificationRecord {
	return models.VerificationRecord{
		UserID:       w.UserID.id(),
		Status:       w.Status,
		DocumentType: w.DocumentType,
		DocumentURL:  w.DocumentURL,
		SubmittedAt:  w.SubmittedAt,
	}
}

type wireReview struct {
	ID        string    `json:"_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	UserID    ref       `json:"userId"`
	PostID    ref       `json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (w wireReview) model() models.Review {
	return models.Review{
		ID:           w.ID,
		Rating:       w.Rating,
		Comment:      w.Comment,
		ReviewerID:   w.UserID.id(),
		ReviewerName: w.UserID.Name,
		PostID:       w.PostID.id(),
		PostTitle:    w.PostID.Title,
		CreatedAt:    w.CreatedAt,
	}
}

// profileAggregate joins a populated profile back into a user row, as the
// location search returns profiles with their user embedded.
func (w wireProfile) aggregate() models.Aggregate {
	p := w.model()
	return models.Aggregate{
		User: models.UserRecord{
			ID:         w.UserID.id(),
			Email:      w.UserID.Email,
			Role:       w.UserID.Role,
			IsVerified: w.UserID.IsVerified,
		},
		Profile: &p,
	}
}

func profilesToModels(in []wireProfile) []models.ProfileRecord {
	out := make([]models.ProfileRecord, 0, len(in))
	for _, p := range in {
		out = append(out, p.model())
	}
	return out
}

func verificationsToModels(in []wireVerification) []models.VerificationRecord {
	out := make([]models.VerificationRecord, 0, len(in))
	for _, v := range in {
		out = append(out, v.model())
	}
	return out
}
