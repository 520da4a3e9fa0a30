package models

import "time"

// Review is a client's rating of a provider's post.
type Review struct {
	ID           string    `json:"id"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	ReviewerID   string    `json:"reviewerId,omitempty"`
	ReviewerName string    `json:"reviewerName"`
	PostID       string    `json:"postId,omitempty"`
	PostTitle    string    `json:"postTitle"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ReviewPage is one page of the backend review listing.
type ReviewPage struct {
	Reviews []Review `json:"reviews"`
	Total   int      `json:"total"`
	Pages   int      `json:"pages"`
	Page    int      `json:"page"`
	Limit   int      `json:"limit"`
}

// ReviewSummary is the rating overview shown above the review list.
type ReviewSummary struct {
	Count        int         `json:"count"`
	Average      float64     `json:"average"`
	Distribution map[int]int `json:"distribution"`
}
