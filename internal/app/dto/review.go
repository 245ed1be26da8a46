package dto

import "time"

// ============ Отзывы ============

type ReviewResponse struct {
	ID              uint       `json:"id"`
	HostingID       uint       `json:"hosting_id"`
	HostingName     string     `json:"hosting_name,omitempty"`
	UserID          *uint      `json:"user_id,omitempty"`
	AuthorName      string     `json:"author_name"`
	AuthorEmail     string     `json:"author_email,omitempty"`
	Rating          int        `json:"rating"`
	Pros            string     `json:"pros,omitempty"`
	Cons            string     `json:"cons,omitempty"`
	Content         string     `json:"content"`
	Status          string     `json:"status"`
	ModeratorID     *uint      `json:"moderator_id,omitempty"`
	ModeratedAt     *time.Time `json:"moderated_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// PublicReviewResponse - отзыв без служебных полей.
type PublicReviewResponse struct {
	ID         uint      `json:"id"`
	AuthorName string    `json:"author_name"`
	Rating     int       `json:"rating"`
	Pros       string    `json:"pros,omitempty"`
	Cons       string    `json:"cons,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateReviewRequest struct {
	AuthorName  string `json:"author_name" binding:"required,max=100"`
	AuthorEmail string `json:"author_email" binding:"omitempty,email,max=255"`
	Rating      int    `json:"rating" binding:"required,min=1,max=5"`
	Pros        string `json:"pros" binding:"max=2000"`
	Cons        string `json:"cons" binding:"max=2000"`
	Content     string `json:"content" binding:"required,max=5000"`
}

type UpdateReviewRequest struct {
	AuthorName string `json:"author_name" binding:"required,max=100"`
	Rating     int    `json:"rating" binding:"required,min=1,max=5"`
	Pros       string `json:"pros" binding:"max=2000"`
	Cons       string `json:"cons" binding:"max=2000"`
	Content    string `json:"content" binding:"required,max=5000"`
}

type RejectReviewRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}
