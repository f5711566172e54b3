// Package domain contains persistence models for job applications.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ApplicationStatus tracks where an application sits in the employer's
// review pipeline.
type ApplicationStatus string

const (
	StatusPending   ApplicationStatus = "pending"
	StatusReviewed  ApplicationStatus = "reviewed"
	StatusInterview ApplicationStatus = "interview"
	StatusRejected  ApplicationStatus = "rejected"
)

// ValidStatus reports whether the value is a known status.
func ValidStatus(s ApplicationStatus) bool {
	switch s {
	case StatusPending, StatusReviewed, StatusInterview, StatusRejected:
		return true
	default:
		return false
	}
}

// transitions is the allowed review state machine. Rejected can be
// reopened back to pending.
var transitions = map[ApplicationStatus][]ApplicationStatus{
	StatusPending:   {StatusReviewed, StatusRejected},
	StatusReviewed:  {StatusInterview, StatusRejected},
	StatusInterview: {StatusReviewed, StatusRejected},
	StatusRejected:  {StatusPending},
}

// CanTransition reports whether moving from one status to another is
// allowed.
func CanTransition(from, to ApplicationStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Application is one job seeker's submission against a listing.
// ApplicantID references the external identity provider. The
// (job_id, applicant_id) pair is unique so a seeker can apply to a
// listing at most once.
type Application struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	JobID       snowflake.ID      `gorm:"not null;index;uniqueIndex:ux_applications_job_applicant" json:"job_id"`
	ApplicantID string            `gorm:"type:text;not null;index;uniqueIndex:ux_applications_job_applicant" json:"applicant_id"`
	Name        string            `gorm:"type:text;not null" json:"name"`
	Email       string            `gorm:"type:text;not null" json:"email"`
	Phone       *string           `gorm:"type:text" json:"phone,omitempty"`
	ResumeURL   *string           `gorm:"column:resume_url;type:text" json:"resume_url,omitempty"`
	CoverLetter *string           `gorm:"column:cover_letter;type:text" json:"cover_letter,omitempty"`
	Status      ApplicationStatus `gorm:"type:text;not null;index" json:"status"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Application) TableName() string { return "applications" }
