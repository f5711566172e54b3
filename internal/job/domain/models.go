// Package domain contains persistence models for job listings.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// JobType classifies the employment arrangement of a listing.
type JobType string

const (
	TypeFullTime   JobType = "full-time"
	TypePartTime   JobType = "part-time"
	TypeContract   JobType = "contract"
	TypeInternship JobType = "internship"
	TypeRemote     JobType = "remote"
)

// ValidType reports whether the value is a known job type.
func ValidType(t JobType) bool {
	switch t {
	case TypeFullTime, TypePartTime, TypeContract, TypeInternship, TypeRemote:
		return true
	default:
		return false
	}
}

// JobStatus represents lifecycle states for a listing.
type JobStatus string

const (
	StatusActive JobStatus = "active"
	StatusDraft  JobStatus = "draft"
	StatusClosed JobStatus = "closed"
)

// ValidStatus reports whether the value is a known status.
func ValidStatus(s JobStatus) bool {
	switch s {
	case StatusActive, StatusDraft, StatusClosed:
		return true
	default:
		return false
	}
}

// Job is one employer-posted listing. OrgID and PostedBy are opaque
// references into the external identity provider; there is no local
// organization table.
type Job struct {
	ID             snowflake.ID               `gorm:"primaryKey" json:"id"`
	OrgID          string                     `gorm:"type:text;not null;index" json:"org_id"`
	Title          string                     `gorm:"type:text;not null" json:"title"`
	Slug           string                     `gorm:"type:text;not null;index" json:"slug"`
	Company        string                     `gorm:"type:text;not null" json:"company"`
	Location       string                     `gorm:"type:text;not null" json:"location"`
	Type           JobType                    `gorm:"type:text;not null;index" json:"type"`
	SalaryMin      *int64                     `gorm:"column:salary_min" json:"salary_min,omitempty"`
	SalaryMax      *int64                     `gorm:"column:salary_max" json:"salary_max,omitempty"`
	SalaryCurrency *string                    `gorm:"column:salary_currency;type:text" json:"salary_currency,omitempty"`
	Description    string                     `gorm:"type:text;not null" json:"description"`
	Requirements   datatypes.JSONSlice[string] `json:"requirements"`
	Featured       bool                       `gorm:"not null;index" json:"featured"`
	Status         JobStatus                  `gorm:"type:text;not null;index" json:"status"`
	PostedBy       string                     `gorm:"type:text;not null" json:"posted_by"`
	CreatedAt      time.Time                  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time                  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Job) TableName() string { return "jobs" }
