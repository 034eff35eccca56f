package models

import "time"

// Lead statuses
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQualified = "qualified"
	LeadStatusConverted = "converted"
	LeadStatusLost      = "lost"
)

// Lead priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Lead sources
const (
	SourceWebsite = "website"
	SourceCRM     = "crm"
)

var (
	LeadStatuses   = []string{LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusConverted, LeadStatusLost}
	LeadPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh}
	LeadSources    = []string{SourceWebsite, SourceCRM}
)

// Lead is a customer inquiry moving through the sales pipeline.
// Activities and Notes belong exclusively to their lead.
type Lead struct {
	Base
	Name         string         `gorm:"size:255;not null" json:"name"`
	Email        string         `gorm:"size:255;not null" json:"email"`
	Phone        string         `gorm:"size:50;not null" json:"phone"`
	Service      string         `gorm:"size:50;not null" json:"service"`
	Message      string         `gorm:"type:text;not null;default:''" json:"message"`
	Status       string         `gorm:"size:20;not null;index" json:"status"`
	Priority     string         `gorm:"size:20;not null;index" json:"priority"`
	Source       string         `gorm:"size:20;not null" json:"source"`
	AssignedToID *string        `gorm:"size:36;index" json:"assignedToId"`
	AssignedTo   *User          `gorm:"foreignKey:AssignedToID;constraint:OnDelete:SET NULL" json:"assignedTo"`
	Activities   []LeadActivity `gorm:"constraint:OnDelete:CASCADE" json:"activities,omitempty"`
	Notes        []LeadNote     `gorm:"constraint:OnDelete:CASCADE" json:"notes,omitempty"`
}

// LeadActivity is an append-only event recorded on a lead.
type LeadActivity struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	LeadID      string    `gorm:"size:36;not null;index" json:"leadId"`
	UserID      *string   `gorm:"size:36;index" json:"userId"`
	User        *User     `gorm:"constraint:OnDelete:SET NULL" json:"user,omitempty"`
	Type        string    `gorm:"size:50;not null" json:"type"`
	Description string    `gorm:"type:text;not null" json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
}

// LeadNote is a free-text note attached to a lead.
type LeadNote struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	LeadID    string    `gorm:"size:36;not null;index" json:"leadId"`
	UserID    *string   `gorm:"size:36;index" json:"userId"`
	User      *User     `gorm:"constraint:OnDelete:SET NULL" json:"user,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}
