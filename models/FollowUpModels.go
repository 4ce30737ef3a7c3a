package models

import (
	"time"
)

// FollowUpGorm represents the follow_ups table with GORM tags.
// Follow-ups are append-mostly audit records: created/updated timestamps
// only, no status field.
type FollowUpGorm struct {
	ID        uint        `gorm:"primaryKey;column:id" json:"id" example:"1"`
	QuoteID   uint        `gorm:"column:quote_id;not null" json:"quote_id" example:"1"`
	Quote     *QuoteGorm  `gorm:"foreignKey:QuoteID" json:"quote,omitempty"`
	AuthorID  uint        `gorm:"column:author_id;not null" json:"author_id" example:"1"`
	Author    *PersonGorm `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Notes     *string     `gorm:"column:notes" json:"notes,omitempty" example:"Called client, awaiting PO"`
	CreatedAt time.Time   `gorm:"column:created_at;not null" json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt time.Time   `gorm:"column:updated_at;not null" json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

// TableName specifies the table name for FollowUpGorm
func (FollowUpGorm) TableName() string {
	return "follow_ups"
}

// FollowUpRequest is the create/update payload for follow-ups
type FollowUpRequest struct {
	QuoteID  uint    `json:"quote_id" binding:"required" example:"1"`
	AuthorID uint    `json:"author_id" binding:"required" example:"1"`
	Notes    *string `json:"notes,omitempty" example:"Called client, awaiting PO"`
}

// FollowUpListResponse is the paginated list payload for follow-ups
type FollowUpListResponse struct {
	Data       []FollowUpGorm `json:"data"`
	Pagination Pagination     `json:"pagination"`
}
