package models

import (
	"time"
)

// Project statuses accepted by the API.
const (
	ProjectStatusInHand = "IN_HAND"
	ProjectStatusTender = "TENDER"
)

// ProjectGorm represents the projects table with GORM tags
type ProjectGorm struct {
	ID        uint         `gorm:"primaryKey;column:id" json:"id" example:"1"`
	Name      string       `gorm:"column:name;not null" json:"name" example:"Marina Tower Phase 2"`
	Status    *string      `gorm:"column:status" json:"status,omitempty" example:"TENDER"`
	CompanyID *uint        `gorm:"column:company_id" json:"company_id,omitempty" example:"1"`
	Company   *CompanyGorm `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	CreatedAt time.Time    `gorm:"column:created_at;not null" json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt time.Time    `gorm:"column:updated_at;not null" json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

// TableName specifies the table name for ProjectGorm
func (ProjectGorm) TableName() string {
	return "projects"
}

// ProjectRequest is the create/update payload for projects
type ProjectRequest struct {
	Name      string  `json:"name" binding:"required" example:"Marina Tower Phase 2"`
	Status    *string `json:"status,omitempty" binding:"omitempty,oneof=IN_HAND TENDER" example:"TENDER"`
	CompanyID *uint   `json:"company_id,omitempty" example:"1"`
}

// ProjectListResponse is the paginated list payload for projects
type ProjectListResponse struct {
	Data       []ProjectGorm `json:"data"`
	Pagination Pagination    `json:"pagination"`
}
