package models

import (
	"time"
)

// Registration statuses accepted by the API, in pipeline order.
const (
	RegistrationStatusPursuing    = "PURSUING"
	RegistrationStatusApplied     = "APPLIED"
	RegistrationStatusSubmitted   = "SUBMITTED"
	RegistrationStatusUnderReview = "UNDER_REVIEW"
	RegistrationStatusApproved    = "APPROVED"
	RegistrationStatusRegistered  = "REGISTERED"
	RegistrationStatusExpired     = "EXPIRED"
	RegistrationStatusDeclined    = "DECLINED"
)

// RegistrationStatuses lists the valid statuses in pipeline order.
var RegistrationStatuses = []string{
	RegistrationStatusPursuing,
	RegistrationStatusApplied,
	RegistrationStatusSubmitted,
	RegistrationStatusUnderReview,
	RegistrationStatusApproved,
	RegistrationStatusRegistered,
	RegistrationStatusExpired,
	RegistrationStatusDeclined,
}

// RegistrationGorm represents the registrations table with GORM tags
type RegistrationGorm struct {
	ID        uint         `gorm:"primaryKey;column:id" json:"id" example:"1"`
	CompanyID uint         `gorm:"column:company_id;not null" json:"company_id" example:"1"`
	Company   *CompanyGorm `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Status    string       `gorm:"column:status;not null;default:PURSUING" json:"status" example:"PURSUING"`
	AuthorID  uint         `gorm:"column:author_id;not null" json:"author_id" example:"1"`
	Author    *PersonGorm  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	File      *string      `gorm:"column:file" json:"file,omitempty" example:"registrations/5f2b1c_1718000000.pdf"`
	Notes     *string      `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt time.Time    `gorm:"column:created_at;not null" json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt time.Time    `gorm:"column:updated_at;not null" json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

// TableName specifies the table name for RegistrationGorm
func (RegistrationGorm) TableName() string {
	return "registrations"
}

// RegistrationRequest is the create/update payload for registrations
type RegistrationRequest struct {
	CompanyID uint    `json:"company_id" binding:"required" example:"1"`
	Status    string  `json:"status,omitempty" binding:"omitempty,oneof=PURSUING APPLIED SUBMITTED UNDER_REVIEW APPROVED REGISTERED EXPIRED DECLINED" example:"PURSUING"`
	AuthorID  uint    `json:"author_id" binding:"required" example:"1"`
	File      *string `json:"file,omitempty" example:"registrations/5f2b1c_1718000000.pdf"`
	Notes     *string `json:"notes,omitempty"`
}

// RegistrationListResponse is the paginated list payload for registrations
type RegistrationListResponse struct {
	Data       []RegistrationGorm `json:"data"`
	Pagination Pagination         `json:"pagination"`
}
