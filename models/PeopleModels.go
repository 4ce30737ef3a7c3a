package models

import (
	"time"
)

// Person types accepted by the API.
const (
	PersonTypeAuthor        = "AUTHOR"
	PersonTypeContactPerson = "CONTACT_PERSON"
	PersonTypeInternal      = "INTERNAL"
)

// PersonGorm represents the people table with GORM tags
type PersonGorm struct {
	ID        uint         `gorm:"primaryKey;column:id" json:"id" example:"1"`
	Name      string       `gorm:"column:name;not null" json:"name" example:"Raj Kumar"`
	Email     *string      `gorm:"column:email" json:"email,omitempty" example:"raj@example.com"`
	PhoneNo   *string      `gorm:"column:phone_no" json:"phone_no,omitempty" example:"9876543210"`
	Title     *string      `gorm:"column:title" json:"title,omitempty" example:"Procurement Manager"`
	Type      string       `gorm:"column:type;not null" json:"type" example:"CONTACT_PERSON"`
	CompanyID *uint        `gorm:"column:company_id" json:"company_id,omitempty" example:"1"`
	Company   *CompanyGorm `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	CreatedAt time.Time    `gorm:"column:created_at;not null" json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt time.Time    `gorm:"column:updated_at;not null" json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

// TableName specifies the table name for PersonGorm
func (PersonGorm) TableName() string {
	return "people"
}

// PersonRequest is the create/update payload for people
type PersonRequest struct {
	Name      string  `json:"name" binding:"required" example:"Raj Kumar"`
	Email     *string `json:"email,omitempty" binding:"omitempty,email" example:"raj@example.com"`
	PhoneNo   *string `json:"phone_no,omitempty" example:"9876543210"`
	Title     *string `json:"title,omitempty" example:"Procurement Manager"`
	Type      string  `json:"type" binding:"required,oneof=AUTHOR CONTACT_PERSON INTERNAL" example:"CONTACT_PERSON"`
	CompanyID *uint   `json:"company_id,omitempty" example:"1"`
}

// PersonListResponse is the paginated list payload for people
type PersonListResponse struct {
	Data       []PersonGorm `json:"data"`
	Pagination Pagination   `json:"pagination"`
}
