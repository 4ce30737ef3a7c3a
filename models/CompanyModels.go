package models

import (
	"time"
)

// Company types accepted by the API.
const (
	CompanyTypeSupplier   = "SUPPLIER"
	CompanyTypeClient     = "CLIENT"
	CompanyTypeContractor = "CONTRACTOR"
	CompanyTypeConsultant = "CONSULTANT"
)

// CompanyGorm represents the companies table with GORM tags
type CompanyGorm struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id" example:"1"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:uq_companies_name" json:"name" example:"Acme Trading LLC"`
	Email     *string   `gorm:"column:email" json:"email,omitempty" example:"info@acme.example"`
	PhoneNo   *string   `gorm:"column:phone_no" json:"phone_no,omitempty" example:"+971 4 555 0100"`
	Type      string    `gorm:"column:type;not null" json:"type" example:"SUPPLIER"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null" json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

// TableName specifies the table name for CompanyGorm
func (CompanyGorm) TableName() string {
	return "companies"
}

// CompanyRequest is the create/update payload for companies
type CompanyRequest struct {
	Name    string  `json:"name" binding:"required" example:"Acme Trading LLC"`
	Email   *string `json:"email,omitempty" binding:"omitempty,email" example:"info@acme.example"`
	PhoneNo *string `json:"phone_no,omitempty" example:"+971 4 555 0100"`
	Type    string  `json:"type" binding:"required,oneof=SUPPLIER CLIENT CONTRACTOR CONSULTANT" example:"SUPPLIER"`
}

// CompanyListResponse is the paginated list payload for companies
type CompanyListResponse struct {
	Data       []CompanyGorm `json:"data"`
	Pagination Pagination    `json:"pagination"`
}
