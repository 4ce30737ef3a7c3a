package models

import (
	"time"
)

// RFQ statuses accepted by the API.
const (
	RfqStatusSent     = "SENT"
	RfqStatusReceived = "RECEIVED"
)

// RfqGorm represents the rfqs table with GORM tags
type RfqGorm struct {
	ID               uint         `gorm:"primaryKey;column:id" json:"id" example:"1"`
	ReferenceNumber  string       `gorm:"column:reference_number;not null;uniqueIndex:uq_rfqs_reference_number" json:"reference_number" example:"ARGO-R012-04-2024"`
	Date             time.Time    `gorm:"column:date;not null" json:"date" example:"2024-04-02T00:00:00Z"`
	Status           string       `gorm:"column:status;not null;default:SENT" json:"status" example:"SENT"`
	QuoteID          *uint        `gorm:"column:quote_id" json:"quote_id,omitempty" example:"1"`
	Quote            *QuoteGorm   `gorm:"foreignKey:QuoteID" json:"quote,omitempty"`
	SupplierID       *uint        `gorm:"column:supplier_id" json:"supplier_id,omitempty" example:"2"`
	Supplier         *CompanyGorm `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	AuthorID         uint         `gorm:"column:author_id;not null" json:"author_id" example:"1"`
	Author           *PersonGorm  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	ProjectID        *uint        `gorm:"column:project_id" json:"project_id,omitempty" example:"1"`
	Project          *ProjectGorm `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	ReceivedDate     *time.Time   `gorm:"column:received_date" json:"received_date,omitempty" example:"2024-04-20T00:00:00Z"`
	ReceivedValue    *float64     `gorm:"column:received_value" json:"received_value,omitempty" example:"98000"`
	ReceivedCurrency *string      `gorm:"column:received_currency" json:"received_currency,omitempty" example:"AED"`
	Notes            *string      `gorm:"column:notes" json:"notes,omitempty"`
	Files            StringList   `gorm:"column:files;type:text" json:"files"`
	CreatedAt        time.Time    `gorm:"column:created_at;not null" json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt        time.Time    `gorm:"column:updated_at;not null" json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

// TableName specifies the table name for RfqGorm
func (RfqGorm) TableName() string {
	return "rfqs"
}

// RfqRequest is the create/update payload for RFQs
type RfqRequest struct {
	Date       time.Time `json:"date" binding:"required" example:"2024-04-02T00:00:00Z"`
	QuoteID    *uint     `json:"quote_id,omitempty" example:"1"`
	SupplierID *uint     `json:"supplier_id,omitempty" example:"2"`
	AuthorID   uint      `json:"author_id" binding:"required" example:"1"`
	ProjectID  *uint     `json:"project_id,omitempty" example:"1"`
	Notes      *string   `json:"notes,omitempty"`
	Files      []string  `json:"files,omitempty"`
}

// RfqReceiveRequest marks an RFQ as received and records the receipt details
type RfqReceiveRequest struct {
	ReceivedDate     time.Time `json:"received_date" binding:"required" example:"2024-04-20T00:00:00Z"`
	ReceivedValue    float64   `json:"received_value" binding:"required,gt=0" example:"98000"`
	ReceivedCurrency string    `json:"received_currency" binding:"required,len=3" example:"AED"`
}

// RfqListResponse is the paginated list payload for RFQs
type RfqListResponse struct {
	Data       []RfqGorm  `json:"data"`
	Pagination Pagination `json:"pagination"`
}
