package models

import (
	"time"
)

// Quote outcomes accepted by the API.
const (
	QuoteOutcomeWon     = "WON"
	QuoteOutcomeLost    = "LOST"
	QuoteOutcomePending = "PENDING"
)

// QuoteGorm represents the quotes table with GORM tags
type QuoteGorm struct {
	ID              uint         `gorm:"primaryKey;column:id" json:"id" example:"1"`
	ReferenceNumber string       `gorm:"column:reference_number;not null;uniqueIndex:uq_quotes_reference_number" json:"reference_number" example:"ARGO-Q007-03-2024"`
	Date            time.Time    `gorm:"column:date;not null" json:"date" example:"2024-03-15T00:00:00Z"`
	Currency        string       `gorm:"column:currency;not null" json:"currency" example:"USD"`
	Value           float64      `gorm:"column:value;not null" json:"value" example:"125000.50"`
	FxRate          float64      `gorm:"column:fx_rate;not null" json:"fx_rate" example:"3.6725"`
	Outcome         string       `gorm:"column:outcome;not null;default:PENDING" json:"outcome" example:"PENDING"`
	DeliveryDate    *time.Time   `gorm:"column:delivery_date" json:"delivery_date,omitempty" example:"2024-06-01T00:00:00Z"`
	Notes           *string      `gorm:"column:notes" json:"notes,omitempty" example:"Revised per client request"`
	Files           StringList   `gorm:"column:files;type:text" json:"files"`
	AuthorID        uint         `gorm:"column:author_id;not null" json:"author_id" example:"1"`
	Author          *PersonGorm  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	SupplierID      *uint        `gorm:"column:supplier_id" json:"supplier_id,omitempty" example:"2"`
	Supplier        *CompanyGorm `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	ClientID        *uint        `gorm:"column:client_id" json:"client_id,omitempty" example:"3"`
	Client          *CompanyGorm `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	ProjectID       *uint        `gorm:"column:project_id" json:"project_id,omitempty" example:"1"`
	Project         *ProjectGorm `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	ContactPersonID *uint        `gorm:"column:contact_person_id" json:"contact_person_id,omitempty" example:"4"`
	ContactPerson   *PersonGorm  `gorm:"foreignKey:ContactPersonID" json:"contact_person,omitempty"`
	SalesPersonID   *uint        `gorm:"column:sales_person_id" json:"sales_person_id,omitempty" example:"5"`
	SalesPerson     *PersonGorm  `gorm:"foreignKey:SalesPersonID" json:"sales_person,omitempty"`
	CreatedAt       time.Time    `gorm:"column:created_at;not null" json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt       time.Time    `gorm:"column:updated_at;not null" json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

// TableName specifies the table name for QuoteGorm
func (QuoteGorm) TableName() string {
	return "quotes"
}

// QuoteRequest is the create/update payload for quotes. The reference number
// and FX rate snapshot are computed server-side and never accepted from the
// client.
type QuoteRequest struct {
	Date            time.Time  `json:"date" binding:"required" example:"2024-03-15T00:00:00Z"`
	Currency        string     `json:"currency" binding:"required,len=3" example:"USD"`
	Value           float64    `json:"value" binding:"required,gt=0" example:"125000.50"`
	Outcome         string     `json:"outcome,omitempty" binding:"omitempty,oneof=WON LOST PENDING" example:"PENDING"`
	DeliveryDate    *time.Time `json:"delivery_date,omitempty" example:"2024-06-01T00:00:00Z"`
	Notes           *string    `json:"notes,omitempty" example:"Revised per client request"`
	Files           []string   `json:"files,omitempty"`
	AuthorID        uint       `json:"author_id" binding:"required" example:"1"`
	SupplierID      *uint      `json:"supplier_id,omitempty" example:"2"`
	ClientID        *uint      `json:"client_id,omitempty" example:"3"`
	ProjectID       *uint      `json:"project_id,omitempty" example:"1"`
	ContactPersonID *uint      `json:"contact_person_id,omitempty" example:"4"`
	SalesPersonID   *uint      `json:"sales_person_id,omitempty" example:"5"`
}

// QuoteListResponse is the paginated list payload for quotes
type QuoteListResponse struct {
	Data       []QuoteGorm `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// QuoteMetadata feeds the dashboard summary tiles
type QuoteMetadata struct {
	TotalQuotes int64            `json:"total_quotes" example:"120"`
	ByOutcome   map[string]int64 `json:"by_outcome"`
	TotalValue  float64          `json:"total_value" example:"1250000.75"`
}
