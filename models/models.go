package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/lib/pq"
)

// StringList stores a list of opaque storage keys as a JSON text column so
// the same model works on postgres and on the sqlite test databases.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *StringList) Scan(value interface{}) error {
	if value == nil {
		*s = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("unsupported type for StringList")
	}
}

type User struct {
	ID        int       `gorm:"primaryKey;column:id" json:"id" example:"1"`
	Email     string    `gorm:"column:email;not null;uniqueIndex" json:"email" example:"user@example.com"`
	Password  string    `gorm:"column:password;not null" json:"-"`
	FirstName string    `gorm:"column:first_name" json:"first_name" example:"John"`
	LastName  string    `gorm:"column:last_name" json:"last_name" example:"Doe"`
	IsAdmin   bool      `gorm:"column:is_admin" json:"is_admin" example:"false"`
	Suspended bool      `gorm:"column:suspended" json:"suspended" example:"false"`
	FCMToken  string    `gorm:"column:fcm_token" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

type Session struct {
	UserID                int       `gorm:"column:user_id;not null" json:"user_id"`
	SessionID             string    `gorm:"primaryKey;column:session_id" json:"session_id"`
	HostName              string    `gorm:"column:host_name" json:"host_name"`
	IPAddress             string    `gorm:"column:ip_address" json:"ip_address"`
	Timestamp             time.Time `gorm:"column:timestp" json:"timestp"`
	ExpiresAt             time.Time `gorm:"column:expires_at" json:"expires_at"`
	RefreshToken          string    `gorm:"column:refresh_token" json:"-"`
	RefreshTokenExpiresAt time.Time `gorm:"column:refresh_token_expires_at" json:"-"`
}

// TableName specifies the table name for Session
func (Session) TableName() string {
	return "session"
}

type ErrorResponse struct {
	Error   string `json:"error" example:"Something went wrong"`
	Details string `json:"details,omitempty" example:""`
}

type MessageResponse struct {
	Message string `json:"message" example:"Success"`
}

// FieldErrorResponse carries constraint/validation failures keyed by field,
// returned as data rather than thrown (clients render them inline).
type FieldErrorResponse struct {
	Errors map[string][]string `json:"errors"`
}

type Pagination struct {
	Page      int   `json:"page" example:"1"`
	PerPage   int   `json:"per_page" example:"40"`
	Total     int64 `json:"total" example:"120"`
	PageCount int   `json:"page_count" example:"3"`
}

// ValidateSessionResponse is the payload returned by /api/validate-session.
type ValidateSessionResponse struct {
	Valid     bool   `json:"valid" example:"true"`
	UserID    int    `json:"user_id" example:"1"`
	Email     string `json:"email" example:"user@example.com"`
	FirstName string `json:"first_name" example:"John"`
	LastName  string `json:"last_name" example:"Doe"`
	IsAdmin   bool   `json:"is_admin" example:"false"`
}
