package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit actions recorded by the service layer
const (
	AuditActionRegister           = "register"
	AuditActionLogin              = "login"
	AuditActionLogout             = "logout"
	AuditActionFailedLogin        = "failed_login"
	AuditActionAccountLocked      = "account_locked"
	AuditActionTokenRefresh       = "token_refresh"
	AuditActionTransactionCreate  = "transaction_create"
	AuditActionTransactionUpdate  = "transaction_update"
	AuditActionTransactionDelete  = "transaction_delete"
	AuditActionSampleDataGenerate = "sample_data_generate"
)

// JSONMap stores arbitrary metadata as a JSON text column
type JSONMap map[string]interface{}

func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return "{}", nil
	}
	data, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = JSONMap{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for JSONMap")
	}

	return json.Unmarshal(data, j)
}

type AuditLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action    string     `gorm:"type:varchar(100);not null;index" json:"action"`
	IPAddress string     `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent string     `gorm:"type:varchar(512)" json:"user_agent"`
	Metadata  JSONMap    `gorm:"type:text" json:"metadata"`
	CreatedAt time.Time  `gorm:"not null;index" json:"created_at"`
}

func (al *AuditLog) TableName() string {
	return "audit_logs"
}

func (al *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if al.ID == uuid.Nil {
		al.ID = uuid.New()
	}
	if al.CreatedAt.IsZero() {
		al.CreatedAt = time.Now()
	}
	return nil
}
