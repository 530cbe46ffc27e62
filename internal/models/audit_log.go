package models

import "time"

// AuditLog is an append-only record of an administrative mutation.
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ActionType string    `gorm:"size:50;not null;index" json:"action_type"`
	EntityType string    `gorm:"size:50;not null;index" json:"entity_type"`
	EntityID   uint      `gorm:"index" json:"entity_id"`
	Details    string    `gorm:"type:text" json:"details"`
	IPAddress  string    `gorm:"size:64" json:"ip_address"`
	AuthMethod string    `gorm:"size:20" json:"auth_method,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
