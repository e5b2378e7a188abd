package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records commits, case transitions and admin actions.
type AuditLog struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID    string         `gorm:"index:idx_audit_trace;size:36;not null" json:"trace_id"`
	AccountID  *int64         `gorm:"index:idx_audit_account" json:"account_id"`
	ActorName  string         `gorm:"size:64" json:"actor_name"`
	Action     string         `gorm:"size:64;not null" json:"action"`
	ArmoryID   *int64         `gorm:"index:idx_audit_armory" json:"armory_id"`
	CaseID     *int64         `json:"case_id"`
	Request    datatypes.JSON `json:"request"`
	Response   datatypes.JSON `json:"response"`
	Error      string         `gorm:"type:text" json:"error"`
	IP         string         `gorm:"size:45" json:"ip"`
	DurationMs int            `json:"duration_ms"`
	CreatedAt  time.Time      `gorm:"index:idx_audit_created;autoCreateTime:milli" json:"created_at"`
}
