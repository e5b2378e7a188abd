package model

import (
	"time"

	"gorm.io/datatypes"
)

// SeizureCase statuses.
const (
	CaseStatusOpen      = "open"
	CaseStatusProcessed = "processed"
	CaseStatusClosed    = "closed"
)

// SeizureCase records a customs/law-enforcement seizure. Committed inventory
// batches may reference the case the goods came from.
type SeizureCase struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	CaseNumber  string `gorm:"uniqueIndex;size:32;not null" json:"case_number"`
	Status      string `gorm:"size:16;default:open" json:"status"`
	OfficerID   int64  `gorm:"index;not null" json:"officer_id"`
	OfficerName string `gorm:"size:64" json:"officer_name"`
	Description string `gorm:"type:text" json:"description"`
	// Details holds the free-form seizure report (location, suspects,
	// attachments); the schema belongs to the reporting front end.
	Details   datatypes.JSON `json:"details"`
	SeizedAt  time.Time      `json:"seized_at"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}
