package models

import (
	"time"

	"github.com/google/uuid"
)

// Import audit statuses
const (
	ImportStatusCompleted = "completed"
	ImportStatusFailed    = "failed"
)

// ImportAudit records one upload attempt against a province store: the
// file that was processed, the policy that ran, and the resulting
// counters. Written on success and on failure. Table: import_audits.
type ImportAudit struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_import_audits_uuid" json:"uuid"`

	Province   string `gorm:"size:32;not null;index:idx_import_audits_province" json:"province"`
	FileType   string `gorm:"size:32;not null" json:"file_type"`
	FileName   string `gorm:"size:255;not null" json:"file_name"`
	SheetIndex int    `gorm:"not null;default:1" json:"sheet_index"`

	Inserted int `gorm:"not null;default:0" json:"inserted"`
	Updated  int `gorm:"not null;default:0" json:"updated"`
	Skipped  int `gorm:"not null;default:0" json:"skipped"`

	Status string  `gorm:"size:16;not null" json:"status"`
	Error  *string `gorm:"size:1024" json:"error,omitempty"`

	CreatedAt time.Time `gorm:"index:idx_import_audits_created_at" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ImportAudit) TableName() string {
	return "import_audits"
}

// ImportAuditFilter represents filter criteria for import audit queries
type ImportAuditFilter struct {
	ID       *uint
	UUID     *uuid.UUID
	Province *string
	FileType *string
	Status   *string
}
