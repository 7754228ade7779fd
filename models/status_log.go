package models

import "time"

// StatusLog is the audit trail of admin dispositions.
type StatusLog struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	Kind          CatalogKind `gorm:"size:10;index" json:"kind"`
	RequestID     string      `gorm:"type:uuid;index" json:"requestId"`
	From          Status      `gorm:"size:20" json:"from"`
	To            Status      `gorm:"size:20" json:"to"`
	Remarks       *string     `json:"remarks,omitempty"`
	ActorID       string      `gorm:"size:64" json:"actorId"`
	ActorUsername string      `gorm:"size:255" json:"actorUsername"`
	CreatedAt     time.Time   `json:"createdAt"`
}

func (StatusLog) TableName() string { return "lab_status_log" }
