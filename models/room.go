package models

import "time"

const (
	PCAvailable    = "available"
	PCNotAvailable = "not available"
)

type Room struct {
	Name      string    `gorm:"size:20;primaryKey" json:"room"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Room) TableName() string { return "lab_rooms" }

// PC is the availability document of one machine in a lab room.
type PC struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Room      string    `gorm:"size:20;uniqueIndex:ux_pc_room_number;not null" json:"room"`
	Number    int       `gorm:"uniqueIndex:ux_pc_room_number;not null" json:"pc"`
	Status    string    `gorm:"size:20;not null;default:'available'" json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (PC) TableName() string { return "lab_pcs" }

// PCRecord is appended when a report against the PC gets approved.
type PCRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Room       string    `gorm:"size:20;index:idx_pc_record_room_pc;not null" json:"room"`
	PC         int       `gorm:"index:idx_pc_record_room_pc;not null" json:"pc"`
	ReportID   string    `gorm:"type:uuid;index" json:"reportId"`
	Equipment  string    `gorm:"size:200" json:"equipment"`
	Issue      string    `gorm:"type:text" json:"issue"`
	ReportDate time.Time `json:"reportDate"`
	Status     Status    `gorm:"size:20" json:"statusReport"`
	ApprovedAt time.Time `json:"approvedDate"`
}

func (PCRecord) TableName() string { return "lab_pc_records" }
