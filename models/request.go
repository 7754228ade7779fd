package models

import "time"

const (
	BorrowTable = "lab_borrow_requests"
	ReportTable = "lab_report_requests"
)

// Topic names used by live subscriptions; they keep the collection names the dashboards know.
const (
	TopicBorrowList = "borrowList"
	TopicReportList = "reportList"
)

type BorrowRequest struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	CatalogItemID *string   `gorm:"type:uuid;index" json:"catalogItemId,omitempty"`
	Equipment     string    `gorm:"size:200;index;not null" json:"equipment"`
	BorrowDate    string    `gorm:"size:10;not null" json:"borrowDate"` // YYYY-MM-DD
	ReturnDate    string    `gorm:"size:10;not null" json:"returnDate"`
	Purpose       string    `gorm:"type:text;not null" json:"purpose"`
	Status        Status    `gorm:"size:20;index;not null;default:'Pending'" json:"statusReport"`
	Remarks       string    `gorm:"type:text" json:"remarks,omitempty"`
	RequesterID   string    `gorm:"type:uuid;index;not null" json:"userId"`
	RequesterName string    `gorm:"size:255;not null" json:"fullName"`
	ImageURL      string    `gorm:"size:500" json:"downloadURL,omitempty"`
	CreatedAt     time.Time `gorm:"index" json:"timestamp"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (BorrowRequest) TableName() string { return BorrowTable }

func (b BorrowRequest) RequestStatus() Status  { return b.Status }
func (b BorrowRequest) RequestDate() time.Time { return b.CreatedAt }

type ReportRequest struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	CatalogItemID *string   `gorm:"type:uuid;index" json:"catalogItemId,omitempty"`
	Equipment     string    `gorm:"size:200;index;not null" json:"equipment"`
	Issue         string    `gorm:"type:text;not null" json:"issue"`
	Room          string    `gorm:"size:20;index:idx_report_room_pc;not null" json:"room"`
	PC            int       `gorm:"index:idx_report_room_pc;not null" json:"pc"`
	Status        Status    `gorm:"size:20;index;not null;default:'Pending'" json:"statusReport"`
	Remarks       string    `gorm:"type:text" json:"remarks,omitempty"`
	ImageURL      string    `gorm:"size:500" json:"imageUrl,omitempty"`
	RequesterID   string    `gorm:"type:uuid;index;not null" json:"userId"`
	RequesterName string    `gorm:"size:255;not null" json:"fullName"`
	CreatedAt     time.Time `gorm:"index" json:"date"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (ReportRequest) TableName() string { return ReportTable }

func (r ReportRequest) RequestStatus() Status  { return r.Status }
func (r ReportRequest) RequestDate() time.Time { return r.CreatedAt }

func (b BorrowRequest) RequestOwner() string { return b.RequesterID }
func (r ReportRequest) RequestOwner() string { return r.RequesterID }
