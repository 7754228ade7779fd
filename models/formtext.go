package models

import "time"

const (
	FormBorrow = "borrowForm"
	FormReport = "reportForm"
)

type FormText struct {
	Form       string    `gorm:"size:40;primaryKey" json:"form"`
	NoticeText string    `gorm:"type:text;not null" json:"noticeText"`
	TermsText  string    `gorm:"type:text;not null" json:"termsText"`
	UpdatedBy  string    `gorm:"size:255" json:"updatedBy,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (FormText) TableName() string { return "lab_form_texts" }

// DefaultFormText is served while an admin has not saved anything yet.
func DefaultFormText(form string) FormText {
	return FormText{
		Form:       form,
		NoticeText: "Please read the notice carefully before submitting a request.",
		TermsText:  "This item/equipment belongs to the college. Borrowers are responsible for its safe return in the same condition.",
	}
}
