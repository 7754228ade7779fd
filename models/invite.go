package models

import "time"

// Invite gates passkey registration; the invited email becomes the username.
type Invite struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Email     string     `gorm:"index;size:255;not null" json:"email"`
	Token     string     `gorm:"uniqueIndex;size:64;not null" json:"-"`
	AsAdmin   bool       `gorm:"not null;default:false" json:"asAdmin"`
	ExpiresAt time.Time  `gorm:"index;not null" json:"expiresAt"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	CreatedBy string     `gorm:"size:255" json:"createdBy"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (Invite) TableName() string { return "lab_invites" }

func (i Invite) Usable(now time.Time) bool { return i.UsedAt == nil && now.Before(i.ExpiresAt) }
