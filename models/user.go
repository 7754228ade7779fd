package models

import (
	"strings"
	"time"
)

// DefaultPhotoURL is shown by the profile widget when the account has no picture.
const DefaultPhotoURL = "/static/icon/profile-icon.png"

// User is the identity record. The passkey user handle is the UUID bytes of ID.
type User struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Username    string `gorm:"uniqueIndex;size:255;not null" json:"username"` // email
	DisplayName string `gorm:"size:255;not null" json:"displayName"`
	FullName    string `gorm:"size:255" json:"fullName,omitempty"` // profile override
	PhotoURL    string `gorm:"size:500" json:"photoURL,omitempty"`
	IsAdmin     bool   `gorm:"not null;default:false" json:"isAdmin"`

	LastLoginAt *time.Time `gorm:"index" json:"lastLoginAt,omitempty"`
	LastSeenAt  *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`
	LoginCount  int64      `gorm:"not null;default:0" json:"loginCount"`
	LastLoginIP string     `gorm:"size:45" json:"-"`
	LastLoginUA string     `gorm:"size:255" json:"-"`

	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Credentials []Credential `json:"-"`
}

func (User) TableName() string { return "lab_users" }

// HasAdminClaim is true for flagged users and for any address listed in adminEmails.
func (u User) HasAdminClaim(adminEmails []string) bool {
	if u.IsAdmin {
		return true
	}
	email := strings.ToLower(u.Username)
	for _, a := range adminEmails {
		if email == a {
			return true
		}
	}
	return false
}

// Credential is one registered passkey. CredentialID, PublicKey and AAGUID are raw bytes (bytea).
type Credential struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          string    `gorm:"type:uuid;index" json:"userId"`
	CredentialID    []byte    `gorm:"uniqueIndex" json:"credentialId"`
	PublicKey       []byte    `json:"publicKey"`
	AttestationType string    `gorm:"size:64" json:"attestationType"`
	AAGUID          []byte    `json:"aaguid"`
	SignCount       uint32    `json:"signCount"`
	CloneWarning    bool      `json:"cloneWarning"`
	BackupEligible  bool      `json:"backupEligible"`
	BackupState     bool      `json:"backupState"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	LastUsedAt *time.Time `gorm:"index" json:"lastUsedAt,omitempty"`
}

func (Credential) TableName() string { return "lab_credentials" }
