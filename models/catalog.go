package models

import "time"

const CatalogTable = "lab_catalog_items"

type CatalogKind string

const (
	KindBorrow CatalogKind = "borrow"
	KindReport CatalogKind = "report"
)

func ParseCatalogKind(s string) (CatalogKind, bool) {
	switch CatalogKind(s) {
	case KindBorrow, KindReport:
		return CatalogKind(s), true
	}
	return "", false
}

// OthersItemName is always listed last in the report catalog.
const OthersItemName = "OTHERS"

type CatalogItem struct {
	ID        string      `gorm:"type:uuid;primaryKey" json:"id"`
	Kind      CatalogKind `gorm:"size:10;index;not null" json:"kind"`
	Name      string      `gorm:"size:200;not null" json:"name"`
	Quantity  int         `gorm:"not null;default:0" json:"quantity"` // borrow items only
	ImageURL  string      `gorm:"size:500" json:"image"`
	ThumbURL  string      `gorm:"size:500" json:"thumb,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`

	Available *int `gorm:"-" json:"available,omitempty"`
}

func (CatalogItem) TableName() string { return CatalogTable }
