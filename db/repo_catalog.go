package db

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"comlab_tool/models"
)

// ListCatalog returns the items of one kind. Borrow items carry Available,
// their quantity minus approved borrows that reference them. Report items sort
// by name with OTHERS last.
func (r *Repo) ListCatalog(ctx context.Context, kind models.CatalogKind) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	if err := r.DB.WithContext(ctx).Where("kind = ?", kind).Find(&items).Error; err != nil {
		return nil, err
	}
	if kind == models.KindBorrow && len(items) > 0 {
		out, err := r.outstandingBorrows(ctx)
		if err != nil {
			return nil, err
		}
		for i := range items {
			avail := items[i].Quantity - out[items[i].ID]
			if avail < 0 {
				avail = 0
			}
			items[i].Available = &avail
		}
	}
	SortCatalog(items)
	return items, nil
}

// SortCatalog orders items case-insensitively by name, OTHERS last.
func SortCatalog(items []models.CatalogItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Name, items[j].Name
		ao, bo := strings.EqualFold(a, models.OthersItemName), strings.EqualFold(b, models.OthersItemName)
		if ao != bo {
			return bo
		}
		return strings.ToLower(a) < strings.ToLower(b)
	})
}

func (r *Repo) outstandingBorrows(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		CatalogItemID string
		N             int
	}
	err := r.DB.WithContext(ctx).Model(&models.BorrowRequest{}).
		Select("catalog_item_id, COUNT(*) AS n").
		Where("status = ? AND catalog_item_id IS NOT NULL", models.StatusApproved).
		Group("catalog_item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.CatalogItemID] = row.N
	}
	return out, nil
}

// CatalogAvailable returns how many units of a borrow item are not out on an
// approved borrow.
func (r *Repo) CatalogAvailable(ctx context.Context, it *models.CatalogItem) (int, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.BorrowRequest{}).
		Where("catalog_item_id = ? AND status = ?", it.ID, models.StatusApproved).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return max(it.Quantity-int(n), 0), nil
}

func (r *Repo) GetCatalogItem(ctx context.Context, id string) (*models.CatalogItem, error) {
	var it models.CatalogItem
	if err := r.DB.WithContext(ctx).First(&it, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &it, nil
}

func (r *Repo) CreateCatalogItem(ctx context.Context, it *models.CatalogItem) error {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if it.Kind == models.KindReport {
		it.Quantity = 0
	}
	return r.DB.WithContext(ctx).Create(it).Error
}

// CatalogPatch holds an edit. Empty image fields keep the stored ones.
type CatalogPatch struct {
	Name     string
	Quantity int
	ImageURL string
	ThumbURL string
}

// UpdateCatalogItem applies an edit. Editing a borrow item closes its
// approved borrows as Returned; the ids of those borrows are returned.
func (r *Repo) UpdateCatalogItem(ctx context.Context, kind models.CatalogKind, id string, p CatalogPatch, actor Actor) (*models.CatalogItem, []string, error) {
	var (
		it       models.CatalogItem
		returned []string
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&it, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if it.Kind != kind {
			return ErrCatalogKind
		}
		upd := map[string]any{"name": strings.TrimSpace(p.Name), "updated_at": time.Now()}
		if kind == models.KindBorrow {
			upd["quantity"] = p.Quantity
		}
		if p.ImageURL != "" {
			upd["image_url"] = p.ImageURL
			upd["thumb_url"] = p.ThumbURL
		}
		if err := tx.Model(&it).Updates(upd).Error; err != nil {
			return err
		}
		if kind != models.KindBorrow {
			return nil
		}

		var open []models.BorrowRequest
		if err := forUpdate(tx).
			Where("catalog_item_id = ? AND status = ?", id, models.StatusApproved).
			Find(&open).Error; err != nil {
			return err
		}
		for _, b := range open {
			if err := tx.Model(&models.BorrowRequest{}).Where("id = ?", b.ID).
				Updates(map[string]any{"status": models.StatusReturned, "updated_at": time.Now()}).Error; err != nil {
				return err
			}
			if err := logStatus(tx, models.KindBorrow, b.ID, b.Status, models.StatusReturned, nil, actor); err != nil {
				return err
			}
			returned = append(returned, b.ID)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &it, returned, nil
}

// DeleteCatalogItem removes an item together with the requests that
// reference it. PCs that lose reports get their availability recomputed. The deleted item is returned so its image can be removed.
func (r *Repo) DeleteCatalogItem(ctx context.Context, kind models.CatalogKind, id string) (*models.CatalogItem, error) {
	var it models.CatalogItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&it, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if it.Kind != kind {
			return ErrCatalogKind
		}
		if kind == models.KindBorrow {
			if err := tx.Where("catalog_item_id = ?", id).Delete(&models.BorrowRequest{}).Error; err != nil {
				return err
			}
			return tx.Delete(&models.CatalogItem{}, "id = ?", id).Error
		}

		var pcs []struct {
			Room string `gorm:"column:room"`
			PC   int    `gorm:"column:pc"`
		}
		if err := tx.Model(&models.ReportRequest{}).
			Distinct("room", "pc").
			Where("catalog_item_id = ?", id).
			Scan(&pcs).Error; err != nil {
			return err
		}
		if err := tx.Where("catalog_item_id = ?", id).Delete(&models.ReportRequest{}).Error; err != nil {
			return err
		}
		for _, p := range pcs {
			if err := recomputePC(tx, p.Room, p.PC); err != nil {
				return err
			}
		}
		return tx.Delete(&models.CatalogItem{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &it, nil
}
