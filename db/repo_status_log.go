package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"comlab_tool/models"
)

func logStatus(tx *gorm.DB, kind models.CatalogKind, requestID string, from, to models.Status, remarks *string, actor Actor) error {
	row := &models.StatusLog{
		Kind:          kind,
		RequestID:     requestID,
		From:          from,
		To:            to,
		Remarks:       remarks,
		ActorID:       actor.ID,
		ActorUsername: actor.Username,
	}
	if err := tx.Create(row).Error; err != nil {
		return fmt.Errorf("insert status log: %w", err)
	}
	return nil
}

// StatusHistory lists a request's transitions, oldest first.
func (r *Repo) StatusHistory(ctx context.Context, kind models.CatalogKind, requestID string) ([]models.StatusLog, error) {
	var out []models.StatusLog
	err := r.DB.WithContext(ctx).
		Where("kind = ? AND request_id = ?", kind, requestID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}
