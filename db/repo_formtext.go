package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"comlab_tool/models"
)

// GetFormText returns the saved texts of a form, or the defaults.
func (r *Repo) GetFormText(ctx context.Context, form string) (models.FormText, error) {
	var ft models.FormText
	err := r.DB.WithContext(ctx).First(&ft, "form = ?", form).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultFormText(form), nil
	}
	return ft, err
}

func (r *Repo) SaveFormText(ctx context.Context, ft models.FormText) (models.FormText, error) {
	ft.UpdatedAt = time.Now()
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "form"}},
		DoUpdates: clause.AssignmentColumns([]string{"notice_text", "terms_text", "updated_by", "updated_at"}),
	}).Create(&ft).Error
	return ft, err
}
