package db

import (
	"context"
	"strings"
	"time"

	"comlab_tool/models"
)

func (r *Repo) CreateInvite(ctx context.Context, email, token string, asAdmin bool, expiresAt time.Time, createdBy string) (*models.Invite, error) {
	inv := &models.Invite{
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Token:     token,
		AsAdmin:   asAdmin,
		ExpiresAt: expiresAt,
		CreatedBy: createdBy,
	}
	if err := r.DB.WithContext(ctx).Create(inv).Error; err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *Repo) GetInviteByToken(ctx context.Context, token string) (*models.Invite, error) {
	var inv models.Invite
	if err := r.DB.WithContext(ctx).Where("token = ?", token).First(&inv).Error; err != nil {
		return nil, notFound(err)
	}
	return &inv, nil
}

// MarkInviteUsed consumes an invite exactly once.
func (r *Repo) MarkInviteUsed(ctx context.Context, token string) error {
	now := time.Now()
	res := r.DB.WithContext(ctx).Model(&models.Invite{}).
		Where("token = ? AND used_at IS NULL", token).
		Update("used_at", &now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInviteUsed
	}
	return nil
}

// ListInvites returns the newest invites first. Pending limits the result to
// unused, unexpired ones.
func (r *Repo) ListInvites(ctx context.Context, pending bool) ([]models.Invite, error) {
	q := r.DB.WithContext(ctx).Order("created_at DESC")
	if pending {
		q = q.Where("used_at IS NULL AND expires_at > ?", time.Now())
	}
	var out []models.Invite
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) DeleteInvite(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Invite{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
