package db

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"comlab_tool/models"
)

type RoomSummary struct {
	Room      string `json:"room" gorm:"column:room"`
	PCs       int    `json:"pcs" gorm:"column:pcs"`
	Available int    `json:"available" gorm:"column:available"`
}

func (r *Repo) ListRooms(ctx context.Context) ([]RoomSummary, error) {
	var out []RoomSummary
	err := r.DB.WithContext(ctx).
		Table("lab_rooms AS r").
		Select(`r.name AS room,
			COUNT(p.id) AS pcs,
			COALESCE(SUM(CASE WHEN p.status = ? THEN 1 ELSE 0 END), 0) AS available`, models.PCAvailable).
		Joins("LEFT JOIN lab_pcs AS p ON p.room = r.name").
		Group("r.name").
		Order("r.name ASC").
		Scan(&out).Error
	return out, err
}

func (r *Repo) RoomExists(ctx context.Context, room string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Room{}).Where("name = ?", room).Count(&n).Error
	return n > 0, err
}

func (r *Repo) ListPCs(ctx context.Context, room string) ([]models.PC, error) {
	var out []models.PC
	err := r.DB.WithContext(ctx).Where("room = ?", room).Order("number ASC").Find(&out).Error
	return out, err
}

func (r *Repo) GetPC(ctx context.Context, room string, number int) (*models.PC, error) {
	var pc models.PC
	if err := r.DB.WithContext(ctx).Where("room = ? AND number = ?", room, number).First(&pc).Error; err != nil {
		return nil, notFound(err)
	}
	return &pc, nil
}

// ListPCRecords returns the approved-report history of a PC, newest first.
func (r *Repo) ListPCRecords(ctx context.Context, room string, pc int) ([]models.PCRecord, error) {
	var out []models.PCRecord
	err := r.DB.WithContext(ctx).
		Where("room = ? AND pc = ?", room, pc).
		Order("approved_at DESC").
		Find(&out).Error
	return out, err
}

// AddRoom creates a room with PCs 1..pcCount, all available. Re-running it
// for an existing room adds any missing PCs.
func (r *Repo) AddRoom(ctx context.Context, room string, pcCount int) (created bool, err error) {
	room = strings.TrimSpace(room)
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Room
		err := tx.First(&existing, "name = ?", room).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&models.Room{Name: room}).Error; err != nil {
				return err
			}
			created = true
		case err != nil:
			return err
		}
		if pcCount <= 0 {
			return nil
		}
		pcs := make([]models.PC, 0, pcCount)
		for n := 1; n <= pcCount; n++ {
			pcs = append(pcs, models.PC{Room: room, Number: n, Status: models.PCAvailable})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&pcs).Error
	})
	return created, err
}
