package db

import (
	"context"
	"time"

	"comlab_tool/models"
	"comlab_tool/stats"
)

type statRow struct {
	Equipment string
	Room      string
	Status    models.Status
	CreatedAt time.Time
}

func (r *Repo) statRows(ctx context.Context, model any, withRoom bool, rg stats.Range) ([]stats.Record, error) {
	cols := "equipment, status, created_at"
	if withRoom {
		cols = "equipment, room, status, created_at"
	}
	q := r.DB.WithContext(ctx).Model(model).Select(cols)
	if !rg.From.IsZero() {
		q = q.Where("created_at >= ?", rg.From)
	}
	if !rg.To.IsZero() {
		q = q.Where("created_at <= ?", rg.To)
	}
	var rows []statRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]stats.Record, len(rows))
	for i, row := range rows {
		out[i] = stats.Record{Name: row.Equipment, Room: row.Room, Status: row.Status, At: row.CreatedAt}
	}
	return out, nil
}

func (r *Repo) ReportRecords(ctx context.Context, rg stats.Range) ([]stats.Record, error) {
	return r.statRows(ctx, &models.ReportRequest{}, true, rg)
}

func (r *Repo) BorrowRecords(ctx context.Context, rg stats.Range) ([]stats.Record, error) {
	return r.statRows(ctx, &models.BorrowRequest{}, false, rg)
}

func (r *Repo) CountRooms(ctx context.Context) (int, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Room{}).Count(&n).Error
	return int(n), err
}

func (r *Repo) CountPCs(ctx context.Context) (total, available int, err error) {
	var row struct {
		Total     int
		Available int
	}
	err = r.DB.WithContext(ctx).Model(&models.PC{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS available", models.PCAvailable).
		Scan(&row).Error
	return row.Total, row.Available, err
}

var _ stats.Source = (*Repo)(nil)
