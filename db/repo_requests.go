package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"comlab_tool/models"
	"comlab_tool/requests"
)

// RequestQuery narrows a request listing. Zero fields do not filter.
type RequestQuery struct {
	RequesterID string
	Status      models.Status
	From, To    time.Time
}

func (q RequestQuery) apply(tx *gorm.DB) *gorm.DB {
	if q.RequesterID != "" {
		tx = tx.Where("requester_id = ?", q.RequesterID)
	}
	if q.Status != "" && q.Status != models.StatusAll {
		tx = tx.Where("status = ?", q.Status)
	}
	if !q.From.IsZero() {
		tx = tx.Where("created_at >= ?", q.From)
	}
	if !q.To.IsZero() {
		tx = tx.Where("created_at <= ?", q.To)
	}
	return tx.Order("created_at DESC")
}

// Borrow requests

// CreateBorrow stores a new request. Status is always Pending on creation.
func (r *Repo) CreateBorrow(ctx context.Context, b *models.BorrowRequest) error {
	b.ID = uuid.NewString()
	b.Status = models.StatusPending
	return r.DB.WithContext(ctx).Create(b).Error
}

func (r *Repo) GetBorrow(ctx context.Context, id string) (*models.BorrowRequest, error) {
	var b models.BorrowRequest
	if err := r.DB.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *Repo) ListBorrows(ctx context.Context, q RequestQuery) ([]models.BorrowRequest, error) {
	var out []models.BorrowRequest
	err := q.apply(r.DB.WithContext(ctx).Model(&models.BorrowRequest{})).Find(&out).Error
	return out, err
}

// SetBorrowStatus applies an admin disposition to a borrow request.
func (r *Repo) SetBorrowStatus(ctx context.Context, id string, to models.Status, remarks string, actor Actor) (*models.BorrowRequest, error) {
	var b models.BorrowRequest
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&b, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		rm, err := requests.CheckTransition(models.KindBorrow, b.Status, to, remarks)
		if err != nil {
			return err
		}
		from := b.Status
		upd := map[string]any{"status": to, "updated_at": time.Now()}
		if rm != nil {
			upd["remarks"] = *rm
		}
		if err := tx.Model(&b).Updates(upd).Error; err != nil {
			return err
		}
		b.Status = to
		if rm != nil {
			b.Remarks = *rm
		}
		return logStatus(tx, models.KindBorrow, b.ID, from, to, rm, actor)
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Report requests

func (r *Repo) CreateReport(ctx context.Context, rep *models.ReportRequest) error {
	rep.ID = uuid.NewString()
	rep.Status = models.StatusPending
	return r.DB.WithContext(ctx).Create(rep).Error
}

func (r *Repo) GetReport(ctx context.Context, id string) (*models.ReportRequest, error) {
	var rep models.ReportRequest
	if err := r.DB.WithContext(ctx).First(&rep, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &rep, nil
}

func (r *Repo) ListReports(ctx context.Context, q RequestQuery) ([]models.ReportRequest, error) {
	var out []models.ReportRequest
	err := q.apply(r.DB.WithContext(ctx).Model(&models.ReportRequest{})).Find(&out).Error
	return out, err
}

// SetReportStatus applies an admin disposition to a report and keeps the
// PC's availability in step with it, all in one transaction.
func (r *Repo) SetReportStatus(ctx context.Context, id string, to models.Status, remarks string, actor Actor) (*models.ReportRequest, error) {
	if to == models.StatusApproved {
		return r.ApproveReport(ctx, id, actor)
	}
	var rep models.ReportRequest
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&rep, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		rm, err := requests.CheckTransition(models.KindReport, rep.Status, to, remarks)
		if err != nil {
			return err
		}
		from := rep.Status
		upd := map[string]any{"status": to, "updated_at": time.Now()}
		if rm != nil {
			upd["remarks"] = *rm
		}
		if err := tx.Model(&rep).Updates(upd).Error; err != nil {
			return err
		}
		rep.Status = to
		if rm != nil {
			rep.Remarks = *rm
		}
		switch to {
		case models.StatusProcessing:
			if err := upsertPC(tx, rep.Room, rep.PC, models.PCNotAvailable); err != nil {
				return err
			}
		case models.StatusRemoved:
			if err := recomputePC(tx, rep.Room, rep.PC); err != nil {
				return err
			}
		}
		return logStatus(tx, models.KindReport, rep.ID, from, to, rm, actor)
	})
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// ApproveReport approves a report, appends a PC record for its room and PC,
// and recomputes that PC's availability from every report filed against it.
func (r *Repo) ApproveReport(ctx context.Context, id string, actor Actor) (*models.ReportRequest, error) {
	var rep models.ReportRequest
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&rep, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if _, err := requests.CheckTransition(models.KindReport, rep.Status, models.StatusApproved, ""); err != nil {
			return err
		}
		from := rep.Status
		now := time.Now()
		if err := tx.Model(&rep).Updates(map[string]any{"status": models.StatusApproved, "updated_at": now}).Error; err != nil {
			return err
		}
		rep.Status = models.StatusApproved
		rec := &models.PCRecord{
			Room:       rep.Room,
			PC:         rep.PC,
			ReportID:   rep.ID,
			Equipment:  rep.Equipment,
			Issue:      rep.Issue,
			ReportDate: rep.CreatedAt,
			Status:     models.StatusApproved,
			ApprovedAt: now,
		}
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		if err := recomputePC(tx, rep.Room, rep.PC); err != nil {
			return err
		}
		return logStatus(tx, models.KindReport, rep.ID, from, models.StatusApproved, nil, actor)
	})
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func recomputePC(tx *gorm.DB, room string, pc int) error {
	var statuses []models.Status
	if err := forUpdate(tx.Model(&models.ReportRequest{})).
		Where("room = ? AND pc = ?", room, pc).
		Pluck("status", &statuses).Error; err != nil {
		return err
	}
	return upsertPC(tx, room, pc, requests.PCAvailability(statuses))
}

func upsertPC(tx *gorm.DB, room string, number int, status string) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room"}, {Name: "number"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(&models.PC{Room: room, Number: number, Status: status}).Error
}
