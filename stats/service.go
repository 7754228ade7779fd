package stats

import (
	"context"
	"fmt"
	"time"
)

// Source is the read side the statistics need.
type Source interface {
	ReportRecords(ctx context.Context, r Range) ([]Record, error)
	BorrowRecords(ctx context.Context, r Range) ([]Record, error)
	CountRooms(ctx context.Context) (int, error)
	CountPCs(ctx context.Context) (total, available int, err error)
}

type Service struct {
	Src    Source
	Policy Policy
	Loc    *time.Location
}

func NewService(src Source) *Service {
	return &Service{Src: src, Policy: DefaultPolicy, Loc: time.UTC}
}

type pcCount struct{ total, available int }

// Dashboard reads everything with retries and aggregates it. The first read
// that exhausts its retries fails the whole call.
func (s *Service) Dashboard(ctx context.Context, r Range) (Dashboard, error) {
	reports, err := Retry(ctx, s.Policy, "reports", func(ctx context.Context) ([]Record, error) {
		return s.Src.ReportRecords(ctx, r)
	})
	if err != nil {
		return Dashboard{}, fmt.Errorf("load reports: %w", err)
	}
	borrows, err := Retry(ctx, s.Policy, "borrows", func(ctx context.Context) ([]Record, error) {
		return s.Src.BorrowRecords(ctx, r)
	})
	if err != nil {
		return Dashboard{}, fmt.Errorf("load borrows: %w", err)
	}
	rooms, err := Retry(ctx, s.Policy, "rooms", s.Src.CountRooms)
	if err != nil {
		return Dashboard{}, fmt.Errorf("count rooms: %w", err)
	}
	pcs, err := Retry(ctx, s.Policy, "pcs", func(ctx context.Context) (pcCount, error) {
		t, a, err := s.Src.CountPCs(ctx)
		return pcCount{t, a}, err
	})
	if err != nil {
		return Dashboard{}, fmt.Errorf("count pcs: %w", err)
	}

	return Dashboard{
		Reports: Reports(reports),
		Borrows: Borrows(borrows),
		Rooms:   Rooms(rooms, reports),
		PCs:     PCs(pcs.total, pcs.available),
		Overall: Monthly{
			ReportsByMonth: ByMonth(reports, s.Loc),
			BorrowsByMonth: ByMonth(borrows, s.Loc),
		},
		Range: r,
	}, nil
}
