package db

import (
	"context"

	"comlab_tool/live"
)

// BorrowFeed loads every borrow request for the live lists.
func (r *Repo) BorrowFeed(ctx context.Context) ([]live.Row, error) {
	rows, err := r.ListBorrows(ctx, RequestQuery{})
	if err != nil {
		return nil, err
	}
	out := make([]live.Row, len(rows))
	for i := range rows {
		out[i] = rows[i]
	}
	return out, nil
}

// ReportFeed loads every report for the live lists.
func (r *Repo) ReportFeed(ctx context.Context) ([]live.Row, error) {
	rows, err := r.ListReports(ctx, RequestQuery{})
	if err != nil {
		return nil, err
	}
	out := make([]live.Row, len(rows))
	for i := range rows {
		out[i] = rows[i]
	}
	return out, nil
}
