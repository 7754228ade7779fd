package stats

import (
	"fmt"
	"time"

	"comlab_tool/models"
)

const topSize = 5

// Record is the projection of a request row that aggregation needs.
type Record struct {
	Name   string
	Room   string
	Status models.Status
	At     time.Time
}

type ReportStats struct {
	Total         int     `json:"totalReports"`
	Pending       int     `json:"pendingReports"`
	Processing    int     `json:"processingReports"`
	MostReported  []Entry `json:"mostReported"`
	LeastReported []Entry `json:"leastReported"`
	Placeholder   bool    `json:"placeholder,omitempty"`
}

type BorrowStats struct {
	Total         int     `json:"totalBorrows"`
	Pending       int     `json:"pendingBorrows"`
	Approved      int     `json:"approvedBorrows"`
	Returned      int     `json:"returnedBorrows"`
	MostBorrowed  []Entry `json:"mostBorrowed"`
	LeastBorrowed []Entry `json:"leastBorrowed"`
	Placeholder   bool    `json:"placeholder,omitempty"`
}

type RoomStats struct {
	TotalRooms        int     `json:"totalRooms"`
	MostReportedRooms []Entry `json:"mostReportedRooms"`
	Placeholder       bool    `json:"placeholder,omitempty"`
}

type PCStats struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	InRepair  int `json:"inRepair"`
}

type Monthly struct {
	ReportsByMonth map[string]int `json:"reportsByMonth"`
	BorrowsByMonth map[string]int `json:"borrowsByMonth"`
}

// Dashboard is everything the statistics page renders.
type Dashboard struct {
	Reports ReportStats `json:"reportStats"`
	Borrows BorrowStats `json:"borrowStats"`
	Rooms   RoomStats   `json:"roomStats"`
	PCs     PCStats     `json:"pcRepairStats"`
	Overall Monthly     `json:"overallStats"`
	Range   Range       `json:"range"`
}

func names(recs []Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Name
	}
	return out
}

func Reports(recs []Record) ReportStats {
	ranked := Rank(names(recs))
	if len(ranked) == 0 {
		total := sumCounts(placeholderReported)
		return ReportStats{
			Total:         total,
			Pending:       roundShare(total, 0.3),
			Processing:    roundShare(total, 0.2),
			MostReported:  TopN(placeholderReported, topSize),
			LeastReported: BottomN(placeholderReported, topSize),
			Placeholder:   true,
		}
	}
	s := ReportStats{
		Total:         len(recs),
		MostReported:  TopN(ranked, topSize),
		LeastReported: BottomN(ranked, topSize),
	}
	for _, r := range recs {
		switch r.Status {
		case models.StatusPending:
			s.Pending++
		case models.StatusProcessing:
			s.Processing++
		}
	}
	return s
}

func Borrows(recs []Record) BorrowStats {
	ranked := Rank(names(recs))
	if len(ranked) == 0 {
		total := sumCounts(placeholderBorrowed)
		return BorrowStats{
			Total:         total,
			Pending:       roundShare(total, 0.3),
			Approved:      roundShare(total, 0.5),
			Returned:      roundShare(total, 0.2),
			MostBorrowed:  TopN(placeholderBorrowed, topSize),
			LeastBorrowed: BottomN(placeholderBorrowed, topSize),
			Placeholder:   true,
		}
	}
	s := BorrowStats{
		Total:         len(recs),
		MostBorrowed:  TopN(ranked, topSize),
		LeastBorrowed: BottomN(ranked, topSize),
	}
	for _, r := range recs {
		switch r.Status {
		case models.StatusPending, "":
			s.Pending++
		case models.StatusApproved:
			s.Approved++
		case models.StatusReturned:
			s.Returned++
		}
	}
	return s
}

// Rooms ranks rooms by report count. Reports without a room are not counted.
func Rooms(totalRooms int, reports []Record) RoomStats {
	var rooms []string
	for _, r := range reports {
		if r.Room != "" {
			rooms = append(rooms, r.Room)
		}
	}
	ranked := Rank(rooms)
	if len(ranked) == 0 {
		return RoomStats{TotalRooms: totalRooms, MostReportedRooms: TopN(placeholderRooms, topSize), Placeholder: true}
	}
	return RoomStats{TotalRooms: totalRooms, MostReportedRooms: TopN(ranked, topSize)}
}

func PCs(total, available int) PCStats {
	inRepair := total - available
	if inRepair < 0 {
		inRepair = 0
	}
	return PCStats{Total: total, Available: available, InRepair: inRepair}
}

// MonthKey formats t as M/YYYY.
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%d/%d", int(t.Month()), t.Year())
}

func ByMonth(recs []Record, loc *time.Location) map[string]int {
	out := make(map[string]int)
	for _, r := range recs {
		if r.At.IsZero() {
			continue
		}
		at := r.At
		if loc != nil {
			at = at.In(loc)
		}
		out[MonthKey(at)]++
	}
	return out
}
