package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
)

// WritePDF renders the dashboard as a printable A4 report.
func WritePDF(w io.Writer, d Dashboard, generated time.Time) error {
	return buildPDF(d, generated).Output(w)
}

func buildPDF(d Dashboard, generated time.Time) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Computer Lab Statistics", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Computer Lab Statistics")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, "Generated "+generated.Format("2006-01-02 15:04")+"  |  Range: "+rangeLabel(d.Range))
	pdf.Ln(10)

	section(pdf, "Summary")
	kv(pdf, "Total reports", d.Reports.Total)
	kv(pdf, "Pending reports", d.Reports.Pending)
	kv(pdf, "Processing reports", d.Reports.Processing)
	kv(pdf, "Total borrows", d.Borrows.Total)
	kv(pdf, "Pending borrows", d.Borrows.Pending)
	kv(pdf, "Approved borrows", d.Borrows.Approved)
	kv(pdf, "Returned borrows", d.Borrows.Returned)
	kv(pdf, "Rooms", d.Rooms.TotalRooms)
	kv(pdf, "PCs", d.PCs.Total)
	kv(pdf, "PCs available", d.PCs.Available)
	kv(pdf, "PCs in repair", d.PCs.InRepair)
	pdf.Ln(4)

	table(pdf, tr, "Most reported equipment", d.Reports.MostReported)
	table(pdf, tr, "Least reported equipment", d.Reports.LeastReported)
	table(pdf, tr, "Most borrowed equipment", d.Borrows.MostBorrowed)
	table(pdf, tr, "Least borrowed equipment", d.Borrows.LeastBorrowed)
	table(pdf, tr, "Rooms with most reports", d.Rooms.MostReportedRooms)

	section(pdf, "Requests by month")
	months(pdf, "Reports", d.Overall.ReportsByMonth)
	months(pdf, "Borrows", d.Overall.BorrowsByMonth)
	return pdf
}

func rangeLabel(r Range) string {
	if r.IsZero() {
		return "all time"
	}
	from, to := "start", "now"
	if !r.From.IsZero() {
		from = r.From.Format("2006-01-02")
	}
	if !r.To.IsZero() {
		to = r.To.Format("2006-01-02")
	}
	return from + " to " + to
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
}

func kv(pdf *gofpdf.Fpdf, k string, v int) {
	pdf.CellFormat(70, 6, k, "", 0, "L", false, 0, "")
	pdf.CellFormat(30, 6, fmt.Sprint(v), "", 1, "R", false, 0, "")
}

// table writes ranked entries; names pass through tr since the core fonts are cp1252.
func table(pdf *gofpdf.Fpdf, tr func(string) string, title string, rows []Entry) {
	section(pdf, title)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(90, 6, "Name", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 6, "Count", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 6, "Share", "1", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, e := range rows {
		pdf.CellFormat(90, 6, tr(e.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprint(e.Count), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d%%", e.Percentage), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}

func months(pdf *gofpdf.Fpdf, label string, m map[string]int) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return monthOrder(keys[i]) < monthOrder(keys[j]) })
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %d", k, m[k]))
	}
	if len(parts) == 0 {
		parts = append(parts, "no data")
	}
	pdf.MultiCell(0, 6, label+": "+strings.Join(parts, ", "), "", "L", false)
}

// monthOrder turns an M/YYYY key into a sortable YYYYMM number.
func monthOrder(key string) int {
	var m, y int
	if _, err := fmt.Sscanf(key, "%d/%d", &m, &y); err != nil {
		return 0
	}
	return y*100 + m
}
