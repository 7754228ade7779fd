package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"comlab_tool/models"
	"comlab_tool/requests"
	"comlab_tool/stats"
)

var admin = Actor{ID: "admin-1", Username: "admin@school.edu"}

func newReport(t *testing.T, r *Repo, room string, pc int, equipment string) *models.ReportRequest {
	t.Helper()
	rep := &models.ReportRequest{
		Equipment:     equipment,
		Issue:         "does not turn on",
		Room:          room,
		PC:            pc,
		RequesterID:   uuid.NewString(),
		RequesterName: "Prof. Santos",
		Status:        models.StatusApproved, // ignored on create
	}
	if err := r.CreateReport(context.Background(), rep); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	return rep
}

func TestCreateRequestIsPending(t *testing.T) {
	r := NewRepo(NewTestDB(t))
	rep := newReport(t, r, "517", 4, "Mouse")
	got, err := r.GetReport(context.Background(), rep.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusPending {
		t.Fatalf("status = %q, want Pending", got.Status)
	}

	b := &models.BorrowRequest{Equipment: "Projector", BorrowDate: "2025-03-10", ReturnDate: "2025-03-11",
		Purpose: "class", RequesterID: uuid.NewString(), RequesterName: "x", Status: models.StatusReturned}
	if err := r.CreateBorrow(context.Background(), b); err != nil {
		t.Fatal(err)
	}
	if b.Status != models.StatusPending {
		t.Fatalf("borrow status = %q", b.Status)
	}
}

func TestApproveReportAvailability(t *testing.T) {
	ctx := context.Background()
	r := NewRepo(NewTestDB(t))

	only := newReport(t, r, "517", 1, "Keyboard")
	if _, err := r.ApproveReport(ctx, only.ID, admin); err != nil {
		t.Fatalf("approve: %v", err)
	}
	pc, err := r.GetPC(ctx, "517", 1)
	if err != nil {
		t.Fatal(err)
	}
	if pc.Status != models.PCAvailable {
		t.Fatalf("pc status = %q, want available", pc.Status)
	}
	recs, _ := r.ListPCRecords(ctx, "517", 1)
	if len(recs) != 1 || recs[0].ReportID != only.ID {
		t.Fatalf("records = %+v", recs)
	}

	a := newReport(t, r, "518", 2, "Monitor")
	newReport(t, r, "518", 2, "Mouse")
	if _, err := r.ApproveReport(ctx, a.ID, admin); err != nil {
		t.Fatalf("approve: %v", err)
	}
	pc, _ = r.GetPC(ctx, "518", 2)
	if pc.Status != models.PCNotAvailable {
		t.Fatalf("pc status = %q, want not available", pc.Status)
	}

	hist, _ := r.StatusHistory(ctx, models.KindReport, a.ID)
	if len(hist) != 1 || hist[0].From != models.StatusPending || hist[0].To != models.StatusApproved {
		t.Fatalf("history = %+v", hist)
	}
}

func TestProcessingMarksPCUnavailable(t *testing.T) {
	ctx := context.Background()
	r := NewRepo(NewTestDB(t))
	if _, err := r.AddRoom(ctx, "519", 3); err != nil {
		t.Fatal(err)
	}
	rep := newReport(t, r, "519", 3, "CPU")
	if _, err := r.SetReportStatus(ctx, rep.ID, models.StatusProcessing, "", admin); err != nil {
		t.Fatal(err)
	}
	pc, _ := r.GetPC(ctx, "519", 3)
	if pc.Status != models.PCNotAvailable {
		t.Fatalf("pc status = %q", pc.Status)
	}
}

func TestRemoveRequiresRemarks(t *testing.T) {
	ctx := context.Background()
	r := NewRepo(NewTestDB(t))
	rep := newReport(t, r, "520", 1, "Headset")

	if _, err := r.SetReportStatus(ctx, rep.ID, models.StatusRemoved, "  ", admin); !errors.Is(err, requests.ErrRemarksRequired) {
		t.Fatalf("err = %v, want ErrRemarksRequired", err)
	}
	got, _ := r.GetReport(ctx, rep.ID)
	if got.Status != models.StatusPending {
		t.Fatalf("status changed to %q", got.Status)
	}

	if _, err := r.SetReportStatus(ctx, rep.ID, models.StatusRemoved, "duplicate report", admin); err != nil {
		t.Fatal(err)
	}
	got, _ = r.GetReport(ctx, rep.ID)
	if got.Status != models.StatusRemoved || got.Remarks != "duplicate report" {
		t.Fatalf("report = %+v", got)
	}
}

func TestInvalidTransitionAndNotFound(t *testing.T) {
	ctx := context.Background()
	r := NewRepo(NewTestDB(t))
	rep := newReport(t, r, "521", 1, "Mouse")
	if _, err := r.SetReportStatus(ctx, rep.ID, models.StatusDeclined, "", admin); !errors.Is(err, requests.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
	if _, err := r.ApproveReport(ctx, uuid.NewString(), admin); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := r.SetBorrowStatus(ctx, uuid.NewString(), models.StatusApproved, "", admin); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCatalogAvailabilityEditAndDelete(t *testing.T) {
	ctx := context.Background()
	r := NewRepo(NewTestDB(t))

	proj := &models.CatalogItem{Kind: models.KindBorrow, Name: "Projector", Quantity: 3}
	if err := r.CreateCatalogItem(ctx, proj); err != nil {
		t.Fatal(err)
	}
	b := &models.BorrowRequest{CatalogItemID: &proj.ID, Equipment: "Projector", BorrowDate: "2025-03-10",
		ReturnDate: "2025-03-11", Purpose: "defense", RequesterID: uuid.NewString(), RequesterName: "x"}
	if err := r.CreateBorrow(ctx, b); err != nil {
		t.Fatal(err)
	}
	if _, err := r.SetBorrowStatus(ctx, b.ID, models.StatusApproved, "", admin); err != nil {
		t.Fatal(err)
	}

	items, err := r.ListCatalog(ctx, models.KindBorrow)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Available == nil || *items[0].Available != 2 {
		t.Fatalf("items = %+v", items)
	}

	_, returned, err := r.UpdateCatalogItem(ctx, models.KindBorrow, proj.ID, CatalogPatch{Name: "Projector", Quantity: 4}, admin)
	if err != nil {
		t.Fatal(err)
	}
	if len(returned) != 1 || returned[0] != b.ID {
		t.Fatalf("returned = %v", returned)
	}
	got, _ := r.GetBorrow(ctx, b.ID)
	if got.Status != models.StatusReturned {
		t.Fatalf("borrow status = %q", got.Status)
	}

	if _, err := r.DeleteCatalogItem(ctx, models.KindReport, proj.ID); !errors.Is(err, ErrCatalogKind) {
		t.Fatalf("err = %v, want ErrCatalogKind", err)
	}
	if _, err := r.DeleteCatalogItem(ctx, models.KindBorrow, proj.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := r.GetBorrow(ctx, b.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("borrow should be deleted with its item, err = %v", err)
	}
}

func TestCatalogAvailableCountsApproved(t *testing.T) {
	ctx := context.Background()
	r := NewRepo(NewTestDB(t))

	hdmi := &models.CatalogItem{Kind: models.KindBorrow, Name: "HDMI cable", Quantity: 1}
	if err := r.CreateCatalogItem(ctx, hdmi); err != nil {
		t.Fatal(err)
	}
	if n, err := r.CatalogAvailable(ctx, hdmi); err != nil || n != 1 {
		t.Fatalf("available = %d, %v", n, err)
	}
	b := &models.BorrowRequest{CatalogItemID: &hdmi.ID, Equipment: "HDMI cable", BorrowDate: "2025-03-10",
		ReturnDate: "2025-03-11", Purpose: "seminar", RequesterID: uuid.NewString(), RequesterName: "x"}
	if err := r.CreateBorrow(ctx, b); err != nil {
		t.Fatal(err)
	}
	if _, err := r.SetBorrowStatus(ctx, b.ID, models.StatusApproved, "", admin); err != nil {
		t.Fatal(err)
	}
	if n, err := r.CatalogAvailable(ctx, hdmi); err != nil || n != 0 {
		t.Fatalf("available after approval = %d, %v", n, err)
	}
}

func TestDeleteReportItemFreesPC(t *testing.T) {
	ctx := context.Background()
	r := NewRepo(NewTestDB(t))
	if _, err := r.AddRoom(ctx, "521", 2); err != nil {
		t.Fatal(err)
	}

	mouse := &models.CatalogItem{Kind: models.KindReport, Name: "Mouse"}
	if err := r.CreateCatalogItem(ctx, mouse); err != nil {
		t.Fatal(err)
	}
	rep := &models.ReportRequest{CatalogItemID: &mouse.ID, Equipment: "Mouse", Issue: "scroll wheel",
		Room: "521", PC: 2, RequesterID: uuid.NewString(), RequesterName: "x"}
	if err := r.CreateReport(ctx, rep); err != nil {
		t.Fatal(err)
	}
	if _, err := r.SetReportStatus(ctx, rep.ID, models.StatusProcessing, "", admin); err != nil {
		t.Fatal(err)
	}
	if pc, _ := r.GetPC(ctx, "521", 2); pc.Status != models.PCNotAvailable {
		t.Fatalf("pc status = %q before delete", pc.Status)
	}

	if _, err := r.DeleteCatalogItem(ctx, models.KindReport, mouse.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := r.GetReport(ctx, rep.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("report should be deleted with its item, err = %v", err)
	}
	if pc, _ := r.GetPC(ctx, "521", 2); pc.Status != models.PCAvailable {
		t.Fatalf("pc status = %q after delete", pc.Status)
	}
}

func TestReportCatalogOthersLast(t *testing.T) {
	ctx := context.Background()
	r := NewRepo(NewTestDB(t))
	for _, n := range []string{"OTHERS", "mouse", "Keyboard", "CPU"} {
		if err := r.CreateCatalogItem(ctx, &models.CatalogItem{Kind: models.KindReport, Name: n, Quantity: 9}); err != nil {
			t.Fatal(err)
		}
	}
	items, _ := r.ListCatalog(ctx, models.KindReport)
	var names []string
	for _, it := range items {
		names = append(names, it.Name)
		if it.Quantity != 0 {
			t.Errorf("report item %q kept quantity %d", it.Name, it.Quantity)
		}
	}
	want := []string{"CPU", "Keyboard", "mouse", "OTHERS"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("order = %v, want %v", names, want)
		}
	}
}

func TestFormTextDefaultsAndSave(t *testing.T) {
	ctx := context.Background()
	r := NewRepo(NewTestDB(t))
	ft, err := r.GetFormText(ctx, models.FormBorrow)
	if err != nil || ft.TermsText == "" {
		t.Fatalf("default = %+v, %v", ft, err)
	}
	if _, err := r.SaveFormText(ctx, models.FormText{Form: models.FormBorrow, NoticeText: "n1", TermsText: "t1"}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.SaveFormText(ctx, models.FormText{Form: models.FormBorrow, NoticeText: "n2", TermsText: "t2"}); err != nil {
		t.Fatal(err)
	}
	ft, _ = r.GetFormText(ctx, models.FormBorrow)
	if ft.NoticeText != "n2" || ft.TermsText != "t2" {
		t.Fatalf("saved = %+v", ft)
	}
}

func TestRoomsAndStatsSource(t *testing.T) {
	ctx := context.Background()
	r := NewRepo(NewTestDB(t))
	if created, err := r.AddRoom(ctx, "517", 2); err != nil || !created {
		t.Fatalf("AddRoom = %v, %v", created, err)
	}
	if created, err := r.AddRoom(ctx, "517", 3); err != nil || created {
		t.Fatalf("second AddRoom = %v, %v", created, err)
	}
	rooms, err := r.ListRooms(ctx)
	if err != nil || len(rooms) != 1 || rooms[0].PCs != 3 || rooms[0].Available != 3 {
		t.Fatalf("rooms = %+v, %v", rooms, err)
	}

	rep := newReport(t, r, "517", 1, "Mouse")
	if _, err := r.SetReportStatus(ctx, rep.ID, models.StatusProcessing, "", admin); err != nil {
		t.Fatal(err)
	}
	total, avail, err := r.CountPCs(ctx)
	if err != nil || total != 3 || avail != 2 {
		t.Fatalf("pcs = %d/%d, %v", total, avail, err)
	}

	svc := stats.NewService(r)
	d, err := svc.Dashboard(ctx, stats.Range{})
	if err != nil {
		t.Fatal(err)
	}
	if d.Reports.Total != 1 || d.Reports.Processing != 1 || d.Rooms.TotalRooms != 1 || !d.Borrows.Placeholder {
		t.Fatalf("dashboard = %+v", d)
	}
	future := stats.Range{From: time.Now().Add(48 * time.Hour)}
	recs, err := r.ReportRecords(ctx, future)
	if err != nil || len(recs) != 0 {
		t.Fatalf("future records = %v, %v", recs, err)
	}
}

func TestUsersAndInvites(t *testing.T) {
	ctx := context.Background()
	r := NewRepo(NewTestDB(t))

	u, err := r.FindOrCreateUser(ctx, "Prof@School.edu", uuid.NewString(), false)
	if err != nil {
		t.Fatal(err)
	}
	if u.Username != "prof@school.edu" || u.DisplayName != "prof" || u.IsAdmin {
		t.Fatalf("user = %+v", u)
	}
	again, err := r.FindOrCreateUser(ctx, "prof@school.edu", uuid.NewString(), true)
	if err != nil || again.ID != u.ID || !again.IsAdmin {
		t.Fatalf("again = %+v, %v", again, err)
	}
	if n, _ := r.CountAdmins(ctx); n != 1 {
		t.Fatalf("admins = %d", n)
	}
	if u, err = r.UpdateProfile(ctx, u.ID, "  Dr. Prof  "); err != nil || u.FullName != "Dr. Prof" {
		t.Fatalf("profile = %+v, %v", u, err)
	}

	if _, err := r.CreateInvite(ctx, "new@school.edu", "tok123", false, time.Now().Add(time.Hour), "admin"); err != nil {
		t.Fatal(err)
	}
	if err := r.MarkInviteUsed(ctx, "tok123"); err != nil {
		t.Fatal(err)
	}
	if err := r.MarkInviteUsed(ctx, "tok123"); !errors.Is(err, ErrInviteUsed) {
		t.Fatalf("err = %v, want ErrInviteUsed", err)
	}
	if pending, _ := r.ListInvites(ctx, true); len(pending) != 0 {
		t.Fatalf("pending = %v", pending)
	}

	if err := r.DeleteUserByID(ctx, u.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := r.FindUserByID(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
