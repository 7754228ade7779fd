package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"comlab_tool/app"
	"comlab_tool/config"
	"comlab_tool/db"
	"comlab_tool/models"
)

type harness struct {
	t        *testing.T
	a        *app.App
	adminTok string
	facTok   string
	faculty  *models.User
}

func testConfig(t *testing.T) config.Config {
	return config.Config{
		WebOrigin:     "http://lab.test",
		JWTSecret:     "test-secret",
		LiveTTL:       time.Minute,
		UploadDir:     t.TempDir(),
		PublicBaseURL: "http://api.test",
		SubmitRate:    100,
		SubmitBurst:   100,
		SMTP:          config.SMTPConfig{AppName: "ComLab"},
	}
}

func newHarness(t *testing.T, cfg config.Config) *harness {
	t.Helper()
	a := app.NewWithDeps(cfg, db.NewTestDB(t), nil, nil)
	RegisterRoutes(a.Router, a)

	ctx := context.Background()
	admin, err := a.Repo.FindOrCreateUser(ctx, "head@school.edu", uuid.NewString(), true)
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	fac, err := a.Repo.FindOrCreateUser(ctx, "maria.santos@school.edu", uuid.NewString(), false)
	if err != nil {
		t.Fatalf("create faculty: %v", err)
	}
	adminTok, _ := a.Tokens.Generate(admin.ID, admin.Username, admin.DisplayName, true)
	facTok, _ := a.Tokens.Generate(fac.ID, fac.Username, fac.DisplayName, false)
	return &harness{t: t, a: a, adminTok: adminTok, facTok: facTok, faculty: fac}
}

func (h *harness) do(method, path, token string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			h.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.a.Router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

type errorBody struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields"`
}

func day(offset int) string { return time.Now().AddDate(0, 0, offset).Format("2006-01-02") }

func TestUnauthenticatedAndForbidden(t *testing.T) {
	h := newHarness(t, testConfig(t))

	if w := h.do("GET", "/api/borrows", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: got %d", w.Code)
	}
	if w := h.do("GET", "/api/borrows", "garbage", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: got %d", w.Code)
	}
	if w := h.do("GET", "/api/admin/stats/export.pdf", h.facTok, nil); w.Code != http.StatusForbidden {
		t.Errorf("faculty on admin route: got %d", w.Code)
	}
	if w := h.do("GET", "/api/stats", h.facTok, nil); w.Code != http.StatusOK {
		t.Errorf("faculty on stats: got %d", w.Code)
	}
	if w := h.do("GET", "/healthz", "", nil); w.Code != http.StatusOK {
		t.Errorf("healthz: got %d", w.Code)
	}
}

func TestCreateBorrow(t *testing.T) {
	h := newHarness(t, testConfig(t))

	w := h.do("POST", "/api/borrows", h.facTok, map[string]any{
		"equipment":   "Projector",
		"borrowDate":  day(3),
		"returnDate":  day(1),
		"purpose":     "Thesis defense",
		"acceptTerms": true,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("borrow after return: got %d %s", w.Code, w.Body.String())
	}
	if e := decode[errorBody](t, w); len(e.Fields["dates"]) == 0 {
		t.Errorf("expected a dates error, got %+v", e.Fields)
	}

	w = h.do("POST", "/api/borrows", h.facTok, map[string]any{
		"equipment":  "Projector",
		"borrowDate": day(1),
		"returnDate": day(2),
		"purpose":    "Thesis defense",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing terms: got %d", w.Code)
	}
	if e := decode[errorBody](t, w); len(e.Fields["agreement"]) == 0 || len(e.Fields) != 1 {
		t.Errorf("expected only the agreement error, got %+v", e.Fields)
	}

	w = h.do("POST", "/api/borrows", h.facTok, map[string]any{"acceptTerms": false})
	e := decode[errorBody](t, w)
	for _, f := range []string{"dates", "purpose", "equipment", "agreement"} {
		if len(e.Fields[f]) == 0 {
			t.Errorf("empty form: missing %s error in %+v", f, e.Fields)
		}
	}

	rows, _ := h.a.Repo.ListBorrows(context.Background(), db.RequestQuery{})
	if len(rows) != 0 {
		t.Fatalf("rejected submissions stored %d rows", len(rows))
	}

	w = h.do("POST", "/api/borrows", h.facTok, map[string]any{
		"equipment":   "Projector",
		"borrowDate":  day(0),
		"returnDate":  day(2),
		"purpose":     "Thesis defense",
		"acceptTerms": true,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("valid borrow: got %d %s", w.Code, w.Body.String())
	}
	b := decode[models.BorrowRequest](t, w)
	if b.Status != models.StatusPending {
		t.Errorf("status = %q, want Pending", b.Status)
	}
	if b.RequesterName != "maria.santos" {
		t.Errorf("requester name = %q", b.RequesterName)
	}

	list := decode[struct {
		Items  []models.BorrowRequest `json:"items"`
		Counts map[string]int         `json:"counts"`
	}](t, h.do("GET", "/api/borrows?status=Pending", h.facTok, nil))
	if len(list.Items) != 1 || list.Counts["Pending"] != 1 {
		t.Errorf("own list = %+v", list)
	}
}

func TestSubmitThrottle(t *testing.T) {
	cfg := testConfig(t)
	cfg.SubmitRate, cfg.SubmitBurst = 0.001, 1
	h := newHarness(t, cfg)

	body := map[string]any{"equipment": "Mouse", "room": "517", "pc": 2, "issue": "broken", "acceptTerms": true}
	if w := h.do("POST", "/api/reports", h.facTok, body); w.Code != http.StatusCreated {
		t.Fatalf("first submit: got %d %s", w.Code, w.Body.String())
	}
	if w := h.do("POST", "/api/reports", h.facTok, body); w.Code != http.StatusTooManyRequests {
		t.Fatalf("second submit: got %d", w.Code)
	}
}

func pcStatus(t *testing.T, h *harness, room string, pc int) string {
	t.Helper()
	got := decode[struct {
		PCs []models.PC `json:"pcs"`
	}](t, h.do("GET", "/api/rooms/"+room+"/pcs", h.facTok, nil))
	for _, p := range got.PCs {
		if p.Number == pc {
			return p.Status
		}
	}
	t.Fatalf("pc %d missing in room %s", pc, room)
	return ""
}

func TestReportStatusFlow(t *testing.T) {
	h := newHarness(t, testConfig(t))
	if w := h.do("POST", "/api/admin/rooms", h.adminTok, map[string]any{"room": "517", "pcCount": 5}); w.Code != http.StatusCreated {
		t.Fatalf("add room: got %d %s", w.Code, w.Body.String())
	}

	submit := func(issue string) models.ReportRequest {
		w := h.do("POST", "/api/reports", h.facTok, map[string]any{
			"equipment": "Keyboard", "room": "517", "pc": 3, "issue": issue, "acceptTerms": true,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("submit report: got %d %s", w.Code, w.Body.String())
		}
		return decode[models.ReportRequest](t, w)
	}
	first, second := submit("sticky keys"), submit("missing key")

	w := h.do("PATCH", "/api/admin/reports/"+first.ID+"/status", h.adminTok, map[string]any{"status": "approve"})
	if w.Code != http.StatusOK {
		t.Fatalf("approve: got %d %s", w.Code, w.Body.String())
	}
	if got := pcStatus(t, h, "517", 3); got != models.PCNotAvailable {
		t.Errorf("with an open sibling pc is %q", got)
	}

	w = h.do("PATCH", "/api/admin/reports/"+second.ID+"/status", h.adminTok, map[string]any{"status": "Removed", "remarks": "  "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("remove without remarks: got %d", w.Code)
	}
	w = h.do("PATCH", "/api/admin/reports/"+second.ID+"/status", h.adminTok, map[string]any{"status": "Removed", "remarks": "duplicate"})
	if w.Code != http.StatusOK {
		t.Fatalf("remove: got %d %s", w.Code, w.Body.String())
	}
	if rep := decode[models.ReportRequest](t, w); rep.Remarks != "duplicate" {
		t.Errorf("remarks = %q", rep.Remarks)
	}
	if got := pcStatus(t, h, "517", 3); got != models.PCAvailable {
		t.Errorf("after resolving every report pc is %q", got)
	}

	if w := h.do("PATCH", "/api/admin/reports/"+first.ID+"/status", h.adminTok, map[string]any{"status": "Processing"}); w.Code != http.StatusConflict {
		t.Errorf("approved -> processing: got %d", w.Code)
	}
	if w := h.do("PATCH", "/api/admin/reports/"+uuid.NewString()+"/status", h.adminTok, map[string]any{"status": "Approved"}); w.Code != http.StatusNotFound {
		t.Errorf("unknown report: got %d", w.Code)
	}
	if w := h.do("PATCH", "/api/admin/reports/"+first.ID+"/status", h.adminTok, map[string]any{"status": "lost"}); w.Code != http.StatusBadRequest {
		t.Errorf("unknown status: got %d", w.Code)
	}

	recs := decode[struct {
		Records []models.PCRecord `json:"records"`
	}](t, h.do("GET", "/api/rooms/517/pcs/3/records", h.facTok, nil))
	if len(recs.Records) != 1 || recs.Records[0].ReportID != first.ID {
		t.Errorf("pc records = %+v", recs.Records)
	}

	hist := decode[struct {
		History []models.StatusLog `json:"history"`
	}](t, h.do("GET", "/api/admin/reports/"+second.ID+"/history", h.adminTok, nil))
	if len(hist.History) != 1 || hist.History[0].To != models.StatusRemoved {
		t.Errorf("history = %+v", hist.History)
	}
}

func TestFacultyCannotReadOthersRequests(t *testing.T) {
	h := newHarness(t, testConfig(t))
	w := h.do("POST", "/api/reports", h.adminTok, map[string]any{
		"equipment": "Monitor", "room": "518", "pc": 1, "issue": "flicker", "acceptTerms": true,
	})
	rep := decode[models.ReportRequest](t, w)

	if w := h.do("GET", "/api/reports/"+rep.ID, h.facTok, nil); w.Code != http.StatusNotFound {
		t.Errorf("faculty reading another's report: got %d", w.Code)
	}
	if w := h.do("GET", "/api/reports/"+rep.ID, h.adminTok, nil); w.Code != http.StatusOK {
		t.Errorf("owner reading report: got %d", w.Code)
	}
	all := decode[struct {
		Items []models.ReportRequest `json:"items"`
	}](t, h.do("GET", "/api/admin/reports", h.adminTok, nil))
	if len(all.Items) != 1 {
		t.Errorf("admin list = %d items", len(all.Items))
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		img.Set(x, 10, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func (h *harness) multipart(method, path, token string, fields map[string]string, file []byte) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if file != nil {
		fw, err := mw.CreateFormFile("image", "projector photo.png")
		if err != nil {
			h.t.Fatal(err)
		}
		fw.Write(file)
	}
	mw.Close()
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.a.Router.ServeHTTP(w, req)
	return w
}

func TestCatalogLifecycle(t *testing.T) {
	h := newHarness(t, testConfig(t))

	w := h.multipart("POST", "/api/admin/catalog/borrow", h.adminTok, map[string]string{"name": "Projector", "quantity": "2"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("create without image: got %d", w.Code)
	}
	w = h.multipart("POST", "/api/admin/catalog/borrow", h.adminTok, map[string]string{"name": "Projector", "quantity": "2"}, []byte("not an image"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("create with text file: got %d", w.Code)
	}
	w = h.multipart("POST", "/api/admin/catalog/borrow", h.adminTok, map[string]string{"name": "Projector", "quantity": "2"}, pngBytes(t))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: got %d %s", w.Code, w.Body.String())
	}
	item := decode[models.CatalogItem](t, w)
	if !strings.HasPrefix(item.ImageURL, "http://api.test/uploads/catalog/borrow/") {
		t.Errorf("image url = %q", item.ImageURL)
	}

	w = h.do("POST", "/api/borrows", h.facTok, map[string]any{
		"catalogItemId": item.ID,
		"borrowDate":    day(1),
		"returnDate":    day(2),
		"purpose":       "Seminar",
		"acceptTerms":   true,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("borrow catalog item: got %d %s", w.Code, w.Body.String())
	}
	b := decode[models.BorrowRequest](t, w)
	if b.Equipment != "Projector" || b.ImageURL != item.ImageURL {
		t.Errorf("borrow did not copy catalog data: %+v", b)
	}
	if w := h.do("PATCH", "/api/admin/borrows/"+b.ID+"/status", h.adminTok, map[string]any{"status": "Approved"}); w.Code != http.StatusOK {
		t.Fatalf("approve borrow: got %d", w.Code)
	}

	list := decode[struct {
		Items []models.CatalogItem `json:"items"`
	}](t, h.do("GET", "/api/catalog/borrow", h.facTok, nil))
	if len(list.Items) != 1 || list.Items[0].Available == nil || *list.Items[0].Available != 1 {
		t.Fatalf("catalog list = %+v", list.Items)
	}

	w = h.multipart("PUT", "/api/admin/catalog/borrow/"+item.ID, h.adminTok, map[string]string{"name": "Projector (Epson)", "quantity": "3"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("update: got %d %s", w.Code, w.Body.String())
	}
	upd := decode[struct {
		Item     models.CatalogItem `json:"item"`
		Returned []string           `json:"returned"`
	}](t, w)
	if upd.Item.ImageURL != item.ImageURL || len(upd.Returned) != 1 {
		t.Errorf("update = %+v", upd)
	}

	if w := h.do("DELETE", "/api/admin/catalog/report/"+item.ID, h.adminTok, nil); w.Code != http.StatusBadRequest {
		t.Errorf("delete with wrong kind: got %d", w.Code)
	}
	if w := h.do("DELETE", "/api/admin/catalog/borrow/"+item.ID, h.adminTok, nil); w.Code != http.StatusOK {
		t.Fatalf("delete: got %d", w.Code)
	}
	if _, err := h.a.Repo.GetBorrow(context.Background(), b.ID); err == nil {
		t.Error("borrow referencing the deleted item survived")
	}
}

func TestBorrowOutOfStock(t *testing.T) {
	h := newHarness(t, testConfig(t))
	ctx := context.Background()

	empty := &models.CatalogItem{Kind: models.KindBorrow, Name: "Laser pointer", Quantity: 0}
	if err := h.a.Repo.CreateCatalogItem(ctx, empty); err != nil {
		t.Fatal(err)
	}
	borrow := func(id string) *httptest.ResponseRecorder {
		return h.do("POST", "/api/borrows", h.facTok, map[string]any{
			"catalogItemId": id,
			"borrowDate":    day(1),
			"returnDate":    day(2),
			"purpose":       "Seminar",
			"acceptTerms":   true,
		})
	}
	w := borrow(empty.ID)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("borrow with no units: got %d %s", w.Code, w.Body.String())
	}
	if e := decode[errorBody](t, w); len(e.Fields["equipment"]) == 0 {
		t.Errorf("expected an equipment error, got %+v", e.Fields)
	}

	one := &models.CatalogItem{Kind: models.KindBorrow, Name: "Speaker", Quantity: 1}
	if err := h.a.Repo.CreateCatalogItem(ctx, one); err != nil {
		t.Fatal(err)
	}
	w = borrow(one.ID)
	if w.Code != http.StatusCreated {
		t.Fatalf("borrow last unit: got %d %s", w.Code, w.Body.String())
	}
	b := decode[models.BorrowRequest](t, w)
	if w := h.do("PATCH", "/api/admin/borrows/"+b.ID+"/status", h.adminTok, map[string]any{"status": "Approved"}); w.Code != http.StatusOK {
		t.Fatalf("approve: got %d", w.Code)
	}
	if w := borrow(one.ID); w.Code != http.StatusBadRequest {
		t.Errorf("borrow after last unit is out: got %d", w.Code)
	}
}

func TestReportFromCatalogItem(t *testing.T) {
	h := newHarness(t, testConfig(t))

	monitor := &models.CatalogItem{Kind: models.KindReport, Name: "Monitor"}
	if err := h.a.Repo.CreateCatalogItem(context.Background(), monitor); err != nil {
		t.Fatal(err)
	}
	w := h.do("POST", "/api/reports", h.facTok, map[string]any{
		"catalogItemId": monitor.ID, "room": "518", "pc": 4, "issue": "flickers", "acceptTerms": true,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("report by catalog id: got %d %s", w.Code, w.Body.String())
	}
	if rep := decode[models.ReportRequest](t, w); rep.Equipment != "Monitor" || rep.CatalogItemID == nil {
		t.Errorf("report = %+v", rep)
	}
}

func TestFormTexts(t *testing.T) {
	h := newHarness(t, testConfig(t))

	ft := decode[models.FormText](t, h.do("GET", "/api/forms/borrowForm", h.facTok, nil))
	if ft.TermsText == "" {
		t.Error("default terms text is empty")
	}
	if w := h.do("PUT", "/api/admin/forms/borrowForm", h.adminTok, map[string]string{"noticeText": "x", "termsText": " "}); w.Code != http.StatusBadRequest {
		t.Errorf("empty terms: got %d", w.Code)
	}
	if w := h.do("PUT", "/api/admin/forms/borrowForm", h.adminTok, map[string]string{"noticeText": "Read me", "termsText": "Be careful"}); w.Code != http.StatusOK {
		t.Fatalf("save: got %d", w.Code)
	}
	ft = decode[models.FormText](t, h.do("GET", "/api/forms/borrowForm", h.facTok, nil))
	if ft.NoticeText != "Read me" || ft.TermsText != "Be careful" {
		t.Errorf("saved texts = %+v", ft)
	}
	if w := h.do("GET", "/api/forms/otherForm", h.facTok, nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown form: got %d", w.Code)
	}
}

func TestProfile(t *testing.T) {
	h := newHarness(t, testConfig(t))

	me := decode[map[string]any](t, h.do("GET", "/api/me", h.facTok, nil))
	if me["displayName"] != "maria.santos" || me["landing"] != "faculty" || me["photoURL"] != models.DefaultPhotoURL {
		t.Errorf("me = %+v", me)
	}
	if w := h.do("PUT", "/api/me/profile", h.facTok, map[string]string{"fullName": "Dr. Maria Santos"}); w.Code != http.StatusOK {
		t.Fatalf("update profile: got %d", w.Code)
	}
	me = decode[map[string]any](t, h.do("GET", "/api/me", h.facTok, nil))
	if me["displayName"] != "Dr. Maria Santos" {
		t.Errorf("display name = %v", me["displayName"])
	}
	admin := decode[map[string]any](t, h.do("GET", "/api/me", h.adminTok, nil))
	if admin["landing"] != "admin" {
		t.Errorf("admin landing = %v", admin["landing"])
	}
}

func TestStatsAndExport(t *testing.T) {
	h := newHarness(t, testConfig(t))
	h.do("POST", "/api/reports", h.facTok, map[string]any{
		"equipment": "Mouse", "room": "519", "pc": 7, "issue": "double click", "acceptTerms": true,
	})

	w := h.do("GET", "/api/stats", h.facTok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats: got %d %s", w.Code, w.Body.String())
	}
	d := decode[struct {
		ReportStats struct {
			TotalReports int `json:"totalReports"`
		} `json:"reportStats"`
	}](t, w)
	if d.ReportStats.TotalReports != 1 {
		t.Errorf("total reports = %d", d.ReportStats.TotalReports)
	}

	if w := h.do("GET", "/api/stats?from=2025-02-10&to=2025-01-01", h.facTok, nil); w.Code != http.StatusBadRequest {
		t.Errorf("inverted range: got %d", w.Code)
	}

	w = h.do("GET", "/api/admin/stats/export.pdf", h.adminTok, nil)
	if w.Code != http.StatusOK || !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Errorf("export: got %d, prefix %q", w.Code, w.Body.Bytes()[:min(4, w.Body.Len())])
	}
	if w := h.do("GET", "/api/stats/range", h.facTok, nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("range without redis: got %d", w.Code)
	}
}

func TestRoomQRAndLiveToken(t *testing.T) {
	h := newHarness(t, testConfig(t))
	h.do("POST", "/api/admin/rooms", h.adminTok, map[string]any{"room": "520", "pcCount": 2})

	rooms := decode[struct {
		Rooms []struct {
			Room      string `json:"room"`
			PCs       int    `json:"pcs"`
			Available int    `json:"available"`
		} `json:"rooms"`
	}](t, h.do("GET", "/api/rooms", h.facTok, nil))
	if len(rooms.Rooms) != 1 || rooms.Rooms[0].Room != "520" || rooms.Rooms[0].PCs != 2 || rooms.Rooms[0].Available != 2 {
		t.Fatalf("rooms = %+v", rooms.Rooms)
	}

	w := h.do("GET", "/api/rooms/520/pcs/2/qr.png", h.facTok, nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("qr: got %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	if w := h.do("GET", "/api/rooms/520/pcs/9/qr.png", h.facTok, nil); w.Code != http.StatusNotFound {
		t.Errorf("qr for unknown pc: got %d", w.Code)
	}

	tok := decode[struct {
		Token string `json:"token"`
	}](t, h.do("GET", "/api/live/token", h.adminTok, nil))
	claims, err := h.a.Tokens.Validate(tok.Token)
	if err != nil || !claims.Admin {
		t.Fatalf("live token: %+v, %v", claims, err)
	}
	if w := h.do("GET", "/api/borrows?token="+tok.Token, "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("query token outside websocket: got %d", w.Code)
	}
	if w := h.do("GET", "/api/live/nope", h.facTok, nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown topic: got %d", w.Code)
	}
}

func TestInvitesAndUsers(t *testing.T) {
	h := newHarness(t, testConfig(t))

	w := h.do("POST", "/api/admin/invites", h.adminTok, map[string]any{"email": "New.Faculty@school.edu", "expiresDays": 2})
	if w.Code != http.StatusCreated {
		t.Fatalf("invite: got %d %s", w.Code, w.Body.String())
	}
	inv := decode[struct {
		Link   string        `json:"link"`
		Invite models.Invite `json:"invite"`
	}](t, w)
	if !strings.HasPrefix(inv.Link, "http://lab.test/login?inviteToken=") || inv.Invite.Email != "new.faculty@school.edu" {
		t.Errorf("invite = %+v", inv)
	}
	if w := h.do("POST", "/api/admin/invites", h.adminTok, map[string]any{"email": "not-an-email"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad email: got %d", w.Code)
	}

	users := decode[struct {
		Total int64 `json:"total"`
	}](t, h.do("GET", "/api/admin/users?q=santos", h.adminTok, nil))
	if users.Total != 1 {
		t.Errorf("user search total = %d", users.Total)
	}

	if w := h.do("PUT", "/api/admin/users/"+h.faculty.ID+"/admin", h.adminTok, map[string]bool{"isAdmin": true}); w.Code != http.StatusOK {
		t.Fatalf("promote: got %d", w.Code)
	}
	if w := h.do("GET", "/api/admin/stats/export.pdf", h.facTok, nil); w.Code != http.StatusOK {
		t.Errorf("promoted user on admin route: got %d", w.Code)
	}
	if w := h.do("DELETE", "/api/admin/users/"+h.faculty.ID, h.adminTok, nil); w.Code != http.StatusForbidden {
		t.Errorf("deleting an admin: got %d", w.Code)
	}
	h.do("PUT", "/api/admin/users/"+h.faculty.ID+"/admin", h.adminTok, map[string]bool{"isAdmin": false})
	if w := h.do("DELETE", "/api/admin/users/"+h.faculty.ID, h.adminTok, nil); w.Code != http.StatusOK {
		t.Fatalf("delete user: got %d", w.Code)
	}
	if w := h.do("GET", "/api/me", h.facTok, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("deleted user's token: got %d", w.Code)
	}
}
