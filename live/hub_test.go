package live

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"comlab_tool/models"
	"comlab_tool/requests"
)

func report(id, owner string, st models.Status, day int) models.ReportRequest {
	return models.ReportRequest{
		ID:          id,
		RequesterID: owner,
		Status:      st,
		Equipment:   "Mouse",
		CreatedAt:   time.Date(2025, 1, day, 10, 0, 0, 0, time.UTC),
	}
}

type fixture struct {
	mu   sync.Mutex
	rows []Row
}

func (f *fixture) feed(ctx context.Context) ([]Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Row(nil), f.rows...), nil
}

func (f *fixture) add(r Row) {
	f.mu.Lock()
	f.rows = append(f.rows, r)
	f.mu.Unlock()
}

func TestBuildScopesAndFilters(t *testing.T) {
	h := NewHub(time.UTC)
	rows := []Row{
		report("r1", "alice", models.StatusPending, 1),
		report("r2", "bob", models.StatusApproved, 2),
		report("r3", "alice", models.StatusApproved, 3),
	}

	s := h.Build(models.TopicReportList, rows, Scope{UserID: "alice"}, requests.ViewState{Status: models.StatusAll})
	if len(s.Items) != 2 || s.Items[0].(models.ReportRequest).ID != "r3" {
		t.Fatalf("faculty items = %v", s.Items)
	}
	if s.Counts[models.StatusPending] != 1 || s.Counts[models.StatusApproved] != 1 {
		t.Fatalf("counts = %v", s.Counts)
	}

	s = h.Build(models.TopicReportList, rows, Scope{Admin: true}, requests.ViewState{Status: models.StatusApproved})
	if len(s.Items) != 2 {
		t.Fatalf("admin items = %v", s.Items)
	}
}

type wireSnapshot struct {
	Topic string            `json:"topic"`
	Items []json.RawMessage `json:"items"`
}

func readSnapshot(t *testing.T, conn *websocket.Conn) wireSnapshot {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var s wireSnapshot
	if err := conn.ReadJSON(&s); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	return s
}

func TestServePushesOnConnectViewAndNotify(t *testing.T) {
	fx := &fixture{rows: []Row{report("r1", "alice", models.StatusPending, 1)}}
	h := NewHub(time.UTC)
	h.Register(models.TopicReportList, fx.feed)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = h.Serve(w, r, models.TopicReportList, Scope{Admin: true}, requests.ViewState{Status: models.StatusAll})
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if s := readSnapshot(t, conn); s.Topic != models.TopicReportList || len(s.Items) != 1 {
		t.Fatalf("initial snapshot = %+v", s)
	}

	if err := conn.WriteJSON(map[string]string{"status": "Approved"}); err != nil {
		t.Fatal(err)
	}
	if s := readSnapshot(t, conn); len(s.Items) != 0 {
		t.Fatalf("filtered snapshot = %+v", s)
	}

	fx.add(report("r2", "bob", models.StatusApproved, 2))
	deadline := time.Now().Add(2 * time.Second)
	for h.Count(models.TopicReportList) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	h.Notify(ctx, models.TopicReportList)
	if s := readSnapshot(t, conn); len(s.Items) != 1 {
		t.Fatalf("snapshot after notify = %+v", s)
	}
}

func TestViewMessageParse(t *testing.T) {
	if _, err := (viewMessage{Status: "bogus"}).parse(); err == nil {
		t.Fatal("expected error for unknown status")
	}
	v, err := (viewMessage{Status: "approved", From: "2025-01-01", To: "2025-01-31"}).parse()
	if err != nil || v.Status != models.StatusApproved {
		t.Fatalf("view = %+v err = %v", v, err)
	}
	if _, err := (viewMessage{From: "01/01/2025"}).parse(); err == nil {
		t.Fatal("expected error for bad date")
	}
}
