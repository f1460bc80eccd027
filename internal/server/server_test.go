package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/roomwise/internal/model"
	"github.com/theirongolddev/roomwise/internal/plan"
	"github.com/theirongolddev/roomwise/internal/planner"
	"github.com/theirongolddev/roomwise/internal/store"
)

var fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open(store.DriverSQLite, filepath.Join(t.TempDir(), "roomwise.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	p, err := planner.New(st, planner.Options{})
	if err != nil {
		t.Fatalf("planner.New: %v", err)
	}
	s := New(Config{
		DefaultUser:  "alice",
		EventsBuffer: 10,
		Projection: planner.ProjectionInput{
			MonthlyContribution: decimal.NewFromInt(100),
			HorizonMonths:       12,
			AnnualGrowthRate:    decimal.RequireFromString("0.12"),
		},
	}, st, p, zerolog.Nop())
	s.now = func() time.Time { return fixedNow }
	return s, st
}

func do(t *testing.T, h http.Handler, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newTestService(t)
	rec := do(t, s.Handler(), http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestAllocate_RawRequest(t *testing.T) {
	s, _ := newTestService(t)
	body := `{"monthly_budget":"1000","dependent_count":1,"room_by_category":{"tfsa":"6000","rrsp":"18000"}}`
	rec := do(t, s.Handler(), http.MethodPost, "/v1/allocate", "", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	res := decode[plan.AllocationResult](t, rec)
	if got := res.AllocationByCategory[plan.RESP]; !got.Equal(decimal.RequireFromString("208.33")) {
		t.Errorf("resp = %s, want 208.33", got)
	}
	if len(res.Rationale) != 3 {
		t.Errorf("rationale = %q", res.Rationale)
	}
	if !strings.Contains(rec.Body.String(), `"allocation_by_category"`) {
		t.Errorf("response missing allocation_by_category: %s", rec.Body.String())
	}
}

func TestAllocate_InvalidInputIs400(t *testing.T) {
	s, _ := newTestService(t)
	for _, body := range []string{
		`{"monthly_budget":"-5"}`,
		`{"monthly_budget":"10","room_by_category":{"lira":"5"}}`,
		`{"monthly_budget":`,
		`{"unknown_field":1}`,
	} {
		rec := do(t, s.Handler(), http.MethodPost, "/v1/allocate", "", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestProject_RawRequest(t *testing.T) {
	s, _ := newTestService(t)
	body := `{"start_value":"0","monthly_contribution":"100","horizon_months":12,"annual_growth_rate":"0.12"}`
	rec := do(t, s.Handler(), http.MethodPost, "/v1/project", "", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	series := decode[plan.Series](t, rec)
	if len(series.Points) != 13 {
		t.Fatalf("points = %d, want 13", len(series.Points))
	}
	if got := series.Final().Value.StringFixed(2); got != "1268.25" {
		t.Errorf("final = %s, want 1268.25", got)
	}

	for _, months := range []string{"0", "1201", "9223372036854775807"} {
		rec = do(t, s.Handler(), http.MethodPost, "/v1/project", "", `{"horizon_months":`+months+`}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("horizon %s status = %d, want 400", months, rec.Code)
		}
	}
	rec = do(t, s.Handler(), http.MethodGet, "/v1/projection?months=1000000000", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("GET huge horizon status = %d, want 400", rec.Code)
	}
}

func TestAllocationFromStoredState(t *testing.T) {
	s, st := newTestService(t)
	ctx := context.Background()
	for _, r := range []model.RoomRecord{
		{UserID: "bob", Year: 2026, Category: plan.TFSA, Amount: decimal.NewFromInt(6000)},
		{UserID: "bob", Year: 2026, Category: plan.RRSP, Amount: decimal.NewFromInt(18000)},
	} {
		if err := st.SetRoom(ctx, r); err != nil {
			t.Fatalf("SetRoom: %v", err)
		}
	}
	if err := st.SaveDependent(ctx, &model.Dependent{UserID: "bob", Name: "kid", BirthYear: 2020}); err != nil {
		t.Fatalf("SaveDependent: %v", err)
	}

	rec := do(t, s.Handler(), http.MethodGet, "/v1/allocation?budget=1000", "bob", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	ap := decode[planner.AllocationPlan](t, rec)
	if ap.Year != 2026 || ap.UserID != "bob" {
		t.Errorf("plan year/user = %d/%s", ap.Year, ap.UserID)
	}
	if got := ap.Result.AllocationByCategory[plan.RRSP]; !got.Equal(decimal.RequireFromString("291.67")) {
		t.Errorf("rrsp = %s, want 291.67", got)
	}

	// Default user has no room, so everything falls through.
	rec = do(t, s.Handler(), http.MethodGet, "/v1/allocation?budget=1000&year=2026", "", "")
	ap = decode[planner.AllocationPlan](t, rec)
	if got := ap.Result.AllocationByCategory[plan.Taxable]; !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("alice taxable = %s, want 1000", got)
	}

	rec = do(t, s.Handler(), http.MethodGet, "/v1/allocation", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing budget status = %d, want 400", rec.Code)
	}
}

func TestAccountsLifecycleAndOwnership(t *testing.T) {
	s, _ := newTestService(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/v1/accounts", "", `{"name":"Brokerage","category":"TFSA","balance":"2500.50"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[model.Account](t, rec)
	if created.UserID != "alice" || created.Category != plan.TFSA {
		t.Errorf("created = %+v", created)
	}

	rec = do(t, h, http.MethodGet, "/v1/accounts/"+created.ID, "mallory", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign get status = %d, want 404", rec.Code)
	}
	rec = do(t, h, http.MethodDelete, "/v1/accounts/"+created.ID, "mallory", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign delete status = %d, want 404", rec.Code)
	}

	rec = do(t, h, http.MethodPut, "/v1/accounts/"+created.ID, "", `{"name":"Brokerage","category":"tfsa","balance":"3000"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/v1/projection?months=1&rate=0&contribution=0", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("projection status = %d: %s", rec.Code, rec.Body.String())
	}
	proj := decode[projectionResponse](t, rec)
	if !proj.StartValue.Equal(decimal.NewFromInt(3000)) || len(proj.Points) != 2 {
		t.Errorf("projection start = %s, points = %d", proj.StartValue, len(proj.Points))
	}

	rec = do(t, h, http.MethodPost, "/v1/accounts", "", `{"name":"x","category":"lira","balance":"1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad category status = %d, want 400", rec.Code)
	}

	rec = do(t, h, http.MethodDelete, "/v1/accounts/"+created.ID, "", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/v1/accounts", "", "")
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("list after delete = %s, want []", got)
	}

	rec = do(t, h, http.MethodGet, "/v1/events", "", "")
	events := decode[[]Event](t, rec)
	if len(events) != 3 {
		t.Errorf("events = %d, want 3 (create, update, delete)", len(events))
	}
	for _, ev := range events {
		if ev.Type != EventAccountsChanged {
			t.Errorf("event type = %q", ev.Type)
		}
	}
	rec = do(t, h, http.MethodGet, "/v1/events", "mallory", "")
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("mallory events = %s, want []", got)
	}
}

func TestRoomAndDependentsEndpoints(t *testing.T) {
	s, _ := newTestService(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPut, "/v1/room/2026/tfsa", "", `{"amount":"7000"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("set room status = %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodPut, "/v1/room/2026/taxable", "", `{"amount":"1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("set taxable room status = %d, want 400", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/v1/room/2026", "", "")
	room := decode[roomResponse](t, rec)
	if !room.Room[plan.TFSA].Equal(decimal.NewFromInt(7000)) {
		t.Errorf("room = %+v", room)
	}
	rec = do(t, h, http.MethodDelete, "/v1/room/2026/rrsp", "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("clear missing room status = %d, want 404", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/v1/dependents", "", `{"name":"Sam","birth_year":2019}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create dependent status = %d: %s", rec.Code, rec.Body.String())
	}
	dep := decode[model.Dependent](t, rec)
	rec = do(t, h, http.MethodGet, "/v1/dependents", "", "")
	if deps := decode[[]model.Dependent](t, rec); len(deps) != 1 {
		t.Errorf("dependents = %d, want 1", len(deps))
	}
	rec = do(t, h, http.MethodDelete, "/v1/dependents/"+dep.ID, "", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete dependent status = %d", rec.Code)
	}
}

func TestSnapshotJobAndDashboard(t *testing.T) {
	s, st := newTestService(t)
	ctx := context.Background()
	if err := st.SaveAccount(ctx, &model.Account{UserID: "alice", Name: "A", Category: plan.TFSA, Balance: decimal.NewFromInt(1000)}); err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}
	if err := st.SaveAccount(ctx, &model.Account{UserID: "bob", Name: "B", Category: plan.RRSP, Balance: decimal.NewFromInt(50)}); err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}

	s.snapshotAll(ctx)

	status := s.snapshotStatus()
	if status.SnapshotRuns != 1 || status.LastError != "" || status.EventCount != 2 {
		t.Errorf("status = %+v", status)
	}

	rec := do(t, s.Handler(), http.MethodGet, "/v1/dashboard", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d: %s", rec.Code, rec.Body.String())
	}
	d := decode[planner.Dashboard](t, rec)
	if len(d.Actual) != 1 || !d.Actual[0].Total.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("actual = %+v", d.Actual)
	}
	if len(d.Projected.Points) != 13 {
		t.Errorf("projected points = %d, want 13", len(d.Projected.Points))
	}

	rec = do(t, s.Handler(), http.MethodGet, "/v1/snapshots?since=2026-01-01T00:00:00Z", "bob", "")
	if snaps := decode[[]model.Snapshot](t, rec); len(snaps) != 1 {
		t.Errorf("bob snapshots = %d, want 1", len(snaps))
	}
}

func TestReportEndpoint(t *testing.T) {
	s, _ := newTestService(t)
	rec := do(t, s.Handler(), http.MethodGet, "/v1/report?budget=500", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "# Savings plan for alice") {
		t.Errorf("markdown report = %s", rec.Body.String())
	}

	rec = do(t, s.Handler(), http.MethodGet, "/v1/report?budget=500&format=html", "", "")
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "<h1>") {
		t.Errorf("html report missing heading")
	}
}

func TestStreamDeliversUserEvents(t *testing.T) {
	s, _ := newTestService(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	readEvent := func() string {
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("reading stream: %v", err)
			}
			if strings.HasPrefix(line, "event: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "event: "))
			}
		}
	}

	if got := readEvent(); got != EventHello {
		t.Fatalf("first event = %q, want hello", got)
	}
	s.emit(EventRoomChanged, "someone-else", nil)
	s.emit(EventDependentsChanged, "alice", nil)
	if got := readEvent(); got != EventDependentsChanged {
		t.Errorf("event = %q, want %q", got, EventDependentsChanged)
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s, _ := newTestService(t)
	s.cfg.EventsBuffer = 2

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}
