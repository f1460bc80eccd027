package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/roomwise/internal/model"
	"github.com/theirongolddev/roomwise/internal/plan"
	"github.com/theirongolddev/roomwise/internal/report"
	"github.com/theirongolddev/roomwise/internal/store"
)

const maxBodyBytes = 1 << 20

// Handler builds the HTTP router.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.withUser)

		r.Get("/status", s.handleStatus)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)

		r.Post("/allocate", s.handleAllocate)
		r.Get("/allocation", s.handleAllocation)
		r.Post("/project", s.handleProject)
		r.Get("/projection", s.handleProjection)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/report", s.handleReport)

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", s.handleListAccounts)
			r.Post("/", s.handleCreateAccount)
			r.Get("/{id}", s.handleGetAccount)
			r.Put("/{id}", s.handleUpdateAccount)
			r.Delete("/{id}", s.handleDeleteAccount)
		})

		r.Route("/room/{year}", func(r chi.Router) {
			r.Get("/", s.handleGetRoom)
			r.Put("/{category}", s.handleSetRoom)
			r.Delete("/{category}", s.handleClearRoom)
		})

		r.Route("/dependents", func(r chi.Router) {
			r.Get("/", s.handleListDependents)
			r.Post("/", s.handleCreateDependent)
			r.Delete("/{id}", s.handleDeleteDependent)
		})

		r.Route("/snapshots", func(r chi.Router) {
			r.Get("/", s.handleListSnapshots)
			r.Post("/", s.handleRecordSnapshot)
		})
	})

	return r
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, plan.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).
			Str("user", userFrom(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("request body: %v: %w", err, plan.ErrInvalidInput)
	}
	return nil
}

func decimalParam(r *http.Request, name string, def decimal.Decimal) (decimal.Decimal, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return def, fmt.Errorf("%s %q is not a number: %w", name, raw, plan.ErrInvalidInput)
	}
	return d, nil
}

func intParam(r *http.Request, name string) (int, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s %q is not an integer: %w", name, raw, plan.ErrInvalidInput)
	}
	return n, true, nil
}

// yearParam reads ?year= or the {year} path value, defaulting to the
// current calendar year.
func (s *Service) yearParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "year")
	if raw == "" {
		raw = r.URL.Query().Get("year")
	}
	if raw == "" {
		return s.now().Year(), nil
	}
	y, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("year %q: %w", raw, plan.ErrInvalidInput)
	}
	return y, nil
}

func (s *Service) handleAllocate(w http.ResponseWriter, r *http.Request) {
	var req plan.AllocationRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.planner.Allocator().Allocate(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Service) handleAllocation(w http.ResponseWriter, r *http.Request) {
	year, err := s.yearParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if r.URL.Query().Get("budget") == "" {
		s.writeError(w, r, fmt.Errorf("budget is required: %w", plan.ErrInvalidInput))
		return
	}
	budget, err := decimalParam(r, "budget", decimal.Zero)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ap, err := s.planner.Allocation(r.Context(), userFrom(r.Context()), year, budget)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ap)
}

func (s *Service) handleProject(w http.ResponseWriter, r *http.Request) {
	var req plan.ProjectionRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	series, err := s.planner.Projector().Project(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

type projectionResponse struct {
	StartValue decimal.Decimal `json:"start_value"`
	Precision  string          `json:"precision"`
	plan.Series
}

func (s *Service) handleProjection(w http.ResponseWriter, r *http.Request) {
	in, err := s.projectionDefaults(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	series, start, err := s.planner.Projection(r.Context(), userFrom(r.Context()), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projectionResponse{
		StartValue: start,
		Precision:  string(s.planner.Projector().Mode()),
		Series:     series,
	})
}

func (s *Service) handleDashboard(w http.ResponseWriter, r *http.Request) {
	in, err := s.projectionDefaults(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	lookback := s.cfg.Lookback
	if days, ok, err := intParam(r, "lookback_days"); err != nil {
		s.writeError(w, r, err)
		return
	} else if ok {
		lookback = time.Duration(days) * 24 * time.Hour
	}
	d, err := s.planner.Dashboard(r.Context(), userFrom(r.Context()), s.now(), in, lookback)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Service) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := userFrom(ctx)
	year, err := s.yearParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	budget, err := decimalParam(r, "budget", s.cfg.Projection.MonthlyContribution)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	in, err := s.projectionDefaults(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ap, err := s.planner.Allocation(ctx, user, year, budget)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := s.planner.Dashboard(ctx, user, s.now(), in, s.cfg.Lookback)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	doc := report.Markdown(report.Input{
		UserID:     user,
		Currency:   s.cfg.Currency,
		AsOf:       s.now(),
		Allocation: ap,
		Holdings:   d.Holdings,
		Projection: d.Projected,
		Assumption: in,
	})

	if r.URL.Query().Get("format") == "html" {
		page, err := report.HTMLPage("Savings plan for "+user, doc)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write([]byte(doc))
}

// accountInput is the writable subset of an account.
type accountInput struct {
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Institution string          `json:"institution"`
	Balance     decimal.Decimal `json:"balance"`
}

func (in accountInput) apply(a *model.Account) error {
	c, err := plan.ParseCategory(in.Category)
	if err != nil {
		return err
	}
	a.Name = in.Name
	a.Category = c
	a.Institution = in.Institution
	a.Balance = in.Balance
	return nil
}

func (s *Service) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.ListAccounts(r.Context(), userFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if accounts == nil {
		accounts = []model.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Service) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var in accountInput
	if err := decodeBody(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	user := userFrom(r.Context())
	a := model.Account{UserID: user}
	if err := in.apply(&a); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.SaveAccount(r.Context(), &a); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.emit(EventAccountsChanged, user, nil)
	writeJSON(w, http.StatusCreated, a)
}

func (s *Service) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	a, err := s.store.GetAccount(r.Context(), userFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Service) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := userFrom(ctx)
	a, err := s.store.GetAccount(ctx, user, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in accountInput
	if err := decodeBody(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := in.apply(&a); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.SaveAccount(ctx, &a); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.emit(EventAccountsChanged, user, nil)
	writeJSON(w, http.StatusOK, a)
}

func (s *Service) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	if err := s.store.DeleteAccount(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.emit(EventAccountsChanged, user, nil)
	w.WriteHeader(http.StatusNoContent)
}

type roomResponse struct {
	Year int                              `json:"year"`
	Room map[plan.Category]decimal.Decimal `json:"room"`
}

func (s *Service) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	year, err := s.yearParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	room, err := s.store.RoomForYear(r.Context(), userFrom(r.Context()), year)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roomResponse{Year: year, Room: room})
}

func (s *Service) handleSetRoom(w http.ResponseWriter, r *http.Request) {
	year, err := s.yearParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := plan.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	user := userFrom(r.Context())
	rec := model.RoomRecord{UserID: user, Year: year, Category: c, Amount: body.Amount}
	if err := s.store.SetRoom(r.Context(), rec); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.emit(EventRoomChanged, user, nil)
	writeJSON(w, http.StatusOK, rec)
}

func (s *Service) handleClearRoom(w http.ResponseWriter, r *http.Request) {
	year, err := s.yearParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := plan.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	user := userFrom(r.Context())
	if err := s.store.ClearRoom(r.Context(), user, year, c); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.emit(EventRoomChanged, user, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleListDependents(w http.ResponseWriter, r *http.Request) {
	deps, err := s.store.ListDependents(r.Context(), userFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if deps == nil {
		deps = []model.Dependent{}
	}
	writeJSON(w, http.StatusOK, deps)
}

func (s *Service) handleCreateDependent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name      string `json:"name"`
		BirthYear int    `json:"birth_year"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	user := userFrom(r.Context())
	d := model.Dependent{UserID: user, Name: body.Name, BirthYear: body.BirthYear}
	if err := s.store.SaveDependent(r.Context(), &d); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.emit(EventDependentsChanged, user, nil)
	writeJSON(w, http.StatusCreated, d)
}

func (s *Service) handleDeleteDependent(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	if err := s.store.DeleteDependent(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.emit(EventDependentsChanged, user, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	since := s.now().Add(-s.cfg.Lookback)
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("since %q: %w", raw, plan.ErrInvalidInput))
			return
		}
		since = t
	}
	snaps, err := s.store.ListSnapshots(r.Context(), userFrom(r.Context()), since)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if snaps == nil {
		snaps = []model.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snaps)
}

func (s *Service) handleRecordSnapshot(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	snap, err := s.store.RecordSnapshot(r.Context(), user, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.emit(EventSnapshotRecorded, user, &snap)
	writeJSON(w, http.StatusCreated, snap)
}
