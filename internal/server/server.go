// Package server exposes the planner over HTTP, records scheduled balance
// snapshots and streams change events.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/theirongolddev/roomwise/internal/model"
	"github.com/theirongolddev/roomwise/internal/plan"
	"github.com/theirongolddev/roomwise/internal/planner"
)

// Store is the persistence the server reads and writes.
type Store interface {
	planner.Reader
	GetAccount(ctx context.Context, userID, id string) (model.Account, error)
	SaveAccount(ctx context.Context, a *model.Account) error
	DeleteAccount(ctx context.Context, userID, id string) error
	SetRoom(ctx context.Context, r model.RoomRecord) error
	ClearRoom(ctx context.Context, userID string, year int, c plan.Category) error
	SaveDependent(ctx context.Context, d *model.Dependent) error
	DeleteDependent(ctx context.Context, userID, id string) error
	RecordSnapshot(ctx context.Context, userID string, at time.Time) (model.Snapshot, error)
	Users(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

// Config controls the server runtime behavior.
type Config struct {
	Addr             string
	DefaultUser      string
	Currency         string
	SnapshotSchedule string // cron spec; empty disables scheduled snapshots
	EventsBuffer     int
	Lookback         time.Duration
	Projection       planner.ProjectionInput
}

// Event is emitted whenever a user's stored state changes.
type Event struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	UserID    string          `json:"user_id,omitempty"`
	Snapshot  *model.Snapshot `json:"snapshot,omitempty"`
}

// Event types.
const (
	EventHello             = "hello"
	EventSnapshotRecorded  = "snapshot_recorded"
	EventAccountsChanged   = "accounts_changed"
	EventRoomChanged       = "room_changed"
	EventDependentsChanged = "dependents_changed"
)

// Status is served at /v1/status.
type Status struct {
	StartedAt        time.Time `json:"started_at"`
	SnapshotSchedule string    `json:"snapshot_schedule,omitempty"`
	LastSnapshotAt   time.Time `json:"last_snapshot_at,omitempty"`
	SnapshotRuns     int64     `json:"snapshot_runs"`
	LastError        string    `json:"last_error,omitempty"`
	EventCount       int       `json:"event_count"`
	SubscriberCount  int       `json:"subscriber_count"`
	Precision        string    `json:"precision"`
}

// Service provides the HTTP API and snapshot job.
type Service struct {
	cfg     Config
	store   Store
	planner *planner.Planner
	log     zerolog.Logger
	now     func() time.Time

	mu             sync.RWMutex
	startedAt      time.Time
	lastSnapshotAt time.Time
	snapshotRuns   int64
	lastError      string
	nextEventID    int64
	events         []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a service with the provided config.
func New(cfg Config, st Store, p *planner.Planner, logger zerolog.Logger) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8742"
	}
	if cfg.DefaultUser == "" {
		cfg.DefaultUser = "default"
	}
	if cfg.Currency == "" {
		cfg.Currency = "CAD"
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = 365 * 24 * time.Hour
	}
	if cfg.Projection.HorizonMonths <= 0 {
		cfg.Projection.HorizonMonths = plan.YearsToMonths(30)
	}

	return &Service{
		cfg:       cfg,
		store:     st,
		planner:   p,
		log:       logger,
		now:       time.Now,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run serves HTTP and runs the snapshot schedule until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var c *cron.Cron
	if s.cfg.SnapshotSchedule != "" {
		c = cron.New()
		if _, err := c.AddFunc(s.cfg.SnapshotSchedule, func() { s.snapshotAll(ctx) }); err != nil {
			_ = server.Close()
			return fmt.Errorf("snapshot schedule %q: %w", s.cfg.SnapshotSchedule, err)
		}
		c.Start()
	}

	s.log.Info().
		Str("addr", s.cfg.Addr).
		Str("snapshot_schedule", s.cfg.SnapshotSchedule).
		Msg("roomwise server listening")

	select {
	case <-ctx.Done():
		if c != nil {
			<-c.Stop().Done()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if c != nil {
			c.Stop()
		}
		return fmt.Errorf("http server: %w", err)
	}
}

// snapshotAll records a balance snapshot for every user with accounts.
func (s *Service) snapshotAll(ctx context.Context) {
	now := s.now()
	users, err := s.store.Users(ctx)
	if err != nil {
		s.recordRun(now, err)
		s.log.Error().Err(err).Msg("snapshot job: listing users")
		return
	}

	var firstErr error
	for _, u := range users {
		snap, err := s.store.RecordSnapshot(ctx, u, now)
		if err != nil {
			s.log.Error().Err(err).Str("user", u).Msg("snapshot job: recording")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		s.emit(EventSnapshotRecorded, u, &snap)
	}
	s.recordRun(now, firstErr)
	s.log.Info().Int("users", len(users)).Msg("snapshot job complete")
}

func (s *Service) recordRun(at time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSnapshotAt = at
	s.snapshotRuns++
	s.lastError = ""
	if err != nil {
		s.lastError = err.Error()
	}
}

func (s *Service) emit(typ, userID string, snap *model.Snapshot) {
	s.mu.Lock()
	s.nextEventID++
	ev := Event{
		ID:        s.nextEventID,
		Type:      typ,
		Timestamp: s.now(),
		UserID:    userID,
		Snapshot:  snap,
	}
	s.mu.Unlock()
	s.publishEvent(ev)
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:        s.startedAt,
		SnapshotSchedule: s.cfg.SnapshotSchedule,
		LastSnapshotAt:   s.lastSnapshotAt,
		SnapshotRuns:     s.snapshotRuns,
		LastError:        s.lastError,
		EventCount:       len(s.events),
		SubscriberCount:  len(s.subs),
		Precision:        string(s.planner.Projector().Mode()),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

// handleEvents returns buffered events for the requesting user.
func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	s.mu.RLock()
	events := make([]Event, 0, len(s.events))
	for _, ev := range s.events {
		if ev.UserID == user {
			events = append(events, ev)
		}
	}
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	user := userFrom(r.Context())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	writeSSE(w, Event{Type: EventHello, Timestamp: s.now(), UserID: user})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			if ev.UserID != user {
				continue
			}
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

// projectionDefaults returns the configured assumptions with any query
// overrides applied.
func (s *Service) projectionDefaults(r *http.Request) (planner.ProjectionInput, error) {
	in := s.cfg.Projection
	var err error
	if in.MonthlyContribution, err = decimalParam(r, "contribution", in.MonthlyContribution); err != nil {
		return in, err
	}
	if in.AnnualGrowthRate, err = decimalParam(r, "rate", in.AnnualGrowthRate); err != nil {
		return in, err
	}
	if years, ok, err := intParam(r, "years"); err != nil {
		return in, err
	} else if ok {
		in.HorizonMonths = plan.YearsToMonths(years)
	}
	if months, ok, err := intParam(r, "months"); err != nil {
		return in, err
	} else if ok {
		in.HorizonMonths = months
	}
	return in, nil
}
