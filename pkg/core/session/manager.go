package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"kpi_extractor/pkg/core/extract"
)

// Manager applies the session transitions against a Store and a Gateway.
// Every mutating action on a session is refused with ErrBusy while an
// extraction for that session is still running.
type Manager struct {
	store   Store
	gateway extract.Gateway
	log     *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewManager(store Store, gateway extract.Gateway, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if store == nil {
		store = NewMemoryStore(0)
	}
	return &Manager{
		store:    store,
		gateway:  gateway,
		log:      logger,
		now:      time.Now,
		inFlight: make(map[string]struct{}),
	}
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like one NewID produced.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Get returns the stored state, or a fresh one when the id is unknown.
func (m *Manager) Get(ctx context.Context, id string) (State, error) {
	s, ok, err := m.store.Load(ctx, id)
	if err != nil {
		return State{}, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return New(id), nil
	}
	return s, nil
}

// Busy reports whether id has an extraction in flight.
func (m *Manager) Busy(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.inFlight[id]
	return ok
}

func (m *Manager) acquire(id string) (release func(), ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.inFlight[id]; busy {
		return nil, false
	}
	m.inFlight[id] = struct{}{}
	return func() {
		m.mu.Lock()
		delete(m.inFlight, id)
		m.mu.Unlock()
	}, true
}

// mutate loads the session, applies fn and saves the outcome under the in-flight guard.
func (m *Manager) mutate(ctx context.Context, id string, fn func(State) State) (State, error) {
	release, ok := m.acquire(id)
	if !ok {
		m.log.Warn("session.busy", "session", id)
		s, err := m.Get(ctx, id)
		if err != nil {
			return State{}, err
		}
		return s, ErrBusy
	}
	defer release()

	s, err := m.Get(ctx, id)
	if err != nil {
		return State{}, err
	}
	s = fn(s)
	return s, m.save(ctx, s)
}

func (m *Manager) save(ctx context.Context, s State) error {
	s.UpdatedAt = m.now()
	if err := m.store.Save(ctx, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Edit stores new input text.
func (m *Manager) Edit(ctx context.Context, id, text string) (State, error) {
	return m.mutate(ctx, id, func(s State) State { return Edit(s, text) })
}

// LoadSample replaces the input with the sample article and clears the result.
func (m *Manager) LoadSample(ctx context.Context, id string) (State, error) {
	s, err := m.mutate(ctx, id, LoadSample)
	if err == nil {
		m.log.Info("session.sample_loaded", "session", id)
	}
	return s, err
}

// Submit stores text as the input and then runs Extract on it, as one action.
func (m *Manager) Submit(ctx context.Context, id, text string) (State, error) {
	return m.run(ctx, id, &text)
}

// Extract runs the gateway on the stored input.
// Blank input yields ErrBlankInput; a gateway failure yields *ExtractionError and
// leaves any earlier result in place.
func (m *Manager) Extract(ctx context.Context, id string) (State, error) {
	return m.run(ctx, id, nil)
}

func (m *Manager) run(ctx context.Context, id string, text *string) (State, error) {
	release, ok := m.acquire(id)
	if !ok {
		m.log.Warn("session.busy", "session", id)
		s, err := m.Get(ctx, id)
		if err != nil {
			return State{}, err
		}
		return s, ErrBusy
	}
	defer release()

	s, err := m.Get(ctx, id)
	if err != nil {
		return State{}, err
	}
	if text != nil {
		s = Edit(s, *text)
	}

	s, err = BeginExtract(s)
	if err != nil {
		if serr := m.save(ctx, s); serr != nil {
			return s, serr
		}
		return s, err
	}
	if m.gateway == nil {
		s = FailExtract(s)
		_ = m.save(ctx, s)
		return s, &ExtractionError{Cause: errors.New("no extraction gateway configured")}
	}
	if err := m.save(ctx, s); err != nil {
		return s, err
	}

	start := time.Now()
	result, gerr := m.gateway.Extract(ctx, s.Input)
	if gerr == nil && result == nil {
		gerr = errors.New("extractor returned no data")
	}
	if gerr != nil {
		m.log.Error("session.extract_failed", "session", id, "error", gerr, "elapsed_ms", time.Since(start).Milliseconds())
		s = FailExtract(s)
		if err := m.save(ctx, s); err != nil {
			return s, err
		}
		return s, &ExtractionError{Cause: gerr}
	}

	s = CompleteExtract(s, result)
	m.log.Info("session.extract_ok", "session", id, "empty", result.Empty(), "elapsed_ms", time.Since(start).Milliseconds())
	return s, m.save(ctx, s)
}
