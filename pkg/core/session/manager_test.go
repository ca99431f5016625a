package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"kpi_extractor/pkg/core/extract"
	"kpi_extractor/pkg/models"
)

// MockGateway lets each test script the extractor.
type MockGateway struct {
	mu          sync.Mutex
	ExtractFunc func(ctx context.Context, text string) (*models.ExtractionResult, error)
	Inputs      []string
}

func (m *MockGateway) Extract(ctx context.Context, text string) (*models.ExtractionResult, error) {
	m.mu.Lock()
	m.Inputs = append(m.Inputs, text)
	m.mu.Unlock()
	return m.ExtractFunc(ctx, text)
}

func (m *MockGateway) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Inputs)
}

var _ extract.Gateway = (*MockGateway)(nil)

func succeeding(r *models.ExtractionResult) *MockGateway {
	return &MockGateway{ExtractFunc: func(context.Context, string) (*models.ExtractionResult, error) {
		return r, nil
	}}
}

func failing(err error) *MockGateway {
	return &MockGateway{ExtractFunc: func(context.Context, string) (*models.ExtractionResult, error) {
		return nil, err
	}}
}

func TestManager_SampleThenExtract(t *testing.T) {
	ctx := context.Background()
	gw := succeeding(teslaResult())
	m := NewManager(NewMemoryStore(0), gw, nil)
	id := NewID()

	s, err := m.LoadSample(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if s.Input != SampleText || s.Phase != PhaseEditing {
		t.Fatalf("after sample: %+v", s)
	}

	s, err = m.Extract(ctx, id)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if s.Phase != PhaseReady || *s.Result != *teslaResult() {
		t.Errorf("after extract: %+v", s)
	}
	if gw.Inputs[0] != SampleText {
		t.Error("gateway did not receive the stored input")
	}

	stored, _ := m.Get(ctx, id)
	if stored.Phase != PhaseReady || !stored.HasResult() {
		t.Errorf("state not persisted: %+v", stored)
	}
	if stored.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not stamped")
	}
}

func TestManager_BlankInputDoesNotCallGateway(t *testing.T) {
	ctx := context.Background()
	gw := succeeding(teslaResult())
	m := NewManager(nil, gw, nil)

	s, err := m.Submit(ctx, "s1", "   ")
	if !errors.Is(err, ErrBlankInput) {
		t.Fatalf("error = %v, want ErrBlankInput", err)
	}
	if s.Result != nil {
		t.Error("blank input produced a result")
	}
	if gw.Calls() != 0 {
		t.Error("gateway called for blank input")
	}
}

func TestManager_FailurePreservesResult(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	ok := NewManager(store, succeeding(teslaResult()), nil)
	if _, err := ok.Submit(ctx, "s1", SampleText); err != nil {
		t.Fatal(err)
	}

	cause := errors.New("quota exceeded")
	bad := NewManager(store, failing(cause), nil)
	s, err := bad.Submit(ctx, "s1", "a different article")

	var ee *ExtractionError
	if !errors.As(err, &ee) || !errors.Is(err, cause) {
		t.Fatalf("error = %v, want ExtractionError wrapping cause", err)
	}
	if err.Error() != "Unable to extract data: quota exceeded" {
		t.Errorf("message = %q", err.Error())
	}
	if s.Phase != PhaseEditing {
		t.Errorf("phase = %s, want editing", s.Phase)
	}
	if s.Result == nil || *s.Result != *teslaResult() {
		t.Errorf("previous result lost: %+v", s.Result)
	}
	if s.Input != "a different article" {
		t.Errorf("input = %q", s.Input)
	}
}

func TestManager_NilResultIsFailure(t *testing.T) {
	m := NewManager(nil, succeeding(nil), nil)
	_, err := m.Submit(context.Background(), "s1", "text")
	var ee *ExtractionError
	if !errors.As(err, &ee) {
		t.Fatalf("error = %v, want ExtractionError", err)
	}
}

func TestManager_NoGateway(t *testing.T) {
	m := NewManager(nil, nil, nil)
	_, err := m.Submit(context.Background(), "s1", "text")
	var ee *ExtractionError
	if !errors.As(err, &ee) {
		t.Fatalf("error = %v, want ExtractionError", err)
	}
}

func TestManager_SampleClearsReadyResult(t *testing.T) {
	ctx := context.Background()
	m := NewManager(nil, succeeding(teslaResult()), nil)

	if _, err := m.Submit(ctx, "s1", "Revenue: $1 billion"); err != nil {
		t.Fatal(err)
	}
	s, err := m.LoadSample(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if s.Result != nil || s.HasResult() || s.Input != SampleText {
		t.Errorf("after sample: %+v", s)
	}
}

func TestManager_EditKeepsResult(t *testing.T) {
	ctx := context.Background()
	gw := succeeding(teslaResult())
	m := NewManager(nil, gw, nil)

	if _, err := m.Submit(ctx, "s1", SampleText); err != nil {
		t.Fatal(err)
	}
	s, err := m.Edit(ctx, "s1", "new text")
	if err != nil {
		t.Fatal(err)
	}
	if !s.HasResult() || s.Phase != PhaseReady {
		t.Errorf("edit invalidated result: %+v", s)
	}
	if gw.Calls() != 1 {
		t.Errorf("edit triggered extraction: %d calls", gw.Calls())
	}
}

func TestManager_SecondExtractIsRefusedWhileBusy(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{})
	unblock := make(chan struct{})
	gw := &MockGateway{ExtractFunc: func(context.Context, string) (*models.ExtractionResult, error) {
		close(entered)
		<-unblock
		return teslaResult(), nil
	}}
	m := NewManager(nil, gw, nil)

	done := make(chan error, 1)
	go func() {
		_, err := m.Submit(ctx, "s1", SampleText)
		done <- err
	}()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first extraction never started")
	}

	if !m.Busy("s1") {
		t.Error("session should report busy")
	}
	if _, err := m.Submit(ctx, "s1", "other"); !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent extract error = %v, want ErrBusy", err)
	}
	if _, err := m.LoadSample(ctx, "s1"); !errors.Is(err, ErrBusy) {
		t.Errorf("sample during extraction error = %v, want ErrBusy", err)
	}
	if _, err := m.Edit(ctx, "s1", "typing"); !errors.Is(err, ErrBusy) {
		t.Errorf("edit during extraction error = %v, want ErrBusy", err)
	}

	// Other sessions are unaffected.
	other := NewManager(nil, succeeding(teslaResult()), nil)
	if _, err := other.Submit(ctx, "s2", SampleText); err != nil {
		t.Errorf("independent session blocked: %v", err)
	}

	close(unblock)
	if err := <-done; err != nil {
		t.Fatalf("first extraction failed: %v", err)
	}
	if m.Busy("s1") {
		t.Error("busy flag not released")
	}
	if gw.Calls() != 1 {
		t.Errorf("gateway calls = %d, want 1", gw.Calls())
	}

	s, _ := m.Get(ctx, "s1")
	if s.Input != SampleText || !s.HasResult() {
		t.Errorf("refused actions changed state: %+v", s)
	}
}

func TestValidID(t *testing.T) {
	if !ValidID(NewID()) {
		t.Error("NewID() not valid")
	}
	if ValidID("../etc/passwd") {
		t.Error("path accepted as session id")
	}
}
