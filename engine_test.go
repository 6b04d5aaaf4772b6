package synbridge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/synian-app/synbridge/core"
	"github.com/synian-app/synbridge/session"
)

// fakeCore scripts Core responses for engine tests. Results are consumed
// in order; the last one repeats. A nil result list with no error yields
// an empty OK result.
type fakeCore struct {
	mu       sync.Mutex
	requests []core.Request
	results  []*core.Result
	doErr    error

	statusResult *core.StatusResult
	statusErr    error
}

func (f *fakeCore) Do(_ context.Context, req core.Request) (*core.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.doErr != nil {
		return nil, f.doErr
	}
	if len(f.results) == 0 {
		return &core.Result{Status: "OK"}, nil
	}
	result := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return result, nil
}

func (f *fakeCore) Status(context.Context) (*core.StatusResult, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	if f.statusResult != nil {
		return f.statusResult, nil
	}
	return &core.StatusResult{Online: true}, nil
}

func (f *fakeCore) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeCore) lastRequest(t *testing.T) core.Request {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatal("expected at least one Core request")
	}
	return f.requests[len(f.requests)-1]
}

// newTestEngine builds an engine on the in-memory store with the given
// scripted Core. The returned store is the engine's own, for direct state
// inspection.
func newTestEngine(t *testing.T, cfg Config, api CoreAPI) (*Engine, session.Store) {
	t.Helper()

	store, err := session.NewStore(session.DriverMemory, session.WithTTL(cfg.Session.InactivityTTL))
	if err != nil {
		t.Fatalf("session store: %v", err)
	}

	engine, err := New().
		WithConfig(cfg).
		WithCore(api).
		WithSessionStore(store).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(func() {
		engine.Close()
		store.Close()
	})
	return engine, store
}

func testEvent(intent Intent, slots map[string]string) Event {
	return Event{
		ConversationID: "conv-1",
		RequestID:      "req-1",
		Locale:         "es-MX",
		Intent:         intent,
		Slots:          slots,
		DeviceID:       "device-1",
		ApplicationID:  "app-1",
		PlatformUserID: "amzn-user-1",
	}
}

func authResult(sessionID string, expiresIn time.Duration) *core.Result {
	return &core.Result{
		Status:    "OK",
		SessionID: sessionID,
		ExpiresAt: time.Now().Add(expiresIn),
	}
}

// authenticate drives a conversation into the Authenticated state and
// returns its record.
func authenticate(t *testing.T, engine *Engine, store session.Store, fc *fakeCore) *session.Record {
	t.Helper()

	fc.mu.Lock()
	fc.results = append([]*core.Result{authResult("S1", time.Minute)}, fc.results...)
	fc.mu.Unlock()

	sp := engine.Handle(context.Background(), testEvent(IntentSubmitCode, map[string]string{"clave": "000000"}))
	if sp.Text == "" {
		t.Fatal("expected a spoken greeting after authentication")
	}

	record, err := store.Get(context.Background(), "conv-1")
	if err != nil {
		t.Fatalf("store.Get: %v", err)
	}
	if record == nil || record.SessionID != "S1" {
		t.Fatalf("expected authenticated record with session S1, got %+v", record)
	}
	return record
}
