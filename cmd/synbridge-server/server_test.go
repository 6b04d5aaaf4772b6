package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	synbridge "github.com/synian-app/synbridge"
	"github.com/synian-app/synbridge/core"
)

type stubCore struct{}

func (stubCore) Do(context.Context, core.Request) (*core.Result, error) {
	return &core.Result{Status: "OK"}, nil
}

func (stubCore) Status(context.Context) (*core.StatusResult, error) {
	return &core.StatusResult{Online: true}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	engine, err := synbridge.New().WithCore(stubCore{}).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)
	return newRouter(engine, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandleAlexa_Launch(t *testing.T) {
	router := newTestRouter(t)

	env := envelopeFor(t, "LaunchRequest", "", nil)
	body, _ := json.Marshal(env)
	req := httptest.NewRequest(http.MethodPost, "/v1/alexa", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp alexaResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Response.OutputSpeech == nil || !strings.Contains(resp.Response.OutputSpeech.SSML, "Synian") {
		t.Fatalf("unexpected speech: %+v", resp.Response.OutputSpeech)
	}
	if resp.Response.ShouldEndSession {
		t.Fatal("launch must keep the session open")
	}
}

func TestHandleAlexa_MalformedBody(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/alexa", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
