package core

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate func(*Config)) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := Config{BaseURL: srv.URL}
	if mutate != nil {
		mutate(&cfg)
	}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}

func TestDo_PostsAuthPayload(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/core/query" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{"status":"OK","sessionId":"S1"}`))
	}, nil)

	rc := RequestContext{
		CompanyID:     "c-1",
		UserID:        "u-1",
		DeviceID:      "d-1",
		AlexaUserID:   "amzn-1",
		ApplicationID: "app-1",
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
	result, err := client.Do(context.Background(), AuthRequest("123456", rc))
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !result.OK() || result.SessionID != "S1" {
		t.Fatalf("unexpected result: %+v", result)
	}

	if got["prompt"] != AuthPrompt {
		t.Fatalf("expected auth sentinel prompt, got %v", got["prompt"])
	}
	if got["origin"] != "alexa" {
		t.Fatalf("expected origin alexa, got %v", got["origin"])
	}
	auth, _ := got["auth"].(map[string]any)
	if auth["method"] != "totp" || auth["value"] != "123456" {
		t.Fatalf("unexpected auth block: %v", got["auth"])
	}
	rcGot, _ := got["context"].(map[string]any)
	if rcGot["companyId"] != "c-1" || rcGot["alexaUserId"] != "amzn-1" {
		t.Fatalf("unexpected context: %v", got["context"])
	}
	if _, present := rcGot["mode"]; present {
		t.Fatal("auth context must not carry a mode")
	}
}

func TestDo_StaticBearer(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer k-123" {
			t.Errorf("unexpected authorization %q", got)
		}
		_, _ = w.Write([]byte(`{}`))
	}, func(c *Config) { c.APIKey = "k-123" })

	if _, err := client.Do(context.Background(), PromptRequest("hola", RequestContext{})); err != nil {
		t.Fatalf("Do: %v", err)
	}
}

func TestDo_SignedBearerTakesPrecedence(t *testing.T) {
	const secret = "s3cret"
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			t.Errorf("missing bearer prefix: %q", header)
		}
		token, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			t.Errorf("token does not verify: %v", err)
		}
		claims, _ := token.Claims.(jwt.MapClaims)
		if claims["iss"] != "synbridge" || claims["companyId"] != "c-1" {
			t.Errorf("unexpected claims: %v", claims)
		}
		_, _ = w.Write([]byte(`{}`))
	}, func(c *Config) {
		c.APIKey = "ignored"
		c.APISecret = secret
		c.CompanyID = "c-1"
	})

	if _, err := client.Do(context.Background(), PromptRequest("hola", RequestContext{})); err != nil {
		t.Fatalf("Do: %v", err)
	}
}

func TestDo_NonSuccessStatusIsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}, nil)

	_, err := client.Do(context.Background(), PromptRequest("hola", RequestContext{}))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestDo_TimeoutIsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}, func(c *Config) { c.Timeout = 20 * time.Millisecond })

	_, err := client.Do(context.Background(), PromptRequest("hola", RequestContext{}))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestStatus_ProbesEndpoint(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/status" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}, nil)

	probe, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !probe.IsOnline() {
		t.Fatalf("expected online, got %+v", probe)
	}
}

func TestResultSpokenReplyPrecedence(t *testing.T) {
	cases := []struct {
		name   string
		result Result
		want   string
	}{
		{"reply wins", Result{Reply: "a", Response: "b", Message: "c"}, "a"},
		{"response next", Result{Response: "b", Message: "c"}, "b"},
		{"message last", Result{Message: "c"}, "c"},
		{"whitespace skipped", Result{Reply: "  ", Message: "c"}, "c"},
		{"empty", Result{}, ""},
	}
	for _, tc := range cases {
		if got := tc.result.SpokenReply(); got != tc.want {
			t.Errorf("%s: SpokenReply = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestResultCommandReplyPrecedence(t *testing.T) {
	r := Result{Confirmation: "done", Message: "m", Status: "OK"}
	if got := r.CommandReply(); got != "done" {
		t.Fatalf("CommandReply = %q, want done", got)
	}
	r = Result{Status: "OK"}
	if got := r.CommandReply(); got != "OK" {
		t.Fatalf("CommandReply = %q, want OK", got)
	}
}

func TestResultSessionExpired(t *testing.T) {
	if !(&Result{Status: "SESSION_EXPIRED"}).SessionExpired() {
		t.Fatal("top-level status should flag expiry")
	}
	if !(&Result{Error: &ResultError{Code: "SESSION_EXPIRED"}}).SessionExpired() {
		t.Fatal("nested error code should flag expiry")
	}
	if (&Result{Status: "OK"}).SessionExpired() {
		t.Fatal("OK is not expired")
	}
}
