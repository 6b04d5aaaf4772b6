package core

import (
	"strings"
	"time"
)

const (
	// AuthPrompt is the sentinel prompt marking a request as a code
	// validation exchange rather than a conversational turn.
	AuthPrompt = "__auth_synian_mode__"
	// EndSessionPrompt is the sentinel prompt that closes the Core session.
	EndSessionPrompt = "__end_synian_session__"
	// ModeSynian is set on the request context for authenticated turns.
	ModeSynian = "synian"

	originAlexa          = "alexa"
	authMethodTOTP       = "totp"
	statusOK             = "OK"
	statusSessionExpired = "SESSION_EXPIRED"
)

// RequestContext is the immutable per-call envelope attached to every Core
// request. It is constructed fresh per call and never persisted.
type RequestContext struct {
	CompanyID     string `json:"companyId"`
	UserID        string `json:"userId"`
	DeviceID      string `json:"deviceId,omitempty"`
	AlexaUserID   string `json:"alexaUserId,omitempty"`
	ApplicationID string `json:"applicationId,omitempty"`
	SessionID     string `json:"sessionId,omitempty"`
	Timestamp     string `json:"timestamp"`
	Mode          string `json:"mode,omitempty"`
}

// Auth carries the presented credential on an authentication request.
type Auth struct {
	Method string `json:"method"`
	Value  string `json:"value"`
}

// Request is the JSON body posted to the Core query endpoint. Exactly one
// of Prompt or Command is set.
type Request struct {
	Prompt  string         `json:"prompt,omitempty"`
	Command string         `json:"command,omitempty"`
	Origin  string         `json:"origin"`
	Context RequestContext `json:"context"`
	Auth    *Auth          `json:"auth,omitempty"`
}

// AuthRequest builds the code-validation payload.
func AuthRequest(code string, rc RequestContext) Request {
	return Request{
		Prompt:  AuthPrompt,
		Origin:  originAlexa,
		Context: rc,
		Auth:    &Auth{Method: authMethodTOTP, Value: code},
	}
}

// PromptRequest builds a conversational payload.
func PromptRequest(text string, rc RequestContext) Request {
	return Request{
		Prompt:  text,
		Origin:  originAlexa,
		Context: rc,
	}
}

// CommandRequest builds a command payload.
func CommandRequest(text string, rc RequestContext) Request {
	return Request{
		Command: text,
		Origin:  originAlexa,
		Context: rc,
	}
}

// EndSessionRequest builds the best-effort session-close payload.
func EndSessionRequest(rc RequestContext) Request {
	return Request{
		Prompt:  EndSessionPrompt,
		Origin:  originAlexa,
		Context: rc,
	}
}

// ResultError is the nested error object some Core responses carry.
type ResultError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Result is the typed Core response, decoded once at the relay boundary.
// Callers pick reply text through [Result.SpokenReply] and
// [Result.CommandReply] instead of inspecting fields ad hoc.
type Result struct {
	Status        string       `json:"status,omitempty"`
	AuthStatus    string       `json:"authStatus,omitempty"`
	SessionID     string       `json:"sessionId,omitempty"`
	ExpiresAt     time.Time    `json:"expiresAt,omitzero"`
	Reply         string       `json:"reply,omitempty"`
	Response      string       `json:"response,omitempty"`
	Message       string       `json:"message,omitempty"`
	Confirmation  string       `json:"confirmation,omitempty"`
	Language      string       `json:"language,omitempty"`
	VoiceProfile  string       `json:"voiceProfile,omitempty"`
	PreferredName string       `json:"preferredName,omitempty"`
	Error         *ResultError `json:"error,omitempty"`
}

// OK reports the success sentinel on either status field.
func (r *Result) OK() bool {
	return r != nil && (r.Status == statusOK || r.AuthStatus == statusOK)
}

// SessionExpired reports the backend-signaled expiry sentinel, either as
// the top-level status or as a nested error code.
func (r *Result) SessionExpired() bool {
	if r == nil {
		return false
	}
	if r.Status == statusSessionExpired {
		return true
	}
	return r.Error != nil && r.Error.Code == statusSessionExpired
}

// SpokenReply returns the conversational reply text, in the fixed
// precedence reply, response, message. Empty when Core said nothing usable.
func (r *Result) SpokenReply() string {
	if r == nil {
		return ""
	}
	for _, s := range []string{r.Reply, r.Response, r.Message} {
		if strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// CommandReply returns the command acknowledgement text, in the fixed
// precedence confirmation, message, status.
func (r *Result) CommandReply() string {
	if r == nil {
		return ""
	}
	for _, s := range []string{r.Confirmation, r.Message, r.Status} {
		if strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// StatusResult is the decoded body of the Core status probe.
type StatusResult struct {
	Online bool   `json:"online,omitempty"`
	Status string `json:"status,omitempty"`
}

// IsOnline reports whether the probe indicates a reachable, healthy Core.
func (s *StatusResult) IsOnline() bool {
	if s == nil {
		return false
	}
	return s.Online || strings.EqualFold(s.Status, "ok")
}
