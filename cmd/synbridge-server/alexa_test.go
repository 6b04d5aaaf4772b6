package main

import (
	"encoding/json"
	"strings"
	"testing"

	synbridge "github.com/synian-app/synbridge"
)

func envelopeFor(t *testing.T, requestType, intentName string, slots map[string]string) alexaEnvelope {
	t.Helper()

	raw := map[string]any{
		"version": "1.0",
		"session": map[string]any{
			"sessionId":   "amzn-session-1",
			"application": map[string]any{"applicationId": "app-1"},
			"user":        map[string]any{"userId": "amzn-user-1"},
		},
		"context": map[string]any{
			"System": map[string]any{
				"device": map[string]any{"deviceId": "device-1"},
			},
		},
		"request": map[string]any{
			"type":      requestType,
			"requestId": "req-1",
			"locale":    "es-MX",
		},
	}
	if intentName != "" {
		slotMap := map[string]any{}
		for name, value := range slots {
			slotMap[name] = map[string]any{"name": name, "value": value}
		}
		raw["request"].(map[string]any)["intent"] = map[string]any{
			"name":  intentName,
			"slots": slotMap,
		}
	}

	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	var env alexaEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	return env
}

func TestClassify(t *testing.T) {
	cases := []struct {
		requestType string
		intentName  string
		want        synbridge.Intent
	}{
		{"LaunchRequest", "", synbridge.IntentLaunch},
		{"SessionEndedRequest", "", synbridge.IntentSessionEnded},
		{"IntentRequest", "ActivateSynianIntent", synbridge.IntentSubmitCode},
		{"IntentRequest", "ProvideCodeIntent", synbridge.IntentSubmitCode},
		{"IntentRequest", "ConversacionIntent", synbridge.IntentConverse},
		{"IntentRequest", "CommandIntent", synbridge.IntentCommand},
		{"IntentRequest", "GetStatusIntent", synbridge.IntentStatus},
		{"IntentRequest", "AMAZON.HelpIntent", synbridge.IntentHelp},
		{"IntentRequest", "AMAZON.CancelIntent", synbridge.IntentCancel},
		{"IntentRequest", "AMAZON.StopIntent", synbridge.IntentExit},
		{"IntentRequest", "SomeUnknownIntent", synbridge.IntentFallback},
		{"UnknownRequest", "", synbridge.IntentFallback},
	}

	for _, tc := range cases {
		env := envelopeFor(t, tc.requestType, tc.intentName, nil)
		ev := classify(env)
		if ev.Intent != tc.want {
			t.Errorf("%s/%s classified as %v, want %v", tc.requestType, tc.intentName, ev.Intent, tc.want)
		}
	}
}

func TestClassify_CarriesIdentityAndSlots(t *testing.T) {
	env := envelopeFor(t, "IntentRequest", "ProvideCodeIntent", map[string]string{"clave": "123456"})
	ev := classify(env)

	if ev.ConversationID != "amzn-user-1" {
		t.Fatalf("conversation id should be the platform user id, got %q", ev.ConversationID)
	}
	if ev.DeviceID != "device-1" || ev.ApplicationID != "app-1" {
		t.Fatalf("missing device context: %+v", ev)
	}
	if ev.Slots["clave"] != "123456" {
		t.Fatalf("slot not carried: %+v", ev.Slots)
	}
	if ev.Locale != "es-MX" {
		t.Fatalf("locale not carried: %q", ev.Locale)
	}
}

func TestClassify_GeneratesRequestIDWhenAbsent(t *testing.T) {
	env := envelopeFor(t, "LaunchRequest", "", nil)
	env.Request.RequestID = ""
	ev := classify(env)
	if ev.RequestID == "" {
		t.Fatal("expected a generated request id")
	}
}

func TestRenderSSML(t *testing.T) {
	// Assistant voice gets the voice and prosody wrap.
	got := renderSSML(synbridge.Speech{Text: "Hola", Language: "es-MX", Voice: "Andrés"})
	for _, want := range []string{`<voice name="Andrés">`, `<prosody rate="95%" pitch="+1%">`, `xml:lang="es-MX"`, "Hola"} {
		if !strings.Contains(got, want) {
			t.Fatalf("ssml %q missing %q", got, want)
		}
	}

	// Bridge voice is a bare language wrap.
	got = renderSSML(synbridge.Speech{Text: "Hola", Language: "es-MX"})
	if strings.Contains(got, "<voice") || strings.Contains(got, "<prosody") {
		t.Fatalf("bridge speech must not carry voice markup: %q", got)
	}

	// Reply text cannot break out of the document.
	got = renderSSML(synbridge.Speech{Text: `<speak>hack & run</speak>`, Language: "es-MX"})
	if strings.Contains(got, "<speak>hack") {
		t.Fatalf("markup not escaped: %q", got)
	}
	if !strings.Contains(got, "&amp;") {
		t.Fatalf("ampersand not escaped: %q", got)
	}
}

func TestRenderResponse(t *testing.T) {
	resp := renderResponse(synbridge.Speech{
		Text:       "Adiós",
		Language:   "es-MX",
		EndSession: true,
	})
	if !resp.Response.ShouldEndSession {
		t.Fatal("end session flag lost")
	}
	if resp.Response.OutputSpeech == nil || resp.Response.OutputSpeech.Type != "SSML" {
		t.Fatalf("expected SSML output speech, got %+v", resp.Response.OutputSpeech)
	}
	if resp.Response.Reprompt != nil {
		t.Fatal("no reprompt expected")
	}

	resp = renderResponse(synbridge.Speech{Text: "Hola", Reprompt: "¿Sigues ahí?", Language: "es-MX"})
	if resp.Response.Reprompt == nil {
		t.Fatal("reprompt lost")
	}
	if resp.Response.ShouldEndSession {
		t.Fatal("open session marked ended")
	}
}
