package main

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/google/uuid"

	synbridge "github.com/synian-app/synbridge"
)

// Alexa request envelope, reduced to the fields the engine consumes.
type alexaEnvelope struct {
	Version string `json:"version"`
	Session struct {
		SessionID   string `json:"sessionId"`
		Application struct {
			ApplicationID string `json:"applicationId"`
		} `json:"application"`
		User struct {
			UserID string `json:"userId"`
		} `json:"user"`
	} `json:"session"`
	Context struct {
		System struct {
			Device struct {
				DeviceID string `json:"deviceId"`
			} `json:"device"`
		} `json:"System"`
	} `json:"context"`
	Request struct {
		Type      string `json:"type"`
		RequestID string `json:"requestId"`
		Locale    string `json:"locale"`
		Reason    string `json:"reason"`
		Intent    struct {
			Name  string `json:"name"`
			Slots map[string]struct {
				Name  string `json:"name"`
				Value string `json:"value"`
			} `json:"slots"`
		} `json:"intent"`
	} `json:"request"`
}

type alexaResponse struct {
	Version  string            `json:"version"`
	Response alexaResponseBody `json:"response"`
}

type alexaResponseBody struct {
	OutputSpeech     *alexaSpeech   `json:"outputSpeech,omitempty"`
	Reprompt         *alexaReprompt `json:"reprompt,omitempty"`
	ShouldEndSession bool           `json:"shouldEndSession"`
}

type alexaSpeech struct {
	Type string `json:"type"`
	SSML string `json:"ssml"`
}

type alexaReprompt struct {
	OutputSpeech alexaSpeech `json:"outputSpeech"`
}

// classify maps the Alexa request onto an engine [synbridge.Event]. The
// conversation identifier is the Alexa user id, not the session id, so
// auth state survives the platform's short session windows.
func classify(env alexaEnvelope) synbridge.Event {
	ev := synbridge.Event{
		ConversationID: env.Session.User.UserID,
		RequestID:      env.Request.RequestID,
		Locale:         env.Request.Locale,
		DeviceID:       env.Context.System.Device.DeviceID,
		ApplicationID:  env.Session.Application.ApplicationID,
		PlatformUserID: env.Session.User.UserID,
	}
	if ev.RequestID == "" {
		ev.RequestID = uuid.NewString()
	}
	if len(env.Request.Intent.Slots) > 0 {
		ev.Slots = make(map[string]string, len(env.Request.Intent.Slots))
		for name, slot := range env.Request.Intent.Slots {
			ev.Slots[name] = slot.Value
		}
	}

	switch env.Request.Type {
	case "LaunchRequest":
		ev.Intent = synbridge.IntentLaunch
		return ev
	case "SessionEndedRequest":
		ev.Intent = synbridge.IntentSessionEnded
		return ev
	case "IntentRequest":
	default:
		ev.Intent = synbridge.IntentFallback
		return ev
	}

	switch env.Request.Intent.Name {
	case "ActivateSynianIntent", "ProvideCodeIntent":
		ev.Intent = synbridge.IntentSubmitCode
	case "ConversacionIntent":
		ev.Intent = synbridge.IntentConverse
	case "CommandIntent":
		ev.Intent = synbridge.IntentCommand
	case "GetStatusIntent":
		ev.Intent = synbridge.IntentStatus
	case "AMAZON.HelpIntent":
		ev.Intent = synbridge.IntentHelp
	case "AMAZON.CancelIntent":
		ev.Intent = synbridge.IntentCancel
	case "AMAZON.StopIntent":
		ev.Intent = synbridge.IntentExit
	default:
		ev.Intent = synbridge.IntentFallback
	}
	return ev
}

// renderResponse wraps engine speech in the Alexa envelope. Synian-voiced
// speech gets the voice and prosody markup; bridge speech gets a plain
// language wrap.
func renderResponse(sp synbridge.Speech) alexaResponse {
	body := alexaResponseBody{ShouldEndSession: sp.EndSession}
	if sp.Text != "" {
		body.OutputSpeech = &alexaSpeech{Type: "SSML", SSML: renderSSML(sp)}
	}
	if sp.Reprompt != "" {
		body.Reprompt = &alexaReprompt{
			OutputSpeech: alexaSpeech{
				Type: "SSML",
				SSML: renderSSML(synbridge.Speech{Text: sp.Reprompt, Language: sp.Language}),
			},
		}
	}
	return alexaResponse{Version: "1.0", Response: body}
}

func renderSSML(sp synbridge.Speech) string {
	text := escapeSSML(sp.Text)
	lang := sp.Language
	if lang == "" {
		lang = synbridge.DefaultVoice.LanguageCode
	}
	if sp.Voice != "" {
		return fmt.Sprintf(
			`<speak><lang xml:lang=%q><voice name=%q><prosody rate="95%%" pitch="+1%%">%s</prosody></voice></lang></speak>`,
			lang, sp.Voice, text,
		)
	}
	return fmt.Sprintf(`<speak><lang xml:lang=%q>%s</lang></speak>`, lang, text)
}

// escapeSSML keeps reply text from breaking out of the SSML document.
func escapeSSML(text string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(text)); err != nil {
		return ""
	}
	return b.String()
}
