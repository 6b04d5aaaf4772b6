package synbridge

import "strings"

// VoiceProfile is the language/voice pair used to render Synian speech.
// One official voice exists per Synian language, not per user.
type VoiceProfile struct {
	LanguageCode string
	VoiceID      string
}

var (
	voiceEsMX = VoiceProfile{LanguageCode: "es-MX", VoiceID: "Andrés"}
	voiceEsES = VoiceProfile{LanguageCode: "es-ES", VoiceID: "Sergio"}
	voiceEnUS = VoiceProfile{LanguageCode: "en-US", VoiceID: "Matthew"}
	voicePtBR = VoiceProfile{LanguageCode: "pt-BR", VoiceID: "Ricardo"}
)

// DefaultVoice is the fallback profile for absent or unrecognized locales.
var DefaultVoice = voiceEsMX

// ResolveVoice maps a free-form locale tag to the canonical voice profile
// for its language family. Matching is a case-insensitive prefix match on
// the language subtag; within Spanish, everything except es-MX resolves to
// the es-ES voice. Unmatched tags fall back to [DefaultVoice]. Pure: same
// input, same output, no failure mode.
func ResolveVoice(localeTag string) VoiceProfile {
	tag := strings.ToLower(strings.TrimSpace(localeTag))
	if tag == "" {
		return DefaultVoice
	}

	lang, _, _ := strings.Cut(tag, "-")
	switch lang {
	case "es":
		if tag == "es-mx" {
			return voiceEsMX
		}
		return voiceEsES
	case "en":
		return voiceEnUS
	case "pt":
		return voicePtBR
	default:
		return DefaultVoice
	}
}
