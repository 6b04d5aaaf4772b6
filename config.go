package synbridge

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/synian-app/synbridge/session"
)

// Config defines the engine configuration. Instances are cloned at Build
// time and treated as immutable afterwards.
type Config struct {
	Core     CoreConfig
	Auth     AuthConfig
	Session  SessionConfig
	Messages MessageConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
CORE CONFIG
====================================
*/

// CoreConfig identifies the Synian Core deployment this bridge relays to.
// CompanyID and UserID are the tenant identifiers stamped into every
// request context; both must be UUIDs.
type CoreConfig struct {
	BaseURL   string
	APIKey    string
	APISecret string
	CompanyID string
	UserID    string
	Timeout   time.Duration
}

/*
====================================
AUTH CONFIG
====================================
*/

// LockoutPolicy selects what happens when the retry budget is exhausted.
type LockoutPolicy int

const (
	// LockoutPolicyCooldown refuses further attempts until a fixed cooldown
	// elapses, then unlocks automatically.
	LockoutPolicyCooldown LockoutPolicy = iota
	// LockoutPolicyReset clears the conversation's state entirely; the user
	// must restart Synian mode.
	LockoutPolicyReset
)

// AuthConfig bounds the code-submission retry budget.
type AuthConfig struct {
	// MaxAttempts is the consecutive-failure budget; reaching it triggers
	// the lockout policy and resets the counter in the same step.
	MaxAttempts int
	// LockoutPolicy selects cooldown or restart-required behavior.
	LockoutPolicy LockoutPolicy
	// LockoutCooldown applies under [LockoutPolicyCooldown].
	LockoutCooldown time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig selects and tunes the conversation state store.
type SessionConfig struct {
	Driver      session.Driver
	RedisPrefix string
	// InactivityTTL reclaims state for conversations that stop sending
	// events without an explicit exit.
	InactivityTTL time.Duration
}

/*
====================================
MESSAGE CONFIG
====================================
*/

// MessageConfig holds every user-facing string the engine can speak.
// Defaults are Spanish; full localization tables are the platform
// adapter's concern, not the engine's.
type MessageConfig struct {
	Welcome         string
	WelcomeReprompt string
	Help            string
	Fallback        string

	AskCode      string
	CodeMisheard string
	RetryCode    string
	Lockout      string
	Locked       string

	Greeting         string // used when Core returns no reply text; rendered with the preferred name
	GreetingNameless string

	NotAuthenticated string
	UtteranceMissing string
	UtterancePrompt  string
	CommandMissing   string
	CommandPrompt    string
	CommandSent      string
	NoResponse       string

	StatusOnline  string
	StatusOffline string

	Expired      string
	CoreDown     string
	Goodbye      string
	SessionEnded string
	GenericError string
	RetryPrompt  string
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the production defaults: 8 second Core timeout,
// three-attempt budget with a 3 minute cooldown lockout, memory-backed
// sessions with a 5 minute inactivity window.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Core: CoreConfig{
			BaseURL:   "https://api.synian.app",
			CompanyID: uuid.Nil.String(),
			UserID:    uuid.Nil.String(),
			Timeout:   8 * time.Second,
		},
		Auth: AuthConfig{
			MaxAttempts:     3,
			LockoutPolicy:   LockoutPolicyCooldown,
			LockoutCooldown: 3 * time.Minute,
		},
		Session: SessionConfig{
			Driver:        session.DriverMemory,
			RedisPrefix:   "sb",
			InactivityTTL: 5 * time.Minute,
		},
		Messages: defaultMessages(),
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 64,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func defaultMessages() MessageConfig {
	return MessageConfig{
		Welcome:         "Hola, soy Alexa, intérprete de Synian. Puedes decir \"modo Synian\" o \"activar modo Synian\".",
		WelcomeReprompt: "¿Deseas activar el modo Synian?",
		Help:            "Puedes decir \"activa modo Synian\" o \"salir de modo Synian\".",
		Fallback:        "No te entendí. Puedes decir \"modo Synian\" o pedir ayuda.",

		AskCode:      "Por favor, dime el código TOTP para activar modo Synian.",
		CodeMisheard: "No entendí el código. Por favor repítelo número por número.",
		RetryCode:    "Clave incorrecta. Vuelve a intentarlo, por favor.",
		Lockout:      "Clave incorrecta tres veces. Por seguridad, vuelve a iniciar el modo Synian.",
		Locked:       "Por seguridad, los intentos están bloqueados temporalmente. Intenta más tarde.",

		Greeting:         "Autenticación verificada. Hola %s, te saluda Synian.",
		GreetingNameless: "Autenticación verificada. Te saluda Synian.",

		NotAuthenticated: "Primero activa el modo Synian con tu código.",
		UtteranceMissing: "Necesito que me digas qué quieres decirle a Synian.",
		UtterancePrompt:  "¿Qué quieres decirle a Synian?",
		CommandMissing:   "Necesito que me digas qué acción deseas que Synian ejecute.",
		CommandPrompt:    "Indica el comando que debo enviar a Synian.",
		CommandSent:      "Tu comando fue enviado a Synian.",
		NoResponse:       "Synian no ha respondido.",

		StatusOnline:  "Synian está en línea y listo para ayudarte.",
		StatusOffline: "Synian no está disponible en este momento.",

		Expired:      "Tu sesión de Synian expiró. Por favor, vuelve a decir \"modo Synian\" para autenticarte.",
		CoreDown:     "Hubo un problema al conectar con el sistema central.",
		Goodbye:      "Volviendo a modo Alexa.",
		SessionEnded: "Hasta luego. Puedes decir \"abre modo Synian\" para volver a iniciar.",
		GenericError: "Hubo un problema al procesar tu solicitud. Inténtalo nuevamente en unos segundos.",
		RetryPrompt:  "¿Deseas intentar de nuevo?",
	}
}

// Validate checks the configuration for internal consistency. It is called
// by [Builder.Build]; direct callers only need it when assembling a Config
// by hand.
func (c *Config) Validate() error {
	if c.Core.BaseURL == "" {
		return errors.New("Core.BaseURL required")
	}
	if c.Core.Timeout <= 0 {
		return errors.New("Core.Timeout must be positive")
	}
	if _, err := uuid.Parse(c.Core.CompanyID); err != nil {
		return fmt.Errorf("Core.CompanyID must be a UUID: %w", err)
	}
	if _, err := uuid.Parse(c.Core.UserID); err != nil {
		return fmt.Errorf("Core.UserID must be a UUID: %w", err)
	}
	if c.Auth.MaxAttempts < 1 || c.Auth.MaxAttempts > 10 {
		return errors.New("Auth.MaxAttempts out of range [1,10]")
	}
	if c.Auth.LockoutPolicy == LockoutPolicyCooldown && c.Auth.LockoutCooldown <= 0 {
		return errors.New("Auth.LockoutCooldown must be positive under the cooldown policy")
	}
	if c.Session.InactivityTTL <= 0 {
		return errors.New("Session.InactivityTTL must be positive")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a struct copy is a deep copy.
	return cfg
}
