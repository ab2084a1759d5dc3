package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	DatabaseURL string `env:"DATABASE_URL" envDefault:"onboarding.db"`

	Onboarding Onboarding `envPrefix:"ONBOARDING_"`
}

type Onboarding struct {
	// Confirmation polling: how often and how many times to look for the
	// buyer record while the payment pipeline writes it.
	MaxRetries int           `env:"MAX_RETRIES" envDefault:"5"`
	RetryDelay time.Duration `env:"RETRY_DELAY" envDefault:"2s"`

	// How long a registered slot shows its success state before it is
	// removed from the pending list.
	SlotSuccessDelay time.Duration `env:"SLOT_SUCCESS_DELAY" envDefault:"2s"`

	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"30m"`

	// Messaging-channel deep link presented as the call-to-action.
	BotURL string `env:"BOT_URL" envDefault:"https://wa.me/5511966113170"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
