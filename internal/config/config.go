package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Realtime RealtimeConfig `mapstructure:"realtime" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// AllowedOrigins is used for CORS and the websocket origin check.
	// An empty list allows any origin.
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"dive,url"`

	// SecureCookies sets the Secure flag on the auth cookie.
	SecureCookies bool `mapstructure:"secure_cookies"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lte=43200"`
	BCryptCost           int    `mapstructure:"bcrypt_cost"            validate:"required,gte=4,lte=31"`
}

// TokenLifetime returns the access token lifetime as a duration.
func (c AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeMinutes) * time.Minute
}

// RealtimeConfig tunes the websocket transport.
type RealtimeConfig struct {
	// SendBuffer is the number of frames queued per connection before the
	// connection is treated as a slow consumer and closed.
	SendBuffer   int           `mapstructure:"send_buffer"   validate:"required,gt=0"`
	PingInterval time.Duration `mapstructure:"ping_interval" validate:"required"`
	PongWait     time.Duration `mapstructure:"pong_wait"     validate:"required,gtfield=PingInterval"`
	WriteWait    time.Duration `mapstructure:"write_wait"    validate:"required"`
}

// RedisConfig configures the optional Redis instance used for token revocation.
// When URL is empty an in-process denylist is used instead.
type RedisConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}
