package session

import "time"

// Config holds the per-class token signing settings. Access and refresh
// tokens use separate secrets so one class can never be replayed as the
// other.
type Config struct {
	AccessSecret  string        `env:"ACCESS_TOKEN_SECRET,required"`
	AccessTTL     time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshSecret string        `env:"REFRESH_TOKEN_SECRET,required"`
	RefreshTTL    time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"240h"`
}
