package session

import "time"

// Config holds limits for in-memory reconciliation sessions.
type Config struct {
	// MaxSessions caps concurrently open sessions. Zero means unlimited.
	MaxSessions int `mapstructure:"max_sessions" default:"1000" validate:"gte=0"`
	// MaxStickers caps the scan log of a single session. Zero means unlimited.
	MaxStickers int `mapstructure:"max_stickers" default:"100000" validate:"gte=0"`
	// IdleMinutes expires sessions untouched for that long. Zero disables expiry.
	IdleMinutes int `mapstructure:"idle_minutes" default:"720" validate:"gte=0"`
}

// IdleTimeout returns the expiry window, zero when disabled.
func (c Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleMinutes) * time.Minute
}
