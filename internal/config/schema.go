package config

// Config is the root configuration structure
type Config struct {
	Version       int                 `yaml:"version"`
	Debug         bool                `yaml:"debug"` // checked build: invariant violations panic
	Log           LogConfig           `yaml:"log"`
	Schema        SchemaConfig        `yaml:"schema"`
	Notifications NotificationsConfig `yaml:"notifications"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// SchemaConfig points at the relationship schema
type SchemaConfig struct {
	Path string `yaml:"path"`
}

// NotificationsConfig sizes notification delivery
type NotificationsConfig struct {
	Buffer int `yaml:"buffer"` // channel subscriber buffer
}
