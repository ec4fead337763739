package driven

// ConfigStore provides persistent application configuration.
// Values are stored as typed key-value pairs; writes persist
// immediately.
type ConfigStore interface {
	// Get retrieves a raw configuration value by key.
	Get(key string) (any, bool)

	// GetString retrieves a string value, or "" when absent.
	GetString(key string) string

	// GetInt retrieves an integer value, or 0 when absent.
	GetInt(key string) int

	// GetBool retrieves a boolean value, or false when absent.
	GetBool(key string) bool

	// Set stores a configuration value and persists it.
	Set(key string, value any) error
}
