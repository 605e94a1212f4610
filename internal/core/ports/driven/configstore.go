package driven

// ConfigStore provides access to application configuration. The file
// implementation flattens nested tables to dot-notation keys, so
// [openai] api_key is read as "openai.api_key".
type ConfigStore interface {
	// Get retrieves a raw configuration value by key. The boolean
	// reports whether the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string value, or "" when the key is
	// missing or not a string.
	GetString(key string) string

	// GetInt retrieves an integer value, or 0 when the key is missing
	// or not an integer.
	GetInt(key string) int

	// GetBool retrieves a boolean value, or false when the key is
	// missing or not a boolean.
	GetBool(key string) bool

	// GetStringSlice retrieves a string slice value, or nil when the
	// key is missing or not a slice.
	GetStringSlice(key string) []string

	// Set stores a value and persists it immediately.
	Set(key string, value any) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
