// ABOUTME: Configuration for the Charm KV backend connection
// ABOUTME: Server host and auto-sync preferences, filled from the main config file

package charm

const (
	// DefaultCharmHost is the self-hosted 2389 research server.
	DefaultCharmHost = "charm.2389.dev"

	// AppName is the application name for the Charm KV database.
	AppName = "closex"
)

// Config holds charm connection settings.
type Config struct {
	// Host is the charm server hostname (default: charm.2389.dev)
	Host string

	// AutoSync pushes to the server after every write
	AutoSync bool
}

// DefaultConfig returns a config with sync enabled against the default host.
func DefaultConfig() *Config {
	return &Config{
		Host:     DefaultCharmHost,
		AutoSync: true,
	}
}
