package types

// ConfigVersion is the only configuration schema version accepted.
const ConfigVersion = 3

// Config is the configuration file schema.
//
// Keys use snake_case in both JSON and YAML files; viper decodes them through the mapstructure tags.
type Config struct {
	Version          int                       `json:"version"            mapstructure:"version"`
	Agent            bool                      `json:"agent"              mapstructure:"agent"`
	IgnoreUpdateType string                    `json:"ignore_update_type" mapstructure:"ignore_update_type"`
	RefreshInterval  string                    `json:"refresh_interval"   mapstructure:"refresh_interval"`
	Socket           string                    `json:"socket"             mapstructure:"socket"`
	Registries       map[string]RegistryConfig `json:"registries"         mapstructure:"registries"`
	Images           ImageConfig               `json:"images"             mapstructure:"images"`
	Servers          map[string]string         `json:"servers"            mapstructure:"servers"`
	Notifications    NotificationConfig        `json:"notifications"      mapstructure:"notifications"`
}

// RegistryConfig holds the per-registry options, keyed by registry host.
type RegistryConfig struct {
	// Authentication is the value sent in the Basic Authorization header of token requests
	// (base64 "user:password").
	Authentication string `json:"authentication" mapstructure:"authentication"`
	// Insecure switches the registry to plain HTTP.
	Insecure bool `json:"insecure" mapstructure:"insecure"`
	// Ignore drops every image of the registry from the worklist.
	Ignore bool `json:"ignore" mapstructure:"ignore"`
}

// ImageConfig controls which images are checked and how their tags are interpreted.
type ImageConfig struct {
	// Extra lists references to check in addition to the local images.
	Extra []string `json:"extra" mapstructure:"extra"`
	// Exclude lists reference prefixes to skip.
	Exclude []string `json:"exclude" mapstructure:"exclude"`
	// Versions selects the versioning scheme per image; the first matching rule wins.
	Versions []VersionRule `json:"versions" mapstructure:"versions"`
}

// VersionRule selects the versioning scheme for the images it matches.
type VersionRule struct {
	// Match is how Reference is compared: "exact", "prefix" (default), "suffix", "contains" or "regex".
	Match string `json:"match" mapstructure:"match"`
	// Reference is the string or expression matched against image references.
	Reference string `json:"reference" mapstructure:"reference"`
	// Type is one of "standard", "date", "extended" or "digest".
	Type string `json:"type" mapstructure:"type"`
	// Pattern is the regular expression used by the "extended" scheme.
	Pattern string `json:"pattern" mapstructure:"pattern"`
}

// NotificationConfig configures update notifications.
type NotificationConfig struct {
	URLs  []string `json:"urls"  mapstructure:"urls"`
	Title string   `json:"title" mapstructure:"title"`
}

// RegistryConfig returns the options for a registry host, zero-valued when none are configured.
func (c *Config) RegistryConfig(registry string) RegistryConfig {
	if c == nil || c.Registries == nil {
		return RegistryConfig{}
	}

	return c.Registries[registry]
}
