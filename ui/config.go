package ui

// Config contains TUI-specific configuration.
type Config struct {
	GlamourMaxWidth uint
	GlamourStyle    string `env:"GLAMOUR_STYLE"`
	EnableMouse     bool

	// Initial selection
	Category string
	Language string

	// Offline news file to watch for changes, empty when fetching online
	WatchFile string

	// For debugging the UI
	GlamourEnabled bool `env:"NEWSREEL_ENABLE_GLAMOUR" envDefault:"true"`
}
