package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# glamour style name or JSON path for the article view (default "auto")
style: "auto"
# mouse support
mouse: false
# word-wrap articles at width
width: 80
# news language: en, ta, hi, fr, de or es
language: "en"
# category shown at startup
category: "general"
# speech engine: auto, piper, espeak, say or mock
engine: "auto"

# speech engine settings
speech:
  # binary: "/usr/local/bin/piper"
  voices_dir: "~/.local/share/piper-voices"
  timeout: "2m"

narration:
  # pause between segments
  delay: "100ms"
  # pause after a segment could not be read
  error_delay: "500ms"
  # how long to wait for the voice list when the engine is slow to load it
  catalog_timeout: "3s"
  prosody:
    rate: 0.95
    pitch: 1.0
    volume: 1.0
  language_rates:
    ta: 0.9
  # languages that cannot be read aloud
  disabled_languages: ["ta"]

news:
  # gnews, backend or file
  source: "gnews"
  # api_key: "" # or set GNEWS_API_KEY, a .env file works too
  # base_url: "http://localhost:8000" # for the backend source
  # file: "~/news.json" # for the file source
  country: "us"
  max: 30
  timeout: "15s"
  requests_per_minute: 30

cache:
  # dir: "" # defaults to the user cache dir
  capacity: 20971520
  compression_level: 3
  ttl: "30m"

telemetry:
  # endpoint: "http://localhost:8000"
  buffer: 64
  timeout: "5s"
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the newsreel config file",
	Long:    paragraph(fmt.Sprintf("\n%s the newsreel config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("newsreel config\nnewsreel config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("Newsreel", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
