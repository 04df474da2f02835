// Package main provides the entry point for the newsreel CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/newsreel/internal/news"
	"github.com/dgnsrekt/newsreel/narration/engines"
	"github.com/dgnsrekt/newsreel/ui"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	style      string
	width      uint
	mouse      bool
	debug      bool
	language   string
	engineName string

	rootCmd = &cobra.Command{
		Use:   "newsreel [CATEGORY]",
		Short: "Read the news in your terminal, out loud if you like",
		Long: paragraph(
			fmt.Sprintf("\nRead the news in your terminal, %s!", keyword("out loud if you like")),
		),
		Example: paragraph("newsreel\nnewsreel technology --language fr\nnewsreel --source file --file ~/news.json"),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return news.Categories, cobra.ShellCompDirectiveNoFileComp
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

// validateStyle checks if the style is a default style, if not, checks that
// the custom style exists.
func validateStyle(style string) error {
	if style != styles.AutoStyle && styles.DefaultStyles[style] == nil {
		style, _ = homedir.Expand(style)
		if _, err := os.Stat(style); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("specified style does not exist: %s", style)
		} else if err != nil {
			return fmt.Errorf("unable to stat file: %w", err)
		}
	}
	return nil
}

func validateOptions(cmd *cobra.Command) error {
	// grab config values from Viper
	width = viper.GetUint("width")
	mouse = viper.GetBool("mouse")
	debug = viper.GetBool("debug")
	language = strings.ToLower(viper.GetString("language"))
	engineName = strings.ToLower(viper.GetString("engine"))

	if debug {
		log.SetLevel(log.DebugLevel)
	}

	if !slices.Contains(news.LanguageCodes(), language) {
		return fmt.Errorf("unsupported language %q, want one of %s",
			language, strings.Join(news.LanguageCodes(), ", "))
	}
	if !slices.Contains(engines.Names, engineName) {
		return fmt.Errorf("unknown engine %q, want one of %s",
			engineName, strings.Join(engines.Names, ", "))
	}

	// validate the glamour style
	style = viper.GetString("style")
	if err := validateStyle(style); err != nil {
		return err
	}

	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))
	// We want to use a special no-TTY style, when stdout is not a terminal
	// and there was no specific style passed by arg
	if !isTerminal && !cmd.Flags().Changed("style") {
		style = "notty"
	}

	// Detect terminal width
	if !cmd.Flags().Changed("width") { //nolint:nestif
		if isTerminal && width == 0 {
			w, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err == nil {
				width = uint(w) //nolint:gosec
			}

			if width > 120 {
				width = 120
			}
		}
		if width == 0 {
			width = 80
		}
	}
	return nil
}

// categoryArg returns the category named on the command line, or the
// configured one.
func categoryArg(args []string) (string, error) {
	category := viper.GetString("category")
	if len(args) > 0 {
		category = strings.ToLower(args[0])
	}
	if !news.ValidCategory(category) {
		return "", fmt.Errorf("unknown category %q, want one of %s",
			category, strings.Join(news.Categories, ", "))
	}
	return category, nil
}

func execute(_ *cobra.Command, args []string) error {
	category, err := categoryArg(args)
	if err != nil {
		return err
	}
	return runTUI(category)
}

func runTUI(category string) error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	// use style set in env, or the configured one if unset
	if err := validateStyle(cfg.GlamourStyle); err != nil {
		cfg.GlamourStyle = style
	}

	cfg.GlamourMaxWidth = width
	cfg.EnableMouse = mouse
	cfg.Category = category
	cfg.Language = language

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := log.Default()

	provider, closeNews, err := newNews(logger)
	if err != nil {
		return err
	}
	defer closeNews()

	sink, closeTelemetry := newTelemetry(logger)
	defer closeTelemetry()

	svc := ui.Services{
		News:      provider,
		Telemetry: sink,
	}

	// An unavailable engine only disables narration
	narrator, closeNarrator, err := newNarrator(ctx, logger)
	if err != nil {
		log.Warn("Narration disabled", "err", err)
		svc.NarrationErr = err
	} else {
		defer closeNarrator()
		svc.Narrator = narrator
	}

	if fp, ok := provider.Provider().(*news.FileProvider); ok {
		cfg.WatchFile = fp.Path()
		svc.Reload = fp.Reload
	}

	// Run Bubble Tea program
	if _, err := ui.NewProgram(cfg, svc).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}

	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	loadDotEnv()
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().StringVarP(&language, "language", "l", "en", "news language ("+strings.Join(news.LanguageCodes(), ", ")+")")
	rootCmd.PersistentFlags().StringVarP(&engineName, "engine", "e", engines.Auto, "speech engine ("+strings.Join(engines.Names, ", ")+")")
	rootCmd.PersistentFlags().String("source", news.SourceGNews, "news source (gnews, backend, file)")
	rootCmd.PersistentFlags().String("file", "", "offline news file for the file source")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write debug output to the log file")
	rootCmd.Flags().StringVarP(&style, "style", "s", styles.AutoStyle, "style name or JSON path")
	rootCmd.Flags().UintVarP(&width, "width", "w", 0, "word-wrap at width (set to 0 to disable)")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse wheel")
	_ = rootCmd.Flags().MarkHidden("mouse")

	// Config bindings
	_ = viper.BindPFlag("style", rootCmd.Flags().Lookup("style"))
	_ = viper.BindPFlag("width", rootCmd.Flags().Lookup("width"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("language", rootCmd.PersistentFlags().Lookup("language"))
	_ = viper.BindPFlag("engine", rootCmd.PersistentFlags().Lookup("engine"))
	_ = viper.BindPFlag("news.source", rootCmd.PersistentFlags().Lookup("source"))
	_ = viper.BindPFlag("news.file", rootCmd.PersistentFlags().Lookup("file"))

	viper.SetDefault("style", styles.AutoStyle)
	viper.SetDefault("width", 0)
	viper.SetDefault("language", "en")
	viper.SetDefault("category", news.Categories[0])
	viper.SetDefault("engine", engines.Auto)
	viper.SetDefault("news.source", news.SourceGNews)

	rootCmd.AddCommand(configCmd, manCmd, readCmd, voicesCmd)
}

// loadDotEnv loads API keys from a .env file in the working directory.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("Could not load .env file", "err", err)
	}
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "newsreel")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "newsreel")}, dirs...)
	}

	if c := os.Getenv("NEWSREEL_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("newsreel")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("newsreel")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "newsreel.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
