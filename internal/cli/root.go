// Package cli implements the folio command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds the settings shared by all commands. It is loaded from
// flags, FOLIO_* environment variables, and an optional YAML config file.
type Config struct {
	LogLevel   string `mapstructure:"log-level"`
	LogFormat  string `mapstructure:"log-format"`
	StyleMode  string `mapstructure:"style-mode"`
	Navigation string `mapstructure:"navigation"`
	NoColor    bool   `mapstructure:"no-color"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		LogLevel:   "warning",
		LogFormat:  "text",
		StyleMode:  "strict",
		Navigation: "standard",
	}
}

// app carries what the subcommands share.
type app struct {
	fs      afero.Fs
	v       *viper.Viper
	cfgFile string
	cfg     Config
	log     *logrus.Logger
}

// NewRootCommand builds the command tree. Files are read from and written to
// fs.
func NewRootCommand(fs afero.Fs, version string) *cobra.Command {
	a := &app{fs: fs, v: viper.New(), log: logrus.New()}

	root := &cobra.Command{
		Use:   "folio",
		Short: "Assemble word-processing documents",
		Long: `folio builds DOCX, HTML, and RTF documents from YAML descriptions and
converts HTML pages to any of those formats.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (default: .folio.yaml if present)")
	pf.String("log-level", Defaults().LogLevel, "log level (debug, info, warning, error)")
	pf.String("log-format", Defaults().LogFormat, "log format (text, json)")
	pf.String("style-mode", Defaults().StyleMode, "style decoding mode (strict, lenient)")
	pf.Bool("no-color", false, "disable colored output")
	_ = a.v.BindPFlags(pf)

	root.AddCommand(
		newBuildCommand(a),
		newConvertCommand(a),
		newDetectCommand(a),
		newTablesCommand(a),
	)
	return root
}

func (a *app) initConfig(cmd *cobra.Command) error {
	d := Defaults()
	a.v.SetDefault("log-level", d.LogLevel)
	a.v.SetDefault("log-format", d.LogFormat)
	a.v.SetDefault("style-mode", d.StyleMode)
	a.v.SetDefault("navigation", d.Navigation)

	a.v.SetFs(a.fs)
	a.v.SetEnvPrefix("FOLIO")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	} else if ok, _ := afero.Exists(a.fs, ".folio.yaml"); ok {
		a.v.SetConfigFile(".folio.yaml")
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	if err := a.v.Unmarshal(&a.cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}

	level, err := logrus.ParseLevel(a.cfg.LogLevel)
	if err != nil {
		return err
	}
	a.log.SetLevel(level)
	a.log.SetOutput(cmd.ErrOrStderr())
	if a.cfg.LogFormat == "json" {
		a.log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		a.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	if a.cfg.NoColor {
		color.NoColor = true
	}
	if a.cfgFile != "" || a.v.ConfigFileUsed() != "" {
		a.log.WithField("file", a.v.ConfigFileUsed()).Debug("config loaded")
	}
	return nil
}

var (
	okColor   = color.New(color.FgGreen)
	nameColor = color.New(color.FgCyan)
)

func success(w io.Writer, format string, args ...interface{}) {
	_, _ = okColor.Fprintf(w, format, args...)
	fmt.Fprintln(w)
}

// Execute runs the folio command on the OS filesystem.
func Execute(version string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := NewRootCommand(afero.NewOsFs(), version)
	if err := root.ExecuteContext(ctx); err != nil {
		_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
