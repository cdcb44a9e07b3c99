package cmd

import (
	"bytes"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/CompassSecurity/binstrings/internal/cmd/docs"
	"github.com/CompassSecurity/binstrings/internal/cmd/scan"
	"github.com/CompassSecurity/binstrings/pkg/config"
	"github.com/CompassSecurity/binstrings/pkg/format"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Version information - set via ldflags during build
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	rootCmd = &cobra.Command{
		Use:     "binstrings",
		Short:   "Extract null-terminated text strings from binary files",
		Long:    "Binstrings extracts ASCII and UTF-8 strings embedded in binary files and reports their offset, length and the null padding that follows them, so they can be patched in place.",
		Example: "binstrings scan --min-length 4 ./firmware.bin",
		Version: getVersion(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogger(cmd)
			setGlobalLogLevel(cmd)
			loadConfigFile(cmd)
		},
	}
	JsonLogoutput bool
	LogFile       string
	LogColor      bool
	LogDebug      bool
	LogLevel      string
	ConfigFile    string

	logFileHandle *os.File
)

func Execute() error {
	defer CloseLogger()
	return rootCmd.Execute()
}

func getVersion() string {
	return Version
}

func init() {
	rootCmd.AddCommand(scan.NewScanCmd())
	rootCmd.AddCommand(docs.NewDocsCmd(rootCmd))
	rootCmd.PersistentFlags().StringVar(&ConfigFile, "config", "", "Config file path (YAML, JSON, or TOML). Example: ~/.config/binstrings/binstrings.yaml")
	rootCmd.PersistentFlags().BoolVarP(&JsonLogoutput, "json", "", false, "Use JSON as log output format")
	rootCmd.PersistentFlags().StringVarP(&LogFile, "logfile", "l", "", "Log output to a file")
	rootCmd.PersistentFlags().BoolVarP(&LogDebug, "verbose", "v", false, "Enable debug logging (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().StringVar(&LogLevel, "log-level", "", "Set log level globally (trace, debug, info, warn, error). Example: --log-level=warn")
	rootCmd.PersistentFlags().BoolVar(&LogColor, "color", true, "Enable colored log output (auto-disabled when using --logfile or when stderr is not a terminal)")

	rootCmd.SetVersionTemplate(`{{.Version}}
`)

	rootCmd.AddGroup(&cobra.Group{ID: "Scan", Title: "Scan Commands"})
	rootCmd.AddGroup(&cobra.Group{ID: "Helper", Title: "Various Helper Commands"})
}

// CustomWriter makes sure every log event ends with exactly one platform newline.
type CustomWriter struct {
	Writer io.Writer
}

func (cw *CustomWriter) Write(p []byte) (n int, err error) {
	originalLen := len(p)

	p = bytes.TrimSuffix(p, []byte("\n"))

	// necessary as to: https://github.com/rs/zerolog/blob/master/log.go#L474
	newlineChars := []byte("\n")
	if runtime.GOOS == "windows" {
		newlineChars = []byte("\r\n")
	}

	modified := make([]byte, 0, len(p)+len(newlineChars))
	modified = append(modified, p...)
	modified = append(modified, newlineChars...)

	written, err := cw.Writer.Write(modified)
	if err != nil {
		return 0, err
	}

	if written != len(modified) {
		return 0, io.ErrShortWrite
	}

	return originalLen, nil
}

// Logs go to stderr so that records written to stdout stay machine readable.
func initLogger(cmd *cobra.Command) {
	defaultOut := &CustomWriter{Writer: os.Stderr}
	colorEnabled := LogColor
	rootFlags := cmd.Root().PersistentFlags()

	if LogFile != "" {
		// #nosec G304 - User-provided log file path via --logfile flag, user controls their own filesystem
		runLogFile, err := os.OpenFile(
			LogFile,
			os.O_APPEND|os.O_CREATE|os.O_WRONLY,
			format.FileUserReadWrite,
		)
		if err != nil {
			panic(err)
		}
		CloseLogger()
		logFileHandle = runLogFile
		defaultOut = &CustomWriter{Writer: runLogFile}

		if !rootFlags.Changed("color") {
			colorEnabled = false
		}
	} else if !rootFlags.Changed("color") && !term.IsTerminal(int(os.Stderr.Fd())) {
		colorEnabled = false
	}

	log.Logger = newLogger(defaultOut, JsonLogoutput, colorEnabled)
}

// CloseLogger closes the log file opened via --logfile, if any.
func CloseLogger() {
	if logFileHandle != nil {
		_ = logFileHandle.Close()
		logFileHandle = nil
	}
}

func newLogger(out io.Writer, jsonOutput bool, colorEnabled bool) zerolog.Logger {
	if jsonOutput {
		return zerolog.New(out).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:         out,
		TimeFormat:  time.RFC3339,
		NoColor:     !colorEnabled,
		FormatLevel: formatLevel(colorEnabled),
	}
	return zerolog.New(output).With().Timestamp().Logger()
}

// formatLevel returns a level formatter using zerolog's default colors.
func formatLevel(colorEnabled bool) zerolog.Formatter {
	return func(i interface{}) string {
		var level string
		if ll, ok := i.(string); ok {
			level = ll
		} else {
			return ""
		}

		if !colorEnabled {
			return level
		}

		switch level {
		case "trace":
			return "\x1b[90m" + level + "\x1b[0m"
		case "debug":
			return level
		case "info":
			return "\x1b[32m" + level + "\x1b[0m"
		case "warn":
			return "\x1b[33m" + level + "\x1b[0m"
		case "error", "fatal", "panic":
			return "\x1b[31m" + level + "\x1b[0m"
		default:
			return level
		}
	}
}

func setGlobalLogLevel(cmd *cobra.Command) {
	if LogLevel != "" {
		switch LogLevel {
		case "trace":
			zerolog.SetGlobalLevel(zerolog.TraceLevel)
			log.Trace().Msg("Log level set to trace (explicit)")
		case "debug":
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
			log.Debug().Msg("Log level set to debug (explicit)")
		case "info":
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			log.Info().Msg("Log level set to info (explicit)")
		case "warn":
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
			log.Warn().Msg("Log level set to warn (explicit)")
		case "error":
			zerolog.SetGlobalLevel(zerolog.ErrorLevel)
			log.Error().Msg("Log level set to error (explicit)")
		default:
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			log.Warn().Str("logLevelSpecified", LogLevel).Msg("Invalid log level, defaulting to info")
		}
		return
	}

	if LogDebug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Debug().Msg("Log level set to debug (-v)")
		return
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// loadConfigFile loads the configuration from a file if specified
func loadConfigFile(cmd *cobra.Command) {
	if _, err := config.LoadConfig(ConfigFile); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration file")
	}
}
