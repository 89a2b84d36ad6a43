package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	// LogVerbosityInfo is the default verbosity.
	LogVerbosityInfo = 0
	// LogVerbosityDebug turns on debug logging.
	LogVerbosityDebug = 1
	// LogVerbosityTrace turns on trace logging.
	LogVerbosityTrace = 2
)

type contextKey struct{}

// Config represents the logging configuration.
type Config struct {
	// Verbosity specifies the logging verbosity level.
	Verbosity int
	// Format specifies the logging format ("text" or "json").
	Format string
	// Output specifies the destination: stderr, stdout or a file path.
	Output string
}

// Configure will configure the standard logger from the supplied config.
func Configure(logConfig *Config) error {
	return configure(logrus.StandardLogger(), logConfig)
}

func configure(logger *logrus.Logger, logConfig *Config) error {
	switch {
	case logConfig.Verbosity >= LogVerbosityTrace:
		logger.SetLevel(logrus.TraceLevel)
	case logConfig.Verbosity == LogVerbosityDebug:
		logger.SetLevel(logrus.DebugLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	switch strings.ToLower(logConfig.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return invalidLogFormatError{format: logConfig.Format}
	}

	out, err := openOutput(logConfig.Output)
	if err != nil {
		return err
	}

	logger.SetOutput(out)

	return nil
}

func openOutput(output string) (io.Writer, error) {
	switch strings.ToLower(output) {
	case "":
		return nil, ErrLogOutputRequired
	case "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	}

	file, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", output, err)
	}

	return file, nil
}

// RaiseToDebug lowers the level of the standard logger to debug unless it already logs more.
func RaiseToDebug() {
	if !logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

// AddFlagsToCommand will add the logging flags to the supplied command.
func AddFlagsToCommand(cmd *cobra.Command, logConfig *Config) {
	cmd.PersistentFlags().IntVarP(&logConfig.Verbosity,
		"verbosity",
		"v",
		LogVerbosityInfo,
		"The verbosity level of the logging. The level increases with the value, 2 or more is trace.")

	cmd.PersistentFlags().StringVar(&logConfig.Format,
		"log-format",
		"text",
		"The format of the log output (text or json).")

	cmd.PersistentFlags().StringVar(&logConfig.Output,
		"log-output",
		"stderr",
		"The output for logging: stderr, stdout or a file path.")
}

// WithLogger returns a context carrying the supplied logger.
func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// GetLogger returns the logger from the context, or a standard logger entry.
func GetLogger(ctx context.Context) *logrus.Entry {
	if logger, ok := ctx.Value(contextKey{}).(*logrus.Entry); ok {
		return logger
	}

	return logrus.NewEntry(logrus.StandardLogger())
}
