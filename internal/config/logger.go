package config

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/simp-lee/logger"
)

// SetupLogger builds the process logger from cfg, installs it as the slog
// default and returns it. extra options are applied last. The caller closes
// the returned logger.
func SetupLogger(cfg *LogConfig, extra ...logger.Option) (*logger.Logger, error) {
	if cfg == nil {
		return nil, errors.New("log config is nil")
	}

	log, err := logger.New(append(BuildLoggerOpts(cfg), extra...)...)
	if err != nil {
		return nil, err
	}
	log.SetDefault()
	return log, nil
}

// BuildLoggerOpts translates cfg into logger options. Unknown levels mean
// info and unknown formats mean the logger's custom format. Console and
// Color default to on. Rotation settings apply only with a file path.
func BuildLoggerOpts(cfg *LogConfig) []logger.Option {
	if cfg == nil {
		return nil
	}

	format := parseFormat(cfg.Format)
	opts := []logger.Option{
		logger.WithLevel(parseLevel(cfg.Level)),
		logger.WithMiddleware(logger.ContextMiddleware()),
		logger.WithConsoleFormat(format),
		logger.WithConsoleColor(enabled(cfg.Color)),
	}
	if !enabled(cfg.Console) {
		opts = append(opts, logger.WithConsoleWriter(io.Discard))
	}

	if cfg.FilePath == "" {
		return opts
	}
	opts = append(opts, logger.WithFilePath(cfg.FilePath), logger.WithFileFormat(format))
	if cfg.MaxSizeMB > 0 {
		opts = append(opts, logger.WithMaxSizeMB(cfg.MaxSizeMB))
	}
	if cfg.RetentionDays > 0 {
		opts = append(opts, logger.WithRetentionDays(cfg.RetentionDays))
	}
	if cfg.MaxBackups > 0 {
		opts = append(opts, logger.WithMaxBackups(cfg.MaxBackups))
	}
	if cfg.CompressRotated != nil {
		opts = append(opts, logger.WithCompressRotated(*cfg.CompressRotated))
	}
	return opts
}

func enabled(b *bool) bool {
	return b == nil || *b
}

func parseFormat(s string) logger.OutputFormat {
	switch strings.ToLower(s) {
	case "text":
		return logger.FormatText
	case "json":
		return logger.FormatJSON
	default:
		return logger.FormatCustom
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
