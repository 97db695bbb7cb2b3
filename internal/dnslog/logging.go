// Package dnslog provides configurable zap logger creation for dnsdbq's
// diagnostic stream. The style is selected by the CLI's repeatable -d flag:
// zero occurrences is silent, one is human terminal output, two or more is
// logfmt with caller information (cheap enough to leave on in scripts).
package dnslog

import (
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Style selects the logger's rendering.
type Style string

const (
	StyleNoop     Style = "noop"
	StyleTerminal Style = "terminal"
	StyleJSON     Style = "json"
	StyleLogfmt   Style = "logfmt"
)

// Config controls logger construction.
type Config struct {
	Style Style
	Level zapcore.Level
}

// FromVerbosity maps the -d repeat count to a Config, per the CLI surface
// described in spec.md §6.
func FromVerbosity(count int) Config {
	switch {
	case count <= 0:
		return Config{Style: StyleNoop}
	case count == 1:
		return Config{Style: StyleTerminal, Level: zapcore.InfoLevel}
	default:
		return Config{Style: StyleLogfmt, Level: zapcore.DebugLevel}
	}
}

// NewLogger creates a zap logger based on the Config settings.
func NewLogger(c Config) *zap.Logger {
	var err error
	var logger *zap.Logger

	style := c.Style
	if style == "" {
		style = StyleTerminal
	}
	level := c.Level

	switch style {
	case StyleNoop:
		logger = zap.NewNop()
	case StyleJSON:
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
		logger, err = cfg.Build(
			zap.AddCaller(),
			zap.AddStacktrace(zap.ErrorLevel),
		)
	case StyleTerminal:
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
		logger, err = cfg.Build(
			zap.AddCaller(),
			zap.AddStacktrace(zap.ErrorLevel),
		)
	case StyleLogfmt:
		// Token-efficient logfmt format: ts=15:04:05 lvl=info caller=file.go:42 msg="message" key=value
		encoderConfig := zapcore.EncoderConfig{
			TimeKey:       "ts",
			LevelKey:      "lvl",
			NameKey:       "logger",
			CallerKey:     "caller",
			MessageKey:    "msg",
			StacktraceKey: "stacktrace",
			LineEnding:    zapcore.DefaultLineEnding,
		}
		core := zapcore.NewCore(
			NewLogfmtEncoder(encoderConfig),
			zapcore.AddSync(os.Stderr),
			level,
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
	default:
		log.Fatalf(
			"invalid logging style %q: must be one of: terminal, json, logfmt, noop",
			style,
		)
	}

	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	return logger
}
