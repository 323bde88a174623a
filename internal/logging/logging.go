// Package logging provides component-tagged structured logging backed by zap,
// with a size-rotated log file next to the console output.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents a logging level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.FatalLevel
	}
}

// ParseLevel converts a string to a Level
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value interface{}
}

// F creates a new Field (shorthand for structured logging)
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Config holds logger configuration
type Config struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	File       string `mapstructure:"file"`        // log file path (empty = default under the app dir)
	MaxSizeMB  int    `mapstructure:"max_size_mb"` // max size before rotation (default: 10)
	MaxBackups int    `mapstructure:"max_backups"` // number of backups to keep (default: 5)
}

// DefaultConfig returns default logging configuration
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		File:       "", // ~/.config/stampwatch/logs/stampwatch.log
		MaxSizeMB:  10,
		MaxBackups: 5,
	}
}

// Logger writes component-tagged entries to the console and a rotating file.
type Logger struct {
	zl       *zap.Logger
	level    zap.AtomicLevel
	file     *rotatingFile
	filePath string
}

// New creates a new Logger with the given configuration
func New(cfg Config) (*Logger, error) {
	return NewWithConsole(cfg, os.Stdout)
}

// NewWithConsole is New with console lines written to console instead of
// stdout.
func NewWithConsole(cfg Config, console io.Writer) (*Logger, error) {
	if cfg.File == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("unable to get config dir: %w", err)
		}
		cfg.File = filepath.Join(configDir, "stampwatch", "logs", "stampwatch.log")
	}

	if strings.HasPrefix(cfg.File, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("unable to get home dir: %w", err)
		}
		cfg.File = filepath.Join(home, cfg.File[1:])
	}

	return newLogger(cfg, console)
}

// newLogger builds the zap cores: console encoding to console and, when
// cfg.File is set, the same lines to the rotating file.
func newLogger(cfg Config, console io.Writer) (*Logger, error) {
	l := &Logger{
		level:    zap.NewAtomicLevelAt(ParseLevel(cfg.Level).zapLevel()),
		filePath: cfg.File,
	}

	cores := []zapcore.Core{
		zapcore.NewCore(newEncoder(), zapcore.AddSync(console), l.level),
	}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("unable to create log directory: %w", err)
		}
		rf, err := openRotatingFile(cfg.File, cfg.MaxSizeMB, cfg.MaxBackups)
		if err != nil {
			return nil, err
		}
		l.file = rf
		cores = append(cores, zapcore.NewCore(newEncoder(), rf, l.level))
	}

	l.zl = zap.New(zapcore.NewTee(cores...))
	return l, nil
}

// newEncoder renders "2006-01-02T15:04:05Z07:00 [INFO] [component] msg | k=v".
func newEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		NameKey:          "component",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.RFC3339TimeEncoder,
		EncodeLevel:      bracketLevelEncoder,
		EncodeName:       bracketNameEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	})
}

func bracketLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + l.CapitalString() + "]")
}

func bracketNameEncoder(name string, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + name + "]")
}

func toZapFields(err error, fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+1)
	if err != nil {
		out = append(out, zap.Error(err))
	}
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

func (l *Logger) log(level Level, component, msg string, err error, fields ...Field) {
	if l.zl == nil {
		return
	}
	zl := l.zl.Named(component)
	zf := toZapFields(err, fields)
	switch level {
	case LevelDebug:
		zl.Debug(msg, zf...)
	case LevelInfo:
		zl.Info(msg, zf...)
	case LevelWarn:
		zl.Warn(msg, zf...)
	default:
		zl.Error(msg, zf...)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(component, msg string, fields ...Field) {
	l.log(LevelDebug, component, msg, nil, fields...)
}

// Info logs an info message
func (l *Logger) Info(component, msg string, fields ...Field) {
	l.log(LevelInfo, component, msg, nil, fields...)
}

// Warn logs a warning message
func (l *Logger) Warn(component, msg string, fields ...Field) {
	l.log(LevelWarn, component, msg, nil, fields...)
}

// Error logs an error message with an error
func (l *Logger) Error(component, msg string, err error, fields ...Field) {
	l.log(LevelError, component, msg, err, fields...)
}

// Close flushes and closes the log file
func (l *Logger) Close() error {
	if l.zl != nil {
		_ = l.zl.Sync()
	}
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() Level {
	switch l.level.Level() {
	case zapcore.DebugLevel:
		return LevelDebug
	case zapcore.InfoLevel:
		return LevelInfo
	case zapcore.WarnLevel:
		return LevelWarn
	case zapcore.ErrorLevel:
		return LevelError
	default:
		return LevelError + 1
	}
}

// SetLevel sets the log level
func (l *Logger) SetLevel(level Level) {
	l.level.SetLevel(level.zapLevel())
}

// FilePath returns the log file path
func (l *Logger) FilePath() string {
	return l.filePath
}

// Zap exposes the underlying logger for libraries that take a *zap.Logger.
func (l *Logger) Zap() *zap.Logger {
	if l.zl == nil {
		return zap.NewNop()
	}
	return l.zl
}

// Nop returns a no-operation logger that discards all output
func Nop() *Logger {
	return &Logger{
		zl:    zap.NewNop(),
		level: zap.NewAtomicLevelAt(zapcore.FatalLevel),
	}
}
