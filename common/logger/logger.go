package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"github.com/natefinch/lumberjack"
)

const (
	DefaultFileMaxSizeMB = 10
	DefaultMaxBackups    = 3
	DefaultMaxAgeDays    = 7
)

type Config struct {
	AppName    string `json:"appName"`
	Level      string `json:"level"`
	File       string `json:"file"` // empty disables file output
	MaxSizeMB  int    `json:"maxSizeMB"`
	MaxBackups int    `json:"maxBackups"`
	MaxAgeDays int    `json:"maxAgeDays"`
	Json       bool   `json:"json"`
	NoConsole  bool   `json:"noConsole"`
}

var (
	mu    sync.RWMutex
	log   = zap.NewNop()
	sugar = log.Sugar()
)

func ParseLogLevel(level string) (zapcore.Level, error) {
	switch strings.ToUpper(level) {
	case "", "INFO":
		return zapcore.InfoLevel, nil
	case "DEBUG":
		return zapcore.DebugLevel, nil
	case "WARN":
		return zapcore.WarnLevel, nil
	case "ERROR":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level: %v", level)
	}
}

// New builds a zap logger writing to stderr and, when cfg.File is set, to a
// lumberjack-rotated file.
func New(cfg Config) (*zap.Logger, error) {
	level, err := ParseLogLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	var enc zapcore.Encoder
	if cfg.Json {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	var cores []zapcore.Core
	if !cfg.NoConsole {
		cores = append(cores, zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level))
	}
	if cfg.File != "" {
		fileEncCfg := encCfg
		fileEncCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		w := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    orDefault(cfg.MaxSizeMB, DefaultFileMaxSizeMB),
			MaxBackups: orDefault(cfg.MaxBackups, DefaultMaxBackups),
			MaxAge:     orDefault(cfg.MaxAgeDays, DefaultMaxAgeDays),
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEncCfg), zapcore.AddSync(w), level))
	}
	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	if cfg.AppName != "" {
		l = l.Named(cfg.AppName)
	}
	return l, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// InitLogger replaces the package logger used by the printf helpers and L.
func InitLogger(cfg Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	mu.Lock()
	log = l
	sugar = l.WithOptions(zap.AddCallerSkip(1)).Sugar()
	mu.Unlock()
	return nil
}

func CloseLogger() {
	mu.RLock()
	defer mu.RUnlock()
	_ = log.Sync()
}

// L returns the structured logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func s() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func Debug(msg string, param ...any) {
	s().Debugf(msg, param...)
}

func Info(msg string, param ...any) {
	s().Infof(msg, param...)
}

func Warn(msg string, param ...any) {
	s().Warnf(msg, param...)
}

func Error(msg string, param ...any) {
	s().Errorf(msg, param...)
}
