package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var InfoLogger, FatalLogger *zap.Logger

var (
	serviceName = "default"
)

type Config struct {
	Level string `mapstructure:"level" yaml:"level"`
	// File пустой = только консоль.
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
}

func SetServiceName(newName string) string {
	oldName := serviceName
	serviceName = newName

	return oldName
}

// New собирает zap логгер: человекочитаемая консоль в stderr и,
// если задан файл, JSON в файл с ротацией.
func New(conf Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if conf.Level != "" {
		if err := level.Set(conf.Level); err != nil {
			return nil, fmt.Errorf("logger level %q: %w", conf.Level, err)
		}
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
	}

	if conf.File != "" {
		w := &lumberjack.Logger{
			Filename:   conf.File,
			MaxSize:    orDefault(conf.MaxSizeMB, 50),
			MaxBackups: orDefault(conf.MaxBackups, 5),
			MaxAge:     orDefault(conf.MaxAgeDays, 30),
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(w),
			level,
		))
	}

	l := zap.New(zapcore.NewTee(cores...)).With(zap.String("service", serviceName))
	return l, nil
}

// Init выставляет глобальные логгеры для printf-хелперов.
func Init(conf Config) (*zap.Logger, error) {
	l, err := New(conf)
	if err != nil {
		return nil, err
	}
	InfoLogger = l
	FatalLogger = l
	return l, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func Info(format string, args ...interface{}) {
	if InfoLogger == nil {
		panic("InfoLogger is not initialized")
	}

	InfoLogger.Info(fmt.Sprintf(format, args...))
}

func Warn(format string, args ...interface{}) {
	if InfoLogger == nil {
		panic("InfoLogger is not initialized")
	}

	InfoLogger.Warn(fmt.Sprintf(format, args...))
}

func Error(format string, args ...interface{}) {
	if InfoLogger == nil {
		panic("InfoLogger is not initialized")
	}

	InfoLogger.Error(fmt.Sprintf(format, args...))
}

func Fatal(format string, args ...interface{}) {
	if FatalLogger == nil {
		panic("FatalLogger is not initialized")
	}

	FatalLogger.Fatal(fmt.Sprintf(format, args...))
}
