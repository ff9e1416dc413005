package app

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger собирает zap логгер под окружение: JSON в production, цветной консольный вывод иначе.
// Непустой level переопределяет уровень окружения по умолчанию.
func NewLogger(env, level string) (*zap.Logger, error) {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		config.Level = zap.NewAtomicLevelAt(lvl)
	}

	config.OutputPaths = []string{"stdout"}
	config.InitialFields = map[string]interface{}{"env": env}

	return config.Build()
}
