package app

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger в production пишет JSON, в остальных окружениях цветную консоль.
// Непустой level (debug, info, warn, error) заменяет уровень окружения;
// нераспознанный уровень игнорируется
func NewLogger(env, level string) *zap.Logger {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if env == "production" {
		config = zap.NewProductionConfig()
	}

	if level != "" {
		if lvl, err := zap.ParseAtomicLevel(level); err == nil {
			config.Level = lvl
		}
	}

	config.OutputPaths = []string{"stdout"}
	config.InitialFields = map[string]any{"env": env}

	logger, err := config.Build()
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}

	return logger
}
