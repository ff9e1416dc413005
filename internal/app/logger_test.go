package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		level string
		debug bool
	}{
		{name: "development defaults to debug", env: "development", debug: true},
		{name: "production defaults to info", env: "production", debug: false},
		{name: "override in production", env: "production", level: "debug", debug: true},
		{name: "override in development", env: "development", level: "warn", debug: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.env, tt.level)
			require.NoError(t, err)
			assert.Equal(t, tt.debug, logger.Core().Enabled(zapcore.DebugLevel))
		})
	}
}

func TestNewLoggerBadLevel(t *testing.T) {
	_, err := NewLogger("production", "loud")
	assert.Error(t, err)
}
