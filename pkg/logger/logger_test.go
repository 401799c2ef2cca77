package logger

import (
	"study_portal_backend/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestResolveLevel(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want zapcore.Level
	}{
		{"debug mode", config.Config{Server: config.ServerConfig{Mode: "debug"}}, zapcore.DebugLevel},
		{"release mode", config.Config{Server: config.ServerConfig{Mode: "release"}}, zapcore.InfoLevel},
		{"explicit level wins", config.Config{Server: config.ServerConfig{Mode: "debug"}, Log: config.LogConfig{Level: "warn"}}, zapcore.WarnLevel},
		{"bad level falls back", config.Config{Log: config.LogConfig{Level: "loud"}}, zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveLevel(&tt.cfg))
		})
	}
}

func TestInitLoggerConsoleOnly(t *testing.T) {
	InitLogger(&config.Config{Log: config.LogConfig{Level: "error"}})
	assert.False(t, Log.Core().Enabled(zapcore.WarnLevel))
	assert.True(t, Log.Core().Enabled(zapcore.ErrorLevel))
}
