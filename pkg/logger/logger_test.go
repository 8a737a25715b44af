package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dealerhub/dealerhub/internal/common/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestGetLogLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"dpanic":  zapcore.DPanicLevel,
		"panic":   zapcore.PanicLevel,
		"fatal":   zapcore.FatalLevel,
		"unknown": zapcore.InfoLevel,
	}
	for in, exp := range cases {
		assert.Equal(t, exp, getLogLevel(in), in)
	}
}

func TestSetDefaults(t *testing.T) {
	cfg := &config.LoggerConfig{}
	setLoggerDefaults(cfg)
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
	assert.Equal(t, 100, cfg.MaxSize)
	assert.Equal(t, 3, cfg.MaxBackups)
	assert.Equal(t, 7, cfg.MaxAge)
	assert.Equal(t, "Local", cfg.TimeZone)
	assert.NotEmpty(t, cfg.TimeFormat)

	fileCfg := &config.LoggerConfig{Output: "file"}
	setLoggerDefaults(fileCfg)
	assert.NotEmpty(t, fileCfg.FilePath)
}

func TestResolveTimeZone(t *testing.T) {
	assert.Equal(t, "UTC", resolveTimeZone(&config.LoggerConfig{TimeZone: "UTC"}).String())
	assert.Equal(t, "Local", resolveTimeZone(&config.LoggerConfig{TimeZone: "Nowhere/Invalid"}).String())
}

func TestNewLogger_Stdout(t *testing.T) {
	lg, err := NewLogger(&config.LoggerConfig{Format: "console"})
	assert.NoError(t, err)
	assert.NotNil(t, lg)
	lg.Info("hello")
}

func TestNewLogger_FileWithStacktrace(t *testing.T) {
	tmp := t.TempDir()
	cfg := &config.LoggerConfig{
		Output:     "file",
		FilePath:   filepath.Join(tmp, "logs", "app.log"),
		Format:     "console",
		Color:      true,
		Stacktrace: true,
		Level:      "debug",
		TimeZone:   "UTC",
	}

	lg, err := NewLogger(cfg)
	assert.NoError(t, err)
	assert.NotNil(t, lg)

	lg.Debug("debug message")
	lg.Error("error message")
	_ = lg.Sync()

	_, err = os.Stat(filepath.Dir(cfg.FilePath))
	assert.NoError(t, err)
}
