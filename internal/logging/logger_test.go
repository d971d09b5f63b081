package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerLevels(t *testing.T) {
	logger := NewLogger("debug", "development")
	require.NotNil(t, logger)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger = NewLogger("not-a-level", "development")
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestNewLoggerFormatters(t *testing.T) {
	logger := NewLogger("info", "development")
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)

	logger = NewLogger("info", "production")
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
}
