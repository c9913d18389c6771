package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLogger_NopBeforeInit(t *testing.T) {
	assert.NotNil(t, Logger())
	assert.NotNil(t, Sugar())
}

func TestInit_Level(t *testing.T) {
	require.NoError(t, Init("warn"))

	assert.False(t, Logger().Core().Enabled(zap.InfoLevel))
	assert.True(t, Logger().Core().Enabled(zap.WarnLevel))
}

func TestInit_InvalidLevel(t *testing.T) {
	assert.Error(t, Init("loud"))
}
