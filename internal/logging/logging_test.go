package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLevels(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":  zapcore.DebugLevel,
		" WARN ": zapcore.WarnLevel,
		"":       zapcore.InfoLevel,
		"chatty": zapcore.InfoLevel,
		"error":  zapcore.ErrorLevel,
	}
	for in, want := range tests {
		in, want := in, want
		t.Run(in, func(t *testing.T) {
			logger, err := New(in)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(want))
			if want > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(want-1))
			}
		})
	}
}

func TestMigrateLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewMigrateLogger(zap.New(core))

	assert.True(t, l.Verbose())
	l.Printf("Finished 1/u cart_slots (read %v, ran %v)\n", "1ms", "2ms")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Finished 1/u cart_slots (read 1ms, ran 2ms)", entries[0].Message)
	assert.Equal(t, "migrate", entries[0].LoggerName)

	quiet, _ := observer.New(zap.InfoLevel)
	assert.False(t, NewMigrateLogger(zap.New(quiet)).Verbose())
}
