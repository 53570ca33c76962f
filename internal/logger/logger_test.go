package logger

import (
	"os"
	"path/filepath"
	"testing"

	"visor/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.TraceLevel, parseLevel("trace"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("INFO"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("Warn"))
	assert.Equal(t, zerolog.ErrorLevel, parseLevel("ERROR"))
	assert.Equal(t, zerolog.DebugLevel, parseLevel("bogus"))
}

func TestNew_WritesToLogFile(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	logPath := filepath.Join(t.TempDir(), "logs", "visor.log")

	log := New(&domain.Config{LogLevel: "INFO", LogPath: logPath, LogMaxSize: 1, LogMaxBackups: 1})
	log.Debug().Msg("hidden")
	log.Info().Msg("synced library")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	assert.Contains(t, string(data), "synced library")
	assert.NotContains(t, string(data), "hidden")

	log.SetLogLevel("DEBUG")
	log.Debug().Msg("now visible")

	data, err = os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "now visible")
}
