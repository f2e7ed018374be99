package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-session-guard/internal/logging"
)

func TestSetupWriter(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	})

	t.Run("json outside dev", func(t *testing.T) {
		var buf bytes.Buffer
		lvl := logging.SetupWriter(&buf, "PROD", "warn")
		require.Equal(t, zerolog.WarnLevel, lvl)

		log.Info().Msg("hidden")
		log.Warn().Str("user_id", "u1").Msg("visible")

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 1)
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
		require.Equal(t, "visible", entry["message"])
		require.Equal(t, "u1", entry["user_id"])
	})

	t.Run("console in dev", func(t *testing.T) {
		var buf bytes.Buffer
		logging.SetupWriter(&buf, "DEV", "debug")
		log.Debug().Msg("hello")
		require.Contains(t, buf.String(), "hello")
		require.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		require.Equal(t, zerolog.InfoLevel, logging.SetupWriter(&buf, "PROD", "chatty"))
		require.Equal(t, zerolog.InfoLevel, logging.SetupWriter(&buf, "PROD", ""))
	})
}
