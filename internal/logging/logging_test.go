package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Not parallel: mutates the global logger.
func TestSetupLevelsAndComponent(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	Setup(&buf, false)
	assert.False(t, DebugEnabled())

	logger := Component("syncer")
	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "syncer", entry["component"])
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "info", entry["level"])

	buf.Reset()
	Setup(&buf, true)
	assert.True(t, DebugEnabled())
	web := Component("web")
	web.Debug().Msg("visible")
	assert.Contains(t, buf.String(), `"visible"`)
	assert.Contains(t, buf.String(), `"component":"web"`)
}
