package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datazip-inc/aeroquery/constants"
)

func TestLevelsAndOutput(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	setOutput(&buf)
	t.Cleanup(func() { setOutput(os.Stderr) })

	Debugf("hidden %d", 1)
	assert.Empty(t, buf.String())

	Infof("chose pushdown on %s", "age")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "chose pushdown on age", entry["message"])

	buf.Reset()
	Warn("careful", " now")
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "careful now", entry["message"])
}

func TestInitCreatesLogFile(t *testing.T) {
	dir := t.TempDir()
	viper.Set(constants.ConfigFolder, dir)
	viper.Set(constants.LogLevel, "debug")
	t.Cleanup(func() {
		viper.Set(constants.ConfigFolder, "")
		viper.Set(constants.LogLevel, "")
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		setOutput(os.Stderr)
	})

	Init()
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	Debug("written to file")
	_, err := os.Stat(filepath.Join(dir, "logs", constants.LogFileName))
	assert.NoError(t, err)
}
