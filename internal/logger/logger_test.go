package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesJSONToExtraPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.log")

	l, err := New(true, path)
	require.NoError(t, err)
	l.Debug("record upserted", zap.String("date", "2025-08-01"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	assert.Contains(t, line, `"msg":"record upserted"`)
	assert.Contains(t, line, `"date":"2025-08-01"`)
	assert.Contains(t, line, `"level":"debug"`)
}

func TestNew_InfoLevelDropsDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.log")

	l, err := New(false, path)
	require.NoError(t, err)
	l.Debug("hidden")
	l.Info("shown")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}
