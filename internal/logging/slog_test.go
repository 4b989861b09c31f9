package logging

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger_LevelsAndAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := NewText(&buf, slog.LevelDebug)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.With("record", 7).Warn(ctx, "rejected", "status", 500)

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "msg=dbg")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "record=7")
	assert.Contains(t, out, "status=500")
}

func TestOpenFile_AppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "client.log")
	log, closer, err := OpenFile(path, slog.LevelInfo)
	require.NoError(t, err)
	log.Info(context.Background(), "hello")
	require.NoError(t, closer.Close())
	assert.FileExists(t, path)
}

func TestNop_DoesNotPanic(t *testing.T) {
	log := Nop()
	log.Error(context.TODO(), "ignored")
	log.With("k", "v").Info(context.TODO(), "ignored")
}
