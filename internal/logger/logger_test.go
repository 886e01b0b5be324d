package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerToFile(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "viscactl.log")

	l, err := New(Info, []Destination{DestinationFile}, fpath)
	require.NoError(t, err)

	l.Log(Debug, "hidden %d", 1)
	l.Log(Info, "[visca %s] sent %d bytes", "cam1", 6)
	l.Log(Error, "failed")
	l.Close()

	buf, err := os.ReadFile(fpath)
	require.NoError(t, err)
	require.NotContains(t, string(buf), "hidden")
	require.Contains(t, string(buf), "INF [visca cam1] sent 6 bytes\n")
	require.Contains(t, string(buf), "ERR failed\n")
}

func TestLoggerSetLevel(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "viscactl.log")

	l, err := New(Error, []Destination{DestinationFile}, fpath)
	require.NoError(t, err)

	l.Log(Info, "first")
	l.SetLevel(Debug)
	l.Log(Debug, "second")
	l.Close()

	buf, err := os.ReadFile(fpath)
	require.NoError(t, err)
	require.NotContains(t, string(buf), "first")
	require.Contains(t, string(buf), "DEB second")
}

func TestLoggerInvalidFile(t *testing.T) {
	_, err := New(Info, []Destination{DestinationFile}, filepath.Join(t.TempDir(), "missing", "x.log"))
	require.Error(t, err)
}
