package tui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisant-go/list/internal/observability"
)

func TestNewModel_StartsInChooser(t *testing.T) {
	dir := t.TempDir()
	m, err := NewModel(ModelParams{StartDir: dir, Logger: observability.NewNoOpLogger()})
	require.NoError(t, err)
	assert.Equal(t, browseModeChooser, m.mode)
}

func TestNewModel_OpensStartFileDirectly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\nthree\n"), 0o644))

	m, err := NewModel(ModelParams{StartDir: dir, StartFile: path, StartLine: 2, Logger: observability.NewNoOpLogger()})
	require.NoError(t, err)
	assert.Equal(t, browseModeViewer, m.mode)
	assert.Equal(t, 1, m.viewer.topLine)
}

func TestModel_ViewerClosedReturnsToChooser(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o644))

	m, err := NewModel(ModelParams{StartDir: dir, StartFile: path, Logger: observability.NewNoOpLogger()})
	require.NoError(t, err)

	_, _ = m.Update(ViewerClosedMsg{})
	assert.Equal(t, browseModeChooser, m.mode)
	assert.Nil(t, m.viewer)
}
