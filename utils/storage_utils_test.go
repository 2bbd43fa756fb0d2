package utils

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSave(t *testing.T) {
	dir := t.TempDir()
	s := &LocalStorage{Dir: dir, URLPrefix: "/uploads/"}

	url, err := s.Save(context.Background(), "complaints/evidence/2025/01/02/a.png", "image/png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/complaints/evidence/2025/01/02/a.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "complaints", "evidence", "2025", "01", "02", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}

func TestLocalStorageStaysInsideDir(t *testing.T) {
	dir := t.TempDir()
	s := &LocalStorage{Dir: dir, URLPrefix: "/uploads"}

	url, err := s.Save(context.Background(), "../../etc/passwd", "text/plain", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/etc/passwd", url)
	_, err = os.Stat(filepath.Join(dir, "etc", "passwd"))
	assert.NoError(t, err)
}
