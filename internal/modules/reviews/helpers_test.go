package reviews

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/storage"
	"github.com/stretchr/testify/require"
)

type upload struct {
	url  string
	path string
}

func writeUpload(t *testing.T, root, rel string) upload {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("img"), 0o644))
	return upload{url: storage.URLPrefix + rel, path: p}
}
