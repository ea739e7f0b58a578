package sync_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"asset-server/internal/sync"
)

func writeExport(t *testing.T, root string, parts ...string) {
	t.Helper()
	path := filepath.Join(append([]string{root}, parts...)...)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
}

func TestScanRoot(t *testing.T) {
	root := t.TempDir()
	writeExport(t, root, "model", "Hero_model_v001", "Hero_model_v001.fbx")
	writeExport(t, root, "model", "Prop_model_v002", "Prop_model_v002.obj")
	writeExport(t, root, "rig", "Hero_rig_v001", "Hero_rig_v001.ma")
	// Unknown family directories are skipped.
	writeExport(t, root, "renders", "shot010", "frame.exr")
	// Loose files at the top level are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))

	dirs, err := sync.ScanRoot(root)
	require.NoError(t, err)
	require.Len(t, dirs, 3)
	require.Equal(t, "Hero_model_v001", dirs[0].AssetID)
	require.Equal(t, "model", dirs[0].Family)
	require.Equal(t, "Hero_rig_v001", dirs[2].AssetID)
	require.Equal(t, "rig", dirs[2].Family)

	_, err = sync.ScanRoot(filepath.Join(root, "missing"))
	require.Error(t, err)
}
