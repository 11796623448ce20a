package prefabs

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when a prefab or script exists neither on disk
// nor in the embedded copy.
var ErrNotFound = errors.New("prefabs: not found")

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

//go:embed *.yaml
var PrefabsFS embed.FS

// Load reads a prefab, preferring prefabs/ on disk so edits are picked up
// by hot reload.
func Load(name string) ([]byte, error) {
	return readOverlay(PrefabsFS, cleanPrefabPath(name))
}

// LoadScript reads a scenario script the same way as Load.
func LoadScript(name string) ([]byte, error) {
	return readOverlay(ScriptsFS, cleanScriptPath(name))
}

func readOverlay(embedded fs.FS, clean string) ([]byte, error) {
	if clean == "" {
		return nil, fmt.Errorf("%w: empty name", ErrNotFound)
	}
	if data, err := os.ReadFile(diskPrefabPath(clean)); err == nil {
		return data, nil
	}
	data, err := fs.ReadFile(embedded, clean)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, clean)
	}
	return data, nil
}

func cleanPrefabPath(path string) string {
	if path == "" {
		return ""
	}
	return strings.TrimPrefix(filepath.ToSlash(path), "prefabs/")
}

// cleanScriptPath maps any of "x.tengo", "scripts/x.tengo" or
// "prefabs/scripts/x.tengo" to "scripts/x.tengo".
func cleanScriptPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	for _, prefix := range []string{"prefabs/", "scripts/"} {
		s = strings.TrimPrefix(s, prefix)
	}
	return "scripts/" + s
}

func diskPrefabPath(clean string) string {
	return filepath.Join("prefabs", filepath.FromSlash(clean))
}
