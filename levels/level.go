package levels

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/milk9111/fpsmove/common"
	"github.com/milk9111/fpsmove/physics"
	"github.com/milk9111/fpsmove/prefabs"
	"gopkg.in/yaml.v3"
)

//go:embed *.yaml
var LevelsFS embed.FS

type Level struct {
	Name  string           `yaml:"name"`
	Spawn prefabs.Vec3Spec `yaml:"spawn"`
	Yaw   float64          `yaml:"yaw"`
	Boxes []Box            `yaml:"boxes"`
}

// Box is a static collider. Color is optional and only used for drawing.
type Box struct {
	Name  string             `yaml:"name"`
	Min   prefabs.Vec3Spec   `yaml:"min"`
	Max   prefabs.Vec3Spec   `yaml:"max"`
	Layer string             `yaml:"layer"`
	Color *prefabs.YAMLColor `yaml:"color,omitempty"`
}

// LoadLevel reads a level from levels/ on disk, falling back to the
// embedded copy.
func LoadLevel(name string) (*Level, error) {
	clean := cleanLevelPath(name)
	data, err := os.ReadFile(filepath.Join("levels", filepath.FromSlash(clean)))
	if err != nil {
		data, err = fs.ReadFile(LevelsFS, clean)
		if err != nil {
			return nil, fmt.Errorf("read level: %w", err)
		}
	}
	return ParseLevel(data)
}

func ParseLevel(data []byte) (*Level, error) {
	var lvl Level
	if err := yaml.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("unmarshal level: %w", err)
	}
	return &lvl, nil
}

// SpawnPoint returns the spawn position.
func (l *Level) SpawnPoint() common.Vec3 {
	return common.Vec3{X: l.Spawn.X, Y: l.Spawn.Y, Z: l.Spawn.Z}
}

// Build creates the level's physics world. An empty layer name means default.
func (l *Level) Build() (*physics.World, error) {
	w := physics.NewWorld()
	for i, b := range l.Boxes {
		layer := physics.LayerDefault
		if b.Layer != "" {
			var err error
			if layer, err = physics.ParseLayers([]string{b.Layer}); err != nil {
				return nil, fmt.Errorf("box %d (%s): %w", i, b.Name, err)
			}
		}
		w.AddBox(b.Name,
			common.Vec3{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
			common.Vec3{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
			layer)
	}
	return w, nil
}

func cleanLevelPath(path string) string {
	s := filepath.ToSlash(path)
	s = strings.TrimPrefix(s, "levels/")
	if filepath.Ext(s) == "" {
		s += ".yaml"
	}
	return s
}
