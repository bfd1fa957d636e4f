package data

import (
	"errors"
	"fmt"
	"os"

	"github.com/graveyard/engine/internal/geom"
	"gopkg.in/yaml.v3"
)

// Pair is a two-element YAML list such as [x, y].
type Pair [2]float64

func (p Pair) Vec() geom.Vec2 { return geom.V(p[0], p[1]) }

// Level is a parsed level file.
type Level struct {
	ID         string
	Terrain    *Terrain
	Background string
	Spawns     []Spawn
}

// Spawn describes one entity placed by the level file. Optional blocks map
// onto optional components.
type Spawn struct {
	Name        string      `yaml:"name"`
	Position    Pair        `yaml:"position"`
	Velocity    *Pair       `yaml:"velocity"`
	HalfExtents *Pair       `yaml:"half_extents"`
	Scale       *Pair       `yaml:"scale"`
	Facing      string      `yaml:"facing"` // "left" or "right"
	Render      *RenderSpec `yaml:"render"`
	SnapCamera  bool        `yaml:"snap_camera"`
	ChaseCamera bool        `yaml:"chase_camera"`
	Player      bool        `yaml:"player"`
}

// RenderSpec selects exactly one drawable variant.
type RenderSpec struct {
	Layer     int           `yaml:"layer"`
	Image     string        `yaml:"image"`
	Batch     string        `yaml:"batch"`
	Animation string        `yaml:"animation"`
	Frame     int           `yaml:"frame"`
	Length    int           `yaml:"length"`
	Sequence  *SequenceSpec `yaml:"sequence"`
}

// SequenceSpec configures the frame cursor of an animation.
type SequenceSpec struct {
	Kind   string `yaml:"kind"` // "cycle", "once" or "frames"
	Frames []int  `yaml:"frames"`
	Loop   bool   `yaml:"loop"`
}

type levelFile struct {
	ID         string   `yaml:"id"`
	TileSize   float64  `yaml:"tile_size"`
	Origin     Pair     `yaml:"origin"`
	Terrain    []string `yaml:"terrain"`
	Background string   `yaml:"background"`
	Spawns     []Spawn  `yaml:"spawns"`
}

// LoadLevel reads and validates a level file.
func LoadLevel(path string) (*Level, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level %s: %w", path, err)
	}
	lvl, err := ParseLevel(raw)
	if err != nil {
		return nil, fmt.Errorf("parse level %s: %w", path, err)
	}
	return lvl, nil
}

// ParseLevel decodes level YAML.
func ParseLevel(raw []byte) (*Level, error) {
	var file levelFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, err
	}
	if file.ID == "" {
		return nil, errors.New("level id is empty")
	}
	terrain, err := NewTerrain(file.TileSize, file.Origin.Vec(), file.Terrain)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(file.Spawns))
	for i, s := range file.Spawns {
		if s.Name == "" {
			return nil, fmt.Errorf("spawn %d has no name", i)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("spawn %q defined twice", s.Name)
		}
		seen[s.Name] = true
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("spawn %q: %w", s.Name, err)
		}
	}

	return &Level{
		ID:         file.ID,
		Terrain:    terrain,
		Background: file.Background,
		Spawns:     file.Spawns,
	}, nil
}

func (s Spawn) validate() error {
	switch s.Facing {
	case "", "left", "right":
	default:
		return fmt.Errorf("unknown facing %q", s.Facing)
	}
	if s.SnapCamera && s.ChaseCamera {
		return errors.New("snap_camera and chase_camera are exclusive")
	}
	if s.Render == nil {
		return nil
	}
	r := s.Render
	set := 0
	for _, id := range []string{r.Image, r.Batch, r.Animation} {
		if id != "" {
			set++
		}
	}
	if set != 1 {
		return errors.New("render needs exactly one of image, batch, animation")
	}
	if r.Animation != "" && r.Length <= 0 {
		return errors.New("animation length must be positive")
	}
	if r.Sequence != nil {
		if r.Animation == "" {
			return errors.New("sequence without animation")
		}
		switch r.Sequence.Kind {
		case "cycle", "once":
		case "frames":
			if len(r.Sequence.Frames) == 0 {
				return errors.New("frames sequence is empty")
			}
		default:
			return fmt.Errorf("unknown sequence kind %q", r.Sequence.Kind)
		}
	}
	return nil
}
