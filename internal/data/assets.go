package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AssetManifest lists the drawable assets of a level set.
type AssetManifest struct {
	Images     []ImageDef     `yaml:"images"`
	Batches    []BatchDef     `yaml:"batches"`
	Animations []AnimationDef `yaml:"animations"`
}

// Look is how a terminal backend shows an asset.
type Look struct {
	Glyph string `yaml:"glyph"`
	Color string `yaml:"color"`
}

type ImageDef struct {
	ID   string `yaml:"id"`
	Size Pair   `yaml:"size"`
	Look `yaml:",inline"`
}

// BatchDef is a prebuilt sprite batch. Terrain batches are generated from
// the level grid instead of listed here.
type BatchDef struct {
	ID      string      `yaml:"id"`
	Terrain bool        `yaml:"terrain"`
	Sprites []SpriteDef `yaml:"sprites"`
	Look    `yaml:",inline"`
}

type SpriteDef struct {
	Dest   Pair       `yaml:"dest"`
	Source [4]float64 `yaml:"source"` // x, y, w, h normalized
}

// AnimationDef is a sprite sheet. With Frames set the sheet is a horizontal
// strip of equal cells; Regions lists cells explicitly.
type AnimationDef struct {
	ID      string       `yaml:"id"`
	Frames  int          `yaml:"frames"`
	Regions [][4]float64 `yaml:"regions"`
	Look    `yaml:",inline"`
}

// LoadAssets reads an asset manifest.
func LoadAssets(path string) (*AssetManifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read assets %s: %w", path, err)
	}
	var m AssetManifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse assets %s: %w", path, err)
	}
	ids := make(map[string]bool)
	for _, id := range m.ids() {
		if id == "" {
			return nil, fmt.Errorf("assets %s: empty asset id", path)
		}
		if ids[id] {
			return nil, fmt.Errorf("assets %s: duplicate asset id %q", path, id)
		}
		ids[id] = true
	}
	for _, a := range m.Animations {
		if a.Frames <= 0 && len(a.Regions) == 0 {
			return nil, fmt.Errorf("assets %s: animation %q has no frames", path, a.ID)
		}
	}
	return &m, nil
}

func (m *AssetManifest) ids() []string {
	var out []string
	for _, d := range m.Images {
		out = append(out, d.ID)
	}
	for _, d := range m.Batches {
		out = append(out, d.ID)
	}
	for _, d := range m.Animations {
		out = append(out, d.ID)
	}
	return out
}

// Looks maps every asset id to its terminal look.
func (m *AssetManifest) Looks() map[string]Look {
	out := make(map[string]Look, len(m.Images)+len(m.Batches)+len(m.Animations))
	for _, d := range m.Images {
		out[d.ID] = d.Look
	}
	for _, d := range m.Batches {
		out[d.ID] = d.Look
	}
	for _, d := range m.Animations {
		out[d.ID] = d.Look
	}
	return out
}
