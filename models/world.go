package models

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/monumentfinder/spatial"
	"github.com/segmentio/encoding/json"
	"gopkg.in/yaml.v3"
)

const (
	ErrTypeWorldRead         = "world_read"
	ErrTypeWorldDecode       = "world_decode"
	ErrTypeUnsupportedFormat = "unsupported_world_format"
)

// World is the raw description of the regions of a map, as handed over by
// the game server.
type World struct {
	Monuments     []MonumentMarker  `json:"monuments" yaml:"monuments"`
	GridCells     []GridCell        `json:"grid_cells" yaml:"grid_cells"`
	BaseEntrances []BaseEntrance    `json:"base_entrances" yaml:"base_entrances"`
	Volumes       []DetectionVolume `json:"volumes" yaml:"volumes"`
}

// MonumentMarker is a hand placed monument or a custom monument marker.
type MonumentMarker struct {
	PrefabName string `json:"prefab_name" yaml:"prefab_name"`

	// The name of the top level object holding the marker. Custom monuments
	// are named after it.
	RootName string `json:"root_name,omitempty" yaml:"root_name,omitempty"`

	// The monument category, such as Cave or Lighthouse.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	Position Vector3    `json:"position" yaml:"position"`
	Rotation Quaternion `json:"rotation" yaml:"rotation"`
	Scale    Vector3    `json:"scale" yaml:"scale"`

	// Approximate bounds reported by the engine, in local space.
	Bounds Box `json:"bounds" yaml:"bounds"`
}

// GridCell is a procedurally placed tunnel piece.
type GridCell struct {
	PrefabName string     `json:"prefab_name" yaml:"prefab_name"`
	Position   Vector3    `json:"position" yaml:"position"`
	Rotation   Quaternion `json:"rotation" yaml:"rotation"`
}

// BaseEntrance is the entry point of an underwater structure and the links
// that compose it.
type BaseEntrance struct {
	Name  string     `json:"name" yaml:"name"`
	Links []BaseLink `json:"links" yaml:"links"`
}

// Types of base links.
const (
	BaseLinkTypeNormal   = "Normal"
	BaseLinkTypeJunction = "Junction"
	BaseLinkTypeEnd      = "End"
)

type BaseLink struct {
	PrefabName string      `json:"prefab_name" yaml:"prefab_name"`
	Type       string      `json:"type" yaml:"type"`
	Position   Vector3     `json:"position" yaml:"position"`
	Rotation   Quaternion  `json:"rotation" yaml:"rotation"`
	Volumes    []SubVolume `json:"volumes" yaml:"volumes"`
}

// SubVolume is one of the disjoint volumes attached to a base link.
type SubVolume struct {
	Position Vector3    `json:"position" yaml:"position"`
	Rotation Quaternion `json:"rotation" yaml:"rotation"`
	Bounds   Box        `json:"bounds" yaml:"bounds"`
}

// DetectionVolume is a collider placed at runtime, such as a building
// restriction volume.
type DetectionVolume struct {
	Name     string     `json:"name" yaml:"name"`
	Position Vector3    `json:"position" yaml:"position"`
	Rotation Quaternion `json:"rotation" yaml:"rotation"`

	// World axis-aligned extent of the collider.
	Bounds Box `json:"bounds" yaml:"bounds"`
}

// SpatialVolumes converts the detection volumes to their geometric form,
// preserving their order.
func (w World) SpatialVolumes() []spatial.Volume {
	volumes := make([]spatial.Volume, len(w.Volumes))
	for i, v := range w.Volumes {
		volumes[i] = spatial.Volume{
			Name:     v.Name,
			Position: v.Position.Vec(),
			Rotation: v.Rotation.Quat(),
			Bounds:   v.Bounds.Bounds(),
		}
	}
	return volumes
}

// LoadWorld reads a world dump. The format is picked from the file extension:
// .json, .yaml or .yml.
func LoadWorld(filename string) (World, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return World{}, errors.New("reading world dump failed").
			WithType(ErrTypeWorldRead).
			WithTag("filename", filename).
			Wrap(err)
	}

	format := strings.ToLower(filepath.Ext(filename))
	w, err := DecodeWorld(format, b)
	if err != nil {
		return World{}, errors.New("loading world dump failed").
			WithType(errors.Type(err)).
			WithTag("filename", filename).
			Wrap(err)
	}
	return w, nil
}

// DecodeWorld decodes a world dump in the given format (".json", ".yaml" or
// ".yml").
func DecodeWorld(format string, b []byte) (World, error) {
	var w World

	switch format {
	case ".json":
		if err := json.Unmarshal(b, &w); err != nil {
			return World{}, errors.New("decoding json world failed").
				WithType(ErrTypeWorldDecode).
				Wrap(err)
		}

	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &w); err != nil {
			return World{}, errors.New("decoding yaml world failed").
				WithType(ErrTypeWorldDecode).
				Wrap(err)
		}

	default:
		return World{}, errors.New("unsupported world format").
			WithType(ErrTypeUnsupportedFormat).
			WithTag("format", format)
	}

	return w, nil
}
