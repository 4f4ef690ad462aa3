// Package resolver computes the final position, rotation and bounds of a
// region from its engine values and its configuration.
package resolver

import (
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/monumentfinder/catalog"
	"github.com/aukilabs/monumentfinder/config"
	"github.com/aukilabs/monumentfinder/spatial"
)

const (
	ErrTypeVolumeNotFound = "prevent_building_volume_not_found"
)

// DefaultSearchRadius is the distance around a marker within which a
// prevent building volume is looked for.
const DefaultSearchRadius = 50

// BoundsSource tells where the bounds of a region come from.
type BoundsSource string

const (
	BoundsSourceCustom        BoundsSource = "custom"
	BoundsSourceMarker        BoundsSource = "marker"
	BoundsSourceVolume        BoundsSource = "prevent_building_volume"
	BoundsSourceVolumeMissing BoundsSource = "prevent_building_volume_missing"
	BoundsSourceTable         BoundsSource = "table"
	BoundsSourceEngine        BoundsSource = "engine"
	BoundsSourceDefaultMarker BoundsSource = "default_marker"
)

// TransformSource tells where the position or the rotation of a region
// comes from.
type TransformSource string

const (
	TransformSourceEngine TransformSource = "engine"
	TransformSourceMarker TransformSource = "marker"
	TransformSourceVolume TransformSource = "prevent_building_volume"
)

// Detector finds volumes around a point.
type Detector interface {
	FindWithin(center spatial.Vec3, radius float64, match func(spatial.Volume) bool) (spatial.Volume, bool)
}

// Input describes a region as reported by the engine.
type Input struct {
	// Configuration keys of the region, by priority.
	Keys []string

	// Key of the hard-coded bounds table. Empty disables the table lookup.
	ShortName string

	Position spatial.Vec3
	Rotation spatial.Quat

	// Authored scale of the marker.
	Scale spatial.Vec3

	// Bounds reported by the engine, or the catalog bounds of a tunnel piece.
	Bounds spatial.Bounds

	// Custom monuments are placed with a marker and are the only regions
	// whose position and rotation can be detected.
	Custom bool
}

type Result struct {
	Position       spatial.Vec3
	PositionSource TransformSource
	Rotation       spatial.Quat
	RotationSource TransformSource
	Bounds         spatial.Bounds
	BoundsSource   BoundsSource

	// The configuration key that matched, empty if none did.
	Key string
}

// Resolver applies region settings over engine values.
type Resolver struct {
	Config *config.Configuration

	// Used to find prevent building volumes.
	Detector Detector

	// Defaults to DefaultSearchRadius.
	SearchRadius float64

	// Disables the prevent building volume lookup.
	DisableDetection bool

	// Disables the hard-coded bounds table.
	DisableTable bool
}

// Resolve computes the final position, rotation and bounds of a region.
func (r *Resolver) Resolve(in Input) Result {
	settings, key, ok := r.settings(in.Keys)
	if !ok && in.Custom {
		settings = r.Config.DefaultCustomSettings()
	}

	if !in.Custom {
		bounds, source := r.resolveStaticBounds(in, settings)
		return r.result(in, Result{
			Position:       in.Position,
			PositionSource: TransformSourceEngine,
			Rotation:       in.Rotation,
			RotationSource: TransformSourceEngine,
			Bounds:         bounds,
			BoundsSource:   source,
			Key:            key,
		})
	}

	name := in.name()
	volume := r.volumeLookup(in)

	res := Result{
		Position:       in.Position,
		PositionSource: TransformSourceMarker,
		Rotation:       in.Rotation,
		RotationSource: TransformSourceMarker,
		Key:            key,
	}

	if p := settings.Position; !p.UseMarkerTransform && p.UsePreventBuildingVolume {
		if v, ok := volume(); ok {
			res.Position = v.Position
			res.PositionSource = TransformSourceVolume
		} else {
			logs.WithTag("region", name).
				WithTag("field", "position").
				Warn(errors.New("prevent building volume not found, using marker position").
					WithType(ErrTypeVolumeNotFound))
			instrumentVolumeMissing("position")
		}
	}

	if p := settings.Rotation; !p.UseMarkerTransform && p.UsePreventBuildingVolume {
		if v, ok := volume(); ok {
			res.Rotation = v.Rotation
			res.RotationSource = TransformSourceVolume
		} else {
			logs.WithTag("region", name).
				WithTag("field", "rotation").
				Warn(errors.New("prevent building volume not found, using marker rotation").
					WithType(ErrTypeVolumeNotFound))
			instrumentVolumeMissing("rotation")
		}
	}

	b := settings.Bounds
	switch {
	case b.UseCustomBounds:
		res.Bounds = b.CustomBounds.Bounds()
		res.BoundsSource = BoundsSourceCustom

	case b.UseMarkerTransform:
		res.Bounds = spatial.NewBounds(
			toLocal(res.Position, res.Rotation, in.Position),
			in.Scale,
		)
		res.BoundsSource = BoundsSourceMarker

	case b.UsePreventBuildingVolume:
		if v, ok := volume(); ok {
			res.Bounds = spatial.NewBounds(
				toLocal(res.Position, res.Rotation, v.Bounds.Center),
				v.Bounds.Size,
			)
			res.BoundsSource = BoundsSourceVolume
		} else {
			logs.WithTag("region", name).
				WithTag("field", "bounds").
				Error(errors.New("prevent building volume not found, region has no bounds").
					WithType(ErrTypeVolumeNotFound))
			instrumentVolumeMissing("bounds")
			res.BoundsSource = BoundsSourceVolumeMissing
		}

	default:
		res.Bounds, res.BoundsSource = r.fallbackBounds(in)
		if res.Bounds.IsEmpty() {
			res.Bounds = catalog.DefaultMarkerBounds
			res.BoundsSource = BoundsSourceDefaultMarker
		}
	}

	return r.result(in, res)
}

func (r *Resolver) result(in Input, res Result) Result {
	res.Rotation = spatial.Normalize(res.Rotation)
	instrumentBoundsSource(res.BoundsSource)

	logs.WithTag("region", in.name()).
		WithTag("key", res.Key).
		WithTag("position_source", res.PositionSource).
		WithTag("rotation_source", res.RotationSource).
		WithTag("bounds_source", res.BoundsSource).
		Debug("region resolved")
	return res
}

func (r *Resolver) settings(keys []string) (config.RegionSettings, string, bool) {
	for _, k := range keys {
		if k == "" {
			continue
		}
		if s, ok := r.Config.MonumentSettings(k); ok {
			return s, k, true
		}
	}
	return config.RegionSettings{}, "", false
}

func (r *Resolver) resolveStaticBounds(in Input, settings config.RegionSettings) (spatial.Bounds, BoundsSource) {
	if settings.Bounds.UseCustomBounds {
		return settings.Bounds.CustomBounds.Bounds(), BoundsSourceCustom
	}
	return r.fallbackBounds(in)
}

func (r *Resolver) fallbackBounds(in Input) (spatial.Bounds, BoundsSource) {
	if !r.DisableTable && in.ShortName != "" {
		if b, ok := catalog.MonumentBounds(in.ShortName); ok {
			return b, BoundsSourceTable
		}
	}
	return in.Bounds, BoundsSourceEngine
}

// volumeLookup returns a function that searches the prevent building volume
// of the region on first use and caches the outcome.
func (r *Resolver) volumeLookup(in Input) func() (spatial.Volume, bool) {
	var (
		done   bool
		volume spatial.Volume
		found  bool
	)

	return func() (spatial.Volume, bool) {
		if done {
			return volume, found
		}
		done = true

		if r.DisableDetection || r.Detector == nil {
			return volume, found
		}

		radius := r.SearchRadius
		if radius <= 0 {
			radius = DefaultSearchRadius
		}

		volume, found = r.Detector.FindWithin(in.Position, radius, IsPreventBuildingVolume)
		return volume, found
	}
}

// IsPreventBuildingVolume reports whether the volume is a building
// restriction volume, based on its name.
func IsPreventBuildingVolume(v spatial.Volume) bool {
	name := strings.ToLower(v.Name)
	return strings.Contains(name, "prevent_building") ||
		strings.Contains(name, "prevent building")
}

func (in Input) name() string {
	for _, k := range in.Keys {
		if k != "" {
			return k
		}
	}
	return in.ShortName
}

// toLocal expresses the world point p in the frame placed at position and
// oriented by rotation.
func toLocal(position spatial.Vec3, rotation spatial.Quat, p spatial.Vec3) spatial.Vec3 {
	return spatial.InverseRotate(rotation, spatial.Sub(p, position))
}
