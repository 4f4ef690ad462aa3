package registry

import (
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/monumentfinder/config"
	"github.com/aukilabs/monumentfinder/models"
	"github.com/aukilabs/monumentfinder/monument"
	"github.com/aukilabs/monumentfinder/resolver"
	"github.com/aukilabs/monumentfinder/spatial"
)

// CaptureKey returns the configuration key of a region: its alias when it
// has one, its short name otherwise.
func CaptureKey(a *monument.Adapter) string {
	if a.Alias != "" {
		return a.Alias
	}
	return a.ShortName
}

// CaptureSettings derives the configuration entry describing the current
// geometry of a region. Custom monuments keep the way their position and
// rotation were found.
//
// Regions whose bounds come from the engine are captured with empty bounds,
// meant to be edited afterwards.
func CaptureSettings(a *monument.Adapter) config.RegionSettings {
	var s config.RegionSettings
	if a.Custom {
		s.Position = capturedPreference(a.PositionSource)
		s.Rotation = capturedPreference(a.RotationSource)
	}

	var bounds spatial.Bounds
	switch a.BoundsSource {
	case resolver.BoundsSourceEngine, resolver.BoundsSourceVolumeMissing, "":
		if a.Kind == monument.KindTrainTunnel {
			bounds = a.Bounds
		}

	default:
		bounds = a.Bounds
	}

	s.Bounds = config.BoundsOverride{
		UseCustomBounds: true,
		CustomBounds:    models.NewBox(bounds),
	}
	return s
}

func capturedPreference(source resolver.TransformSource) config.DetectionPreference {
	return config.DetectionPreference{
		UseMarkerTransform:       source == resolver.TransformSourceMarker,
		UsePreventBuildingVolume: source == resolver.TransformSourceVolume,
	}
}

// RegisterCapture adds the settings of the region to the configuration under
// the given key, or under its capture key when key is empty. It returns
// false without modifying anything when the key is already configured.
//
// The live regions are not modified: captured settings apply to the next
// build.
func (r *Registry) RegisterCapture(conf *config.Configuration, key string, a *monument.Adapter) bool {
	if key == "" {
		key = CaptureKey(a)
	}

	inserted := conf.AddMonumentSettings(key, CaptureSettings(a))
	instrumentCapture(inserted)

	logs.WithTag("registry_id", r.ID).
		WithTag("key", key).
		WithTag("region", a.ID).
		WithTag("inserted", inserted).
		Info("region captured")

	return inserted
}
