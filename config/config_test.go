package config

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/monumentfinder/models"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		c, err := Load("")
		require.NoError(t, err)
		require.Equal(t, DefaultCommand, c.Command)
		require.Empty(t, c.Monuments)

		d := c.DefaultCustomSettings()
		require.True(t, d.Position.UseMarkerTransform)
		require.True(t, d.Rotation.UseMarkerTransform)
		require.True(t, d.Bounds.UseCustomBounds)
		require.Equal(t, models.Vector3{Y: 15}, d.Bounds.CustomBounds.Center)
		require.Equal(t, models.Vector3{X: 30, Y: 30, Z: 30}, d.Bounds.CustomBounds.Size)
	})

	t.Run("json", func(t *testing.T) {
		filename := writeFile(t, "config.json", `{
			"command": "monuments",
			"monuments": {
				"TrainStation": {
					"bounds": {
						"use_custom_bounds": true,
						"custom_bounds": {"center": {"x": 0, "y": 9, "z": 0}, "size": {"x": 100, "y": 20, "z": 200}}
					}
				}
			}
		}`)

		c, err := Load(filename)
		require.NoError(t, err)
		require.Equal(t, "monuments", c.Command)
		require.False(t, c.Migrated())

		s, ok := c.MonumentSettings("TrainStation")
		require.True(t, ok)
		require.True(t, s.Bounds.UseCustomBounds)
		require.Equal(t, models.Vector3{X: 100, Y: 20, Z: 200}, s.Bounds.CustomBounds.Size)

		// Defaults are kept for missing sections.
		require.True(t, c.DefaultCustomSettings().Bounds.UseCustomBounds)
	})

	t.Run("partial default custom block", func(t *testing.T) {
		filename := writeFile(t, "config.json", `{
			"default_custom_monument_settings": {
				"position": {"use_prevent_building_volume": true},
				"bounds": {"use_prevent_building_volume": true}
			}
		}`)

		c, err := Load(filename)
		require.NoError(t, err)

		d := c.DefaultCustomSettings()
		require.Equal(t, DetectionPreference{UsePreventBuildingVolume: true}, d.Position)
		require.Equal(t, DetectionPreference{}, d.Rotation)
		require.False(t, d.Bounds.UseMarkerTransform)
		require.True(t, d.Bounds.UsePreventBuildingVolume)
		require.False(t, d.Bounds.UseCustomBounds)
		require.Equal(t, models.Box{}, d.Bounds.CustomBounds)
	})

	t.Run("yaml", func(t *testing.T) {
		filename := writeFile(t, "config.yaml", `
command: mf
monuments:
  my_arena:
    position:
      use_prevent_building_volume: true
    bounds:
      use_prevent_building_volume: true
`)

		c, err := Load(filename)
		require.NoError(t, err)

		s, ok := c.MonumentSettings("my_arena")
		require.True(t, ok)
		require.True(t, s.Position.UsePreventBuildingVolume)
		require.False(t, s.Rotation.UsePreventBuildingVolume)
		require.True(t, s.Bounds.UsePreventBuildingVolume)
	})

	t.Run("empty file", func(t *testing.T) {
		c, err := Load(writeFile(t, "config.json", "  "))
		require.NoError(t, err)
		require.Equal(t, DefaultCommand, c.Command)
	})

	t.Run("legacy bounds are migrated", func(t *testing.T) {
		filename := writeFile(t, "config.json", `{
			"monuments": {
				"lighthouse": {"bounds": {"use_marker_transform": true}}
			},
			"OverrideMonumentBounds": {
				"airfield_1": {"Center": {"x": 1, "y": 2, "z": 3}, "Size": {"x": 4, "y": 5, "z": 6}},
				"lighthouse": {"Center": {"x": 0, "y": 0, "z": 0}, "Size": {"x": 1, "y": 1, "z": 1}}
			}
		}`)

		c, err := Load(filename)
		require.NoError(t, err)
		require.True(t, c.Migrated())
		require.Nil(t, c.OverrideMonumentBounds)

		s, ok := c.MonumentSettings("airfield_1")
		require.True(t, ok)
		require.True(t, s.Bounds.UseCustomBounds)
		require.Equal(t, models.Vector3{X: 1, Y: 2, Z: 3}, s.Bounds.CustomBounds.Center)
		require.Equal(t, models.Vector3{X: 4, Y: 5, Z: 6}, s.Bounds.CustomBounds.Size)

		// Existing entries win over legacy ones.
		s, ok = c.MonumentSettings("lighthouse")
		require.True(t, ok)
		require.False(t, s.Bounds.UseCustomBounds)
		require.True(t, s.Bounds.UseMarkerTransform)
	})

	t.Run("negative size is rejected", func(t *testing.T) {
		filename := writeFile(t, "config.json", `{
			"monuments": {
				"x": {"bounds": {"custom_bounds": {"size": {"x": -1, "y": 1, "z": 1}}}}
			}
		}`)

		_, err := Load(filename)
		require.Error(t, err)
		require.True(t, errors.IsType(err, ErrTypeInvalidConfig))
	})

	t.Run("unknown field is rejected", func(t *testing.T) {
		filename := writeFile(t, "config.json", `{"monuments": {"x": {"scale": 2}}}`)

		_, err := Load(filename)
		require.True(t, errors.IsType(err, ErrTypeInvalidConfig))
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := Load(writeFile(t, "config.toml", "command = 'mf'"))
		require.True(t, errors.IsType(err, ErrTypeUnsupportedFormat))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
		require.True(t, errors.IsType(err, ErrTypeConfigRead))
	})
}

func TestAddMonumentSettings(t *testing.T) {
	c := New()

	first := RegionSettings{
		Bounds: BoundsOverride{
			UseCustomBounds: true,
			CustomBounds:    models.Box{Size: models.Vector3{X: 1, Y: 2, Z: 3}},
		},
	}
	second := RegionSettings{
		Position: DetectionPreference{UseMarkerTransform: true},
	}

	require.True(t, c.AddMonumentSettings("Intersection", first))
	require.False(t, c.AddMonumentSettings("Intersection", second))

	s, ok := c.MonumentSettings("Intersection")
	require.True(t, ok)
	require.Equal(t, first, s)
	require.Equal(t, []string{"Intersection"}, c.Keys())
}

func TestRemoveMonumentSettings(t *testing.T) {
	c := New()
	require.True(t, c.AddMonumentSettings("Intersection", RegionSettings{}))

	require.True(t, c.RemoveMonumentSettings("Intersection"))
	require.False(t, c.RemoveMonumentSettings("Intersection"))

	_, ok := c.MonumentSettings("Intersection")
	require.False(t, ok)

	// The key can be captured again.
	require.True(t, c.AddMonumentSettings("Intersection", RegionSettings{}))
}

func TestNilConfiguration(t *testing.T) {
	var c *Configuration

	require.False(t, c.AddMonumentSettings("Intersection", RegionSettings{}))
	require.False(t, c.RemoveMonumentSettings("Intersection"))
	require.Empty(t, c.Keys())

	_, ok := c.MonumentSettings("Intersection")
	require.False(t, ok)
}

func TestAddMonumentSettingsConcurrently(t *testing.T) {
	c := New()

	var inserted int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.AddMonumentSettings("compound", RegionSettings{}) {
				atomic.AddInt32(&inserted, 1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), inserted)
}

func TestSave(t *testing.T) {
	for _, ext := range []string{".json", ".yaml"} {
		t.Run(ext, func(t *testing.T) {
			c := New()
			c.AddMonumentSettings("LootTunnel", RegionSettings{
				Bounds: BoundsOverride{
					UseCustomBounds: true,
					CustomBounds: models.Box{
						Center: models.Vector3{Y: 4.25},
						Size:   models.Vector3{X: 16.5, Y: 9, Z: 216},
					},
				},
			})

			filename := filepath.Join(t.TempDir(), "config"+ext)
			require.NoError(t, c.Save(filename))

			loaded, err := Load(filename)
			require.NoError(t, err)
			require.Equal(t, c.Command, loaded.Command)
			require.Equal(t, c.Monuments, loaded.Monuments)
			require.Equal(t, c.DefaultCustomMonumentSettings, loaded.DefaultCustomMonumentSettings)
		})
	}

	t.Run("unsupported format", func(t *testing.T) {
		err := New().Save(filepath.Join(t.TempDir(), "config.ini"))
		require.True(t, errors.IsType(err, ErrTypeUnsupportedFormat))
	})
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	filename := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o600))
	return filename
}
