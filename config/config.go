// Package config holds the per region settings used to resolve the position,
// rotation and bounds of monuments.
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/monumentfinder/catalog"
	"github.com/aukilabs/monumentfinder/models"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/segmentio/encoding/json"
	"gopkg.in/yaml.v3"
)

const (
	ErrTypeConfigRead        = "config_read"
	ErrTypeConfigWrite       = "config_write"
	ErrTypeInvalidConfig     = "invalid_config"
	ErrTypeUnsupportedFormat = "unsupported_config_format"
)

const DefaultCommand = "mf"

//go:embed schema.json
var schemaJSON string

var schema = jsonschema.MustCompileString("schema.json", schemaJSON)

// DetectionPreference tells how a value is derived when it is not set
// explicitly. When both flags are false the engine value is used.
type DetectionPreference struct {
	UseMarkerTransform       bool `json:"use_marker_transform"`
	UsePreventBuildingVolume bool `json:"use_prevent_building_volume"`
}

type BoundsOverride struct {
	UseMarkerTransform       bool `json:"use_marker_transform"`
	UsePreventBuildingVolume bool `json:"use_prevent_building_volume"`

	UseCustomBounds bool       `json:"use_custom_bounds"`
	CustomBounds    models.Box `json:"custom_bounds"`
}

// Detection returns the detection flags of the bounds override.
func (b BoundsOverride) Detection() DetectionPreference {
	return DetectionPreference{
		UseMarkerTransform:       b.UseMarkerTransform,
		UsePreventBuildingVolume: b.UsePreventBuildingVolume,
	}
}

// RegionSettings is the configuration entry of one region, keyed by its
// alias or its short name.
type RegionSettings struct {
	Position DetectionPreference `json:"position"`
	Rotation DetectionPreference `json:"rotation"`
	Bounds   BoundsOverride      `json:"bounds"`
}

// LegacyBounds is an entry of the flat bounds override mapping used by older
// configuration files.
type LegacyBounds struct {
	Center models.Vector3 `json:"Center"`
	Size   models.Vector3 `json:"Size"`
}

type Configuration struct {
	Command                       string                    `json:"command"`
	DefaultCustomMonumentSettings RegionSettings            `json:"default_custom_monument_settings"`
	Monuments                     map[string]RegionSettings `json:"monuments"`

	// Folded into Monuments when loading.
	OverrideMonumentBounds map[string]LegacyBounds `json:"OverrideMonumentBounds,omitempty"`

	mutex    sync.RWMutex
	migrated bool
}

// New returns a configuration filled with default values.
func New() *Configuration {
	return &Configuration{
		Command: DefaultCommand,
		DefaultCustomMonumentSettings: RegionSettings{
			Position: DetectionPreference{UseMarkerTransform: true},
			Rotation: DetectionPreference{UseMarkerTransform: true},
			Bounds: BoundsOverride{
				UseCustomBounds: true,
				CustomBounds:    models.NewBox(catalog.DefaultMarkerBounds),
			},
		},
		Monuments: make(map[string]RegionSettings),
	}
}

// Load reads the configuration file at the given path. The format is picked
// from the file extension: .json, .yaml or .yml. An empty path returns the
// default configuration.
func Load(filename string) (*Configuration, error) {
	if strings.TrimSpace(filename) == "" {
		return New(), nil
	}

	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.New("reading config failed").
			WithType(ErrTypeConfigRead).
			WithTag("filename", filename).
			Wrap(err)
	}

	c, err := Decode(formatOf(filename), b)
	if err != nil {
		return nil, errors.New("loading config failed").
			WithType(errors.Type(err)).
			WithTag("filename", filename).
			Wrap(err)
	}
	return c, nil
}

// Decode parses, validates and normalizes a configuration in the given format
// (".json", ".yaml" or ".yml").
func Decode(format string, b []byte) (*Configuration, error) {
	c := New()
	if len(strings.TrimSpace(string(b))) == 0 {
		return c, nil
	}

	jsonConfig, err := toJSON(format, b)
	if err != nil {
		return nil, err
	}

	var raw any
	if err := json.Unmarshal(jsonConfig, &raw); err != nil {
		return nil, errors.New("decoding config failed").
			WithType(ErrTypeInvalidConfig).
			Wrap(err)
	}
	if err := schema.Validate(raw); err != nil {
		return nil, errors.New("config does not match schema").
			WithType(ErrTypeInvalidConfig).
			Wrap(err)
	}

	// A default custom block replaces the built-in defaults as a whole: the
	// flags it omits are false.
	m, _ := raw.(map[string]any)
	_, hasDefaultCustom := m["default_custom_monument_settings"]
	if hasDefaultCustom {
		c.DefaultCustomMonumentSettings = RegionSettings{}
	}

	if err := json.Unmarshal(jsonConfig, c); err != nil {
		return nil, errors.New("decoding config failed").
			WithType(ErrTypeInvalidConfig).
			Wrap(err)
	}

	c.normalize()
	c.validate()
	return c, nil
}

// Migrated reports whether legacy entries were folded into the regions when
// loading. Such a configuration should be saved to complete the migration.
func (c *Configuration) Migrated() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.migrated
}

// MonumentSettings returns the settings configured for the given key.
func (c *Configuration) MonumentSettings(key string) (RegionSettings, bool) {
	if c == nil {
		return RegionSettings{}, false
	}

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	s, ok := c.Monuments[key]
	return s, ok
}

// DefaultCustomSettings returns the settings used by custom monuments that
// are not configured.
func (c *Configuration) DefaultCustomSettings() RegionSettings {
	if c == nil {
		return New().DefaultCustomMonumentSettings
	}

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.DefaultCustomMonumentSettings
}

// AddMonumentSettings stores settings for the given key if it is not already
// configured. It returns false when the key exists, in which case the
// existing settings are left untouched. Nothing is stored in a nil
// configuration.
func (c *Configuration) AddMonumentSettings(key string, s RegionSettings) bool {
	if c == nil {
		return false
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, ok := c.Monuments[key]; ok {
		return false
	}

	if c.Monuments == nil {
		c.Monuments = make(map[string]RegionSettings)
	}
	c.Monuments[key] = s
	return true
}

// RemoveMonumentSettings deletes the settings of the given key. It returns
// false when the key is not configured.
func (c *Configuration) RemoveMonumentSettings(key string) bool {
	if c == nil {
		return false
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, ok := c.Monuments[key]; !ok {
		return false
	}
	delete(c.Monuments, key)
	return true
}

// Keys returns the sorted keys of the configured regions.
func (c *Configuration) Keys() []string {
	if c == nil {
		return nil
	}

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.sortedKeys()
}

// Save writes the configuration to the given path, in the format matching
// the file extension.
func (c *Configuration) Save(filename string) error {
	b, err := c.Encode(formatOf(filename))
	if err != nil {
		return errors.New("encoding config failed").
			WithType(errors.Type(err)).
			WithTag("filename", filename).
			Wrap(err)
	}

	if err := os.WriteFile(filename, b, 0o644); err != nil {
		return errors.New("writing config failed").
			WithType(ErrTypeConfigWrite).
			WithTag("filename", filename).
			Wrap(err)
	}
	return nil
}

// Encode serializes the configuration in the given format.
func (c *Configuration) Encode(format string) ([]byte, error) {
	c.mutex.RLock()
	b, err := json.MarshalIndent(c, "", "  ")
	c.mutex.RUnlock()
	if err != nil {
		return nil, errors.New("marshaling config failed").
			WithType(ErrTypeConfigWrite).
			Wrap(err)
	}

	switch format {
	case ".json":
		return b, nil

	case ".yaml", ".yml":
		var v any
		if err := json.Unmarshal(b, &v); err != nil {
			return nil, errors.New("converting config to yaml failed").
				WithType(ErrTypeConfigWrite).
				Wrap(err)
		}
		return yaml.Marshal(v)

	default:
		return nil, errors.New("unsupported config format").
			WithType(ErrTypeUnsupportedFormat).
			WithTag("format", format)
	}
}

func (c *Configuration) normalize() {
	if strings.TrimSpace(c.Command) == "" {
		c.Command = DefaultCommand
	}
	if c.Monuments == nil {
		c.Monuments = make(map[string]RegionSettings)
	}

	legacyKeys := make([]string, 0, len(c.OverrideMonumentBounds))
	for k := range c.OverrideMonumentBounds {
		legacyKeys = append(legacyKeys, k)
	}
	sort.Strings(legacyKeys)

	for _, key := range legacyKeys {
		legacy := c.OverrideMonumentBounds[key]

		if _, ok := c.Monuments[key]; ok {
			logs.WithTag("key", key).
				Warn(errors.New("legacy bounds override ignored: region is already configured"))
			continue
		}

		c.Monuments[key] = RegionSettings{
			Bounds: BoundsOverride{
				UseCustomBounds: true,
				CustomBounds: models.Box{
					Center: legacy.Center,
					Size:   legacy.Size,
				},
			},
		}
	}

	if len(legacyKeys) != 0 {
		c.migrated = true
	}
	c.OverrideMonumentBounds = nil
}

func (c *Configuration) validate() {
	check := func(key, field string, p DetectionPreference) {
		if p.UseMarkerTransform && p.UsePreventBuildingVolume {
			logs.WithTag("key", key).
				WithTag("field", field).
				Warn(errors.New("both marker transform and prevent building volume are enabled: marker transform is used"))
		}
	}

	check("default_custom_monument_settings", "position", c.DefaultCustomMonumentSettings.Position)
	check("default_custom_monument_settings", "rotation", c.DefaultCustomMonumentSettings.Rotation)
	check("default_custom_monument_settings", "bounds", c.DefaultCustomMonumentSettings.Bounds.Detection())

	for _, key := range c.sortedKeys() {
		s := c.Monuments[key]
		check(key, "position", s.Position)
		check(key, "rotation", s.Rotation)
		check(key, "bounds", s.Bounds.Detection())
	}
}

func (c *Configuration) sortedKeys() []string {
	keys := make([]string, 0, len(c.Monuments))
	for k := range c.Monuments {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatOf(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

func toJSON(format string, b []byte) ([]byte, error) {
	switch format {
	case ".json":
		return b, nil

	case ".yaml", ".yml":
		var v any
		if err := yaml.Unmarshal(b, &v); err != nil {
			return nil, errors.New("decoding yaml config failed").
				WithType(ErrTypeInvalidConfig).
				Wrap(err)
		}

		j, err := json.Marshal(v)
		if err != nil {
			return nil, errors.New("converting yaml config failed").
				WithType(ErrTypeInvalidConfig).
				Wrap(err)
		}
		return j, nil

	default:
		return nil, errors.New("unsupported config format").
			WithType(ErrTypeUnsupportedFormat).
			WithTag("format", format)
	}
}
