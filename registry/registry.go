// Package registry indexes the regions of a world and answers nearest region
// and filtering queries.
package registry

import (
	"math"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/monumentfinder/catalog"
	"github.com/aukilabs/monumentfinder/config"
	"github.com/aukilabs/monumentfinder/featureflag"
	"github.com/aukilabs/monumentfinder/models"
	"github.com/aukilabs/monumentfinder/monument"
	"github.com/aukilabs/monumentfinder/resolver"
	"github.com/aukilabs/monumentfinder/spatial"
	"github.com/google/uuid"
)

const (
	ErrTypeUnknownCategory = "unknown_category"
)

// Category selects a set of regions.
type Category string

const (
	CategoryAll         Category = "all"
	CategoryMonument    Category = Category(monument.KindMonument)
	CategoryTrainTunnel Category = Category(monument.KindTrainTunnel)
	CategoryLabModule   Category = Category(monument.KindLabModule)
)

// ParseCategory parses a category name. An empty name is CategoryAll.
func ParseCategory(v string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(v))); c {
	case "":
		return CategoryAll, nil

	case CategoryAll, CategoryMonument, CategoryTrainTunnel, CategoryLabModule:
		return c, nil

	default:
		return "", errors.New("unknown category").
			WithType(ErrTypeUnknownCategory).
			WithTag("category", v)
	}
}

type Options struct {
	// The radius within which prevent building volumes are looked for.
	// Defaults to resolver.DefaultSearchRadius.
	SearchRadius float64

	FeatureFlags featureflag.FeatureFlag
}

// Registry holds the regions of a world. It is immutable once built and safe
// for concurrent use.
type Registry struct {
	// Unique identifier of the build.
	ID string

	monuments    []*monument.Adapter
	trainTunnels []*monument.Adapter
	labModules   []*monument.Adapter
	all          []*monument.Adapter
	byID         map[string]*monument.Adapter

	skippedTunnels int
}

// Build creates the adapters of every region of the world. Lab modules are
// added first, then train tunnels and finally monuments. Tunnel pieces that
// are not recognized are logged and skipped.
func Build(w models.World, conf *config.Configuration, o Options) *Registry {
	if conf == nil {
		conf = config.New()
	}

	factory := monument.Factory{
		Resolver: &resolver.Resolver{
			Config:           conf,
			Detector:         spatial.NewVolumeIndex(w.SpatialVolumes()),
			SearchRadius:     o.SearchRadius,
			DisableDetection: o.FeatureFlags.IsSet(featureflag.FlagDisablePreventBuildingDetection),
			DisableTable:     o.FeatureFlags.IsSet(featureflag.FlagDisableHardcodedBounds),
		},
	}

	r := &Registry{
		ID:   uuid.NewString(),
		byID: make(map[string]*monument.Adapter),
	}

	o.FeatureFlags.IfNotSet(featureflag.FlagDisableLabModules, func() {
		for _, entrance := range w.BaseEntrances {
			for _, link := range entrance.Links {
				// End links are the posts holding the modules.
				if strings.EqualFold(link.Type, models.BaseLinkTypeEnd) {
					continue
				}

				a := factory.NewLabModule(link)
				r.labModules = append(r.labModules, a)
				r.add(a)
			}
		}
	})

	for _, cell := range w.GridCells {
		if catalog.IsIgnoredTunnelPrefab(cell.PrefabName) {
			continue
		}

		a, err := factory.NewTrainTunnel(cell)
		if errors.IsType(err, catalog.ErrTypeTunnelNotRecognized) {
			logs.Warn(err)
			r.skippedTunnels++
			instrumentSkippedTunnel()
			continue
		} else if err != nil {
			logs.Error(err)
			continue
		}

		r.trainTunnels = append(r.trainTunnels, a)
		r.add(a)
	}

	for _, m := range w.Monuments {
		a := factory.NewMonument(m)
		r.monuments = append(r.monuments, a)
		r.add(a)
	}

	instrumentAdapterCount(monument.KindMonument, len(r.monuments))
	instrumentAdapterCount(monument.KindTrainTunnel, len(r.trainTunnels))
	instrumentAdapterCount(monument.KindLabModule, len(r.labModules))

	logs.WithTag("registry_id", r.ID).
		WithTag("monuments", len(r.monuments)).
		WithTag("train_tunnels", len(r.trainTunnels)).
		WithTag("lab_modules", len(r.labModules)).
		WithTag("skipped_tunnels", r.skippedTunnels).
		Info("registry built")

	return r
}

func (r *Registry) add(a *monument.Adapter) {
	r.all = append(r.all, a)
	r.byID[a.ID] = a
}

// Set returns the regions of the given category, in insertion order. The
// returned slice must not be modified.
func (r *Registry) Set(c Category) []*monument.Adapter {
	switch c {
	case CategoryMonument:
		return r.monuments
	case CategoryTrainTunnel:
		return r.trainTunnels
	case CategoryLabModule:
		return r.labModules
	default:
		return r.all
	}
}

func (r *Registry) Len() int {
	return len(r.all)
}

// SkippedTunnels returns the number of tunnel pieces that were not
// recognized.
func (r *Registry) SkippedTunnels() int {
	return r.skippedTunnels
}

// Get returns the region with the given ID.
func (r *Registry) Get(id string) (*monument.Adapter, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// Nearest returns the region of the category whose bounds are the closest to
// p. Ties resolve to the region added first.
func (r *Registry) Nearest(c Category, p spatial.Vec3) (*monument.Adapter, bool) {
	instrumentQuery("nearest", c)
	return nearest(r.Set(c), p)
}

func (r *Registry) NearestAny(p spatial.Vec3) (*monument.Adapter, bool) {
	return r.Nearest(CategoryAll, p)
}

func (r *Registry) NearestOrdinary(p spatial.Vec3) (*monument.Adapter, bool) {
	return r.Nearest(CategoryMonument, p)
}

func (r *Registry) NearestTunnel(p spatial.Vec3) (*monument.Adapter, bool) {
	return r.Nearest(CategoryTrainTunnel, p)
}

func (r *Registry) NearestModule(p spatial.Vec3) (*monument.Adapter, bool) {
	return r.Nearest(CategoryLabModule, p)
}

func nearest(set []*monument.Adapter, p spatial.Vec3) (*monument.Adapter, bool) {
	var closest *monument.Adapter
	closestSqrDist := math.Inf(1)

	for _, a := range set {
		if d := spatial.SqrDistance(p, a.ClosestPointOnBounds(p)); d < closestSqrDist {
			closest = a
			closestSqrDist = d
		}
	}
	return closest, closest != nil
}

// Find returns the regions of the category matching the filter, in insertion
// order.
func (r *Registry) Find(c Category, f monument.Filter) []*monument.Adapter {
	instrumentQuery("find", c)

	var res []*monument.Adapter
	for _, a := range r.Set(c) {
		if a.MatchesFilter(f) {
			res = append(res, a)
		}
	}
	return res
}

func (r *Registry) FindAll(text string) []*monument.Adapter {
	return r.Find(CategoryAll, monument.Filter{Text: text})
}

func (r *Registry) FindOrdinary(text string) []*monument.Adapter {
	return r.Find(CategoryMonument, monument.Filter{Text: text})
}

func (r *Registry) FindTunnels(text string) []*monument.Adapter {
	return r.Find(CategoryTrainTunnel, monument.Filter{Text: text})
}

func (r *Registry) FindModules(text string) []*monument.Adapter {
	return r.Find(CategoryLabModule, monument.Filter{Text: text})
}

func (r *Registry) FindByShortName(shortName string) []*monument.Adapter {
	return r.Find(CategoryAll, monument.Filter{ShortName: &shortName})
}

func (r *Registry) FindByAlias(alias string) []*monument.Adapter {
	return r.Find(CategoryAll, monument.Filter{Alias: &alias})
}

// LegacyFindMonuments returns the vanilla monuments whose type or prefab name
// contains the filter. Custom monuments are not returned.
func (r *Registry) LegacyFindMonuments(filter string) []*monument.Adapter {
	instrumentQuery("legacy_find", CategoryMonument)

	filter = strings.ToLower(filter)

	var res []*monument.Adapter
	for _, a := range r.monuments {
		prefab := strings.ToLower(a.PrefabName)
		if !strings.Contains(prefab, "/monument/") {
			continue
		}

		if filter != "" &&
			!strings.Contains(strings.ToLower(a.TypeLabel), filter) &&
			!strings.Contains(prefab, filter) {
			continue
		}

		res = append(res, a)
	}
	return res
}

// Report describes where a point is relative to its closest region.
type Report struct {
	Adapter *monument.Adapter

	// Whether the point is inside the region.
	Inside bool

	// Position of the point in the region local space. Only set when the
	// point is inside.
	RelativePosition spatial.Vec3

	// Distance between the point and the region bounds. Zero when inside.
	Distance float64
}

// Closest reports the region closest to p and where p is relative to it.
func (r *Registry) Closest(p spatial.Vec3) (Report, bool) {
	a, ok := r.NearestAny(p)
	if !ok {
		return Report{}, false
	}

	if a.IsInBounds(p) {
		return Report{
			Adapter:          a,
			Inside:           true,
			RelativePosition: a.InverseTransformPoint(p),
		}, true
	}

	return Report{
		Adapter:  a,
		Distance: spatial.Distance(p, a.ClosestPointOnBounds(p)),
	}, true
}
