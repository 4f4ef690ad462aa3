package catalog

import "github.com/aukilabs/monumentfinder/spatial"

// DefaultMarkerBounds are the bounds given to custom monument markers that
// report no bounds of their own.
var DefaultMarkerBounds = bounds(0, 15, 0, 30, 30, 30)

// Hand measured bounds, more accurate than the ones reported by the engine.
// Underwater labs are made of modules and have no bounds of their own.
var monumentBounds = map[string]spatial.Bounds{
	"airfield_1":              bounds(0, 15, -25, 355, 70, 210),
	"bandit_town":             bounds(0, 12, -5, 150, 40, 140),
	"cave_large_sewers_hard":  bounds(18, -5, -9, 52, 80, 56),
	"cave_medium_medium":      bounds(-5, 10, -3, 100, 20, 50),
	"cave_small_easy":         bounds(5, 10, 0, 55, 24, 55),
	"cave_small_hard":         bounds(0, 10, -5, 40, 20, 35),
	"cave_small_medium":       bounds(10, 10, 0, 45, 26, 40),
	"compound":                bounds(0, 12, 0, 200, 50, 200),
	"entrance_bunker_a":       bounds(-3.5, 1, -0.5, 20, 30, 18),
	"entrance_bunker_b":       bounds(-8, 1, 0, 30, 30, 18),
	"entrance_bunker_c":       bounds(-3.5, 1, -5, 24, 30, 27),
	"entrance_bunker_d":       bounds(-3.5, 1, -0.5, 20, 30, 17),
	"fishing_village_a":       bounds(-3, 5, -11, 76, 24, 80),
	"fishing_village_b":       bounds(-3, 4, -4, 42, 24, 76),
	"fishing_village_c":       bounds(-0.5, 4, -4.5, 31, 22, 75),
	"harbor_1":                bounds(-8, 23, 15, 246, 60, 200),
	"harbor_2":                bounds(6, 23, 18, 224, 60, 250),
	"junkyard_1":              bounds(0, 20, 0, 180, 50, 180),
	"launch_site_1":           bounds(10, 25, -26, 544, 120, 276),
	"lighthouse":              bounds(10, 23, 5, 74, 96, 68),
	"mining_quarry_a":         bounds(2, 10, 2, 52, 20, 72),
	"mining_quarry_b":         bounds(-5, 10, -8, 60, 20, 40),
	"mining_quarry_c":         bounds(-6, 10, 8, 42, 20, 60),
	"OilrigAI":                bounds(18, 20, -2, 68, 60, 76),
	"OilrigAI2":               bounds(3, 43, 12, 80, 96, 120),
	"power_sub_big_1":         bounds(0, 5, 0.5, 20, 10, 22),
	"power_sub_big_2":         bounds(-1, 5, 1, 23, 10, 22),
	"power_sub_small_1":       bounds(0, 4, 0, 14, 8, 14),
	"power_sub_small_2":       bounds(0, 4, 0, 14, 8, 14),
	"powerplant_1":            bounds(-15, 25, -11, 220, 64, 290),
	"radtown_small_3":         bounds(-10, 15, -18, 130, 50, 148),
	"sphere_tank":             bounds(0, 41, 0, 100, 84, 100),
	"stables_a":               bounds(0, 10, 4, 50, 20, 60),
	"stables_b":               bounds(2, 15, 6, 78, 30, 66),
	"supermarket_1":           bounds(1, 5, 1, 40, 10, 44),
	"swamp_a":                 bounds(-10, 11, 0, 140, 30, 140),
	"swamp_b":                 bounds(0, 14, 0, 100, 36, 100),
	"swamp_c":                 bounds(0, 7, 0, 100, 30, 100),
	"trainyard_1":             bounds(10, 22, -30, 235, 70, 220),
	"underwater_lab_a":        {},
	"underwater_lab_b":        {},
	"underwater_lab_c":        {},
	"underwater_lab_d":        {},
	"warehouse":               bounds(0, 5, -8, 44, 10, 24),
	"water_treatment_plant_1": bounds(20, 30, -45, 250, 84, 290),
	"water_well_a":            bounds(0, 10, 0, 24, 20, 24),
	"water_well_b":            bounds(0, 10, 0, 24, 20, 24),
	"water_well_c":            bounds(0, 10, 0, 24, 20, 24),
	"water_well_d":            bounds(0, 10, 0, 30, 20, 30),
	"water_well_e":            bounds(0, 10, 0, 24, 20, 24),
	"satellite_dish":          bounds(0, 25, 3, 155, 55, 125),
	"excavator_1":             bounds(-70, 40, 65, 240, 100, 230),
	"gas_station_1":           bounds(0, 13, 15, 70, 42, 60),
	"military_tunnel_1":       bounds(0, 15, -25, 265, 70, 250),
}

// MonumentBounds returns the hard-coded bounds of the monument with the
// given short name.
func MonumentBounds(shortName string) (spatial.Bounds, bool) {
	b, ok := monumentBounds[shortName]
	return b, ok
}
