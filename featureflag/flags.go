package featureflag

type Flag string

const (
	// Skips the prevent building volume lookup. Regions relying on it get
	// empty bounds.
	FlagDisablePreventBuildingDetection Flag = "DISABLE_PREVENT_BUILDING_DETECTION"

	// Ignores the built-in monument bounds table.
	FlagDisableHardcodedBounds Flag = "DISABLE_HARDCODED_BOUNDS"

	FlagDisableLabModules       Flag = "DISABLE_LAB_MODULES"
	FlagDisablePositionTracking Flag = "DISABLE_POSITION_TRACKING"
)
