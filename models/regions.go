// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// Regions used to group provinces. The numeric prefix is the display order.
const (
	RegionNorth     = "01 ภาคเหนือ"
	RegionNortheast = "02 ภาคอีสาน"
	RegionEast      = "03 ภาคตะวันออก"
	RegionCentral   = "04 ภาคกลาง"
	RegionBangkok   = "05 กรุงเทพมหานคร"
	RegionWest      = "06 ภาคตะวันตก"
	RegionSouth     = "07 ภาคใต้"
)

var Regions = []string{
	RegionNorth,
	RegionNortheast,
	RegionEast,
	RegionCentral,
	RegionBangkok,
	RegionWest,
	RegionSouth,
}

// IsRegion reports whether s is one of Regions.
func IsRegion(s string) bool {
	for _, r := range Regions {
		if r == s {
			return true
		}
	}
	return false
}
