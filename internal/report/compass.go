package report

import "math"

// compassNames are the 16-point compass labels indexed in sixteenths
// clockwise from north.
var compassNames = [16]string{
	"N", "NNE", "NE", "ENE",
	"E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW",
	"W", "WNW", "NW", "NNW",
}

// CompassName returns the 16-point compass label for a wind direction
// given in sixteenths (0 = north, 4 = east). Fractional directions round
// to the nearest point, so 15.6 is north, not NNW.
func CompassName(dir float64) string {
	idx := int(math.Floor(dir+0.5)) % 16
	if idx < 0 {
		idx += 16
	}
	return compassNames[idx]
}
