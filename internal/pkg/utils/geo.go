package utils

import (
	"fmt"
	"math"
)

const earthRadiusMeters = 6371000

func degToRad(d float64) float64 {
	return d * math.Pi / 180.0
}

// HaversineDistance returns the great-circle distance between two
// coordinate pairs, in meters.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degToRad(lat2 - lat1)
	dLon := degToRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(degToRad(lat1))*math.Cos(degToRad(lat2))

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// FormatCoordinates renders a coordinate pair for display, used as the
// place-name fallback when reverse geocoding fails.
func FormatCoordinates(lat, lon float64) string {
	return fmt.Sprintf("%.5f, %.5f", lat, lon)
}
