package geo

import "math"

const earthRadiusMeters = 6371000.0

// DistanceMeters returns the great-circle distance between two coordinates
// using the haversine formula.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(lat1))*math.Cos(degreesToRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// ProximityScore maps a distance to a relevance score in (0, 1]:
// 1.0 at zero distance, 0.5 at 10 km.
func ProximityScore(distanceMeters float64) float64 {
	return 1.0 / (1.0 + distanceMeters/10000.0)
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
