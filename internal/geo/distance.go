package geo

import "math"

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle (haversine) distance in kilometers
// between two WGS84 points given as (longitude, latitude) in degrees.
// Symmetric: DistanceKm(a, b) == DistanceKm(b, a).
func DistanceKm(lon1, lat1, lon2, lat2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
