package geo

import "math"

// earthDiameterMiles is twice Earth's mean radius, in miles.
const earthDiameterMiles = 7917.82

// Distance returns the great-circle distance in miles between two points
// given in degrees.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := 0.5 * (lat2 - lat1) * math.Pi / 180
	dLon := 0.5 * (lon2 - lon1) * math.Pi / 180

	sinLat := math.Sin(dLat)
	sinLon := math.Sin(dLon)
	a := sinLat*sinLat +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*sinLon*sinLon

	// Rounding can push a a hair past 1 for antipodal points.
	if a > 1 {
		a = 1
	}
	return earthDiameterMiles * math.Asin(math.Sqrt(a))
}

// DegreesForMiles returns the latitude and longitude spans, in degrees, that
// cover the given distance around lat. The longitude span is clamped to a full
// turn near the poles.
func DegreesForMiles(lat, miles float64) (dLat, dLon float64) {
	dLat = miles / (earthDiameterMiles * math.Pi / 360)
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 1e-9 {
		return dLat, 360
	}
	dLon = dLat / cosLat
	if dLon > 360 {
		dLon = 360
	}
	return dLat, dLon
}
