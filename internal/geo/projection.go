package geo

import (
	"math"
)

// EarthRadiusKm is the mean Earth radius
const EarthRadiusKm = 6371.0088

// KmPerDegreeLat is the length of one degree of latitude. It is also the
// length of one degree of longitude at the equator.
const KmPerDegreeLat = 2 * math.Pi * EarthRadiusKm / 360

// KmPerDegreeLon returns the length of one degree of longitude at the
// given latitude. The result shrinks with cos(lat) toward the poles and is
// never negative.
func KmPerDegreeLon(lat float64) float64 {
	return math.Max(0, KmPerDegreeLat*math.Cos(lat*math.Pi/180.0))
}

// LonDegreesToKm converts a longitude span measured at lat to kilometers
func LonDegreesToKm(degrees, lat float64) float64 {
	return math.Abs(degrees) * KmPerDegreeLon(lat)
}

// KmToLonDegrees converts a ground distance along a parallel at lat to a
// longitude span. It returns +Inf at the poles.
func KmToLonDegrees(km, lat float64) float64 {
	perDegree := KmPerDegreeLon(lat)
	if perDegree == 0 {
		return math.Inf(1)
	}
	return km / perDegree
}
