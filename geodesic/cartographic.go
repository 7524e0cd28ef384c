package geodesic

import "math"

// Cartographic is a geodetic surface position: longitude and latitude in
// radians, height in meters above the ellipsoid.
type Cartographic struct {
	Longitude float64
	Latitude  float64
	Height    float64
}

// FromDegrees builds a surface position from degree coordinates. Longitude
// is normalized to (-180, 180], latitude is clamped to [-90, 90].
func FromDegrees(lonDeg, latDeg float64) Cartographic {
	return Cartographic{
		Longitude: Radians(normalizeLongitude(lonDeg)),
		Latitude:  Radians(clampLatitude(latDeg)),
	}
}

// LongitudeDegrees returns the longitude in degrees.
func (c Cartographic) LongitudeDegrees() float64 { return Degrees(c.Longitude) }

// LatitudeDegrees returns the latitude in degrees.
func (c Cartographic) LatitudeDegrees() float64 { return Degrees(c.Latitude) }

func normalizeLongitude(deg float64) float64 {
	deg = math.Mod(deg, 360)
	switch {
	case deg > 180:
		return deg - 360
	case deg <= -180:
		return deg + 360
	}
	return deg
}

func clampLatitude(deg float64) float64 {
	return math.Max(-90, math.Min(90, deg))
}

// cartesian converts the position to earth-centered coordinates in meters.
func (c Cartographic) cartesian(e Ellipsoid) (x, y, z float64) {
	sinLat, cosLat := math.Sincos(c.Latitude)
	sinLon, cosLon := math.Sincos(c.Longitude)

	e2 := e.eccentricitySquared()
	n := e.SemiMajor / math.Sqrt(1-e2*sinLat*sinLat)

	x = (n + c.Height) * cosLat * cosLon
	y = (n + c.Height) * cosLat * sinLon
	z = (n*(1-e2) + c.Height) * sinLat
	return x, y, z
}
