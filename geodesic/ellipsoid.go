// Package geodesic measures distances and headings along the curved surface
// of a reference ellipsoid. It covers the shapes geospatial viewers expose:
// surface positions built from degree coordinates, the geodesic between two
// of them with its surface distance, per-degree lengths of latitude and
// longitude, and the precision ladder of decimal degrees.
package geodesic

import "math"

// Ellipsoid is a biaxial reference ellipsoid, radii in meters.
type Ellipsoid struct {
	SemiMajor float64
	SemiMinor float64
}

// WGS84 is the reference ellipsoid used by GPS and by mapping toolkits.
var WGS84 = Ellipsoid{SemiMajor: 6378137.0, SemiMinor: 6356752.314245}

// Flattening returns (a-b)/a.
func (e Ellipsoid) Flattening() float64 {
	return (e.SemiMajor - e.SemiMinor) / e.SemiMajor
}

// MeanRadius returns the IUGG mean radius (2a+b)/3.
func (e Ellipsoid) MeanRadius() float64 {
	return (2*e.SemiMajor + e.SemiMinor) / 3
}

// eccentricitySquared returns the first eccentricity squared, f(2-f).
func (e Ellipsoid) eccentricitySquared() float64 {
	f := e.Flattening()
	return f * (2 - f)
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }
