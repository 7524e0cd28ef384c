package geodesic

import "math"

// Geodesic is the shortest surface path between two positions on an
// ellipsoid. Constructing one solves the inverse problem once; the results
// are read through SurfaceDistance, StartHeading and EndHeading.
type Geodesic struct {
	start, end Cartographic
	ellipsoid  Ellipsoid

	distance     float64
	startHeading float64
	endHeading   float64
}

// New solves the geodesic between two positions on WGS84.
func New(start, end Cartographic) *Geodesic {
	return NewOnEllipsoid(start, end, WGS84)
}

// NewOnEllipsoid solves the geodesic between two positions on the given
// ellipsoid using Vincenty's inverse formula. Near-antipodal pairs, where
// the iteration does not converge, fall back to the spherical solution on
// the mean radius.
func NewOnEllipsoid(start, end Cartographic, e Ellipsoid) *Geodesic {
	g := &Geodesic{start: start, end: end, ellipsoid: e}
	g.solve()
	return g
}

// Start returns the first surface position.
func (g *Geodesic) Start() Cartographic { return g.start }

// End returns the second surface position.
func (g *Geodesic) End() Cartographic { return g.end }

// SurfaceDistance returns the length of the geodesic in meters, measured
// along the curved surface rather than through the body.
func (g *Geodesic) SurfaceDistance() float64 { return g.distance }

// Kilometers returns the surface distance scaled to kilometers.
func (g *Geodesic) Kilometers() float64 { return g.distance / 1000 }

// StartHeading returns the azimuth of the path at the start position,
// radians clockwise from north in [0, 2π).
func (g *Geodesic) StartHeading() float64 { return g.startHeading }

// EndHeading returns the azimuth of the path at the end position, radians
// clockwise from north in [0, 2π).
func (g *Geodesic) EndHeading() float64 { return g.endHeading }

const (
	vincentyTolerance  = 1e-12
	vincentyIterations = 200
)

func (g *Geodesic) solve() {
	a := g.ellipsoid.SemiMajor
	b := g.ellipsoid.SemiMinor
	f := g.ellipsoid.Flattening()

	phi1 := g.start.Latitude
	phi2 := g.end.Latitude
	l := math.Mod(g.end.Longitude-g.start.Longitude, 2*math.Pi)
	switch {
	case l > math.Pi:
		l -= 2 * math.Pi
	case l < -math.Pi:
		l += 2 * math.Pi
	}

	u1 := math.Atan((1 - f) * math.Tan(phi1))
	u2 := math.Atan((1 - f) * math.Tan(phi2))
	sinU1, cosU1 := math.Sincos(u1)
	sinU2, cosU2 := math.Sincos(u2)

	lambda := l
	var sinLambda, cosLambda float64
	var sinSigma, cosSigma, sigma float64
	var cosSqAlpha, cos2SigmaM float64

	converged := false
	for i := 0; i < vincentyIterations; i++ {
		sinLambda, cosLambda = math.Sincos(lambda)

		dx := cosU2 * sinLambda
		dy := cosU1*sinU2 - sinU1*cosU2*cosLambda
		sinSigma = math.Sqrt(dx*dx + dy*dy)
		if sinSigma == 0 {
			// Coincident positions.
			g.distance = 0
			g.startHeading = 0
			g.endHeading = 0
			return
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)

		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha
		if cosSqAlpha == 0 {
			// Both points on the equator.
			cos2SigmaM = 0
		} else {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		}

		c := f / 16 * cosSqAlpha * (4 + f*(4-3*cosSqAlpha))
		prev := lambda
		lambda = l + (1-c)*f*sinAlpha*
			(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
		if math.Abs(lambda-prev) < vincentyTolerance {
			converged = true
			break
		}
	}
	if !converged {
		g.distance = Haversine(g.start, g.end)
		g.startHeading = 0
		g.endHeading = 0
		return
	}

	uSq := cosSqAlpha * (a*a - b*b) / (b * b)
	bigA := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	bigB := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
	deltaSigma := bigB * sinSigma *
		(cos2SigmaM + bigB/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
			bigB/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))

	g.distance = b * bigA * (sigma - deltaSigma)
	g.startHeading = normalizeHeading(math.Atan2(cosU2*sinLambda, cosU1*sinU2-sinU1*cosU2*cosLambda))
	g.endHeading = normalizeHeading(math.Atan2(cosU1*sinLambda, -sinU1*cosU2+cosU1*sinU2*cosLambda))
}

func normalizeHeading(rad float64) float64 {
	rad = math.Mod(rad, 2*math.Pi)
	if rad < 0 {
		rad += 2 * math.Pi
	}
	return rad
}

// Haversine returns the great-circle distance in meters on a sphere of the
// WGS84 mean radius. Good to a few tenths of a percent; used where the
// ellipsoidal solution is overkill or does not converge.
func Haversine(a, b Cartographic) float64 {
	dLat := b.Latitude - a.Latitude
	dLon := b.Longitude - a.Longitude

	s1 := math.Sin(dLat / 2)
	s2 := math.Sin(dLon / 2)
	h := s1*s1 + math.Cos(a.Latitude)*math.Cos(b.Latitude)*s2*s2
	return 2 * WGS84.MeanRadius() * math.Asin(math.Min(1, math.Sqrt(h)))
}

// ChordLength returns the straight-line distance in meters through the body
// of the WGS84 ellipsoid. For distinct surface points it is always shorter
// than the surface distance; mistaking one for the other is the classic
// distance bug in globe viewers.
func ChordLength(a, b Cartographic) float64 {
	ax, ay, az := a.cartesian(WGS84)
	bx, by, bz := b.cartesian(WGS84)
	dx, dy, dz := bx-ax, by-ay, bz-az
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
