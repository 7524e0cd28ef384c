package geodesic

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromDegrees_NormalizesLongitudeAndClampsLatitude(t *testing.T) {
	c := FromDegrees(200, 95)
	require.InDelta(t, -160, c.LongitudeDegrees(), 1e-9)
	require.InDelta(t, 90, c.LatitudeDegrees(), 1e-9)

	c = FromDegrees(-540, -95)
	require.InDelta(t, 180, c.LongitudeDegrees(), 1e-9)
	require.InDelta(t, -90, c.LatitudeDegrees(), 1e-9)
}

func TestWGS84_DerivedConstants(t *testing.T) {
	require.InDelta(t, 298.257223563, 1/WGS84.Flattening(), 1e-6)
	require.InDelta(t, 6371008.77, WGS84.MeanRadius(), 0.01)
}

func TestSurfaceDistance_MeridianQuadrant(t *testing.T) {
	g := New(FromDegrees(0, 0), FromDegrees(0, 90))
	require.InDelta(t, 10001965.73, g.SurfaceDistance(), 1.0)
}

func TestSurfaceDistance_EquatorQuadrant(t *testing.T) {
	g := New(FromDegrees(0, 0), FromDegrees(90, 0))
	require.InDelta(t, 10018754.17, g.SurfaceDistance(), 1.0)
}

func TestSurfaceDistance_OneDegreeAtEquator(t *testing.T) {
	lon := New(FromDegrees(0, 0), FromDegrees(1, 0))
	require.InDelta(t, 111319.49, lon.SurfaceDistance(), 0.5)

	lat := New(FromDegrees(0, 0), FromDegrees(0, 1))
	require.InDelta(t, 110574.39, lat.SurfaceDistance(), 2.0)
}

// Vincenty's published Flinders Peak to Buninyong line.
func TestSurfaceDistance_SurveyBaseline(t *testing.T) {
	flinders := FromDegrees(144.42486789, -37.95103341)
	buninyong := FromDegrees(143.92649552, -37.65282114)

	g := New(flinders, buninyong)
	require.InDelta(t, 54972.271, g.SurfaceDistance(), 0.05)
	require.InDelta(t, 306.86816, Degrees(g.StartHeading()), 0.001)
	// The heading at the end point continues along the path; Vincenty's
	// published 127.17363 is the reverse bearing back to the start.
	require.InDelta(t, 307.17363, Degrees(g.EndHeading()), 0.001)
}

func TestSurfaceDistance_Symmetric(t *testing.T) {
	a := FromDegrees(-74.006, 40.7128)
	b := FromDegrees(-0.1276, 51.5074)
	require.InDelta(t, New(a, b).SurfaceDistance(), New(b, a).SurfaceDistance(), 1e-6)
}

func TestSurfaceDistance_CoincidentPoints_Zero(t *testing.T) {
	p := FromDegrees(11.57, 48.14)
	require.Zero(t, New(p, p).SurfaceDistance())
}

func TestSurfaceDistance_NearAntipodal_FallsBackToSphere(t *testing.T) {
	d := New(FromDegrees(0, 0), FromDegrees(179.5, 0.5)).SurfaceDistance()
	require.Greater(t, d, 19_800_000.0)
	require.Less(t, d, 20_100_000.0)
}

func TestKilometers_ScalesSurfaceDistance(t *testing.T) {
	g := New(FromDegrees(0, 0), FromDegrees(1, 0))
	require.InDelta(t, g.SurfaceDistance()/1000, g.Kilometers(), 1e-9)
	require.InDelta(t, 111.32, g.Kilometers(), 0.01)
}

func TestChordLength_ShorterThanSurfaceDistance(t *testing.T) {
	a := FromDegrees(-74.006, 40.7128)
	b := FromDegrees(-0.1276, 51.5074)

	chord := ChordLength(a, b)
	surface := New(a, b).SurfaceDistance()
	require.Greater(t, chord, 0.0)
	require.Less(t, chord, surface)
}

func TestHaversine_WithinHalfPercentOfEllipsoid(t *testing.T) {
	pairs := [][2]Cartographic{
		{FromDegrees(-74.006, 40.7128), FromDegrees(-0.1276, 51.5074)},
		{FromDegrees(139.6917, 35.6895), FromDegrees(151.2093, -33.8688)},
		{FromDegrees(2.3522, 48.8566), FromDegrees(37.6173, 55.7558)},
	}
	for _, pair := range pairs {
		ellipsoidal := New(pair[0], pair[1]).SurfaceDistance()
		spherical := Haversine(pair[0], pair[1])
		require.InEpsilon(t, ellipsoidal, spherical, 0.005)
	}
}
