package geodesic

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDegreeLengths_AtEquator_AboutOneEleventhMegameter(t *testing.T) {
	require.InDelta(t, 110574.3, LatitudeDegreeLength(0), 5)
	require.InDelta(t, 111319.5, LongitudeDegreeLength(0), 5)
}

func TestLongitudeDegreeLength_ShrinksWithLatitude(t *testing.T) {
	// The claim readers check first: at 60 north a degree of longitude is
	// a bit under 56 km, roughly half its equator length.
	at60 := LongitudeDegreeLength(60)
	require.InDelta(t, 55800, at60, 5)
	require.Less(t, at60, LongitudeDegreeLength(0)/1.99)

	require.InDelta(t, 0, LongitudeDegreeLength(90), 0.01)
}

func TestLatitudeDegreeLength_GrowsTowardPoles(t *testing.T) {
	require.InDelta(t, 111131.7, LatitudeDegreeLength(45), 1)
	require.Greater(t, LatitudeDegreeLength(89), LatitudeDegreeLength(1))
}

func TestDegreeLengths_MatchGeodesicSolutions(t *testing.T) {
	// The series and the full inverse solution agree to meters.
	lat := New(FromDegrees(0, 44.5), FromDegrees(0, 45.5)).SurfaceDistance()
	require.InDelta(t, LatitudeDegreeLength(45), lat, 10)

	lon := New(FromDegrees(10, 60), FromDegrees(11, 60)).SurfaceDistance()
	require.InDelta(t, LongitudeDegreeLength(60), lon, 30)
}

func TestPrecisionTable_LadderOfTenths(t *testing.T) {
	rows := PrecisionTable(0)
	require.Len(t, rows, 9)

	require.Equal(t, 0, rows[0].Decimals)
	require.InDelta(t, 1.0, rows[0].Degrees, 1e-12)
	require.InDelta(t, 111319.5, rows[0].LongitudeMeters, 5)
	require.Equal(t, "country or large region", rows[0].Landmark)

	for i := 1; i < len(rows); i++ {
		require.Equal(t, i, rows[i].Decimals)
		require.InDelta(t, rows[i-1].LongitudeMeters/10, rows[i].LongitudeMeters, 1e-6)
		require.InDelta(t, rows[i-1].LatitudeMeters/10, rows[i].LatitudeMeters, 1e-6)
	}

	// Five decimals pins a house; survey work needs seven or more.
	require.InDelta(t, 1.11, rows[5].LongitudeMeters, 0.01)
	require.Equal(t, "practical limit of commercial surveying", rows[7].Landmark)
}

func TestPrecisionTable_HighLatitude_NarrowsEastWest(t *testing.T) {
	rows := PrecisionTable(67)
	require.InDelta(t, 43620, rows[0].LongitudeMeters, 100)
	// North/south lengths barely move with latitude.
	require.InDelta(t, 111520, rows[0].LatitudeMeters, 30)
}
