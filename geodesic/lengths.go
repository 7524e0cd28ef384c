package geodesic

import "math"

// Degree lengths on WGS84, by the standard series expansions in the
// latitude. Coefficients are meters.

// LatitudeDegreeLength returns the length in meters of one degree of
// latitude centered on the given latitude.
func LatitudeDegreeLength(latDeg float64) float64 {
	phi := Radians(latDeg)
	return 111132.92 -
		559.82*math.Cos(2*phi) +
		1.175*math.Cos(4*phi) -
		0.0023*math.Cos(6*phi)
}

// LongitudeDegreeLength returns the length in meters of one degree of
// longitude at the given latitude. It shrinks toward zero at the poles.
func LongitudeDegreeLength(latDeg float64) float64 {
	phi := Radians(latDeg)
	return 111412.84*math.Cos(phi) -
		93.5*math.Cos(3*phi) +
		0.118*math.Cos(5*phi)
}

// PrecisionRow describes what one digit of decimal-degree precision buys at
// a given latitude.
type PrecisionRow struct {
	Decimals        int
	Degrees         float64
	LatitudeMeters  float64
	LongitudeMeters float64
	Landmark        string
}

// precisionLandmarks is the customary ladder of objects one can pin down at
// each decimal place.
var precisionLandmarks = []string{
	"country or large region",
	"large city or district",
	"town or village",
	"neighborhood or street",
	"individual street or large building",
	"individual tree or house",
	"individual human",
	"practical limit of commercial surveying",
	"specialized surveying",
}

// PrecisionTable returns the decimal-degree precision ladder at a latitude:
// rows for 0 through 8 decimal places with the ground lengths of one unit in
// the last place, north/south and east/west.
func PrecisionTable(latDeg float64) []PrecisionRow {
	latLen := LatitudeDegreeLength(latDeg)
	lonLen := LongitudeDegreeLength(latDeg)

	rows := make([]PrecisionRow, 0, len(precisionLandmarks))
	unit := 1.0
	for d, landmark := range precisionLandmarks {
		rows = append(rows, PrecisionRow{
			Decimals:        d,
			Degrees:         unit,
			LatitudeMeters:  latLen * unit,
			LongitudeMeters: lonLen * unit,
			Landmark:        landmark,
		})
		unit /= 10
	}
	return rows
}
