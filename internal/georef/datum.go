package georef

// Ellipsoid of revolution, semi-axes in meters
type Ellipsoid struct {
	Name      string
	SemiMajor float64
	SemiMinor float64
}

// Datum is a named ellipsoid with its shift to WGS84 (meters).
// It is carried unchanged by every geo-coding, including across subsets.
type Datum struct {
	Name      string
	Ellipsoid Ellipsoid
	DX        float64
	DY        float64
	DZ        float64
}

var (
	EllipsoidWGS84 = Ellipsoid{Name: "WGS-84", SemiMajor: 6378137.0, SemiMinor: 6356752.3142451793}
	EllipsoidWGS72 = Ellipsoid{Name: "WGS-72", SemiMajor: 6378135.0, SemiMinor: 6356750.5200160937}

	WGS84 = Datum{Name: "WGS-84", Ellipsoid: EllipsoidWGS84}
	WGS72 = Datum{Name: "WGS-72", Ellipsoid: EllipsoidWGS72, DZ: 4.5}
)

// Flattening returns (a-b)/a
func (e Ellipsoid) Flattening() float64 {
	if e.SemiMajor == 0 {
		return 0
	}
	return (e.SemiMajor - e.SemiMinor) / e.SemiMajor
}
