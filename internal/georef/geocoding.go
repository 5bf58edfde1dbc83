package georef

//go:generate enumer -json -sql -type Kind -trimprefix Kind

// Kind is the closed set of geo-coding variants
type Kind int32

const (
	KindCRS Kind = iota
	KindMap
	KindFXY
	KindTiePoint
	KindPixel
)

// GeoCoding converts pixel positions to geographic positions and back.
//
// Implementations are immutable after construction (except for internal caches guarded
// against concurrent initialization) and safe for concurrent use.
// Numeric edge cases never fail: they return InvalidGeoPos or InvalidPixelPos.
type GeoCoding interface {
	Kind() Kind
	// GeoPos is the forward transform
	GeoPos(PixelPos) GeoPos
	// PixelPos is the inverse transform
	PixelPos(GeoPos) PixelPos
	CanGetGeoPos() bool
	CanGetPixelPos() bool
	Datum() Datum
	CrossesAntimeridian() bool
	// Equal is a value comparison: same variant and same effective parameters
	Equal(GeoCoding) bool
}

// BlockGeoCoder is implemented by geo-codings having a faster path than the scalar GeoPos for a block of pixels
type BlockGeoCoder interface {
	GeoPosBlock(x, y, width, height int) []GeoPos
}

// GeoPosBlock returns the geographic positions of the centers of the pixels of the block,
// row by row. The result is the same as calling GeoPos on each pixel center.
func GeoPosBlock(gc GeoCoding, x, y, width, height int) []GeoPos {
	if bgc, ok := gc.(BlockGeoCoder); ok {
		return bgc.GeoPosBlock(x, y, width, height)
	}
	res := make([]GeoPos, 0, width*height)
	for j := y; j < y+height; j++ {
		for i := x; i < x+width; i++ {
			res = append(res, gc.GeoPos(Center(i, j)))
		}
	}
	return res
}
