package geo

// Bounds is an axis-aligned lat/lng box.
type Bounds struct {
	SouthWest Point `json:"south_west"`
	NorthEast Point `json:"north_east"`
}

// BoundsOf returns the smallest box containing every point.
// ok is false when points is empty.
func BoundsOf(points []Point) (b Bounds, ok bool) {
	if len(points) == 0 {
		return Bounds{}, false
	}
	b = Bounds{SouthWest: points[0], NorthEast: points[0]}
	for _, p := range points[1:] {
		b.SouthWest.Lat = min(b.SouthWest.Lat, p.Lat)
		b.SouthWest.Lng = min(b.SouthWest.Lng, p.Lng)
		b.NorthEast.Lat = max(b.NorthEast.Lat, p.Lat)
		b.NorthEast.Lng = max(b.NorthEast.Lng, p.Lng)
	}
	return b, true
}

// Center returns the midpoint of the box. Boxes spanning the antimeridian are not handled.
func (b Bounds) Center() Point {
	return Point{
		Lat: (b.SouthWest.Lat + b.NorthEast.Lat) / 2,
		Lng: (b.SouthWest.Lng + b.NorthEast.Lng) / 2,
	}
}
