package mapview

import (
	"locationShare/internal/geo"
	"locationShare/models"
)

// DefaultCenter and DefaultZoom frame the map before any marker is known.
var DefaultCenter = geo.Point{Lat: 40.7128, Lng: -74.006}

const DefaultZoom = 4

// Markers returns, for each active person in order, their entries whose date
// equals the selected date exactly. People missing from h contribute nothing.
func Markers(h History, sel *Selection) []models.Marker {
	var out []models.Marker
	for _, name := range sel.active {
		for _, loc := range h[name] {
			if loc.Date != sel.date {
				continue
			}
			out = append(out, models.Marker{
				Person:     name,
				Location:   loc,
				DistanceKm: geo.HaversineKm(DefaultCenter, geo.Point{Lat: loc.Lat, Lng: loc.Lng}),
			})
		}
	}
	return out
}

// View is the map viewport.
type View struct {
	Center geo.Point   `json:"center"`
	Zoom   int         `json:"zoom"`
	Bounds *geo.Bounds `json:"bounds,omitempty"`
}

// Fit frames the markers: the center moves to the middle of their bounding
// box. With no markers the default view is returned.
func Fit(markers []models.Marker) View {
	pts := make([]geo.Point, 0, len(markers))
	for _, m := range markers {
		pts = append(pts, geo.Point{Lat: m.Location.Lat, Lng: m.Location.Lng})
	}
	b, ok := geo.BoundsOf(pts)
	if !ok {
		return View{Center: DefaultCenter, Zoom: DefaultZoom}
	}
	return View{Center: b.Center(), Zoom: DefaultZoom, Bounds: &b}
}
