package geo

import (
	"math"
	"testing"
)

func TestHaversineKm_ZeroDistance(t *testing.T) {
	p := Point{Lat: 10, Lng: 20}
	d := HaversineKm(p, p)
	if d < 0 || d > 1e-9 {
		t.Fatalf("zero distance expected ~0, got %v", d)
	}
}

func TestHaversineKm_NewYorkToLosAngeles(t *testing.T) {
	ny := Point{Lat: 40.7128, Lng: -74.006}
	la := Point{Lat: 34.0522, Lng: -118.2437}
	d := HaversineKm(ny, la)
	// Published great-circle distance is about 3936 km.
	if math.Abs(d-3936) > 10 {
		t.Fatalf("NY-LA distance = %.1f km, want ~3936", d)
	}
	if math.Abs(d-HaversineKm(la, ny)) > 1e-9 {
		t.Fatalf("distance not symmetric")
	}
}

func TestBoundsOf(t *testing.T) {
	if _, ok := BoundsOf(nil); ok {
		t.Fatalf("expected no bounds for empty input")
	}
	b, ok := BoundsOf([]Point{{Lat: 40, Lng: -74}, {Lat: 34, Lng: -118}, {Lat: 36, Lng: -100}})
	if !ok {
		t.Fatalf("expected bounds")
	}
	if b.SouthWest != (Point{Lat: 34, Lng: -118}) || b.NorthEast != (Point{Lat: 40, Lng: -74}) {
		t.Fatalf("unexpected bounds: %+v", b)
	}
	if c := b.Center(); c != (Point{Lat: 37, Lng: -96}) {
		t.Fatalf("center = %+v", c)
	}
}
