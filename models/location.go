package models

// Location is one entry of a person's location history.
// Date is a calendar day in YYYY-MM-DD form and is compared as a string.
type Location struct {
	Date string  `json:"date"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Marker is a location entry attributed to the person it belongs to.
type Marker struct {
	Person     string   `json:"user"`
	Location   Location `json:"loc"`
	DistanceKm float64  `json:"distance_km"` // from the default map center
}
