package domain

import "math"

// Coordinate is a geographic position in signed decimal degrees (WGS 84).
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinate is finite and inside the
// latitude [-90, 90] / longitude [-180, 180] ranges.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// GazetteerEntry is one named place from the geonames cities table.
type GazetteerEntry struct {
	Name      string `json:"name"`
	ASCIIName string `json:"ascii_name"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// Place is a gazetteer entry with parsed coordinates.
type Place struct {
	Name       string     `json:"name"`
	ASCIIName  string     `json:"ascii_name"`
	Coordinate Coordinate `json:"coordinate"`
}
