package model

// Coordinate is a latitude/longitude pair in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// Location is an LGU from the static municipality catalogue. Latitude and
// Longitude are optional.
type Location struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Province  string   `json:"province" yaml:"province"`
	Region    string   `json:"region" yaml:"region"`
	Latitude  *float64 `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty" yaml:"longitude,omitempty"`
}

// Coordinate returns the location's coordinate and whether both parts are
// present.
func (l Location) Coordinate() (Coordinate, bool) {
	if l.Latitude == nil || l.Longitude == nil {
		return Coordinate{}, false
	}
	return Coordinate{Latitude: *l.Latitude, Longitude: *l.Longitude}, true
}
