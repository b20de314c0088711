package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/nhle/pulseph/internal/model"
	"github.com/nhle/pulseph/internal/validate"
)

var (
	ErrInvalidCoordinate   = errors.New("coordinate out of range")
	ErrOutsidePhilippines  = errors.New("location is outside the Philippines")
	ErrNoMunicipalityFound = errors.New("no municipality with coordinates")
)

// Match is the result of a nearest-location lookup.
type Match struct {
	Location   model.Location
	DistanceKm float64
}

// Nearest returns the location closest to c among those that have both
// coordinates, or nil when none qualify. On equal distances the earlier
// location in the list wins.
func Nearest(c model.Coordinate, locations []model.Location) *Match {
	var best *Match
	shortest := math.Inf(1)

	for _, loc := range locations {
		lc, ok := loc.Coordinate()
		if !ok {
			continue
		}
		d := Distance(c, lc)
		if d < shortest {
			shortest = d
			best = &Match{Location: loc, DistanceKm: d}
		}
	}

	return best
}

// NearestMunicipality runs Nearest against the embedded catalogue.
func NearestMunicipality(c model.Coordinate) *Match {
	return Nearest(c, Municipalities())
}

// Detect validates c and returns the nearest catalogue municipality. It
// stands in for browser geolocation: the coordinate comes from flags or
// config, so range and region checks happen here.
func Detect(c model.Coordinate) (*Match, error) {
	if err := validate.Struct(c); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCoordinate, validate.Describe(err))
	}
	if !WithinPhilippines(c) {
		return nil, ErrOutsidePhilippines
	}
	m := NearestMunicipality(c)
	if m == nil {
		return nil, ErrNoMunicipalityFound
	}
	return m, nil
}

// Philippine bounding box, approximate.
const (
	boundNorth = 21.0
	boundSouth = 4.5
	boundEast  = 127.0
	boundWest  = 116.0
)

// WithinPhilippines reports whether c falls inside the approximate
// bounding box of the Philippines.
func WithinPhilippines(c model.Coordinate) bool {
	return c.Latitude >= boundSouth && c.Latitude <= boundNorth &&
		c.Longitude >= boundWest && c.Longitude <= boundEast
}

// FormatDisplay renders a location as "Name, Province".
func FormatDisplay(l model.Location) string {
	return l.Name + ", " + l.Province
}
