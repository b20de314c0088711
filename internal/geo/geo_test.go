package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/pulseph/internal/model"
)

func ptr(f float64) *float64 { return &f }

func TestDistanceSamePointIsZero(t *testing.T) {
	points := []model.Coordinate{
		{Latitude: 14.5995, Longitude: 120.9842},
		{Latitude: -33.8688, Longitude: 151.2093},
		{Latitude: 0, Longitude: 0},
		{Latitude: 89.9, Longitude: -179.9},
	}
	for _, p := range points {
		assert.Equal(t, 0.0, Distance(p, p), "point %+v", p)
	}
}

func TestDistanceManilaToCebu(t *testing.T) {
	manila := model.Coordinate{Latitude: 14.5995, Longitude: 120.9842}
	cebu := model.Coordinate{Latitude: 10.3157, Longitude: 123.8854}

	d := Distance(manila, cebu)
	assert.InDelta(t, 570, d, 10)
	assert.InDelta(t, d, Distance(cebu, manila), 1e-9)
}

func TestDistanceQuarterMeridian(t *testing.T) {
	d := Distance(model.Coordinate{}, model.Coordinate{Latitude: 90})
	assert.InDelta(t, EarthRadiusKm*3.141592653589793/2, d, 1e-6)
}

func TestNearestSkipsLocationsWithoutCoordinates(t *testing.T) {
	locs := []model.Location{
		{ID: "none", Name: "Nowhere"},
		{ID: "half", Name: "Half", Latitude: ptr(14.6)},
		{ID: "far", Name: "Far", Latitude: ptr(7.07), Longitude: ptr(125.61)},
	}

	m := Nearest(model.Coordinate{Latitude: 14.6, Longitude: 120.98}, locs)
	require.NotNil(t, m)
	assert.Equal(t, "far", m.Location.ID)
}

func TestNearestReturnsNilWhenNothingQualifies(t *testing.T) {
	c := model.Coordinate{Latitude: 14.6, Longitude: 120.98}
	assert.Nil(t, Nearest(c, nil))
	assert.Nil(t, Nearest(c, []model.Location{{ID: "a"}, {ID: "b", Longitude: ptr(1)}}))
}

func TestNearestTieKeepsFirst(t *testing.T) {
	locs := []model.Location{
		{ID: "first", Latitude: ptr(10), Longitude: ptr(10)},
		{ID: "second", Latitude: ptr(10), Longitude: ptr(10)},
	}
	m := Nearest(model.Coordinate{Latitude: 11, Longitude: 11}, locs)
	require.NotNil(t, m)
	assert.Equal(t, "first", m.Location.ID)
}

func TestNearestMunicipalityManila(t *testing.T) {
	m := NearestMunicipality(model.Coordinate{Latitude: 14.5995, Longitude: 120.9842})
	require.NotNil(t, m)
	assert.Equal(t, "mnl-001", m.Location.ID)
	assert.Equal(t, "Manila", m.Location.Name)
	assert.InDelta(t, 0, m.DistanceKm, 1e-9)
}

func TestNearestMunicipalityDavao(t *testing.T) {
	m := NearestMunicipality(model.Coordinate{Latitude: 7.1, Longitude: 125.6})
	require.NotNil(t, m)
	assert.Equal(t, "Davao City", m.Location.Name)
}

func TestCatalogue(t *testing.T) {
	all := Municipalities()
	require.Len(t, all, 37)
	for _, m := range all {
		_, ok := m.Coordinate()
		assert.True(t, ok, "%s has coordinates", m.ID)
	}

	names := make([]string, 0)
	for _, m := range ByProvince("Cebu") {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"Cebu City", "Lapu-Lapu", "Mandaue", "Toledo"}, names)

	provinces := Provinces()
	assert.Contains(t, provinces, "Metro Manila")
	assert.IsNonDecreasing(t, provinces)

	found := Search("pIñas")
	require.Len(t, found, 1)
	assert.Equal(t, "Las Piñas", found[0].Name)
	assert.Len(t, Search("laguna"), 4)
}

func TestParseCatalogOptionalCoordinates(t *testing.T) {
	locs, err := ParseCatalog([]byte("- id: x\n  name: X\n  province: P\n  region: R\n"))
	require.NoError(t, err)
	require.Len(t, locs, 1)
	_, ok := locs[0].Coordinate()
	assert.False(t, ok)
}

func TestWithinPhilippines(t *testing.T) {
	assert.True(t, WithinPhilippines(model.Coordinate{Latitude: 14.5995, Longitude: 120.9842}))
	assert.False(t, WithinPhilippines(model.Coordinate{Latitude: 35.68, Longitude: 139.69}))
}

func TestFormatDisplay(t *testing.T) {
	assert.Equal(t, "Imus, Cavite", FormatDisplay(model.Location{Name: "Imus", Province: "Cavite"}))
}

func TestDetect(t *testing.T) {
	m, err := Detect(model.Coordinate{Latitude: 14.5995, Longitude: 120.9842})
	require.NoError(t, err)
	assert.Equal(t, "Manila", m.Location.Name)

	_, err = Detect(model.Coordinate{Latitude: 95, Longitude: 120})
	assert.ErrorIs(t, err, ErrInvalidCoordinate)

	_, err = Detect(model.Coordinate{Latitude: 35.68, Longitude: 139.69})
	assert.ErrorIs(t, err, ErrOutsidePhilippines)
}
