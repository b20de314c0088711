package geo

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/nhle/pulseph/internal/model"
)

//go:embed municipalities.yaml
var municipalitiesYAML []byte

var (
	catalogOnce sync.Once
	catalog     []model.Location
)

// ParseCatalog decodes a YAML list of locations.
func ParseCatalog(data []byte) ([]model.Location, error) {
	var locs []model.Location
	if err := yaml.Unmarshal(data, &locs); err != nil {
		return nil, fmt.Errorf("decoding municipality catalogue: %w", err)
	}
	return locs, nil
}

// Municipalities returns the embedded sample of Philippine municipalities.
// The slice is shared; callers must not modify it.
func Municipalities() []model.Location {
	catalogOnce.Do(func() {
		locs, err := ParseCatalog(municipalitiesYAML)
		if err != nil {
			// The catalogue is compiled in; a decode failure is a build defect.
			panic(err)
		}
		catalog = locs
	})
	return catalog
}

// ByProvince returns the municipalities in the given province.
func ByProvince(province string) []model.Location {
	var out []model.Location
	for _, m := range Municipalities() {
		if m.Province == province {
			out = append(out, m)
		}
	}
	return out
}

// Provinces returns the distinct provinces in the catalogue, sorted.
func Provinces() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range Municipalities() {
		if !seen[m.Province] {
			seen[m.Province] = true
			out = append(out, m.Province)
		}
	}
	sort.Strings(out)
	return out
}

// Search returns municipalities whose name or province contains query,
// case-insensitively.
func Search(query string) []model.Location {
	q := strings.ToLower(query)
	var out []model.Location
	for _, m := range Municipalities() {
		if strings.Contains(strings.ToLower(m.Name), q) ||
			strings.Contains(strings.ToLower(m.Province), q) {
			out = append(out, m)
		}
	}
	return out
}
