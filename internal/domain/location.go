package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRegistry is wrapped by every registry validation failure.
var ErrInvalidRegistry = errors.New("invalid location registry")

// Location is a monitored point with its nominal sustainable occupancy.
type Location struct {
	Name         string  `json:"name" yaml:"name"`
	Lat          float64 `json:"lat" yaml:"lat"`
	Lon          float64 `json:"lon" yaml:"lon"`
	BaseCapacity int     `json:"baseCapacity" yaml:"baseCapacity"`
}

// Registry is the ordered list of monitored locations. Record ids and
// snapshot ordering are derived from positions in this list.
type Registry []Location

// DefaultRegistry returns the compiled-in Varanasi monitoring points.
func DefaultRegistry() Registry {
	return Registry{
		{Name: "Dashashwamedh Ghat", Lat: 25.3109, Lon: 83.0107, BaseCapacity: 5000},
		{Name: "Godowlia Chowk", Lat: 25.3116, Lon: 83.0103, BaseCapacity: 3000},
		{Name: "Vishwanath Gali", Lat: 25.3108, Lon: 83.0097, BaseCapacity: 2000},
		{Name: "Kashi Vishwanath Temple", Lat: 25.3109, Lon: 83.0106, BaseCapacity: 4000},
		{Name: "Assi Ghat", Lat: 25.2876, Lon: 83.0053, BaseCapacity: 3500},
		{Name: "Manikarnika Ghat", Lat: 25.3142, Lon: 83.0147, BaseCapacity: 2500},
		{Name: "Varanasi Junction", Lat: 25.3189, Lon: 83.0260, BaseCapacity: 8000},
		{Name: "BHU Main Gate", Lat: 25.2677, Lon: 82.9913, BaseCapacity: 4000},
		{Name: "Sigra Chauraha", Lat: 25.3252, Lon: 82.9876, BaseCapacity: 3000},
		{Name: "Lanka Chowk", Lat: 25.2756, Lon: 82.9923, BaseCapacity: 2500},
		{Name: "Bhelupur", Lat: 25.2989, Lon: 82.9912, BaseCapacity: 2000},
		{Name: "Lahartara Chowk", Lat: 25.3401, Lon: 83.0123, BaseCapacity: 2500},
		{Name: "Nadesar", Lat: 25.3312, Lon: 82.9834, BaseCapacity: 1500},
		{Name: "Sarnath", Lat: 25.3814, Lon: 83.0225, BaseCapacity: 3000},
		{Name: "Ramnagar Fort", Lat: 25.2876, Lon: 83.0312, BaseCapacity: 2000},
		{Name: "Tulsi Ghat", Lat: 25.2923, Lon: 83.0034, BaseCapacity: 1500},
		{Name: "Harishchandra Ghat", Lat: 25.3034, Lon: 83.0089, BaseCapacity: 1800},
		{Name: "Kedar Ghat", Lat: 25.3056, Lon: 83.0078, BaseCapacity: 1600},
		{Name: "Meer Ghat", Lat: 25.3078, Lon: 83.0098, BaseCapacity: 1400},
		{Name: "Pandey Ghat", Lat: 25.3023, Lon: 83.0067, BaseCapacity: 1200},
	}
}

// Validate rejects registries that would propagate NaN or ambiguous
// identities into generated records.
func (r Registry) Validate() error {
	if len(r) == 0 {
		return fmt.Errorf("%w: no locations", ErrInvalidRegistry)
	}

	seen := make(map[string]int, len(r))
	var errs []error
	for i, loc := range r {
		name := strings.TrimSpace(loc.Name)
		switch {
		case name == "":
			errs = append(errs, fmt.Errorf("%w: location %d has no name", ErrInvalidRegistry, i))
		case seen[name] > 0:
			errs = append(errs, fmt.Errorf("%w: location %d duplicates name %q", ErrInvalidRegistry, i, name))
		}
		seen[name]++

		if loc.BaseCapacity <= 0 {
			errs = append(errs, fmt.Errorf("%w: %q base capacity %d must be positive", ErrInvalidRegistry, loc.Name, loc.BaseCapacity))
		}
		// Written as negated ranges so NaN coordinates fail too.
		if !(loc.Lat >= -90 && loc.Lat <= 90) || !(loc.Lon >= -180 && loc.Lon <= 180) {
			errs = append(errs, fmt.Errorf("%w: %q coordinates (%g, %g) out of range", ErrInvalidRegistry, loc.Name, loc.Lat, loc.Lon))
		}
	}
	return errors.Join(errs...)
}

// RecordID returns the snapshot id for the location at index i.
func RecordID(i int) string {
	return fmt.Sprintf("LOC-%d", i+100)
}
