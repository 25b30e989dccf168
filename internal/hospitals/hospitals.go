// Package hospitals locates hospitals near an Indian pincode using
// OpenStreetMap geocoding and POI data, with a TTL'd file cache and a
// seed-dataset fallback so answers degrade instead of failing.
package hospitals

import (
	"context"
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gramhealth/assistant/internal/domain"
	"github.com/gramhealth/assistant/internal/logging"
)

// ErrInvalidPincode is an input-validation failure; the request never
// reaches the upstream services.
var ErrInvalidPincode = errors.New("pincode must be a valid 6-digit Indian postal code")

// ErrLookupUnavailable means both the upstream services and the seed
// fallback came up empty. Callers degrade the answer rather than fail.
var ErrLookupUnavailable = errors.New("hospital lookup failed right now; try again or ask a nearby PHC/ASHA worker")

var pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)

// Source labels stamped on lookup results. SeedSource marks answers
// served from the bundled fallback dataset rather than live OSM data.
const (
	upstreamSource = "OpenStreetMap Nominatim + Overpass"
	SeedSource     = "Seed hospital dataset"
)

const (
	defaultCacheTTL  = 12 * time.Hour
	maxLookupLimit   = 10
	upstreamPOILimit = 25
	earthRadiusKm    = 6371.0
)

// geocoder resolves coordinates and finds hospital POIs. Satisfied by
// the OSM client; tests substitute a fake.
type geocoder interface {
	ResolvePincode(ctx context.Context, pincode string) (lat, lon float64, location string, err error)
	SearchHospitals(ctx context.Context, lat, lon float64, maxResults int) ([]domain.Hospital, error)
}

// Locator serves nearest-hospital lookups. Results are cached per
// pincode in a flat JSON file; a stale or missing cache entry triggers a
// fresh upstream lookup.
type Locator struct {
	geo      geocoder
	cache    *fileCache
	seed     map[string]seedEntry
	cacheTTL time.Duration
	logger   logging.Logger
	now      func() time.Time
}

// Options configures the locator.
type Options struct {
	CachePath string
	SeedPath  string
	CacheTTL  time.Duration
	Logger    logging.Logger
}

// NewLocator builds a locator backed by the OSM services.
func NewLocator(opts Options) (*Locator, error) {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	cache, err := openFileCache(opts.CachePath, logger)
	if err != nil {
		return nil, err
	}
	seed, err := loadSeed(opts.SeedPath)
	if err != nil {
		return nil, err
	}

	return &Locator{
		geo:      newOSMClient(logger),
		cache:    cache,
		seed:     seed,
		cacheTTL: opts.CacheTTL,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// NormalizePincode validates and trims a pincode.
func NormalizePincode(pincode string) (string, error) {
	trimmed := strings.TrimSpace(pincode)
	if !pincodePattern.MatchString(trimmed) {
		return "", ErrInvalidPincode
	}
	return trimmed, nil
}

// LookupNearest returns up to limit hospitals nearest to the pincode.
// Limit is clamped to [1, 10]. A cached entry inside the TTL is served
// without touching the network.
func (l *Locator) LookupNearest(ctx context.Context, pincode string, limit int) (*domain.HospitalLookup, error) {
	normalized, err := NormalizePincode(pincode)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxLookupLimit {
		limit = maxLookupLimit
	}

	if entry, ok := l.cache.get(normalized); ok && l.now().Unix()-entry.Timestamp < int64(l.cacheTTL.Seconds()) {
		return &domain.HospitalLookup{
			Pincode:   normalized,
			Location:  entry.Location,
			Source:    entry.Source,
			Cached:    true,
			Hospitals: capHospitals(entry.Hospitals, limit),
		}, nil
	}

	lookup, err := l.lookupUpstream(ctx, normalized, limit)
	if err == nil {
		return lookup, nil
	}
	l.logger.Warn("hospital lookup upstream failed, trying seed fallback",
		logging.String("pincode", normalized), logging.Error(err))

	if fallback, ok := l.seedFallback(normalized, limit); ok {
		return fallback, nil
	}
	return nil, ErrLookupUnavailable
}

func (l *Locator) lookupUpstream(ctx context.Context, pincode string, limit int) (*domain.HospitalLookup, error) {
	lat, lon, location, err := l.geo.ResolvePincode(ctx, pincode)
	if err != nil {
		return nil, err
	}

	hospitals, err := l.geo.SearchHospitals(ctx, lat, lon, upstreamPOILimit)
	if err != nil {
		return nil, err
	}
	if len(hospitals) == 0 {
		return nil, ErrLookupUnavailable
	}

	sort.SliceStable(hospitals, func(i, j int) bool {
		return hospitals[i].DistanceKm < hospitals[j].DistanceKm
	})

	l.cache.put(pincode, cacheEntry{
		Timestamp: l.now().Unix(),
		Location:  location,
		Source:    upstreamSource,
		Hospitals: hospitals,
	})

	return &domain.HospitalLookup{
		Pincode:   pincode,
		Location:  location,
		Source:    upstreamSource,
		Cached:    false,
		Hospitals: capHospitals(hospitals, limit),
	}, nil
}

func (l *Locator) seedFallback(pincode string, limit int) (*domain.HospitalLookup, bool) {
	entry, ok := l.seed[pincode]
	if !ok {
		return nil, false
	}
	location := entry.Location
	if location == "" {
		location = "Pincode " + pincode + ", India"
	}
	return &domain.HospitalLookup{
		Pincode:   pincode,
		Location:  location,
		Source:    SeedSource,
		Cached:    true,
		Hospitals: capHospitals(entry.Hospitals, limit),
	}, true
}

// HaversineKm returns the great-circle distance between two coordinates,
// rounded to two decimals.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	latDiff := (lat2 - lat1) * math.Pi / 180
	lonDiff := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(latDiff/2)*math.Sin(latDiff/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(lonDiff/2)*math.Sin(lonDiff/2)
	d := 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return math.Round(d*100) / 100
}

func capHospitals(hospitals []domain.Hospital, limit int) []domain.Hospital {
	if len(hospitals) > limit {
		hospitals = hospitals[:limit]
	}
	out := make([]domain.Hospital, len(hospitals))
	copy(out, hospitals)
	return out
}
