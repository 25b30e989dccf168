package hospitals

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/gramhealth/assistant/internal/domain"
	"github.com/gramhealth/assistant/internal/logging"
)

const (
	nominatimURL = "https://nominatim.openstreetmap.org/search"
	overpassURL  = "https://overpass-api.de/api/interpreter"

	userAgent = "gramhealth-assistant/1.0"

	// Nominatim's usage policy allows at most one request per second.
	nominatimRPS = 1
	overpassRPS  = 1

	searchRadiusMeters = 30000

	upstreamTimeout = 30 * time.Second
)

// osmClient talks to Nominatim (geocoding) and Overpass (hospital POIs).
// Both upstreams are rate limited per their usage policies.
type osmClient struct {
	http             *http.Client
	nominatimLimiter *rate.Limiter
	overpassLimiter  *rate.Limiter
	logger           logging.Logger
}

func newOSMClient(logger logging.Logger) *osmClient {
	return &osmClient{
		http:             &http.Client{Timeout: upstreamTimeout},
		nominatimLimiter: rate.NewLimiter(rate.Limit(nominatimRPS), 1),
		overpassLimiter:  rate.NewLimiter(rate.Limit(overpassRPS), 1),
		logger:           logger,
	}
}

// nominatimParams returns the query-param variants tried in order; the
// structured postalcode search is more precise but misses some pincodes.
func nominatimParams(pincode string) []url.Values {
	structured := url.Values{}
	structured.Set("postalcode", pincode)
	structured.Set("country", "India")
	structured.Set("format", "jsonv2")
	structured.Set("addressdetails", "1")
	structured.Set("limit", "1")

	freeform := url.Values{}
	freeform.Set("q", pincode+", India")
	freeform.Set("format", "jsonv2")
	freeform.Set("addressdetails", "1")
	freeform.Set("limit", "1")

	return []url.Values{structured, freeform}
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// ResolvePincode geocodes a pincode to coordinates and a display name.
func (c *osmClient) ResolvePincode(ctx context.Context, pincode string) (float64, float64, string, error) {
	for _, params := range nominatimParams(pincode) {
		if err := c.nominatimLimiter.Wait(ctx); err != nil {
			return 0, 0, "", err
		}

		var results []nominatimResult
		if err := c.getJSON(ctx, nominatimURL+"?"+params.Encode(), &results); err != nil {
			return 0, 0, "", fmt.Errorf("nominatim lookup: %w", err)
		}
		if len(results) == 0 {
			continue
		}

		top := results[0]
		lat, latErr := strconv.ParseFloat(top.Lat, 64)
		lon, lonErr := strconv.ParseFloat(top.Lon, 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		location := top.DisplayName
		if location == "" {
			location = "Pincode " + pincode + ", India"
		}
		return lat, lon, location, nil
	}

	return 0, 0, "", fmt.Errorf("resolve pincode %s: %w", pincode, ErrLookupUnavailable)
}

type overpassElement struct {
	Type   string            `json:"type"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *overpassCenter   `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

// SearchHospitals finds hospital POIs within 30 km of the coordinates,
// deduplicated by name and rounded position, with distances computed
// from the query point.
func (c *osmClient) SearchHospitals(ctx context.Context, lat, lon float64, maxResults int) ([]domain.Hospital, error) {
	if err := c.overpassLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`[out:json][timeout:30];
(
  node["amenity"="hospital"](around:%d,%f,%f);
  way["amenity"="hospital"](around:%d,%f,%f);
  relation["amenity"="hospital"](around:%d,%f,%f);
);
out center %d;`,
		searchRadiusMeters, lat, lon,
		searchRadiusMeters, lat, lon,
		searchRadiusMeters, lat, lon,
		maxResults)

	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, overpassURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass lookup: unexpected status %d", resp.StatusCode)
	}

	var payload overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("overpass decode: %w", err)
	}

	seen := make(map[string]struct{})
	var hospitals []domain.Hospital
	for _, element := range payload.Elements {
		hLat, hLon, ok := elementCoords(element)
		if !ok {
			continue
		}

		name := element.Tags["name"]
		if name == "" {
			name = "Unnamed Hospital"
		}

		dedupeKey := fmt.Sprintf("%s:%.4f:%.4f", name, hLat, hLon)
		if _, dup := seen[dedupeKey]; dup {
			continue
		}
		seen[dedupeKey] = struct{}{}

		hospitals = append(hospitals, domain.Hospital{
			Name:       name,
			DistanceKm: HaversineKm(lat, lon, hLat, hLon),
			Address:    formatAddress(element.Tags),
			Latitude:   round6(hLat),
			Longitude:  round6(hLon),
			Source:     "OpenStreetMap",
		})
	}

	if len(hospitals) > maxResults {
		hospitals = hospitals[:maxResults]
	}
	return hospitals, nil
}

func elementCoords(element overpassElement) (float64, float64, bool) {
	if element.Type == "node" {
		if element.Lat == 0 && element.Lon == 0 {
			return 0, 0, false
		}
		return element.Lat, element.Lon, true
	}
	if element.Center == nil {
		return 0, 0, false
	}
	return element.Center.Lat, element.Center.Lon, true
}

// formatAddress assembles a display address from OSM addr:* tags.
func formatAddress(tags map[string]string) string {
	fields := []string{
		tags["addr:housenumber"],
		tags["addr:street"],
		tags["addr:suburb"],
		tags["addr:city"],
		tags["addr:state"],
	}
	var cleaned []string
	for _, field := range fields {
		if field != "" {
			cleaned = append(cleaned, field)
		}
	}
	if len(cleaned) == 0 {
		return "Address details not available"
	}
	return strings.Join(cleaned, ", ")
}

func (c *osmClient) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
