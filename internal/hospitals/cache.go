package hospitals

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/gramhealth/assistant/internal/domain"
	"github.com/gramhealth/assistant/internal/logging"
)

// cacheEntry is one cached pincode lookup.
type cacheEntry struct {
	Timestamp int64             `json:"timestamp"`
	Location  string            `json:"location"`
	Source    string            `json:"source"`
	Hospitals []domain.Hospital `json:"hospitals"`
}

// seedEntry is one pincode in the offline fallback dataset.
type seedEntry struct {
	Location  string            `json:"location"`
	Hospitals []domain.Hospital `json:"hospitals"`
}

// fileCache is a flat JSON file keyed by pincode. The locator owns the
// file; writes rewrite it whole. A corrupt existing file is treated as
// empty rather than fatal, matching cache semantics (it can always be
// refilled).
type fileCache struct {
	path    string
	logger  logging.Logger
	mu      sync.Mutex
	entries map[string]cacheEntry
}

func openFileCache(path string, logger logging.Logger) (*fileCache, error) {
	cache := &fileCache{
		path:    path,
		logger:  logger,
		entries: make(map[string]cacheEntry),
	}
	if path == "" {
		return cache, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cache, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read hospital cache %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cache.entries); err != nil {
		logger.Warn("hospital cache file is corrupt, starting empty",
			logging.String("path", path), logging.Error(err))
		cache.entries = make(map[string]cacheEntry)
	}
	return cache, nil
}

func (c *fileCache) get(pincode string) (cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[pincode]
	return entry, ok
}

func (c *fileCache) put(pincode string, entry cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[pincode] = entry

	if c.path == "" {
		return
	}
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		c.logger.Error("marshal hospital cache", logging.Error(err))
		return
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		c.logger.Error("write hospital cache", logging.String("path", c.path), logging.Error(err))
	}
}

// loadSeed reads the optional offline hospital dataset.
func loadSeed(path string) (map[string]seedEntry, error) {
	if path == "" {
		return map[string]seedEntry{}, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]seedEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read hospital seed %s: %w", path, err)
	}
	seed := make(map[string]seedEntry)
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse hospital seed %s: %w", path, err)
	}
	return seed, nil
}
