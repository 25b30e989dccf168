package domain

// Hospital is one nearby-hospital result with the distance from the
// resolved query location.
type Hospital struct {
	Name       string  `json:"name"`
	DistanceKm float64 `json:"distance_km"`
	Address    string  `json:"address"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Source     string  `json:"source"`
}

// HospitalLookup is the payload returned by the hospital locator.
type HospitalLookup struct {
	Pincode   string     `json:"pincode"`
	Location  string     `json:"location"`
	Source    string     `json:"source"`
	Cached    bool       `json:"cached"`
	Hospitals []Hospital `json:"hospitals"`
}
