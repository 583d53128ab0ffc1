package types

// PlateSearchRequest is the legacy /search query.
type PlateSearchRequest struct {
	Plate    string `json:"plate"`
	Datetime string `json:"datetime,omitempty"`
	Window   string `json:"window,omitempty"`
}

type PlateSearchResponse struct {
	Message string        `json:"message"`
	Results []PlateResult `json:"results"`
	// Found is false when Results holds only the no-match placeholder.
	Found bool `json:"-"`
}

type PlateResult struct {
	LicensePlate   string  `json:"license_plate"`
	TimeIn         *string `json:"time_in"`
	Expired        bool    `json:"expired"`
	ExpirationTime *string `json:"expiration_time"`
}
