package types

// LookupRequest carries the raw query parameters of a fuzzy VRM lookup.
// Window is a string so the service can report a non-numeric value as an
// invalid window rather than a decode failure.
type LookupRequest struct {
	VRM       string `json:"vrm"`
	Window    string `json:"window,omitempty"`
	QueryFrom string `json:"query_from,omitempty"`
	QueryTo   string `json:"query_to,omitempty"`
}

type LookupResponse struct {
	Message string          `json:"message"`
	Results []SessionResult `json:"results"`
}

// SessionResult is one derived parking session. Start and End are null for
// the "none" placeholder.
type SessionResult struct {
	VRM          string  `json:"vrm"`
	Session      string  `json:"session"`
	SessionStart *string `json:"session_start"`
	SessionEnd   *string `json:"session_end"`
	Distance     *int    `json:"distance,omitempty"`
}
