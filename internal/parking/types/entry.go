package types

type EntryRequest struct {
	VRM       string `json:"vrm" validate:"required,vrm"`
	EnteredAt string `json:"entered_at,omitempty"` // optional, YYYY-MM-DD HH:MM:SS
}

type EntryResponse struct {
	ID        int64  `json:"id"`
	VRM       string `json:"vrm"`
	EnteredAt string `json:"entered_at"`
}
