package events

// EventResponse decorates a catalog record with venue display fields
// resolved through the locations lookup.
type EventResponse struct {
	Event
	LocationName    string `json:"location_name"`
	LocationAddress string `json:"location_address"`
}

// PaginatedEvents is the catalog page returned to the UI.
type PaginatedEvents struct {
	Items      []EventResponse `json:"items"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalItems int             `json:"total_items"`
	TotalPages int             `json:"total_pages"`
}
