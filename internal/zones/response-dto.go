package zones

// SessionResponse is the editing session state rendered by the back-office
// zone table.
type SessionResponse struct {
	EventID            string    `json:"event_id"`
	Rows               []ZoneRow `json:"rows"`
	Saving             bool      `json:"saving"`
	TotalSeatsSold     int       `json:"total_seats_sold"`
	TotalCapacityZones int       `json:"total_capacity_zones"`
	Capacity           int       `json:"capacity"`
	CapacityExceeded   bool      `json:"capacity_exceeded"`
}

// SaveResponse reports a batch commit: aggregate success plus per-row
// attribution so the UI can flag individual failures.
type SaveResponse struct {
	OK      bool         `json:"ok"`
	Results []SaveResult `json:"results"`
}
