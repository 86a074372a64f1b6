package locations

// Location is a venue record mirrored from the ticketing API.
type Location struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Capacity    int    `json:"capacity"`
}

// Ref identifies a location either by an embedded record or a bare
// foreign-key id. Lookups resolve embedded records first and fall back to
// the cached index.
type Ref struct {
	ID       string
	Embedded *Location
}
