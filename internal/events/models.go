package events

import (
	"time"

	"stagefront/internal/locations"
)

// Event is a catalog record mirrored from the ticketing API. The venue may
// arrive embedded or as a bare foreign key depending on the endpoint.
type Event struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	StartsAt    time.Time           `json:"starts_at"`
	Status      string              `json:"status,omitempty"`
	LocationID  string              `json:"location_id,omitempty"`
	Location    *locations.Location `json:"location,omitempty"`
}

// LocationRef builds the lookup reference for this event's venue.
func (e Event) LocationRef() locations.Ref {
	ref := locations.Ref{ID: e.LocationID, Embedded: e.Location}
	if ref.ID == "" && e.Location != nil {
		ref.ID = e.Location.ID
	}
	return ref
}
