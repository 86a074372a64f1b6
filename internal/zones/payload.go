package zones

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// The ticketing API is loose about zone field types: ids arrive as strings
// or numbers, numeric fields as numbers or numeric strings, and the
// location-zone foreign key as a bare id or a nested object. zonePayload
// absorbs all of it; toRow produces the normalized projection.

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flexFloat accepts a JSON number, a numeric string, an empty string, or
// null. An empty string stays unset rather than becoming zero.
type flexFloat struct {
	Set   bool
	Value float64
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = flexFloat{}
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = flexFloat{}
			return nil
		}
		value, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = flexFloat{Set: true, Value: value}
		return nil
	}
	var value float64
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return err
	}
	*f = flexFloat{Set: true, Value: value}
	return nil
}

func (f flexFloat) ptr() *float64 {
	if !f.Set {
		return nil
	}
	value := f.Value
	return &value
}

// flexInt accepts a JSON integer, a numeric string, an empty string, or null.
type flexInt struct {
	Set   bool
	Value int
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var ff flexFloat
	if err := ff.UnmarshalJSON(data); err != nil {
		return err
	}
	*f = flexInt{Set: ff.Set, Value: int(ff.Value)}
	return nil
}

func (f flexInt) ptr() *int {
	if !f.Set {
		return nil
	}
	value := f.Value
	return &value
}

func (f flexInt) or(fallback int) int {
	if !f.Set {
		return fallback
	}
	return f.Value
}

// flexID accepts a bare id (string or number) or a nested {"id": ...} object.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var nested struct {
			ID flexString `json:"id"`
		}
		if err := json.Unmarshal(trimmed, &nested); err != nil {
			return err
		}
		*f = flexID(nested.ID)
		return nil
	}
	var s flexString
	if err := s.UnmarshalJSON(trimmed); err != nil {
		return err
	}
	*f = flexID(s)
	return nil
}

type zonePayload struct {
	ID             flexString `json:"id"`
	Name           flexString `json:"name"`
	Price          flexFloat  `json:"price"`
	SeatsQuota     flexInt    `json:"seats_quota"`
	SeatsSold      flexInt    `json:"seats_sold"`
	SeatsAvailable flexInt    `json:"seats_available"`
	Status         string     `json:"status"`
	LocationZone   flexID     `json:"location_zone"`
	LocationZoneID flexString `json:"location_zone_id"`
}

func (p zonePayload) toRow(localKey string) *ZoneRow {
	status := p.Status
	if status == "" {
		status = StatusActive
	}

	locationZoneID := string(p.LocationZoneID)
	if locationZoneID == "" {
		locationZoneID = string(p.LocationZone)
	}

	quota := p.SeatsQuota.or(0)
	available := p.SeatsAvailable.or(quota - p.SeatsSold.or(0))
	if available < 0 {
		available = 0
	}

	return &ZoneRow{
		ID:             string(p.ID),
		LocalKey:       localKey,
		DisplayName:    string(p.Name),
		Price:          p.Price.ptr(),
		SeatsQuota:     p.SeatsQuota.ptr(),
		SeatsSold:      p.SeatsSold.or(0),
		SeatsAvailable: available,
		Status:         status,
		LocationZoneID: locationZoneID,
	}
}

// zoneBody is the request body for zone create/update calls.
type zoneBody struct {
	Name           string   `json:"name"`
	Price          *float64 `json:"price"`
	SeatsQuota     *int     `json:"seats_quota"`
	Status         string   `json:"status"`
	LocationZoneID string   `json:"location_zone_id,omitempty"`
}

func bodyFromRow(row *ZoneRow) zoneBody {
	return zoneBody{
		Name:           row.DisplayName,
		Price:          row.Price,
		SeatsQuota:     row.SeatsQuota,
		Status:         row.Status,
		LocationZoneID: row.LocationZoneID,
	}
}

// extractZoneID pulls the assigned id out of a create response, which may
// wrap the record under "data".
func extractZoneID(raw []byte) string {
	var envelope struct {
		ID   flexString `json:"id"`
		Data struct {
			ID flexString `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return ""
	}
	if envelope.ID != "" {
		return string(envelope.ID)
	}
	return string(envelope.Data.ID)
}
