package zones

// Zone row statuses as the ticketing API reports them.
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

// ZoneRow is the editing-session projection of a zone. A row with an empty
// ID has not been persisted yet; LocalKey identifies it across staging
// operations until the server assigns a real id.
type ZoneRow struct {
	ID             string   `json:"id,omitempty"`
	LocalKey       string   `json:"local_key"`
	DisplayName    string   `json:"display_name"`
	Price          *float64 `json:"price"`
	SeatsQuota     *int     `json:"seats_quota"`
	SeatsSold      int      `json:"seats_sold"`
	SeatsAvailable int      `json:"seats_available"`
	Status         string   `json:"status"`
	LocationZoneID string   `json:"location_zone_id,omitempty"`
	Editing        bool     `json:"editing"`
	Dirty          bool     `json:"dirty"`
	IsNew          bool     `json:"is_new"`
}

// Op names a commit operation in a batch result.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// SaveResult is the per-row outcome of a batch commit or delete. A batch is
// never rolled back; callers inspect individual results instead of getting
// an all-or-nothing answer.
type SaveResult struct {
	LocalKey string `json:"local_key"`
	ID       string `json:"id,omitempty"`
	Op       Op     `json:"op"`
	Error    string `json:"error,omitempty"`
}

// OK reports whether the operation succeeded.
func (r SaveResult) OK() bool {
	return r.Error == ""
}

// ValidationResult is the local pre-commit gate outcome. Validation
// failures are results, never errors.
type ValidationResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}
