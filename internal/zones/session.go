package zones

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"stagefront/internal/cache"
	"stagefront/internal/upstream"

	"github.com/google/uuid"
)

var (
	ErrRowNotFound    = errors.New("zone row not found")
	ErrSaveInProgress = errors.New("a save is already in progress")
	ErrUnknownField   = errors.New("unknown zone field")
)

// Session stages local edits to one event's zone inventory before a batch
// commit. Rows are mutated locally; the remote API is only touched by Load,
// RemoveRow, and Save.
type Session struct {
	mu      sync.Mutex
	client  upstream.Transport
	eventID string
	loaded  bool
	rows    []*ZoneRow
	saving  bool

	// loadMu serializes Load so concurrent first loads share one fetch.
	loadMu sync.Mutex
}

// NewSession creates an empty staging session for an event.
func NewSession(eventID string, client upstream.Transport) *Session {
	return &Session{
		client:  client,
		eventID: eventID,
	}
}

// Load fetches the event's zones. It runs at most once per session;
// repeated and concurrent calls share the first fetch so re-rendering
// screens never refetch.
func (s *Session) Load(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()
	if loaded {
		return nil
	}

	raw, err := s.client.Request(ctx, http.MethodGet, "/events/"+s.eventID+"/zones", nil, nil)
	if err != nil {
		return fmt.Errorf("failed to load zones: %w", err)
	}

	payloads, err := cache.DecodeItems[zonePayload](raw)
	if err != nil {
		return fmt.Errorf("failed to decode zones: %w", err)
	}

	rows := make([]*ZoneRow, 0, len(payloads))
	for _, payload := range payloads {
		rows = append(rows, payload.toRow(uuid.NewString()))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = rows
	s.loaded = true
	return nil
}

// Rows returns a copy of the staged row sequence.
func (s *Session) Rows() []ZoneRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]ZoneRow, len(s.rows))
	for i, row := range s.rows {
		rows[i] = *row
	}
	return rows
}

// Saving reports whether a batch commit is in flight.
func (s *Session) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

// AddRow appends a blank editable row with zeroed quantities.
func (s *Session) AddRow() ZoneRow {
	zero := 0
	zeroPrice := 0.0
	row := &ZoneRow{
		LocalKey:   uuid.NewString(),
		Price:      &zeroPrice,
		SeatsQuota: &zero,
		Status:     StatusActive,
		Editing:    true,
		IsNew:      true,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return *row
}

// ToggleEdit flips a row's editing flag.
func (s *Session) ToggleEdit(localKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, _ := s.find(localKey)
	if row == nil {
		return ErrRowNotFound
	}
	row.Editing = !row.Editing
	return nil
}

// UpdateField applies a local field edit. Numeric fields coerce strings to
// numbers; an empty string clears the field to unset rather than zero so
// validation can tell "unset" from "zero".
func (s *Session) UpdateField(localKey, field string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, _ := s.find(localKey)
	if row == nil {
		return ErrRowNotFound
	}

	switch field {
	case "display_name":
		row.DisplayName = toString(value)
	case "status":
		row.Status = toString(value)
	case "location_zone_id":
		row.LocationZoneID = toString(value)
	case "price":
		price, err := coerceFloat(value)
		if err != nil {
			return err
		}
		row.Price = price
	case "seats_quota":
		quota, err := coerceInt(value)
		if err != nil {
			return err
		}
		row.SeatsQuota = quota
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	row.Dirty = true
	return nil
}

// RemoveRow removes a row from the staged sequence immediately. Persisted
// rows get a remote delete; if that fails the row is re-inserted where it
// was and the failure is reported in the result.
func (s *Session) RemoveRow(ctx context.Context, localKey string) SaveResult {
	s.mu.Lock()
	row, index := s.find(localKey)
	if row == nil {
		s.mu.Unlock()
		return SaveResult{LocalKey: localKey, Op: OpDelete, Error: ErrRowNotFound.Error()}
	}
	s.rows = append(s.rows[:index], s.rows[index+1:]...)
	s.mu.Unlock()

	result := SaveResult{LocalKey: localKey, ID: row.ID, Op: OpDelete}
	if row.ID == "" {
		// Never persisted; nothing to delete remotely.
		return result
	}

	if _, err := s.client.Request(ctx, http.MethodDelete, "/zones/"+row.ID, nil, nil); err != nil {
		result.Error = err.Error()
		s.reinsert(row, index)
	}
	return result
}

// Validate is the fast local gate run before any commit request.
func (s *Session) Validate() ValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return validateRows(s.rows)
}

// Save partitions changed rows into creates and updates, issues them
// concurrently, and waits for all to settle. Untouched rows produce no
// requests. Successes are kept even when siblings fail; the per-row results
// carry the attribution.
func (s *Session) Save(ctx context.Context) ([]SaveResult, error) {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return nil, ErrSaveInProgress
	}
	s.saving = true
	work := make([]*ZoneRow, 0, len(s.rows))
	for _, row := range s.rows {
		if row.Dirty || row.IsNew {
			work = append(work, row)
		}
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.saving = false
		s.mu.Unlock()
	}()

	results := make([]SaveResult, len(work))
	var wg sync.WaitGroup
	for i, row := range work {
		wg.Add(1)
		go func(i int, row *ZoneRow) {
			defer wg.Done()
			results[i] = s.commitRow(ctx, row)
		}(i, row)
	}
	wg.Wait()

	s.applyCommitResults(results)
	return results, nil
}

// commitRow issues one create or update call. Rows staged as new (or
// missing a server id) are creates; everything else updates in place.
func (s *Session) commitRow(ctx context.Context, row *ZoneRow) SaveResult {
	s.mu.Lock()
	body := bodyFromRow(row)
	isCreate := row.IsNew || row.ID == ""
	result := SaveResult{LocalKey: row.LocalKey, ID: row.ID}
	s.mu.Unlock()

	if isCreate {
		result.Op = OpCreate
		raw, err := s.client.Request(ctx, http.MethodPost, "/events/"+s.eventID+"/zones", body, nil)
		if err != nil {
			result.Error = err.Error()
			return result
		}
		result.ID = extractZoneID(raw)
		return result
	}

	result.Op = OpUpdate
	if _, err := s.client.Request(ctx, http.MethodPut, "/zones/"+row.ID, body, nil); err != nil {
		result.Error = err.Error()
	}
	return result
}

// applyCommitResults adopts server-assigned ids for successful creates and
// settles editing flags on rows that committed cleanly.
func (s *Session) applyCommitResults(results []SaveResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, result := range results {
		if !result.OK() {
			continue
		}
		row, _ := s.find(result.LocalKey)
		if row == nil {
			continue
		}
		if result.Op == OpCreate && result.ID != "" {
			row.ID = result.ID
			row.IsNew = false
		}
		row.Dirty = false
		row.Editing = false
	}
}

// Totals returns the staged sold and quota sums.
func (s *Session) Totals() (sold, quota int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.rows {
		sold += row.SeatsSold
		if row.SeatsQuota != nil {
			quota += *row.SeatsQuota
		}
	}
	return sold, quota
}

// CapacityExceeded reports whether the staged quota total exceeds the
// venue's capacity. A soft check: exceeding state stays representable and
// is flagged for the UI; the server remains the authority.
func (s *Session) CapacityExceeded(capacity int) bool {
	if capacity <= 0 {
		return false
	}
	_, quota := s.Totals()
	return quota > capacity
}

// find must be called with s.mu held.
func (s *Session) find(localKey string) (*ZoneRow, int) {
	for i, row := range s.rows {
		if row.LocalKey == localKey {
			return row, i
		}
	}
	return nil, -1
}

// reinsert puts a row back at its previous position after a failed delete.
func (s *Session) reinsert(row *ZoneRow, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index > len(s.rows) {
		index = len(s.rows)
	}
	s.rows = append(s.rows[:index], append([]*ZoneRow{row}, s.rows[index:]...)...)
}

func toString(value interface{}) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}

// coerceFloat converts a JSON-decoded field edit to a nullable number.
// Empty strings and nil clear the field.
func coerceFloat(value interface{}) (*float64, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case float64:
		return &v, nil
	case int:
		f := float64(v)
		return &f, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", v)
		}
		return &f, nil
	default:
		return nil, fmt.Errorf("cannot coerce %T to a number", value)
	}
}

func coerceInt(value interface{}) (*int, error) {
	f, err := coerceFloat(value)
	if err != nil || f == nil {
		return nil, err
	}
	n := int(*f)
	return &n, nil
}
