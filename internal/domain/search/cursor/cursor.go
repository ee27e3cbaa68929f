package cursor

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"

	"github.com/geodex-io/geodex/internal/domain"
	"github.com/geodex-io/geodex/internal/domain/search/mode"
)

// Cursor is an opaque pagination continuation token. It encodes the sort
// mode it was issued under plus the sort key and tiebreak id of the last
// returned hit, so a follow-up page resumes after that position even when
// the caller re-sends the same query.
type Cursor struct {
	sort    mode.Sort
	sortKey float64
	id      string
}

// New creates a cursor positioned after (sortKey, id) under the given sort.
func New(sort mode.Sort, sortKey float64, id string) Cursor {
	return Cursor{sort: sort, sortKey: sortKey, id: id}
}

// Sort returns the sort mode the cursor was issued under.
func (c Cursor) Sort() mode.Sort { return c.sort }

// SortKey returns the sort key of the last returned hit.
func (c Cursor) SortKey() float64 { return c.sortKey }

// ID returns the tiebreak listing id of the last returned hit.
func (c Cursor) ID() string { return c.id }

// wire is the serialized cursor payload. Infinite sort keys (distance with
// no origin) are carried as the string form since JSON has no Inf literal.
type wire struct {
	Sort string `json:"s"`
	Key  string `json:"k"`
	ID   string `json:"id"`
}

// Encode serializes the cursor to an opaque URL-safe token.
func (c Cursor) Encode() string {
	payload, _ := json.Marshal(wire{
		Sort: string(c.sort),
		Key:  formatKey(c.sortKey),
		ID:   c.id,
	})
	return base64.RawURLEncoding.EncodeToString(payload)
}

// Decode parses an opaque token produced by Encode. Malformed tokens
// fail with ErrInvalidCursor.
func Decode(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", domain.ErrInvalidCursor, err)
	}

	var w wire
	if err := json.Unmarshal(raw, &w); err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", domain.ErrInvalidCursor, err)
	}

	s := mode.Sort(w.Sort)
	if !s.IsValid() {
		return Cursor{}, fmt.Errorf("%w: unknown sort %q", domain.ErrInvalidCursor, w.Sort)
	}
	if w.ID == "" {
		return Cursor{}, fmt.Errorf("%w: missing tiebreak id", domain.ErrInvalidCursor)
	}

	key, err := parseKey(w.Key)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: bad sort key %q", domain.ErrInvalidCursor, w.Key)
	}

	return Cursor{sort: s, sortKey: key, id: w.ID}, nil
}

func formatKey(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	data, _ := json.Marshal(f)
	return string(data)
}

func parseKey(s string) (float64, error) {
	if s == "inf" {
		return math.Inf(1), nil
	}
	var f float64
	if err := json.Unmarshal([]byte(s), &f); err != nil {
		return 0, err
	}
	return f, nil
}
