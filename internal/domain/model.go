package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// PageQuery holds the search text and 0-based page position of a list screen.
type PageQuery struct {
	SearchText string
	PageIndex  int
	PageSize   int
}

// PageResult is one page of a resource list.
type PageResult[T any] struct {
	Items      []T   `json:"content"`
	TotalItems int64 `json:"totalElements"`
	TotalPages int   `json:"totalPages"`
	PageIndex  int   `json:"page"`
	PageSize   int   `json:"size"`
}

// Identifiable is implemented by every list item. IDs are unique within a
// resource type.
type Identifiable interface {
	GetID() int64
}

// Timestamp is a point in time encoded on the wire as a component array
// [year, month, day, hour, minute, second, nanos]. Trailing zero seconds and
// nanos are omitted when encoding.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// NowTimestamp returns the current time truncated to microseconds, the
// precision every supported store keeps.
func NowTimestamp() Timestamp {
	return Timestamp{Time: time.Now().UTC().Truncate(time.Microsecond)}
}

// Components returns the component array for t.
func (t Timestamp) Components() []int {
	if t.IsZero() {
		return nil
	}
	c := []int{t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute()}
	if t.Second() != 0 || t.Nanosecond() != 0 {
		c = append(c, t.Second())
	}
	if t.Nanosecond() != 0 {
		c = append(c, t.Nanosecond())
	}
	return c
}

// MarshalJSON encodes t as a component array, or null when zero.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Components())
}

// UnmarshalJSON accepts a component array with 3 to 7 entries, an RFC 3339
// string, a local date-time string, or null.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := parseTimestampString(s)
		if err != nil {
			return err
		}
		t.Time = parsed
		return nil
	}

	var parts []int
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	parsed, err := timeFromComponents(parts)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// Scan implements sql.Scanner.
func (t *Timestamp) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v
		return nil
	case string:
		parsed, err := parseTimestampString(v)
		if err != nil {
			return err
		}
		t.Time = parsed
		return nil
	case []byte:
		parsed, err := parseTimestampString(string(v))
		if err != nil {
			return err
		}
		t.Time = parsed
		return nil
	default:
		return fmt.Errorf("timestamp: cannot scan %T", value)
	}
}

// Value implements driver.Valuer.
func (t Timestamp) Value() (driver.Value, error) {
	return t.Time, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func parseTimestampString(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp: unrecognized format %q", s)
}

func timeFromComponents(parts []int) (time.Time, error) {
	if len(parts) == 0 {
		return time.Time{}, nil
	}
	if len(parts) < 3 || len(parts) > 7 {
		return time.Time{}, fmt.Errorf("timestamp: expected 3 to 7 components, got %d", len(parts))
	}
	c := make([]int, 7)
	copy(c, parts)
	if c[1] < 1 || c[1] > 12 {
		return time.Time{}, fmt.Errorf("timestamp: month %d out of range", c[1])
	}
	if c[2] < 1 || c[2] > 31 {
		return time.Time{}, fmt.Errorf("timestamp: day %d out of range", c[2])
	}
	return time.Date(c[0], time.Month(c[1]), c[2], c[3], c[4], c[5], c[6], time.UTC), nil
}
