package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Count is a non-negative integer that may be absent. Absent values are NULL in the
// store and null in JSON.
type Count struct {
	Int   int
	Valid bool
}

// NewCount returns a present count.
func NewCount(v int) Count {
	return Count{Int: v, Valid: true}
}

// ParseCount converts a form value. An empty string is absent; anything that is not a
// non-negative base-10 integer is rejected.
func ParseCount(raw string) (Count, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Count{}, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return Count{}, fmt.Errorf("%q is not an integer", raw)
	}
	if v < 0 {
		return Count{}, fmt.Errorf("%q is negative", raw)
	}
	return NewCount(v), nil
}

// Ptr returns nil when absent.
func (c Count) Ptr() *int {
	if !c.Valid {
		return nil
	}
	v := c.Int
	return &v
}

// String renders absent counts as the empty string.
func (c Count) String() string {
	if !c.Valid {
		return ""
	}
	return strconv.Itoa(c.Int)
}

// MarshalJSON implements json.Marshaler.
func (c Count) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(c.Int)), nil
}

// UnmarshalJSON accepts null, a JSON number or a numeric string.
func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = Count{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		parsed, err := ParseCount(raw)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}
	parsed, err := ParseCount(string(data))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Scan implements sql.Scanner.
func (c *Count) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*c = Count{}
	case int64:
		*c = NewCount(int(v))
	case float64:
		*c = NewCount(int(v))
	case []byte:
		return c.scanString(string(v))
	case string:
		return c.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into Count", src)
	}
	return nil
}

func (c *Count) scanString(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("scan count: %w", err)
	}
	*c = NewCount(n)
	return nil
}

// Value implements driver.Valuer.
func (c Count) Value() (driver.Value, error) {
	if !c.Valid {
		return nil, nil
	}
	return int64(c.Int), nil
}

const dateLayout = "2006-01-02"

// CalendarDate is a date without time of day that may be absent.
type CalendarDate struct {
	Time  time.Time
	Valid bool
}

// NewCalendarDate builds a valid date at UTC midnight.
func NewCalendarDate(year int, month time.Month, day int) CalendarDate {
	return CalendarDate{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Valid: true}
}

// ParseCalendarDate accepts YYYY-MM-DD or an ISO timestamp starting with one.
func ParseCalendarDate(raw string) (CalendarDate, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return CalendarDate{}, nil
	}
	if len(raw) > len(dateLayout) && raw[len(dateLayout)] == 'T' {
		raw = raw[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return CalendarDate{}, fmt.Errorf("%q is not a YYYY-MM-DD date", raw)
	}
	return CalendarDate{Time: t, Valid: true}, nil
}

// String renders the date as YYYY-MM-DD, or empty when absent.
func (d CalendarDate) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(dateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d CalendarDate) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = CalendarDate{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseCalendarDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner.
func (d *CalendarDate) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = CalendarDate{}
		return nil
	case time.Time:
		y, m, day := v.Date()
		*d = NewCalendarDate(y, m, day)
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into CalendarDate", src)
	}
}

func (d *CalendarDate) scanString(v string) error {
	parsed, err := ParseCalendarDate(v)
	if err != nil {
		return fmt.Errorf("scan date: %w", err)
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer.
func (d CalendarDate) Value() (driver.Value, error) {
	if !d.Valid {
		return nil, nil
	}
	return d.String(), nil
}
